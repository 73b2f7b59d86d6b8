package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/user/pricepulse-web/internal/entity"
	"github.com/user/pricepulse-web/internal/repository"
	"github.com/user/pricepulse-web/pkg/metrics"
	"github.com/user/pricepulse-web/pkg/utils"
)

var tracer = otel.Tracer("adapter/backend")

// ErrEmptyResponse is returned when the backend answers 2xx without the body an operation needs.
var ErrEmptyResponse = errors.New("backend returned an empty body")

// StatusError is returned for every non-2xx answer. It is not classified further.
type StatusError struct {
	Operation  string
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: backend returned status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: backend returned status %d: %s", e.Operation, e.StatusCode, e.Detail)
}

type Options struct {
	BaseURL string
	// Token is sent as a bearer token when non-empty.
	Token string
	// Timeout of zero means no timeout.
	Timeout time.Duration
}

var (
	_ repository.PriceTrackerRepository = (*Client)(nil)
	_ repository.AccountRepository      = (*Client)(nil)
)

// Client talks to the price-tracking backend over HTTP.
type Client struct {
	http    *resty.Client
	baseURL *url.URL
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewClient(opts Options, m *metrics.Metrics, l *zap.Logger) (*Client, error) {
	baseURL, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend base url: %w", err)
	}
	if !baseURL.IsAbs() {
		return nil, fmt.Errorf("backend base url must be absolute, got %q", opts.BaseURL)
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	client.SetHeader("Accept", "application/json")
	client.SetRetryCount(0)
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.Token != "" {
		client.SetAuthToken(opts.Token)
	}

	if l == nil {
		l = zap.NewNop()
	}
	return &Client{
		http:    client,
		baseURL: baseURL,
		metrics: m,
		logger:  l.Named("backend"),
	}, nil
}

// BaseURL is the backend root, used to resolve relative image references.
func (c *Client) BaseURL() *url.URL {
	return c.baseURL
}

func (c *Client) TrackProduct(ctx context.Context, req entity.TrackRequest) (*entity.Product, error) {
	var p entity.Product
	if err := c.do(ctx, "track_product", http.MethodPost, "/products/track", req, nil, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	var p entity.Product
	if err := c.do(ctx, "get_product", http.MethodGet, utils.JoinPath("products", id), nil, nil, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetPriceHistory(ctx context.Context, id string) ([]entity.PriceHistoryEntry, error) {
	var history []entity.PriceHistoryEntry
	if err := c.do(ctx, "get_price_history", http.MethodGet, utils.JoinPath("products", id, "history"), nil, nil, &history, true); err != nil {
		return nil, err
	}
	return history, nil
}

func (c *Client) GetComparisons(ctx context.Context, id string) ([]entity.ComparisonEntry, error) {
	var comparisons []entity.ComparisonEntry
	if err := c.do(ctx, "get_comparisons", http.MethodGet, utils.JoinPath("products", id, "comparison"), nil, nil, &comparisons, true); err != nil {
		return nil, err
	}
	return comparisons, nil
}

// SetAlert only depends on the status code; the body is decoded when present.
func (c *Client) SetAlert(ctx context.Context, req entity.AlertRequest) (*entity.AlertCreated, error) {
	var created entity.AlertCreated
	if err := c.do(ctx, "set_alert", http.MethodPost, "/alerts/", req, nil, &created, false); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) Register(ctx context.Context, email, password, name string) (*entity.User, error) {
	body := map[string]string{"email": email, "password": password, "name": name}
	var u entity.User
	if err := c.do(ctx, "register", http.MethodPost, "/users/register", body, nil, &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*entity.Token, error) {
	body := map[string]string{"email": email, "password": password}
	var tok entity.Token
	if err := c.do(ctx, "login", http.MethodPost, "/users/login", body, nil, &tok, true); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (c *Client) ListProducts(ctx context.Context, limit, offset int) ([]entity.Product, error) {
	query := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
	var products []entity.Product
	if err := c.do(ctx, "list_products", http.MethodGet, "/products", nil, query, &products, true); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, "delete_product", http.MethodDelete, utils.JoinPath("products", id), nil, nil, nil, false)
}

func (c *Client) ListProductAlerts(ctx context.Context, productID string) ([]entity.AlertRecord, error) {
	var alerts []entity.AlertRecord
	if err := c.do(ctx, "list_product_alerts", http.MethodGet, utils.JoinPath("products", productID, "alerts"), nil, nil, &alerts, true); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (c *Client) DeleteAlert(ctx context.Context, alertID string) error {
	return c.do(ctx, "delete_alert", http.MethodDelete, utils.JoinPath("alerts", alertID), nil, nil, nil, false)
}

// do performs one request. When requireBody is false a missing or undecodable
// body on a 2xx answer is tolerated.
func (c *Client) do(ctx context.Context, op, method, path string, body any, query url.Values, result any, requireBody bool) (err error) {
	ctx, span := tracer.Start(ctx, "backend:"+op)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)

	start := time.Now()
	outcome := "success"
	defer func() {
		c.metrics.ObserveBackend(op, outcome, time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}

	c.logger.Debug("backend request", zap.String("operation", op), zap.String("method", method), zap.String("path", path))
	res, err := req.Execute(method, path)
	if err != nil {
		outcome = "transport_error"
		c.logger.Warn("backend request failed", zap.String("operation", op), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode()))

	if !res.IsSuccess() {
		outcome = "http_error"
		statusErr := &StatusError{
			Operation:  op,
			StatusCode: res.StatusCode(),
			Detail:     parseDetail(res.Body()),
		}
		c.logger.Warn("backend returned error status",
			zap.String("operation", op),
			zap.Int("status", statusErr.StatusCode),
			zap.String("detail", statusErr.Detail),
		)
		return statusErr
	}

	if result == nil {
		return nil
	}
	raw := res.Body()
	if len(raw) == 0 {
		if requireBody {
			return fmt.Errorf("%s: %w", op, ErrEmptyResponse)
		}
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		if requireBody {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
		c.logger.Debug("ignoring undecodable response body", zap.String("operation", op), zap.Error(err))
	}
	c.logger.Debug("backend request succeeded", zap.String("operation", op), zap.Int("status", res.StatusCode()))
	return nil
}

// parseDetail extracts FastAPI-style {"detail": ...} messages. Non-string
// details (validation error lists) are returned as raw JSON.
func parseDetail(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	return string(body.Detail)
}
