package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/user/pricepulse-web/internal/adapter/backend"
	"github.com/user/pricepulse-web/internal/adapter/memory"
	"github.com/user/pricepulse-web/internal/delivery/http/handler"
	"github.com/user/pricepulse-web/internal/delivery/http/middleware"
	"github.com/user/pricepulse-web/internal/delivery/http/response"
	"github.com/user/pricepulse-web/internal/usecase"
	"github.com/user/pricepulse-web/internal/view"
	"github.com/user/pricepulse-web/pkg/metrics"
)

// fakeBackend imitates the price-tracking API closely enough for the pages.
type fakeBackend struct {
	failTrack       atomic.Bool
	failProduct     atomic.Bool
	failComparisons atomic.Bool
	failAlert       atomic.Bool
	alerts          atomic.Int32
}

func (f *fakeBackend) handler() http.Handler {
	product := map[string]any{
		"product_id":    "p1",
		"name":          "Phone",
		"image_url":     "/static/images/p1.jpg",
		"current_price": 999,
		"url":           "https://www.amazon.in/dp/X",
		"platform":      "Amazon",
	}
	detail := func(w http.ResponseWriter, status int, msg string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": msg})
	}
	ok := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	r := chi.NewRouter()
	r.Post("/products/track", func(w http.ResponseWriter, _ *http.Request) {
		if f.failTrack.Load() {
			detail(w, http.StatusBadRequest, "Unsupported platform")
			return
		}
		ok(w, product)
	})
	r.Get("/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		if f.failProduct.Load() {
			detail(w, http.StatusNotFound, "Product not found")
			return
		}
		ok(w, product)
	})
	r.Get("/products/{id}/history", func(w http.ResponseWriter, _ *http.Request) {
		ok(w, []map[string]any{
			{"timestamp": "2025-03-02T09:30:00Z", "price": 999},
			{"timestamp": "2025-03-01T09:30:00Z", "price": 1099},
		})
	})
	r.Get("/products/{id}/comparison", func(w http.ResponseWriter, _ *http.Request) {
		if f.failComparisons.Load() {
			detail(w, http.StatusBadGateway, "No comparison data yet")
			return
		}
		ok(w, []map[string]any{{"platform": "Flipkart", "price": nil, "url": nil}})
	})
	r.Post("/alerts/", func(w http.ResponseWriter, _ *http.Request) {
		if f.failAlert.Load() {
			detail(w, http.StatusInternalServerError, "mail server down")
			return
		}
		f.alerts.Add(1)
		w.WriteHeader(http.StatusCreated)
	})
	return r
}

type testApp struct {
	backend *fakeBackend
	server  *httptest.Server
	client  *http.Client
	views   *memory.ViewStateRepoImpl
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := zaptest.NewLogger(t)
	fb := &fakeBackend{}
	backendSrv := httptest.NewServer(fb.handler())
	t.Cleanup(backendSrv.Close)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	client, err := backend.NewClient(backend.Options{BaseURL: backendSrv.URL, Token: "t"}, m, logger)
	require.NoError(t, err)

	views := memory.NewViewStateRepo(time.Minute)
	renderer, err := view.NewRenderer(client.BaseURL(), time.UTC)
	require.NoError(t, err)

	h := handler.NewHandler(
		usecase.NewHome(client, views, m, logger),
		usecase.NewProductDetail(client, logger),
		views,
		renderer,
		logger,
	)
	srv := httptest.NewServer(New(h, m, reg, logger))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testApp{
		backend: fb,
		server:  srv,
		client:  &http.Client{Jar: jar},
		views:   views,
	}
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, *goquery.Document) {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(t, err)
	return resp, readDoc(t, resp)
}

func (a *testApp) post(t *testing.T, path string, form url.Values) (*http.Response, *goquery.Document) {
	t.Helper()
	resp, err := a.client.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	return resp, readDoc(t, resp)
}

func readDoc(t *testing.T, resp *http.Response) *goquery.Document {
	t.Helper()
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}

func TestHomeIssuesSessionCookie(t *testing.T) {
	app := newTestApp(t)
	resp, doc := app.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, doc.Find("form.product-form").Length())

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	require.True(t, session.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, session.SameSite)
}

func TestTrackFlowRendersProduct(t *testing.T) {
	app := newTestApp(t)
	resp, doc := app.post(t, "/track", url.Values{"url": {"https://www.amazon.in/dp/X"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/", resp.Request.URL.Path)

	require.Equal(t, "Current Price: ₹999", doc.Find(".product-price").Text())
	require.Equal(t, "View on Amazon", doc.Find("a.product-link").Text())
	require.Equal(t, 1, doc.Find("canvas").Length())
	require.Equal(t, "Not Available", doc.Find(".comparison-table .price").Text())
	require.Equal(t, 1, doc.Find("form.alert-form").Length())
	require.Zero(t, doc.Find(".alert-status").Length())

	// The view survives a reload of the same session.
	_, doc = app.get(t, "/")
	require.Equal(t, "Phone", doc.Find(".product-name").Text())
}

func TestTrackFlowWithAlert(t *testing.T) {
	app := newTestApp(t)
	_, doc := app.post(t, "/track", url.Values{
		"url":         {"https://www.amazon.in/dp/X"},
		"email":       {"a@b.c"},
		"targetPrice": {"899"},
	})
	require.Equal(t, "Alert scheduled! We'll email you when the price drops.", doc.Find(".alert-status").Text())
	require.Equal(t, int32(1), app.backend.alerts.Load())
}

func TestTrackFlowFailureShowsNotice(t *testing.T) {
	app := newTestApp(t)
	app.backend.failTrack.Store(true)

	resp, doc := app.post(t, "/track", url.Values{"url": {"https://example.com/x"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, usecase.FailureNotice, doc.Find(`[role="alert"]`).Text())
	require.Zero(t, doc.Find(".product-card").Length())
}

func TestFailureNoticeShownOnce(t *testing.T) {
	app := newTestApp(t)
	app.backend.failTrack.Store(true)

	_, doc := app.post(t, "/track", url.Values{"url": {"https://example.com/x"}})
	require.Equal(t, 1, doc.Find(`[role="alert"]`).Length())

	_, doc = app.get(t, "/")
	require.Zero(t, doc.Find(`[role="alert"]`).Length())
	require.NotContains(t, doc.Find("script:not([src])").Text(), "window.alert(")

	app.get(t, "/products/p1")
	_, doc = app.get(t, "/")
	require.Zero(t, doc.Find(`[role="alert"]`).Length())
}

func TestTrackComparisonsFailureStillLoads(t *testing.T) {
	app := newTestApp(t)
	app.backend.failComparisons.Store(true)

	_, doc := app.post(t, "/track", url.Values{"url": {"https://www.amazon.in/dp/X"}})
	require.Equal(t, 1, doc.Find(".product-card").Length())
	require.Zero(t, doc.Find(".comparison-table").Length())
	require.Zero(t, doc.Find(`[role="alert"]`).Length())
}

func TestTrackWithoutURLIsIgnored(t *testing.T) {
	app := newTestApp(t)
	resp, doc := app.post(t, "/track", url.Values{"email": {"a@b.c"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/track", resp.Request.URL.Path)
	value, _ := doc.Find(`form.product-form input[name="email"]`).Attr("value")
	require.Equal(t, "a@b.c", value)
}

func TestHomeAlert(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.client.PostForm(app.server.URL+"/alert", url.Values{"email": {"a@b.c"}, "targetPrice": {"100"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	app.post(t, "/track", url.Values{"url": {"https://www.amazon.in/dp/X"}})
	_, doc := app.post(t, "/alert", url.Values{"email": {"a@b.c"}, "targetPrice": {"100"}})
	require.Equal(t, "Alert scheduled! We'll email you when the price drops.", doc.Find(".alert-status").Text())

	app.backend.failAlert.Store(true)
	resp, err = app.client.PostForm(app.server.URL+"/alert", url.Values{"email": {"a@b.c"}, "targetPrice": {"100"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestProductPage(t *testing.T) {
	app := newTestApp(t)
	resp, doc := app.get(t, "/products/p1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Phone", doc.Find(".product-name").Text())
	src, _ := doc.Find("img.product-image").Attr("src")
	require.True(t, strings.HasSuffix(src, "/static/images/p1.jpg"))
	require.True(t, strings.HasPrefix(src, "http://"))
}

func TestProductPageFatalFailureIsEmpty(t *testing.T) {
	app := newTestApp(t)
	app.backend.failProduct.Store(true)

	resp, doc := app.get(t, "/products/p1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Zero(t, doc.Find(".product-card").Length())
	require.Zero(t, doc.Find("canvas").Length())
	require.Zero(t, doc.Find(".comparison-table").Length())
}

func TestProductAlert(t *testing.T) {
	app := newTestApp(t)

	resp, doc := app.post(t, "/products/p1/alert", url.Values{"email": {"a@b.c"}, "targetPrice": {"100"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Alert scheduled! We'll email you when the price drops.", doc.Find(".alert-status").Text())

	app.backend.failAlert.Store(true)
	resp, err := app.client.PostForm(app.server.URL+"/products/p1/alert", url.Values{"email": {"a@b.c"}, "targetPrice": {"100"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.client.Get(app.server.URL + "/api/health")
	require.NoError(t, err)
	var health response.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, response.HealthResponse{Status: "ok", ViewState: "healthy"}, health)

	app.get(t, "/products/p1")
	resp, err = app.client.Get(app.server.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(body), `http_requests_total{method="GET",path="/products/{id}",status="200"}`)
	require.Contains(t, string(body), `backend_requests_total{operation="get_product",outcome="success"}`)
}

func TestStaticAndNotFound(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.client.Get(app.server.URL + "/static/style.css")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.client.Get(app.server.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
