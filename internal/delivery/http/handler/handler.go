package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/pricepulse-web/internal/delivery/http/middleware"
	"github.com/user/pricepulse-web/internal/delivery/http/response"
	"github.com/user/pricepulse-web/internal/entity"
	"github.com/user/pricepulse-web/internal/form"
	"github.com/user/pricepulse-web/internal/repository"
	"github.com/user/pricepulse-web/internal/usecase"
	"github.com/user/pricepulse-web/internal/view"
)

type Handler struct {
	home     usecase.Home
	detail   usecase.ProductDetail
	views    repository.ViewStateRepository
	renderer *view.Renderer
	logger   *zap.Logger
}

func NewHandler(
	home usecase.Home,
	detail usecase.ProductDetail,
	views repository.ViewStateRepository,
	renderer *view.Renderer,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		home:     home,
		detail:   detail,
		views:    views,
		renderer: renderer,
		logger:   logger,
	}
}

// HandleHome renders the session's current view state.
func (h *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.renderHome(w, r, form.ProductForm{}, form.AlertForm{})
}

// HandleTrack runs one track flow and redirects back to the home page. Flow
// failures end up in the view state as a notice, not in the response status.
func (h *Handler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFrom(r.Context())
	f := form.ProductFormFromRequest(r)

	var err error
	if !f.Submit(func(req entity.TrackRequest) {
		_, err = h.home.Track(r.Context(), session, req)
	}) {
		h.renderHome(w, r, f, form.AlertForm{})
		return
	}

	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrSuperseded):
		h.logger.Info("track flow superseded by a newer submission", zap.Error(err))
	case errors.Is(err, usecase.ErrViewState):
		h.logger.Error("failed to store view state", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	default:
		h.logger.Warn("track flow failed", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleHomeAlert registers an alert for the product loaded on the home page.
func (h *Handler) HandleHomeAlert(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFrom(r.Context())
	f := form.AlertFormFromRequest(r)

	var err error
	if !f.Submit(func(p form.AlertPayload) {
		_, err = h.home.SetAlert(r.Context(), session, p.Email, p.TargetPrice)
	}) {
		h.renderHome(w, r, form.ProductForm{}, f)
		return
	}

	switch {
	case err == nil:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, usecase.ErrNoProduct):
		http.Error(w, "Track a product before setting an alert", http.StatusConflict)
	case errors.Is(err, usecase.ErrViewState):
		h.logger.Error("failed to store view state", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	default:
		h.logger.Error("failed to set alert", zap.Error(err))
		http.Error(w, "Failed to set alert", http.StatusBadGateway)
	}
}

// HandleProduct renders the detail page. A failed load renders the empty page.
func (h *Handler) HandleProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.renderProduct(w, r, id, entity.AlertNone, form.AlertForm{})
}

// HandleProductAlert is a direct alert call. Failures are only logged.
func (h *Handler) HandleProductAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f := form.AlertFormFromRequest(r)

	var err error
	if !f.Submit(func(p form.AlertPayload) {
		err = h.detail.SetAlert(r.Context(), id, p.Email, p.TargetPrice)
	}) {
		h.renderProduct(w, r, id, entity.AlertNone, f)
		return
	}
	if err != nil {
		h.logger.Error("failed to set alert", zap.String("product_id", id), zap.Error(err))
		http.Error(w, "Failed to set alert", http.StatusBadGateway)
		return
	}
	h.renderProduct(w, r, id, entity.AlertScheduled, form.AlertForm{})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := response.HealthResponse{Status: "ok", ViewState: "healthy"}
	status := http.StatusOK
	if err := h.views.Ping(ctx); err != nil {
		h.logger.Error("health check failed for view state store", zap.Error(err))
		resp = response.HealthResponse{Status: "degraded", ViewState: "unhealthy"}
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) renderHome(w http.ResponseWriter, r *http.Request, pf form.ProductForm, af form.AlertForm) {
	v, err := h.home.View(r.Context(), middleware.SessionFrom(r.Context()))
	if err != nil {
		h.logger.Error("failed to load view state", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeHTML(w, func(w http.ResponseWriter) error {
		return h.renderer.Home(w, view.HomePage{View: v, ProductForm: pf, AlertForm: af})
	})
}

func (h *Handler) renderProduct(w http.ResponseWriter, r *http.Request, id string, status entity.AlertStatus, af form.AlertForm) {
	v, err := h.detail.Load(r.Context(), id)
	if err != nil {
		h.logger.Warn("failed to load product", zap.String("product_id", id), zap.Error(err))
	}
	if v.Product != nil {
		v.AlertStatus = status
	}
	h.writeHTML(w, func(w http.ResponseWriter) error {
		return h.renderer.Product(w, view.ProductPage{ProductID: id, View: v, AlertForm: af})
	})
}

func (h *Handler) writeHTML(w http.ResponseWriter, render func(http.ResponseWriter) error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render(w); err != nil {
		h.logger.Error("Failed to render page", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

// NotFound answers unknown routes with the JSON error body used by the API.
func (h *Handler) NotFound(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusNotFound, response.ErrorResponse{Error: "not found"})
}
