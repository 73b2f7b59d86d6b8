package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/user/pricepulse-web/internal/entity"
	"github.com/user/pricepulse-web/internal/repository"
	"github.com/user/pricepulse-web/pkg/metrics"
)

var (
	// ErrSuperseded means a newer track flow started for the same session
	// before this one finished. Its result was discarded.
	ErrSuperseded = errors.New("a newer track flow started for this session")
	// ErrNoProduct means an alert was requested before any product was loaded.
	ErrNoProduct = errors.New("no product loaded")
	// ErrViewState wraps failures of the view-state store.
	ErrViewState = errors.New("view state unavailable")
)

// FailureNotice is the blocking notification shown when a track flow fails.
const FailureNotice = "Failed to track product. Please try again."

// Home is the controller of the home page: one track flow per submission plus
// an independent alert form for the loaded product.
type Home interface {
	// View returns the session's current view state. A pending failure
	// notice is returned once and then dropped from the stored view.
	View(ctx context.Context, session string) (entity.HomeView, error)
	// Track runs track → history → comparisons → optional alert. The returned
	// view is the flow's own result; a non-nil error is the flow failure,
	// ErrSuperseded, or an ErrViewState failure.
	Track(ctx context.Context, session string, req entity.TrackRequest) (entity.HomeView, error)
	// SetAlert registers an alert for the loaded product and marks it scheduled.
	SetAlert(ctx context.Context, session, email string, targetPrice float64) (entity.HomeView, error)
}

type homeUseCase struct {
	backend repository.PriceTrackerRepository
	views   repository.ViewStateRepository
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewHome creates the Home page controller.
func NewHome(
	backend repository.PriceTrackerRepository,
	views repository.ViewStateRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) Home {
	return &homeUseCase{
		backend: backend,
		views:   views,
		metrics: m,
		logger:  logger.Named("home"),
	}
}

func (uc *homeUseCase) View(ctx context.Context, session string) (entity.HomeView, error) {
	view, err := uc.views.Load(ctx, session)
	if err != nil {
		return entity.HomeView{}, fmt.Errorf("%w: %v", ErrViewState, err)
	}
	if view.Notice == "" {
		return view, nil
	}

	// The failure notice is shown once. Later views of the same flow omit it.
	notice := view.Notice
	if _, err := uc.views.Update(ctx, session, func(v *entity.HomeView) {
		if v.Notice == notice {
			v.Notice = ""
		}
	}); err != nil {
		return entity.HomeView{}, fmt.Errorf("%w: %v", ErrViewState, err)
	}
	return view, nil
}

func (uc *homeUseCase) Track(ctx context.Context, session string, req entity.TrackRequest) (entity.HomeView, error) {
	gen, err := uc.views.Begin(ctx, session)
	if err != nil {
		return entity.HomeView{}, fmt.Errorf("%w: %v", ErrViewState, err)
	}
	uc.metrics.FlowStarted()
	uc.logger.Info("track flow started", zap.String("url", req.URL), zap.Uint64("generation", gen))

	view, flowErr := uc.run(ctx, req)
	view.Generation = gen

	committed, err := uc.views.Commit(ctx, session, gen, view)
	if err != nil {
		uc.metrics.FlowFinished(string(entity.FlowError))
		return view, fmt.Errorf("%w: %v", ErrViewState, err)
	}
	if !committed {
		uc.metrics.FlowFinished("superseded")
		uc.logger.Info("discarding superseded track flow", zap.String("url", req.URL), zap.Uint64("generation", gen))
		return view, ErrSuperseded
	}

	uc.metrics.FlowFinished(string(view.State))
	if flowErr != nil {
		uc.logger.Warn("track flow failed", zap.String("url", req.URL), zap.Error(flowErr))
		return view, flowErr
	}
	uc.logger.Info("track flow loaded", zap.String("url", req.URL), zap.String("product_id", view.Product.ID))
	return view, nil
}

// run performs the backend calls of one flow strictly in sequence.
func (uc *homeUseCase) run(ctx context.Context, req entity.TrackRequest) (entity.HomeView, error) {
	fail := func(err error) (entity.HomeView, error) {
		return entity.HomeView{State: entity.FlowError, Notice: FailureNotice}, err
	}

	// Required: without a product there is nothing to render.
	product, err := call(ctx, uc.logger, Required, "track product", func(ctx context.Context) (*entity.Product, error) {
		return uc.backend.TrackProduct(ctx, req)
	})
	if err != nil {
		return fail(err)
	}

	// Required: the chart is part of a loaded page.
	history, err := call(ctx, uc.logger, Required, "get price history", func(ctx context.Context) ([]entity.PriceHistoryEntry, error) {
		return uc.backend.GetPriceHistory(ctx, product.ID)
	})
	if err != nil {
		return fail(err)
	}

	// BestEffort: the backend answers 502 until the first comparison scrape is done.
	comparisons, _ := call(ctx, uc.logger, BestEffort, "get comparisons", func(ctx context.Context) ([]entity.ComparisonEntry, error) {
		return uc.backend.GetComparisons(ctx, product.ID)
	})

	view := entity.HomeView{
		State:       entity.FlowLoaded,
		Product:     product,
		History:     history,
		Comparisons: comparisons,
	}

	if req.WantsAlert() {
		// Required: the user asked for the alert together with tracking.
		_, err := call(ctx, uc.logger, Required, "set alert", func(ctx context.Context) (*entity.AlertCreated, error) {
			return uc.backend.SetAlert(ctx, entity.AlertRequest{
				ProductID:   product.ID,
				Email:       req.Email,
				TargetPrice: *req.TargetPrice,
			})
		})
		if err != nil {
			return fail(err)
		}
		view.AlertStatus = entity.AlertScheduled
	}

	return view, nil
}

func (uc *homeUseCase) SetAlert(ctx context.Context, session, email string, targetPrice float64) (entity.HomeView, error) {
	view, err := uc.views.Load(ctx, session)
	if err != nil {
		return entity.HomeView{}, fmt.Errorf("%w: %v", ErrViewState, err)
	}
	if view.Product == nil {
		return view, ErrNoProduct
	}
	productID := view.Product.ID

	// Required: there is no fallback for a rejected alert.
	if _, err := call(ctx, uc.logger, Required, "set alert", func(ctx context.Context) (*entity.AlertCreated, error) {
		return uc.backend.SetAlert(ctx, entity.AlertRequest{ProductID: productID, Email: email, TargetPrice: targetPrice})
	}); err != nil {
		return view, err
	}

	updated, err := uc.views.Update(ctx, session, func(v *entity.HomeView) {
		// A newer flow may have replaced the product meanwhile.
		if v.Product != nil && v.Product.ID == productID {
			v.AlertStatus = entity.AlertScheduled
		}
	})
	if err != nil {
		return view, fmt.Errorf("%w: %v", ErrViewState, err)
	}
	uc.logger.Info("alert scheduled", zap.String("product_id", productID))
	return updated, nil
}
