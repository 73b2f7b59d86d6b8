package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/user/pricepulse-web/internal/entity"
	"github.com/user/pricepulse-web/internal/repository"
)

// ProductDetail is the controller of the per-product page.
type ProductDetail interface {
	// Load fetches product → history → comparisons. On a required failure the
	// returned view is empty and the error is only meant for logging.
	Load(ctx context.Context, id string) (entity.ProductView, error)
	// SetAlert is a direct call; failures are returned untouched.
	SetAlert(ctx context.Context, id, email string, targetPrice float64) error
}

type productDetailUseCase struct {
	backend repository.PriceTrackerRepository
	logger  *zap.Logger
}

func NewProductDetail(backend repository.PriceTrackerRepository, logger *zap.Logger) ProductDetail {
	return &productDetailUseCase{
		backend: backend,
		logger:  logger.Named("product_detail"),
	}
}

func (uc *productDetailUseCase) Load(ctx context.Context, id string) (entity.ProductView, error) {
	// Required
	product, err := call(ctx, uc.logger, Required, "get product", func(ctx context.Context) (*entity.Product, error) {
		return uc.backend.GetProduct(ctx, id)
	})
	if err != nil {
		return entity.ProductView{}, err
	}

	// Required
	history, err := call(ctx, uc.logger, Required, "get price history", func(ctx context.Context) ([]entity.PriceHistoryEntry, error) {
		return uc.backend.GetPriceHistory(ctx, id)
	})
	if err != nil {
		return entity.ProductView{}, err
	}

	// BestEffort
	comparisons, _ := call(ctx, uc.logger, BestEffort, "get comparisons", func(ctx context.Context) ([]entity.ComparisonEntry, error) {
		return uc.backend.GetComparisons(ctx, id)
	})

	return entity.ProductView{
		Product:     product,
		History:     history,
		Comparisons: comparisons,
	}, nil
}

func (uc *productDetailUseCase) SetAlert(ctx context.Context, id, email string, targetPrice float64) error {
	_, err := uc.backend.SetAlert(ctx, entity.AlertRequest{ProductID: id, Email: email, TargetPrice: targetPrice})
	return err
}
