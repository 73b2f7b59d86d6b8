package repository

import (
	"context"

	"github.com/user/pricepulse-web/internal/entity"
)

// PriceTrackerRepository is the contract of the external price-tracking backend.
// Implementations perform exactly one request per call: no retry, no caching.
type PriceTrackerRepository interface {
	// TrackProduct asks the backend to start tracking a product URL.
	TrackProduct(ctx context.Context, req entity.TrackRequest) (*entity.Product, error)
	// GetProduct fetches a tracked product.
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
	// GetPriceHistory fetches the recorded prices of a product.
	GetPriceHistory(ctx context.Context, id string) ([]entity.PriceHistoryEntry, error)
	// GetComparisons fetches cross-platform quotes for a product.
	GetComparisons(ctx context.Context, id string) ([]entity.ComparisonEntry, error)
	// SetAlert registers an email/target-price alert.
	SetAlert(ctx context.Context, req entity.AlertRequest) (*entity.AlertCreated, error)
}

// AccountRepository covers the backend operations used by the command-line client.
type AccountRepository interface {
	Register(ctx context.Context, email, password, name string) (*entity.User, error)
	Login(ctx context.Context, email, password string) (*entity.Token, error)
	ListProducts(ctx context.Context, limit, offset int) ([]entity.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListProductAlerts(ctx context.Context, productID string) ([]entity.AlertRecord, error)
	DeleteAlert(ctx context.Context, alertID string) error
}
