package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/user/pricepulse-web/internal/entity"
)

var errBackend = errors.New("backend unavailable")

// fakeBackend records calls in order and answers from its fields.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	product     *entity.Product
	history     []entity.PriceHistoryEntry
	comparisons []entity.ComparisonEntry
	alerts      []entity.AlertRequest

	trackErr       error
	productErr     error
	historyErr     error
	comparisonsErr error
	alertErr       error

	// beforeTrack, when set, runs inside TrackProduct before it answers.
	beforeTrack func(req entity.TrackRequest)
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) TrackProduct(_ context.Context, req entity.TrackRequest) (*entity.Product, error) {
	f.record("track")
	if f.beforeTrack != nil {
		f.beforeTrack(req)
	}
	if f.trackErr != nil {
		return nil, f.trackErr
	}
	p := *f.product
	p.URL = req.URL
	return &p, nil
}

func (f *fakeBackend) GetProduct(context.Context, string) (*entity.Product, error) {
	f.record("product")
	if f.productErr != nil {
		return nil, f.productErr
	}
	p := *f.product
	return &p, nil
}

func (f *fakeBackend) GetPriceHistory(context.Context, string) ([]entity.PriceHistoryEntry, error) {
	f.record("history")
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

func (f *fakeBackend) GetComparisons(context.Context, string) ([]entity.ComparisonEntry, error) {
	f.record("comparisons")
	if f.comparisonsErr != nil {
		return nil, f.comparisonsErr
	}
	return f.comparisons, nil
}

func (f *fakeBackend) SetAlert(_ context.Context, req entity.AlertRequest) (*entity.AlertCreated, error) {
	f.record("alert")
	if f.alertErr != nil {
		return nil, f.alertErr
	}
	f.mu.Lock()
	f.alerts = append(f.alerts, req)
	f.mu.Unlock()
	return &entity.AlertCreated{AlertID: "a1", Status: "scheduled"}, nil
}

func newFakeBackend() *fakeBackend {
	price := int64(1099)
	url := "https://www.flipkart.com/x"
	return &fakeBackend{
		product: &entity.Product{ID: "p1", Name: "Phone", CurrentPrice: 999, Platform: "Amazon"},
		history: []entity.PriceHistoryEntry{{Price: 999}, {Price: 1050}},
		comparisons: []entity.ComparisonEntry{
			{Platform: "Flipkart", Price: &price, URL: &url},
		},
	}
}
