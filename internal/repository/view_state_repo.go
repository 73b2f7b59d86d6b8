package repository

import (
	"context"

	"github.com/user/pricepulse-web/internal/entity"
)

// ViewStateRepository keeps the short-lived Home view state of each browser session.
// Entries expire on their own; nothing here is ever sent to the backend.
type ViewStateRepository interface {
	// Begin bumps the session's generation, marks the view loading and
	// returns the new generation.
	Begin(ctx context.Context, session string) (uint64, error)
	// Commit stores view only if gen is still the session's current generation.
	// It reports whether the view was stored.
	Commit(ctx context.Context, session string, gen uint64, view entity.HomeView) (bool, error)
	// Update applies fn to the stored view without touching the generation.
	Update(ctx context.Context, session string, fn func(*entity.HomeView)) (entity.HomeView, error)
	// Load returns the stored view, or the idle view when nothing is stored.
	Load(ctx context.Context, session string) (entity.HomeView, error)
	// Ping checks that the underlying store is reachable.
	Ping(ctx context.Context) error
}
