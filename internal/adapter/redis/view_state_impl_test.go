package redis

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/user/pricepulse-web/internal/entity"
)

func TestKeysDoNotLeakSessionID(t *testing.T) {
	vk, gk := viewKey("secret-session"), genKey("secret-session")
	require.True(t, strings.HasPrefix(vk, viewKeyPrefix))
	require.True(t, strings.HasPrefix(gk, genKeyPrefix))
	require.NotContains(t, vk, "secret-session")
	require.Equal(t, strings.TrimPrefix(vk, viewKeyPrefix), strings.TrimPrefix(gk, genKeyPrefix))
}

// newTestRepo runs against PRICEPULSE_TEST_REDIS_ADDR when set, otherwise
// against an in-process miniredis.
func newTestRepo(t *testing.T) (*ViewStateRepoImpl, *miniredis.Miniredis) {
	t.Helper()
	var mr *miniredis.Miniredis
	addr := os.Getenv("PRICEPULSE_TEST_REDIS_ADDR")
	if addr == "" {
		mr = miniredis.RunT(t)
		addr = mr.Addr()
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	repo := NewViewStateRepo(client, time.Minute)
	require.NoError(t, repo.Ping(context.Background()))
	return repo, mr
}

func TestGenerationGuard(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	session := uuid.NewString()

	view, err := repo.Load(ctx, session)
	require.NoError(t, err)
	require.Equal(t, entity.FlowIdle, view.State)

	first, err := repo.Begin(ctx, session)
	require.NoError(t, err)
	second, err := repo.Begin(ctx, session)
	require.NoError(t, err)
	require.Equal(t, first+1, second)

	ok, err := repo.Commit(ctx, session, second, entity.HomeView{State: entity.FlowLoaded, Product: &entity.Product{ID: "new"}})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.Commit(ctx, session, first, entity.HomeView{State: entity.FlowLoaded, Product: &entity.Product{ID: "old"}})
	require.NoError(t, err)
	require.False(t, ok)

	view, err = repo.Update(ctx, session, func(v *entity.HomeView) { v.AlertStatus = entity.AlertScheduled })
	require.NoError(t, err)
	require.Equal(t, "new", view.Product.ID)
	require.Equal(t, entity.AlertScheduled, view.AlertStatus)
	require.Equal(t, second, view.Generation)
}

func TestLatestBeginWinsAcrossFlows(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	session := uuid.NewString()

	// Two flows start; the older one finishes last.
	older, err := repo.Begin(ctx, session)
	require.NoError(t, err)
	newer, err := repo.Begin(ctx, session)
	require.NoError(t, err)

	view, err := repo.Load(ctx, session)
	require.NoError(t, err)
	require.Equal(t, entity.FlowLoading, view.State)
	require.Equal(t, newer, view.Generation)

	ok, err := repo.Commit(ctx, session, older, entity.HomeView{State: entity.FlowError, Notice: "failed"})
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = repo.Commit(ctx, session, newer, entity.HomeView{State: entity.FlowLoaded, Product: &entity.Product{ID: "p1"}})
	require.NoError(t, err)
	require.True(t, ok)

	view, err = repo.Load(ctx, session)
	require.NoError(t, err)
	require.Equal(t, entity.FlowLoaded, view.State)
	require.Equal(t, "p1", view.Product.ID)
	require.Empty(t, view.Notice)
}

func TestBeginClearsNotice(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	session := uuid.NewString()

	gen, err := repo.Begin(ctx, session)
	require.NoError(t, err)
	ok, err := repo.Commit(ctx, session, gen, entity.HomeView{State: entity.FlowError, Notice: "failed"})
	require.NoError(t, err)
	require.True(t, ok)

	_, err = repo.Begin(ctx, session)
	require.NoError(t, err)
	view, err := repo.Load(ctx, session)
	require.NoError(t, err)
	require.Equal(t, entity.FlowLoading, view.State)
	require.Empty(t, view.Notice)
}

func TestViewStateExpires(t *testing.T) {
	repo, mr := newTestRepo(t)
	if mr == nil {
		t.Skip("expiry is only fast-forwarded on miniredis")
	}
	ctx := context.Background()
	session := uuid.NewString()

	gen, err := repo.Begin(ctx, session)
	require.NoError(t, err)
	ok, err := repo.Commit(ctx, session, gen, entity.HomeView{State: entity.FlowLoaded, Product: &entity.Product{ID: "p1"}})
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	view, err := repo.Load(ctx, session)
	require.NoError(t, err)
	require.Equal(t, entity.FlowIdle, view.State)
	require.Nil(t, view.Product)

	// A stale generation cannot commit over an expired session either.
	ok, err = repo.Commit(ctx, session, gen, entity.HomeView{State: entity.FlowLoaded})
	require.NoError(t, err)
	require.False(t, ok)
}
