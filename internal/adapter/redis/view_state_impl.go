package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/pricepulse-web/internal/entity"
	"github.com/user/pricepulse-web/pkg/utils"
)

const (
	viewKeyPrefix = "pricepulse:view:"
	genKeyPrefix  = "pricepulse:gen:"

	// maxTxRetries bounds optimistic-lock retries when two requests of the
	// same session race on WATCH.
	maxTxRetries = 10
)

// ErrTooMuchContention is returned when a transaction kept losing the WATCH race.
var ErrTooMuchContention = errors.New("view state transaction retried too many times")

// ViewStateRepoImpl stores view state in Redis so every front-end instance
// sees the same session. Both keys carry the view-state TTL.
type ViewStateRepoImpl struct {
	client *redis.Client
	ttl    time.Duration
}

// NewViewStateRepo creates a new instance of ViewStateRepoImpl.
func NewViewStateRepo(client *redis.Client, ttl time.Duration) *ViewStateRepoImpl {
	return &ViewStateRepoImpl{client: client, ttl: ttl}
}

func viewKey(session string) string { return viewKeyPrefix + utils.HashKey(session) }
func genKey(session string) string  { return genKeyPrefix + utils.HashKey(session) }

func (r *ViewStateRepoImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *ViewStateRepoImpl) Begin(ctx context.Context, session string) (uint64, error) {
	vk, gk := viewKey(session), genKey(session)
	var gen uint64

	err := r.watch(ctx, func(tx *redis.Tx) error {
		current, err := getGen(ctx, tx, gk)
		if err != nil {
			return err
		}
		view, err := getView(ctx, tx, vk)
		if err != nil {
			return err
		}

		gen = current + 1
		view.State = entity.FlowLoading
		view.Notice = ""
		view.Generation = gen
		raw, err := json.Marshal(view)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, gk, gen, r.ttl)
			pipe.Set(ctx, vk, raw, r.ttl)
			return nil
		})
		return err
	}, vk, gk)
	if err != nil {
		return 0, fmt.Errorf("begin flow: %w", err)
	}
	return gen, nil
}

func (r *ViewStateRepoImpl) Commit(ctx context.Context, session string, gen uint64, view entity.HomeView) (bool, error) {
	vk, gk := viewKey(session), genKey(session)
	committed := false

	err := r.watch(ctx, func(tx *redis.Tx) error {
		current, err := getGen(ctx, tx, gk)
		if err != nil {
			return err
		}
		if current != gen {
			committed = false
			return nil
		}

		view.Generation = gen
		raw, err := json.Marshal(view)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, vk, raw, r.ttl)
			pipe.Expire(ctx, gk, r.ttl)
			return nil
		})
		if err == nil {
			committed = true
		}
		return err
	}, gk)
	if err != nil {
		return false, fmt.Errorf("commit flow: %w", err)
	}
	return committed, nil
}

func (r *ViewStateRepoImpl) Update(ctx context.Context, session string, fn func(*entity.HomeView)) (entity.HomeView, error) {
	vk, gk := viewKey(session), genKey(session)
	var out entity.HomeView

	err := r.watch(ctx, func(tx *redis.Tx) error {
		view, err := getView(ctx, tx, vk)
		if err != nil {
			return err
		}
		gen, err := getGen(ctx, tx, gk)
		if err != nil {
			return err
		}

		fn(&view)
		view.Generation = gen
		raw, err := json.Marshal(view)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, vk, raw, r.ttl)
			return nil
		})
		out = view
		return err
	}, vk, gk)
	if err != nil {
		return entity.HomeView{}, fmt.Errorf("update view: %w", err)
	}
	return out, nil
}

func (r *ViewStateRepoImpl) Load(ctx context.Context, session string) (entity.HomeView, error) {
	view, err := getView(ctx, r.client, viewKey(session))
	if err != nil {
		return entity.HomeView{}, fmt.Errorf("load view: %w", err)
	}
	return view, nil
}

// watch runs fn in an optimistic transaction, retrying when a watched key changed.
func (r *ViewStateRepoImpl) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, fn, keys...)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrTooMuchContention
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getView(ctx context.Context, c getter, key string) (entity.HomeView, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.IdleView(), nil
	}
	if err != nil {
		return entity.HomeView{}, err
	}
	var view entity.HomeView
	if err := json.Unmarshal(raw, &view); err != nil {
		return entity.HomeView{}, fmt.Errorf("decode view state: %w", err)
	}
	return view, nil
}

func getGen(ctx context.Context, c getter, key string) (uint64, error) {
	raw, err := c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(raw, 10, 64)
}
