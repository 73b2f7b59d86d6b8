package memory

import (
	"context"
	"sync"
	"time"

	"github.com/user/pricepulse-web/internal/entity"
)

type viewEntry struct {
	view    entity.HomeView
	gen     uint64
	expires time.Time
}

// ViewStateRepoImpl keeps view state in process memory. It is the default
// when no Redis address is configured.
type ViewStateRepoImpl struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*viewEntry
	now     func() time.Time

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewViewStateRepo creates an in-memory store whose entries expire ttl after their last write.
func NewViewStateRepo(ttl time.Duration) *ViewStateRepoImpl {
	return &ViewStateRepoImpl{
		ttl:     ttl,
		entries: make(map[string]*viewEntry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
}

// StartSweeper evicts expired sessions every interval until Close is called.
func (r *ViewStateRepoImpl) StartSweeper(interval time.Duration) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.sweep()
			case <-r.stop:
				return
			}
		}
	}()
}

func (r *ViewStateRepoImpl) Close() {
	close(r.stop)
	r.wg.Wait()
}

func (r *ViewStateRepoImpl) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for k, e := range r.entries {
		if now.After(e.expires) {
			delete(r.entries, k)
		}
	}
}

// Len is the number of live sessions.
func (r *ViewStateRepoImpl) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// live returns the unexpired entry for session, or nil. Callers hold mu.
func (r *ViewStateRepoImpl) live(session string) *viewEntry {
	e, ok := r.entries[session]
	if !ok {
		return nil
	}
	if r.now().After(e.expires) {
		delete(r.entries, session)
		return nil
	}
	return e
}

func (r *ViewStateRepoImpl) liveOrNew(session string) *viewEntry {
	if e := r.live(session); e != nil {
		return e
	}
	e := &viewEntry{view: entity.IdleView()}
	r.entries[session] = e
	return e
}

func (r *ViewStateRepoImpl) Begin(_ context.Context, session string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.liveOrNew(session)
	e.gen++
	e.view.State = entity.FlowLoading
	e.view.Notice = ""
	e.view.Generation = e.gen
	e.expires = r.now().Add(r.ttl)
	return e.gen, nil
}

func (r *ViewStateRepoImpl) Commit(_ context.Context, session string, gen uint64, view entity.HomeView) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.live(session)
	if e == nil || e.gen != gen {
		return false, nil
	}
	view.Generation = gen
	e.view = cloneView(view)
	e.expires = r.now().Add(r.ttl)
	return true, nil
}

func (r *ViewStateRepoImpl) Update(_ context.Context, session string, fn func(*entity.HomeView)) (entity.HomeView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.liveOrNew(session)
	fn(&e.view)
	e.view.Generation = e.gen
	e.expires = r.now().Add(r.ttl)
	return cloneView(e.view), nil
}

func (r *ViewStateRepoImpl) Load(_ context.Context, session string) (entity.HomeView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.live(session)
	if e == nil {
		return entity.IdleView(), nil
	}
	return cloneView(e.view), nil
}

func (r *ViewStateRepoImpl) Ping(context.Context) error {
	return nil
}

// cloneView copies the slices and product so callers never share memory with the store.
func cloneView(v entity.HomeView) entity.HomeView {
	out := v
	if v.Product != nil {
		p := *v.Product
		out.Product = &p
	}
	if v.History != nil {
		out.History = append([]entity.PriceHistoryEntry(nil), v.History...)
	}
	if v.Comparisons != nil {
		out.Comparisons = append([]entity.ComparisonEntry(nil), v.Comparisons...)
	}
	return out
}
