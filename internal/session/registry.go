// Package session maps anonymous visitors to their own order state.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"LittleLemon/internal/kv"
	"LittleLemon/internal/order"
)

const WelcomeMessage = "Welcome to Little Lemon Restaurant! 🍋"

// Session is one visitor: their state manager and the notifications waiting
// to be shown to them.
type Session struct {
	ID      string
	Manager *order.Manager
	Feed    *order.Feed

	lastSeen time.Time
}

type Deps struct {
	Store    kv.Store
	Catalog  order.Catalog
	Metrics  *order.Metrics
	Log      *zap.Logger
	FeedSize int
}

// Registry keeps loaded sessions in memory. Evicted sessions are rebuilt
// from the store on their next request. mu guards the map only; loads run
// outside it, one per id at a time.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	loads    singleflight.Group
	deps     Deps
	now      func() time.Time
}

func NewRegistry(deps Deps) *Registry {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		deps:     deps,
		now:      time.Now,
	}
}

// KeyPrefix namespaces a session's keys in the shared store.
func KeyPrefix(id string) string {
	return "session/" + id + "/"
}

// Open returns the session for id, loading its state from the store the
// first time it is seen. Concurrent opens of the same id share one load.
func (r *Registry) Open(ctx context.Context, id string) (*Session, error) {
	if s, ok := r.lookup(id); ok {
		return s, nil
	}

	v, err, _ := r.loads.Do(id, func() (any, error) {
		if s, ok := r.lookup(id); ok {
			return s, nil
		}
		s, err := r.load(ctx, id)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if cur, ok := r.sessions[id]; ok {
			return cur, nil
		}
		r.sessions[id] = s
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (r *Registry) lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if ok {
		s.lastSeen = r.now()
	}
	return s, ok
}

func (r *Registry) load(ctx context.Context, id string) (*Session, error) {
	feed := order.NewFeed(r.deps.FeedSize)
	log := r.deps.Log.With(zap.String("session_id", id))

	m, err := order.Load(ctx, order.Deps{
		Catalog:  r.deps.Catalog,
		Store:    kv.WithPrefix(r.deps.Store, KeyPrefix(id)),
		Notifier: order.Notifiers{feed, order.LogNotifier{Log: log}},
		Metrics:  r.deps.Metrics,
		Log:      log,
	})
	if err != nil {
		return nil, err
	}
	return &Session{ID: id, Manager: m, Feed: feed, lastSeen: r.now()}, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Evict unloads sessions idle for longer than idle and returns how many were
// dropped. Their state stays in the store.
func (r *Registry) Evict(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	n := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// RunEvictor calls Evict every interval until ctx is done.
func (r *Registry) RunEvictor(ctx context.Context, interval, idle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Evict(idle); n > 0 {
				r.deps.Log.Debug("evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}
