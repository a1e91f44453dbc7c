// Package order keeps a visitor's cart, favorites and theme preference in
// memory and writes every change straight through to a key-value store.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"LittleLemon/internal/kv"
	"LittleLemon/internal/menu"
)

// Store keys. The values are JSON snapshots of the in-memory collections,
// except darkMode which is the literal "true" or "false".
const (
	KeyCart      = "cart"
	KeyFavorites = "favorites"
	KeyDarkMode  = "darkMode"
)

var ErrUnknownItem = errors.New("unknown menu item")

// CartEntry is one line of the cart: a copy of the menu item plus how many
// of it were ordered.
type CartEntry struct {
	menu.MenuItem
	Quantity int `json:"quantity"`
}

// Catalog resolves menu item ids.
type Catalog interface {
	Get(id int) (menu.MenuItem, bool)
}

type Deps struct {
	Catalog  Catalog
	Store    kv.Store
	Notifier Notifier
	Metrics  *Metrics
	Log      *zap.Logger
}

// Manager owns one visitor's state. Every mutation persists the complete
// collection before returning; if the write fails the in-memory state is
// left as it was.
type Manager struct {
	mu sync.Mutex

	catalog Catalog
	store   kv.Store
	notify  Notifier
	metrics *Metrics
	log     *zap.Logger

	cart      []CartEntry
	favorites []int
	darkMode  bool
}

// Load builds a Manager from whatever the store holds. Missing or
// unreadable snapshots start out empty; only store I/O errors are returned.
func Load(ctx context.Context, deps Deps) (*Manager, error) {
	m := &Manager{
		catalog: deps.Catalog,
		store:   deps.Store,
		notify:  deps.Notifier,
		metrics: deps.Metrics,
		log:     deps.Log,
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	if m.notify == nil {
		m.notify = Notifiers(nil)
	}

	cart, err := loadSnapshot[CartEntry](ctx, m.store, m.log, KeyCart)
	if err != nil {
		return nil, err
	}
	m.cart = mergeEntries(cart)

	favorites, err := loadSnapshot[int](ctx, m.store, m.log, KeyFavorites)
	if err != nil {
		return nil, err
	}
	m.favorites = dedupe(favorites)

	raw, ok, err := m.store.Get(ctx, KeyDarkMode)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", KeyDarkMode, err)
	}
	m.darkMode = ok && raw == "true"

	return m, nil
}

func loadSnapshot[T any](ctx context.Context, store kv.Store, log *zap.Logger, key string) ([]T, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return []T{}, nil
	}

	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		log.Warn("discarding unreadable snapshot", zap.String("key", key), zap.Error(err))
		return []T{}, nil
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// mergeEntries drops entries with no quantity and folds repeated ids into
// the first entry for that id.
func mergeEntries(cart []CartEntry) []CartEntry {
	out := make([]CartEntry, 0, len(cart))
	for _, e := range cart {
		if e.Quantity < 1 {
			continue
		}
		if i := indexOfEntry(out, e.ID); i >= 0 {
			out[i].Quantity += e.Quantity
			continue
		}
		out = append(out, e)
	}
	return out
}

func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (m *Manager) persist(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, key, string(b)); err != nil {
		m.metrics.storeFailed()
		m.log.Error("persist failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

// AddToCart adds one of the item to the cart. An id the catalog does not
// know is ignored and reported as added=false with no error.
func (m *Manager) AddToCart(ctx context.Context, id int) (bool, error) {
	item, ok := m.catalog.Get(id)
	if !ok {
		return false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := slices.Clone(m.cart)
	if i := indexOfEntry(next, id); i >= 0 {
		next[i].Quantity++
	} else {
		next = append(next, CartEntry{MenuItem: item, Quantity: 1})
	}

	if err := m.persist(ctx, KeyCart, next); err != nil {
		return false, err
	}
	m.cart = next

	m.metrics.cartAdded()
	m.notify.Notify(NewEvent(KindSuccess, item.Name+" added to cart! 🛒"))
	return true, nil
}

// RemoveFromCart drops the whole entry for id. It reports whether an entry
// was removed.
func (m *Manager) RemoveFromCart(ctx context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := indexOfEntry(m.cart, id)
	if i < 0 {
		return false, nil
	}
	name := m.cart[i].Name
	next := slices.Delete(slices.Clone(m.cart), i, i+1)

	if err := m.persist(ctx, KeyCart, next); err != nil {
		return false, err
	}
	m.cart = next

	m.metrics.cartRemoved()
	m.notify.Notify(NewEvent(KindInfo, name+" removed from cart"))
	return true, nil
}

// ToggleFavorite flips membership of id in the favorites set and reports
// whether it is now a favorite.
func (m *Manager) ToggleFavorite(ctx context.Context, id int) (bool, error) {
	item, ok := m.catalog.Get(id)
	if !ok {
		return false, ErrUnknownItem
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := slices.Clone(m.favorites)
	added := false
	if i := slices.Index(next, id); i >= 0 {
		next = slices.Delete(next, i, i+1)
	} else {
		next = append(next, id)
		added = true
	}

	if err := m.persist(ctx, KeyFavorites, next); err != nil {
		return false, err
	}
	m.favorites = next

	m.metrics.favoriteToggled(added)
	if added {
		m.notify.Notify(NewEvent(KindSuccess, item.Name+" added to favorites! ❤️"))
	} else {
		m.notify.Notify(NewEvent(KindInfo, item.Name+" removed from favorites"))
	}
	return added, nil
}

// ToggleDarkMode flips the theme preference and returns the new value.
func (m *Manager) ToggleDarkMode(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := !m.darkMode
	if err := m.store.Set(ctx, KeyDarkMode, strconv.FormatBool(next)); err != nil {
		m.metrics.storeFailed()
		m.log.Error("persist failed", zap.String("key", KeyDarkMode), zap.Error(err))
		return m.darkMode, fmt.Errorf("persist %s: %w", KeyDarkMode, err)
	}
	m.darkMode = next

	m.metrics.themeToggled()
	return next, nil
}

func (m *Manager) Cart() []CartEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.cart)
}

func (m *Manager) Favorites() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.favorites)
}

func (m *Manager) IsFavorite(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Contains(m.favorites, id)
}

func (m *Manager) DarkMode() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.darkMode
}

func (m *Manager) Totals() Totals {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ComputeTotals(m.cart)
}

func indexOfEntry(cart []CartEntry, id int) int {
	return slices.IndexFunc(cart, func(e CartEntry) bool { return e.ID == id })
}
