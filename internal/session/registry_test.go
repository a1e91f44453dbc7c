package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LittleLemon/internal/kv"
	"LittleLemon/internal/menu"
)

func testRegistry(store kv.Store) *Registry {
	catalog := menu.NewCatalog(
		[]menu.Section{{Title: "Desserts", Category: "desserts", ItemIDs: []int{0}}},
		[]menu.MenuItem{{ID: 0, Name: "Lemon Dessert", Price: "$5.00", Category: "desserts", Rating: 5}},
	)
	return NewRegistry(Deps{Store: store, Catalog: catalog})
}

func TestRegistry_OpenIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemStore()
	reg := testRegistry(store)

	a, err := reg.Open(ctx, "a")
	require.NoError(t, err)
	b, err := reg.Open(ctx, "b")
	require.NoError(t, err)

	_, err = a.Manager.AddToCart(ctx, 0)
	require.NoError(t, err)

	assert.Len(t, a.Manager.Cart(), 1)
	assert.Empty(t, b.Manager.Cart())

	again, err := reg.Open(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, a, again)

	_, ok, _ := store.Get(ctx, KeyPrefix("a")+"cart")
	assert.True(t, ok)
}

// gatedStore holds reads under prefix until release is closed.
type gatedStore struct {
	kv.Store
	prefix  string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedStore(prefix string) *gatedStore {
	return &gatedStore{
		Store:   kv.NewMemStore(),
		prefix:  prefix,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *gatedStore) Get(ctx context.Context, key string) (string, bool, error) {
	if strings.HasPrefix(key, s.prefix) {
		s.once.Do(func() { close(s.entered) })
		<-s.release
	}
	return s.Store.Get(ctx, key)
}

func TestRegistry_SlowLoadDoesNotBlockLoadedSessions(t *testing.T) {
	ctx := context.Background()
	store := newGatedStore(KeyPrefix("cold"))
	reg := testRegistry(store)

	warm, err := reg.Open(ctx, "warm")
	require.NoError(t, err)

	coldDone := make(chan error, 1)
	go func() {
		_, err := reg.Open(ctx, "cold")
		coldDone <- err
	}()
	<-store.entered

	got := make(chan *Session, 1)
	go func() {
		s, _ := reg.Open(ctx, "warm")
		got <- s
	}()

	select {
	case s := <-got:
		assert.Same(t, warm, s)
	case <-time.After(2 * time.Second):
		t.Fatal("open of a loaded session waited on another session's load")
	}

	close(store.release)
	require.NoError(t, <-coldDone)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_ConcurrentOpenSharesOneSession(t *testing.T) {
	ctx := context.Background()
	store := newGatedStore(KeyPrefix("a"))
	reg := testRegistry(store)

	const n = 8
	results := make(chan *Session, n)
	for range n {
		go func() {
			s, err := reg.Open(ctx, "a")
			assert.NoError(t, err)
			results <- s
		}()
	}
	<-store.entered
	close(store.release)

	first := <-results
	require.NotNil(t, first)
	for range n - 1 {
		assert.Same(t, first, <-results)
	}
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_EvictReloadsFromStore(t *testing.T) {
	ctx := context.Background()
	reg := testRegistry(kv.NewMemStore())
	now := time.Now()
	reg.now = func() time.Time { return now }

	s, err := reg.Open(ctx, "a")
	require.NoError(t, err)
	_, err = s.Manager.ToggleFavorite(ctx, 0)
	require.NoError(t, err)

	now = now.Add(time.Hour)
	assert.Equal(t, 1, reg.Evict(30*time.Minute))
	assert.Equal(t, 0, reg.Len())

	reloaded, err := reg.Open(ctx, "a")
	require.NoError(t, err)
	assert.NotSame(t, s, reloaded)
	assert.Equal(t, []int{0}, reloaded.Manager.Favorites())
}

func TestMiddleware_IssuesAndReusesSession(t *testing.T) {
	reg := testRegistry(kv.NewMemStore())
	tm := NewTokenMaker("0123456789abcdef0123456789abcdef", time.Hour)

	var seen []string
	h := Middleware(tm, reg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := FromContext(r.Context())
		require.True(t, ok)
		seen = append(seen, s.ID)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	tok := rec.Header().Get(HeaderToken)
	require.NotEmpty(t, tok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderToken, tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get(HeaderToken), "existing session keeps its token")

	require.Len(t, seen, 2)
	assert.Equal(t, seen[0], seen[1])

	s, err := reg.Open(context.Background(), seen[0])
	require.NoError(t, err)
	events := s.Feed.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, WelcomeMessage, events[0].Message)
}

func TestMiddleware_ForgedTokenStartsNewSession(t *testing.T) {
	reg := testRegistry(kv.NewMemStore())
	tm := NewTokenMaker("0123456789abcdef0123456789abcdef", time.Hour)
	other := NewTokenMaker("ffffffffffffffffffffffffffffffff", time.Hour)

	forged, err := other.New("victim")
	require.NoError(t, err)

	var got string
	h := Middleware(tm, reg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, _ := FromContext(r.Context())
		got = s.ID
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderToken, forged)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEqual(t, "victim", got)
	assert.NotEmpty(t, rec.Header().Get(HeaderToken))
}

func TestAttach_OnlyWithValidToken(t *testing.T) {
	reg := testRegistry(kv.NewMemStore())
	tm := NewTokenMaker("0123456789abcdef0123456789abcdef", time.Hour)

	var got *Session
	h := Attach(tm, reg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Nil(t, got)
	assert.Empty(t, rec.Header().Get(HeaderToken))
	assert.Equal(t, 0, reg.Len())

	tok, err := tm.New("known")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderToken, tok)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, got)
	assert.Equal(t, "known", got.ID)
}
