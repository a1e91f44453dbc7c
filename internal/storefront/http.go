package storefront

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"LittleLemon/internal/menu"
	"LittleLemon/internal/order"
	"LittleLemon/internal/receipt"
	"LittleLemon/internal/session"
	"LittleLemon/pkg/kit"
)

type Server struct {
	Catalog *menu.Catalog
	Log     *zap.Logger
}

type itemDetails struct {
	menu.MenuItem
	Stars    string `json:"stars"`
	Favorite bool   `json:"favorite"`
}

type cartResp struct {
	Entries    []order.CartEntry `json:"entries"`
	TotalItems int               `json:"total_items"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	Total      string            `json:"total"`
	Changed    *bool             `json:"changed,omitempty"`
}

type addReq struct {
	ID *int `json:"id"`
}

func (s *Server) listMenu(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kit.WriteJSON(w, http.StatusOK, s.Catalog.View(q.Get("category"), q.Get("q")))
}

func (s *Server) categories(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Catalog.Categories())
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	it, found := s.Catalog.Get(id)
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}

	d := itemDetails{MenuItem: it, Stars: menu.Stars(it.Rating)}
	if sess, ok := session.FromContext(r.Context()); ok {
		d.Favorite = sess.Manager.IsFavorite(id)
	}
	kit.WriteJSON(w, http.StatusOK, d)
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, newCartResp(mustSession(r).Manager, nil))
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	sess := mustSession(r)

	var req addReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if req.ID == nil {
		kit.WriteError(w, r, http.StatusBadRequest, "id required", nil)
		return
	}

	added, err := sess.Manager.AddToCart(r.Context(), *req.ID)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, newCartResp(sess.Manager, &added))
}

func (s *Server) removeFromCart(w http.ResponseWriter, r *http.Request) {
	sess := mustSession(r)

	id, ok := itemID(w, r)
	if !ok {
		return
	}
	removed, err := sess.Manager.RemoveFromCart(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, newCartResp(sess.Manager, &removed))
}

func (s *Server) exportCart(w http.ResponseWriter, r *http.Request) {
	sess := mustSession(r)

	var buf bytes.Buffer
	if err := receipt.WriteXLSX(&buf, sess.Manager.Cart()); err != nil {
		if s.Log != nil {
			s.Log.Error("export cart failed", zap.Error(err), zap.String("session_id", sess.ID))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	w.Header().Set("Content-Type", receipt.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="little-lemon-order.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) favorites(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"favorites": mustSession(r).Manager.Favorites(),
	})
}

func (s *Server) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	sess := mustSession(r)

	id, ok := itemID(w, r)
	if !ok {
		return
	}
	fav, err := sess.Manager.ToggleFavorite(r.Context(), id)
	if errors.Is(err, order.ErrUnknownItem) {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "favorite": fav})
}

func (s *Server) theme(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, map[string]bool{"dark_mode": mustSession(r).Manager.DarkMode()})
}

func (s *Server) toggleTheme(w http.ResponseWriter, r *http.Request) {
	dark, err := mustSession(r).Manager.ToggleDarkMode(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]bool{"dark_mode": dark})
}

func (s *Server) notifications(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, mustSession(r).Feed.Drain())
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if isTimeoutErr(err) {
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
		return
	}
	kit.WriteError(w, r, http.StatusServiceUnavailable, "state not saved", nil)
}

func newCartResp(m *order.Manager, changed *bool) cartResp {
	t := m.Totals()
	return cartResp{
		Entries:    m.Cart(),
		TotalItems: t.Items,
		TotalPrice: t.Price,
		Total:      t.Display(),
		Changed:    changed,
	}
}

func itemID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad id", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}

// mustSession is only called behind session.Middleware.
func mustSession(r *http.Request) *session.Session {
	s, ok := session.FromContext(r.Context())
	if !ok {
		panic("storefront: request without session")
	}
	return s
}
