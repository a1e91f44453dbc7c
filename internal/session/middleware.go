package session

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"LittleLemon/internal/order"
	"LittleLemon/pkg/kit"
)

// HeaderToken carries the session token in both directions.
const HeaderToken = "X-Session-Token"

type ctxKey struct{}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// Middleware resolves the caller's session from HeaderToken. A missing,
// expired or forged token starts a fresh session; its token is returned in
// the response header and a welcome notification is queued.
func Middleware(tokens *TokenMaker, reg *Registry, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				id    string
				fresh bool
			)

			if c, err := tokens.Parse(r.Header.Get(HeaderToken)); err == nil {
				id = c.SessionID
			} else {
				id = uuid.NewString()
				fresh = true
			}

			s, err := reg.Open(r.Context(), id)
			if err != nil {
				log.Error("open session failed", zap.Error(err), zap.String("session_id", id))
				kit.WriteError(w, r, http.StatusServiceUnavailable, "session unavailable", nil)
				return
			}

			if fresh {
				tok, err := tokens.New(id)
				if err != nil {
					log.Error("session token issue", zap.Error(err))
					kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
					return
				}
				w.Header().Set(HeaderToken, tok)
				s.Feed.Notify(order.NewEvent(order.KindSuccess, WelcomeMessage))
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// Attach puts the caller's session in the context when HeaderToken is valid.
// It never starts a session, so anonymous reads stay free of state.
func Attach(tokens *TokenMaker, reg *Registry, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := tokens.Parse(r.Header.Get(HeaderToken))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			s, err := reg.Open(r.Context(), c.SessionID)
			if err != nil {
				log.Warn("attach session failed", zap.Error(err), zap.String("session_id", c.SessionID))
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// LimitNew runs limit only for requests that would start a new session.
// Callers holding a valid token pass straight through.
func LimitNew(tokens *TokenMaker, limit func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := tokens.Parse(r.Header.Get(HeaderToken)); err == nil {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}
