package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/raphaelgruber/voicejournal/internal/service"
)

// AuthPort extracts the authenticated user id from a request. Identity
// providers plug in here.
type AuthPort interface {
	UserID(r *http.Request) (string, error)
}

// HeaderAuth trusts a user id header set by an upstream gateway.
type HeaderAuth struct {
	Header string
}

func (h HeaderAuth) UserID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(h.Header))
	if id == "" {
		return "", service.ErrUnauthenticated
	}
	return id, nil
}

type ctxKey uint8

const userKey ctxKey = iota

func withUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// userFrom returns the user id stored by requireUser.
func userFrom(ctx context.Context) string {
	id, _ := ctx.Value(userKey).(string)
	return id
}

// requireUser rejects requests without a user id with a 401 envelope.
func requireUser(p AuthPort) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, err := p.UserID(r)
			if err != nil || uid == "" {
				fail(w, r, service.ErrUnauthenticated, "")
				return
			}
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), uid)))
		})
	}
}
