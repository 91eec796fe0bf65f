package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/thirdeyegames/coinflip/internal/services/accounts"
)

type ctxKey int

const identityKey ctxKey = iota

// RefreshCookieName is the HttpOnly cookie the browser client holds.
const RefreshCookieName = "refreshToken"

// requireAuth authenticates the request before any handler logic runs.
// Browser clients carry the refresh cookie; API clients may send a
// bearer access token instead. Either way an unauthenticated request is
// rejected with 401 before the body is even looked at.
func (h *HandlerProvider) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, err := h.authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *HandlerProvider) authenticate(r *http.Request) (accounts.Identity, error) {
	if c, err := r.Cookie(RefreshCookieName); err == nil && c.Value != "" {
		return h.accounts.ResolveRefreshToken(r.Context(), c.Value)
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
		return h.accounts.ResolveAccessToken(r.Context(), token)
	}

	return accounts.Identity{}, accounts.ErrNotAuthenticated
}

func identityFrom(ctx context.Context) (accounts.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(accounts.Identity)
	return ident, ok
}
