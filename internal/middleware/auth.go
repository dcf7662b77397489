// Package middleware contains HTTP middleware for promptgate.
//
// Middleware functions follow the standard Go pattern of wrapping http.Handler
// and are composed with Stack.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/promptgate/internal/auth"
	"github.com/DukeRupert/promptgate/internal/handler"
)

// AccountMiddleware resolves the caller's account from the header set by the
// upstream authentication layer.
type AccountMiddleware struct {
	logger *slog.Logger
}

// NewAccountMiddleware creates a new AccountMiddleware.
func NewAccountMiddleware(logger *slog.Logger) *AccountMiddleware {
	return &AccountMiddleware{logger: logger}
}

// RequireAccount places the account from auth.AccountHeader in the request
// context. A missing or malformed header is answered with 401 and the next
// handler is not called.
//
// Usage:
//
//	mux.Handle("POST /api/generate", accounts.RequireAccount(h))
func (m *AccountMiddleware) RequireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.GetAccountIDFromRequest(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		raw := r.Header.Get(auth.AccountHeader)
		if raw == "" {
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}

		id, err := auth.ParseAccountHeader(r)
		if err != nil {
			m.logger.Warn("malformed account header",
				"path", r.URL.Path,
				"ip", getClientIP(r),
			)
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.SetAccountID(r.Context(), id)))
	})
}

// Stack composes multiple middleware functions into a single middleware.
//
// Middleware is applied in the order provided, meaning the first middleware
// is the outermost:
//
//	Stack(a, b, c)(h) == a(b(c(h)))
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
