// Package auth carries the caller's account identity through the request
// context.
//
// This package is designed to be imported by both middleware and handler
// packages without causing import cycles.
package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// AccountHeader is set by the upstream authentication layer to the UUID of
// the authenticated account. It is trusted as-is.
const AccountHeader = "X-Account-ID"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const accountContextKey contextKey = "account_id"

// GetAccountID returns the authenticated account, or false if none is set.
func GetAccountID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(accountContextKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetAccountIDFromRequest is GetAccountID for a request.
func GetAccountIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	return GetAccountID(r.Context())
}

// SetAccountID stores the authenticated account in the context.
func SetAccountID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, accountContextKey, id)
}

// ParseAccountHeader reads AccountHeader from r.
func ParseAccountHeader(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.Header.Get(AccountHeader))
}
