package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized is returned by an Authenticator that rejects a request.
var ErrUnauthorized = errors.New("unauthorized")

// Authenticator decides whether a request may reach a protected route.
type Authenticator interface {
	Authenticate(r *http.Request) error
}

// StaticToken accepts requests carrying "Authorization: Bearer <token>".
type StaticToken string

func (t StaticToken) Authenticate(r *http.Request) error {
	got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(t)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// requireAuth guards next with a. A nil Authenticator lets every request
// through.
func requireAuth(a Authenticator, next http.Handler) http.Handler {
	if a == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := a.Authenticate(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
