package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/AdamBeresnev/spread-pool/internal/httputil"
)

type ContextKey string

const AdminKey ContextKey = "admin"

// SessionAdminKey is the scs session key set by a successful admin login.
const SessionAdminKey = "admin"

// TokenMatches compares a presented token against the configured one. An
// empty configured token never matches.
func TokenMatches(presented, token string) bool {
	if token == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(token)) == 1
}

// LoadAdmin marks the request context as admin when the session holds an
// admin login or the request carries the admin bearer token.
func LoadAdmin(sessionManager *scs.SessionManager, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin := sessionManager.GetBool(r.Context(), SessionAdminKey)
			if !admin {
				if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
					admin = TokenMatches(strings.TrimSpace(bearer), token)
				}
			}
			ctx := context.WithValue(r.Context(), AdminKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests LoadAdmin did not mark as admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r.Context()) {
			httputil.Unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func IsAdmin(ctx context.Context) bool {
	admin, _ := ctx.Value(AdminKey).(bool)
	return admin
}
