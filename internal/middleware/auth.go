package middleware

import (
	"context"
	"net/http"
	"strings"

	"salesagent-backend/internal/auth"
	"salesagent-backend/internal/transport"
)

const AccessCookie = "sa_access"

type Principal struct {
	UserID string
	Email  string
	Role   string
}

type principalKey struct{}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// Authenticate attaches the caller to the context when a valid access token
// is presented as a bearer header or cookie. It never rejects.
func Authenticate(manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				next.ServeHTTP(w, r)
				return
			}
			token := bearerToken(r)
			if token == "" {
				if cookie, err := r.Cookie(AccessCookie); err == nil {
					token = cookie.Value
				}
			}
			if token != "" {
				claims, err := manager.Parse(token)
				if err == nil && claims.Kind == auth.TokenAccess {
					r = r.WithContext(WithPrincipal(r.Context(), Principal{
						UserID: claims.Subject,
						Email:  claims.Email,
						Role:   claims.Role,
					}))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser rejects anonymous callers. With auth disabled (nil manager)
// every request passes.
func RequireUser(manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := PrincipalFromContext(r.Context()); !ok {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireRole(manager *auth.Manager, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				next.ServeHTTP(w, r)
				return
			}
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			if p.Role != role {
				transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
