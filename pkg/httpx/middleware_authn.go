package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/cypheracademy/certvault/pkg/jwtx"
	"github.com/cypheracademy/certvault/pkg/slogx"
)

// Denylist answers whether a token id (jti) has been revoked. A nil
// Denylist means revocation is not enforced.
type Denylist interface {
	Revoked(ctx context.Context, jti string) (bool, error)
}

// AuthnMiddleware verifies the bearer token and injects the claims into
// the request context. When denylist is non-nil, revoked jtis are
// rejected; a denylist lookup failure fails open so an unreachable
// cache does not take authentication down with it.
func AuthnMiddleware(v jwtx.Verifier, denylist Denylist) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("jwt verify failed", "err", err)
				return
			}

			if denylist != nil && claims.ID != "" {
				revoked, err := denylist.Revoked(ctx, claims.ID)
				if err != nil {
					log.Warn("denylist lookup failed, allowing request", "err", err)
				} else if revoked {
					writeBearerError(w, "token revoked")
					return
				}
			}

			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyScopes, c.Scopes)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
