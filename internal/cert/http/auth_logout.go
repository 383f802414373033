package http

import (
	"net/http"

	"github.com/cypheracademy/certvault/internal/cert/service"
	"github.com/cypheracademy/certvault/pkg/httpx"
	"github.com/cypheracademy/certvault/pkg/slogx"
)

type LogoutHandler struct {
	Tokens *service.TokenService
}

// ServeHTTP revokes the presented access token for the remainder of
// its lifetime. Idempotent; logging out twice succeeds.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, ok := httpx.ClaimsFromCtx(ctx)
	if !ok {
		ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.Tokens.Revoke(ctx, claims); err != nil {
		log.Error("failed to revoke token", "user_id", claims.Subject, "err", err)
		ErrServerError.WriteError(w)
		return
	}

	log.Info("user logged out", "user_id", claims.Subject)
	w.WriteHeader(http.StatusNoContent)
}
