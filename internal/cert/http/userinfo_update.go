package http

import (
	"net/http"

	"github.com/cypheracademy/certvault/internal/cert/service"
	"github.com/cypheracademy/certvault/pkg/httpx"
	"github.com/cypheracademy/certvault/pkg/slogx"
)

type UserInfoUpdateHandler struct {
	Users *service.UserService
}

// ServeHTTP updates the authenticated user's display name and returns
// the refreshed profile. Tokens issued before the change keep the old
// name until they are reissued.
func (h *UserInfoUpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromCtx(ctx)
	if userID == "" {
		ErrInvalidToken.WriteError(w)
		return
	}

	var req UpdateUserInfoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.Users.UpdateFullName(ctx, userID, req.FullName); err != nil {
		log.Warn("profile update rejected", "user_id", userID, "err", err)
		writeServiceError(w, err)
		return
	}

	user, err := h.Users.GetUserByID(ctx, userID)
	if err != nil {
		log.Error("failed to load user", "user_id", userID, "err", err)
		writeServiceError(w, err)
		return
	}

	log.Info("profile updated", "user_id", userID)
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(&user))
}
