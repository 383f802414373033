package http

import (
	"net/http"

	"github.com/cypheracademy/certvault/internal/cert/domain"
	"github.com/cypheracademy/certvault/internal/cert/service"
	"github.com/cypheracademy/certvault/pkg/httpx"
	"github.com/cypheracademy/certvault/pkg/slogx"
)

type RegisterHandler struct {
	Users *service.UserService
}

// ServeHTTP creates a new account. The requested role defaults to
// issuer when absent; the first account ever registered becomes the
// admin regardless.
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Email == "" || req.Password == "" {
		(&APIError{
			StatusCode:  http.StatusBadRequest,
			Code:        "invalid_request",
			Description: "email and password are required",
		}).WriteError(w)
		return
	}

	user, err := h.Users.Register(ctx, req.Email, req.FullName, req.Password, domain.Role(req.Role))
	if err != nil {
		log.Warn("registration rejected", "email", req.Email, "err", err)
		writeServiceError(w, err)
		return
	}

	log.Info("user registered", "user_id", user.ID, "role", user.Role)
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(&user))
}
