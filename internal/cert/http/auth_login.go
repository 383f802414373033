package http

import (
	"net/http"

	"github.com/cypheracademy/certvault/internal/cert/service"
	"github.com/cypheracademy/certvault/pkg/httpx"
	"github.com/cypheracademy/certvault/pkg/slogx"
)

type LoginHandler struct {
	Users  *service.UserService
	Tokens *service.TokenService
}

// ServeHTTP exchanges email and password for a bearer access token.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req LoginRequest
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

	user, err := h.Users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, expiresIn, err := h.Tokens.IssueAccessToken(user)
	if err != nil {
		log.Error("failed to sign access token", "user_id", user.ID, "err", err)
		ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	})
}
