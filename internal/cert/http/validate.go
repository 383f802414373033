package http

import (
	"errors"
	"net/http"

	"github.com/cypheracademy/certvault/internal/cert/ledger"
	"github.com/cypheracademy/certvault/internal/cert/service"
	"github.com/cypheracademy/certvault/pkg/httpx"
	"github.com/cypheracademy/certvault/pkg/slogx"
)

type ValidateHandler struct {
	Validation *service.ValidationService
}

// ServeHTTP checks a certificate hash against the chain. An unknown
// hash is not an error: the response is 200 with valid=false, so
// holders of forged certificates get a definitive answer rather than
// a 404 they might mistake for a transient failure.
func (h *ValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	report, err := h.Validation.Validate(ctx, r.PathValue("hash"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			(&APIError{
				StatusCode:  http.StatusBadRequest,
				Code:        "invalid_request",
				Description: "a certificate hash is required",
			}).WriteError(w)
			return
		}
		if errors.Is(err, ledger.ErrUnavailable) {
			ErrLedgerUnavailable.WriteError(w)
			return
		}
		log.Error("validation failed", "hash", r.PathValue("hash"), "err", err)
		ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toValidationResponse(&report))
}
