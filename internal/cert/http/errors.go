package http

import (
	"errors"
	"net/http"

	"github.com/cypheracademy/certvault/internal/cert/ledger"
	"github.com/cypheracademy/certvault/internal/cert/pinning"
	"github.com/cypheracademy/certvault/internal/cert/service"
	"github.com/cypheracademy/certvault/internal/cert/store"
	"github.com/cypheracademy/certvault/pkg/httpx"
)

// APIError is the JSON error envelope every non-2xx response uses.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (e *APIError) Error() string { return e.Code + ": " + e.Description }

// WriteError writes the error as a JSON response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, e)
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        "invalid_request",
		Description: "The request is missing a required field or a field is malformed.",
	}
	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        "invalid_credentials",
		Description: "Email or password is incorrect.",
	}
	ErrEmailTaken = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        "email_taken",
		Description: "An account with this email already exists.",
	}
	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        "not_found",
		Description: "The requested resource does not exist.",
	}
	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        "invalid_token",
		Description: "The access token is missing, expired, or revoked.",
	}
	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        "server_error",
		Description: "Something went wrong handling the request.",
	}
	ErrPinningFailed = &APIError{
		StatusCode:  http.StatusBadGateway,
		Code:        "pinning_failed",
		Description: "The certificate document could not be pinned. Nothing was recorded; retry the request.",
	}
	ErrLedgerFailed = &APIError{
		StatusCode:  http.StatusBadGateway,
		Code:        "ledger_failed",
		Description: "The certificate could not be recorded on chain.",
	}
	ErrLedgerUnavailable = &APIError{
		StatusCode:  http.StatusServiceUnavailable,
		Code:        "ledger_unavailable",
		Description: "The ledger node is unreachable. Retry shortly.",
	}
)

// writeServiceError maps service and dependency errors onto API
// responses. Unrecognized errors become a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var pinErr *pinning.Error
	if errors.As(err, &pinErr) {
		if pinErr.StatusCode == http.StatusNotFound {
			ErrNotFound.WriteError(w)
			return
		}
		ErrPinningFailed.WriteError(w)
		return
	}

	// A ledger failure after a successful pin is a partial success, not
	// a clean retry. The envelope names the orphaned hash so the caller
	// knows content already exists before minting a fresh pin.
	var ledgerErr *service.LedgerFailure
	if errors.As(err, &ledgerErr) {
		(&APIError{
			StatusCode: http.StatusBadGateway,
			Code:       "ledger_failed",
			Description: "The certificate document was pinned as " + ledgerErr.Hash +
				" but could not be recorded on chain. Retrying will pin a new copy.",
		}).WriteError(w)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		ErrInvalidRequest.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrEmailTaken):
		ErrEmailTaken.WriteError(w)
	case errors.Is(err, store.ErrNotFound), errors.Is(err, ledger.ErrNotFound):
		ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrPinFailed):
		ErrPinningFailed.WriteError(w)
	case errors.Is(err, service.ErrLedgerFailed):
		ErrLedgerFailed.WriteError(w)
	case errors.Is(err, ledger.ErrNoSession), errors.Is(err, ledger.ErrUnavailable):
		ErrLedgerUnavailable.WriteError(w)
	default:
		ErrServerError.WriteError(w)
	}
}
