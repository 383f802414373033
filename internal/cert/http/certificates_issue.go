package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/cypheracademy/certvault/internal/cert/service"
	"github.com/cypheracademy/certvault/pkg/httpx"
	"github.com/cypheracademy/certvault/pkg/slogx"
)

type IssueCertificateHandler struct {
	Issuance *service.IssueService
	Users    *service.UserService
}

// ServeHTTP runs the full issuance workflow: pin the certificate
// document, record its hash on chain, persist the local record. A
// pinning failure leaves nothing behind and the request can simply be
// retried; a ledger failure after a successful pin is reported as 502
// so the operator can reconcile the orphaned pin.
func (h *IssueCertificateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromCtx(ctx)
	if userID == "" {
		ErrInvalidToken.WriteError(w)
		return
	}

	var req IssueCertificateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrInvalidRequest.WriteError(w)
		return
	}

	assignedOn, err := time.Parse(time.DateOnly, req.AssignedDate)
	if err != nil {
		(&APIError{
			StatusCode:  http.StatusBadRequest,
			Code:        "invalid_request",
			Description: "assigned_date must be a YYYY-MM-DD date",
		}).WriteError(w)
		return
	}

	issuer, err := h.Users.GetUserByID(ctx, userID)
	if err != nil {
		log.Error("failed to load issuer", "user_id", userID, "err", err)
		ErrServerError.WriteError(w)
		return
	}

	cert, err := h.Issuance.Issue(ctx, issuer, service.IssueRequest{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Organization:   req.Organization,
		CourseName:     req.CourseName,
		RecipientEmail: req.RecipientEmail,
		TemplateID:     req.TemplateID,
		AssignedOn:     assignedOn,
		DurationYears:  req.DurationYears,
	})
	if err != nil {
		if !errors.Is(err, service.ErrInvalidInput) {
			log.Error("certificate issuance failed", "issuer_id", userID, "err", err)
		}
		writeServiceError(w, err)
		return
	}

	log.Info("certificate issued",
		"cert_id", cert.ID,
		"ipfs_hash", cert.IPFSHash,
		"tx_hash", cert.TxHash,
	)
	httpx.WriteJSON(w, http.StatusCreated, toCertificateResponse(&cert))
}
