package http

import (
	"net/http"

	"github.com/cypheracademy/certvault/internal/cert/service"
	"github.com/cypheracademy/certvault/pkg/httpx"
	"github.com/cypheracademy/certvault/pkg/slogx"
)

type ListCertificatesHandler struct {
	Issuance *service.IssueService
}

// ServeHTTP lists the caller's issued certificates, newest first.
func (h *ListCertificatesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromCtx(ctx)
	if userID == "" {
		ErrInvalidToken.WriteError(w)
		return
	}

	certs, err := h.Issuance.ListByIssuer(ctx, userID)
	if err != nil {
		log.Error("failed to list certificates", "issuer_id", userID, "err", err)
		ErrServerError.WriteError(w)
		return
	}

	resp := CertificateListResponse{Certificates: make([]CertificateResponse, 0, len(certs))}
	for i := range certs {
		resp.Certificates = append(resp.Certificates, toCertificateResponse(&certs[i]))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
