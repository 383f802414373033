package http

import (
	"net/http"

	"github.com/cypheracademy/certvault/internal/cert/service"
	"github.com/cypheracademy/certvault/pkg/httpx"
)

type GetCertificateHandler struct {
	Issuance *service.IssueService
}

// ServeHTTP returns the local record for a certificate by its ID.
func (h *GetCertificateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cert, err := h.Issuance.GetCertificate(ctx, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toCertificateResponse(&cert))
}
