package http

import (
	"net/http"

	"github.com/cypheracademy/certvault/internal/cert/service"
	"github.com/cypheracademy/certvault/pkg/httpx"
	"github.com/cypheracademy/certvault/pkg/slogx"
)

type CertificateChainHandler struct {
	Issuance *service.IssueService
}

// ServeHTTP resolves a certificate id or raw hash and reads its
// on-chain entry from the contract.
func (h *CertificateChainHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	entry, err := h.Issuance.ChainEntry(ctx, r.PathValue("id"))
	if err != nil {
		log.Warn("failed to read chain entry", "ref", r.PathValue("id"), "err", err)
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ChainEntryResponse{
		RecipientName: entry.RecipientName,
		CourseName:    entry.CourseName,
		IPFSHash:      entry.IPFSHash,
		IssuedOn:      entry.IssuedOn,
	})
}
