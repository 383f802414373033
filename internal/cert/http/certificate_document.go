package http

import (
	"net/http"

	"github.com/cypheracademy/certvault/internal/cert/service"
	"github.com/cypheracademy/certvault/pkg/slogx"
)

type CertificateDocumentHandler struct {
	Issuance *service.IssueService
}

// ServeHTTP proxies the pinned certificate document from the IPFS
// gateway. The path segment accepts either a certificate ID or a bare
// content hash, so documents issued elsewhere remain reachable.
func (h *CertificateDocumentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	doc, err := h.Issuance.FetchDocument(ctx, r.PathValue("id"))
	if err != nil {
		log.Warn("failed to fetch pinned document", "ref", r.PathValue("id"), "err", err)
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
