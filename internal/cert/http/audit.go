package http

import (
	"net/http"
	"strconv"

	"github.com/cypheracademy/certvault/internal/cert/store"
	"github.com/cypheracademy/certvault/pkg/httpx"
	"github.com/cypheracademy/certvault/pkg/slogx"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

type AuditEventsHandler struct {
	Store store.Store
}

// ServeHTTP lists recent audit events, newest first. The optional
// limit query parameter is clamped to [1, 1000].
func (h *AuditEventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			(&APIError{
				StatusCode:  http.StatusBadRequest,
				Code:        "invalid_request",
				Description: "limit must be a positive integer",
			}).WriteError(w)
			return
		}
		limit = min(n, maxAuditLimit)
	}

	events, err := h.Store.AuditEvents().ListRecentAuditEvents(ctx, limit)
	if err != nil {
		log.Error("failed to list audit events", "err", err)
		ErrServerError.WriteError(w)
		return
	}

	resp := AuditEventListResponse{Events: make([]AuditEventResponse, 0, len(events))}
	for _, ev := range events {
		resp.Events = append(resp.Events, AuditEventResponse{
			ID:        ev.ID,
			Kind:      ev.Kind,
			ActorID:   ev.ActorID,
			Subject:   ev.Subject,
			Detail:    ev.Detail,
			CreatedAt: ev.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
