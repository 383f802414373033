// Package audit writes operational audit events asynchronously so the
// request path never blocks on audit persistence.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cypheracademy/certvault/internal/cert/domain"
	"github.com/cypheracademy/certvault/internal/cert/store"
	"github.com/cypheracademy/certvault/pkg/idx"
)

const defaultBuffer = 256

// Recorder buffers audit events on a channel and persists them from a
// single background worker. When the buffer is full events are dropped
// with a log line rather than blocking the caller.
type Recorder struct {
	events chan domain.AuditEvent
	repo   store.AuditEvents
	logger *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}

	// mu guards closed so Record never sends on a closed channel when
	// it races with Stop.
	mu     sync.Mutex
	closed bool
}

// NewRecorder creates a recorder. buffer <= 0 selects a sensible
// default.
func NewRecorder(repo store.AuditEvents, logger *slog.Logger, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Recorder{
		events: make(chan domain.AuditEvent, buffer),
		repo:   repo,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start launches the background worker. Safe to call once.
func (r *Recorder) Start() {
	r.startOnce.Do(func() {
		go r.run()
	})
}

// Stop closes the intake and waits for buffered events to flush.
// Events recorded after Stop are dropped.
func (r *Recorder) Stop() {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.events)
		r.mu.Unlock()
	})
	<-r.done
}

// Record submits an event. Non-blocking: a full buffer or a stopped
// recorder drops the event.
func (r *Recorder) Record(kind, actorID, subject, detail string) {
	ev := domain.AuditEvent{
		ID:        idx.New().String(),
		Kind:      kind,
		ActorID:   actorID,
		Subject:   subject,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.logger.Warn("audit recorder stopped, dropping event", "kind", kind, "subject", subject)
		return
	}

	select {
	case r.events <- ev:
	default:
		r.logger.Warn("audit buffer full, dropping event", "kind", kind, "subject", subject)
	}
}

func (r *Recorder) run() {
	defer close(r.done)

	for ev := range r.events {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.repo.AppendAuditEvent(ctx, ev); err != nil {
			r.logger.Error("failed to persist audit event", "kind", ev.Kind, "err", err)
		}
		cancel()
	}
}
