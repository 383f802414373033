package audit_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cypheracademy/certvault/internal/cert/audit"
	"github.com/cypheracademy/certvault/internal/cert/domain"
	"github.com/cypheracademy/certvault/internal/cert/store/drivers/sqlite"
)

func TestRecorder(t *testing.T) {
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	recorder := audit.NewRecorder(s.AuditEvents(), slog.Default(), 16)
	recorder.Start()

	recorder.Record(domain.AuditCertIssued, "user-1", "cert-1", "issued")
	recorder.Record(domain.AuditCertValidated, "", "QmHash", "valid")

	// Stop flushes the buffer before returning.
	recorder.Stop()

	events, err := s.AuditEvents().ListRecentAuditEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	kinds := []string{events[0].Kind, events[1].Kind}
	require.Contains(t, kinds, domain.AuditCertIssued)
	require.Contains(t, kinds, domain.AuditCertValidated)

	for _, ev := range events {
		require.NotEmpty(t, ev.ID)
		require.False(t, ev.CreatedAt.IsZero())
	}
}

func TestRecorderDropsWhenFull(t *testing.T) {
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	// Not started, so the buffer fills up and extra events are dropped
	// without blocking.
	recorder := audit.NewRecorder(s.AuditEvents(), slog.Default(), 1)
	recorder.Record(domain.AuditCertIssued, "user-1", "cert-1", "kept")
	recorder.Record(domain.AuditCertIssued, "user-1", "cert-2", "dropped")

	recorder.Start()
	recorder.Stop()

	events, err := s.AuditEvents().ListRecentAuditEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "cert-1", events[0].Subject)
}

func TestRecorderDropsAfterStop(t *testing.T) {
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	recorder := audit.NewRecorder(s.AuditEvents(), slog.Default(), 16)
	recorder.Start()
	recorder.Record(domain.AuditCertIssued, "user-1", "cert-1", "kept")
	recorder.Stop()

	// A late Record must not panic on the closed intake; the event is
	// dropped.
	require.NotPanics(t, func() {
		recorder.Record(domain.AuditCertIssued, "user-1", "cert-2", "late")
	})

	events, err := s.AuditEvents().ListRecentAuditEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "cert-1", events[0].Subject)
}
