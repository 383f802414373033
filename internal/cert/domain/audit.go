package domain

import "time"

// Audit event kinds.
const (
	AuditUserRegistered    = "user.registered"
	AuditUserLoggedIn      = "user.logged_in"
	AuditUserLoggedOut     = "user.logged_out"
	AuditCertIssued        = "cert.issued"
	AuditCertIssueFailed   = "cert.issue_failed"
	AuditCertRecordFailed  = "cert.record_failed"
	AuditCertValidated     = "cert.validated"
	AuditCertPinOrphaned   = "cert.pin_orphaned"
	AuditHousekeepingSweep = "housekeeping.sweep"
)

// AuditEvent is an append-only operational record. Events are written
// asynchronously and never block the operation they describe.
type AuditEvent struct {
	ID        string
	Kind      string
	ActorID   string // user id, empty for anonymous or system actions
	Subject   string // certificate id or hash the event refers to
	Detail    string
	CreatedAt time.Time
}
