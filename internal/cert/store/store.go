package store

import (
	"context"
	"errors"
	"time"

	"github.com/cypheracademy/certvault/internal/cert/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement
// this. It exposes sub-repositories to keep concerns tidy and testable.
// Certificate records are immutable once written, so there is no
// transactional surface here: every operation is a single statement.
type Store interface {
	Users() Users
	Certificates() Certificates
	AuditEvents() AuditEvents

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// CreateUser inserts a new user (id is provided by app via ULID).
	// Email collisions return ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// UpdateFullName mutates the full_name and bumps updated_at.
	UpdateFullName(ctx context.Context, userID string, fullName string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Certificates interface {
	// CreateCertificate inserts an issued certificate record. Records
	// are append-only, there are no update or delete operations.
	CreateCertificate(ctx context.Context, c domain.Certificate) error

	// GetCertificateByID returns a certificate by its id.
	GetCertificateByID(ctx context.Context, id string) (domain.Certificate, error)

	// GetCertificateByHash looks a certificate up by its bare IPFS hash.
	GetCertificateByHash(ctx context.Context, ipfsHash string) (domain.Certificate, error)

	// ListCertificatesByIssuer returns all certificates issued by a
	// user, newest first.
	ListCertificatesByIssuer(ctx context.Context, issuerID string) ([]domain.Certificate, error)

	// CountCertificates returns the total number of issued certificates.
	CountCertificates(ctx context.Context) (int64, error)
}

type AuditEvents interface {
	// AppendAuditEvent writes an audit record.
	AppendAuditEvent(ctx context.Context, ev domain.AuditEvent) error

	// ListRecentAuditEvents returns up to limit events, newest first.
	ListRecentAuditEvents(ctx context.Context, limit int) ([]domain.AuditEvent, error)

	// DeleteAuditEventsOlderThan removes events created before the
	// cutoff. Housekeeping to keep the table bounded.
	DeleteAuditEventsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
