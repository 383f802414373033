package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cypheracademy/certvault/internal/cert/audit"
	"github.com/cypheracademy/certvault/internal/cert/domain"
	"github.com/cypheracademy/certvault/internal/cert/ledger"
	"github.com/cypheracademy/certvault/internal/cert/metrics"
	"github.com/cypheracademy/certvault/internal/cert/pinning"
	"github.com/cypheracademy/certvault/internal/cert/store"
	"github.com/cypheracademy/certvault/pkg/idx"
	"github.com/cypheracademy/certvault/pkg/slogx"
)

// Pinner is the pinning surface the services need. pinning.Client
// satisfies it; tests substitute fakes.
type Pinner interface {
	PinJSON(ctx context.Context, name string, document any) (string, error)
	Fetch(ctx context.Context, hash string) ([]byte, error)
}

// IssueRequest carries validated issuance input. DurationYears zero
// means the certificate never expires; TemplateID is opaque to the
// service and only recorded in the pinned document.
type IssueRequest struct {
	FirstName      string
	LastName       string
	Organization   string
	CourseName     string
	RecipientEmail string
	TemplateID     string
	AssignedOn     time.Time
	DurationYears  int
}

type IssueService struct {
	Store   store.Store
	Pinner  Pinner
	Ledger  ledger.Client
	Metrics *metrics.Metrics
	Audit   *audit.Recorder
}

// Issue runs the full issuance workflow: pin the document, record the
// hash on chain, then persist the local record. The pin is the first
// externally visible effect; a ledger failure after it leaves an
// orphaned pin, which is audited and reported but not rolled back
// since pinned content is immutable and harmless on its own.
func (s *IssueService) Issue(ctx context.Context, issuer domain.User, req IssueRequest) (domain.Certificate, error) {
	log := slogx.FromContext(ctx)
	started := time.Now()

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Organization = strings.TrimSpace(req.Organization)
	req.CourseName = strings.TrimSpace(req.CourseName)
	req.RecipientEmail = strings.TrimSpace(req.RecipientEmail)
	if req.FirstName == "" || req.LastName == "" || req.Organization == "" ||
		req.CourseName == "" || req.RecipientEmail == "" ||
		req.AssignedOn.IsZero() || req.DurationYears < 0 {
		s.failure("input")
		return domain.Certificate{}, ErrInvalidInput
	}

	cert := domain.Certificate{
		ID:             idx.New().String(),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Organization:   req.Organization,
		CourseName:     req.CourseName,
		RecipientEmail: req.RecipientEmail,
		TemplateID:     strings.TrimSpace(req.TemplateID),
		AssignedOn:     req.AssignedOn.UTC(),
		DurationYears:  req.DurationYears,
		IssuerID:       issuer.ID,
	}
	if req.DurationYears > 0 {
		cert.ExpiresOn = domain.ExpiryDate(req.AssignedOn, req.DurationYears)
	}

	uri, err := s.Pinner.PinJSON(ctx, cert.ID, cert.Data(issuer.Email))
	if err != nil {
		log.Error("pinning failed", "cert_id", cert.ID, "err", err)
		s.failure("pin")
		s.record(domain.AuditCertIssueFailed, issuer.ID, cert.ID, "pin: "+err.Error())
		return domain.Certificate{}, fmt.Errorf("%w: %w", ErrPinFailed, err)
	}
	cert.IPFSHash = pinning.StripScheme(uri)

	ledgerStart := time.Now()
	txHash, err := s.Ledger.Issue(ctx, cert.RecipientName(), cert.CourseName, cert.IPFSHash)
	if s.Metrics != nil {
		s.Metrics.ObserveLedgerCall("issue", time.Since(ledgerStart))
	}
	if err != nil {
		log.Error("ledger issue failed",
			"cert_id", cert.ID,
			"ipfs_hash", cert.IPFSHash,
			slog.String("tx_hash", txHash),
			"err", err,
		)
		s.failure("ledger")
		if s.Metrics != nil {
			s.Metrics.RecordOrphanedPin()
		}
		s.record(domain.AuditCertPinOrphaned, issuer.ID, cert.IPFSHash, "ledger: "+err.Error())
		return domain.Certificate{}, &LedgerFailure{Hash: cert.IPFSHash, Err: err}
	}
	cert.TxHash = txHash

	// The pin and chain entry are the durable truth. Losing the local
	// record only degrades listings, so persistence failure does not
	// fail the issuance.
	if err := s.Store.Certificates().CreateCertificate(ctx, cert); err != nil {
		log.Error("failed to persist certificate record", "cert_id", cert.ID, "err", err)
		s.record(domain.AuditCertRecordFailed, issuer.ID, cert.ID, "persist: "+err.Error())
	}

	if s.Metrics != nil {
		s.Metrics.RecordIssued(time.Since(started))
	}
	s.record(domain.AuditCertIssued, issuer.ID, cert.ID, "tx "+txHash)
	log.Info("certificate issued",
		"cert_id", cert.ID,
		"ipfs_hash", cert.IPFSHash,
		"tx_hash", txHash,
	)

	return cert, nil
}

// GetCertificate returns the local record by id.
func (s *IssueService) GetCertificate(ctx context.Context, id string) (domain.Certificate, error) {
	return s.Store.Certificates().GetCertificateByID(ctx, id)
}

// ListByIssuer returns the certificates a user has issued.
func (s *IssueService) ListByIssuer(ctx context.Context, issuerID string) ([]domain.Certificate, error) {
	return s.Store.Certificates().ListCertificatesByIssuer(ctx, issuerID)
}

// FetchDocument retrieves the pinned document for a certificate by its
// id or bare hash.
func (s *IssueService) FetchDocument(ctx context.Context, idOrHash string) ([]byte, error) {
	hash := idOrHash

	cert, err := s.Store.Certificates().GetCertificateByID(ctx, idOrHash)
	switch {
	case err == nil:
		hash = cert.IPFSHash
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	return s.Pinner.Fetch(ctx, hash)
}

// ChainEntry reads the on-chain record for a certificate by its id or
// bare hash.
func (s *IssueService) ChainEntry(ctx context.Context, idOrHash string) (ledger.Entry, error) {
	hash := idOrHash

	cert, err := s.Store.Certificates().GetCertificateByID(ctx, idOrHash)
	switch {
	case err == nil:
		hash = cert.IPFSHash
	case !errors.Is(err, store.ErrNotFound):
		return ledger.Entry{}, err
	}

	return s.Ledger.Fetch(ctx, pinning.StripScheme(hash))
}

func (s *IssueService) failure(stage string) {
	if s.Metrics != nil {
		s.Metrics.RecordIssueFailure(stage)
	}
}

func (s *IssueService) record(kind, actorID, subject, detail string) {
	if s.Audit != nil {
		s.Audit.Record(kind, actorID, subject, detail)
	}
}
