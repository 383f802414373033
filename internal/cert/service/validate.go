package service

import (
	"context"
	"errors"
	"time"

	"github.com/cypheracademy/certvault/internal/cert/audit"
	"github.com/cypheracademy/certvault/internal/cert/cache"
	"github.com/cypheracademy/certvault/internal/cert/domain"
	"github.com/cypheracademy/certvault/internal/cert/ledger"
	"github.com/cypheracademy/certvault/internal/cert/metrics"
	"github.com/cypheracademy/certvault/internal/cert/pinning"
	"github.com/cypheracademy/certvault/internal/cert/store"
	"github.com/cypheracademy/certvault/pkg/slogx"
)

type ValidationService struct {
	Store  store.Store
	Ledger ledger.Client

	// Cache is optional. Without it every validation hits the chain.
	Cache   *cache.ValidationCache
	Metrics *metrics.Metrics
	Audit   *audit.Recorder
}

// Validate checks a hash (bare or ipfs:// form) against the chain. The
// chain answer alone decides validity; expiry from the local record is
// advisory and reported alongside. A hash the chain does not know is a
// negative result, not an error.
func (s *ValidationService) Validate(ctx context.Context, hashOrURI string) (domain.ValidationReport, error) {
	log := slogx.FromContext(ctx)

	hash := pinning.StripScheme(hashOrURI)
	if hash == "" {
		return domain.ValidationReport{}, ErrInvalidInput
	}

	if s.Cache != nil {
		cached, err := s.Cache.Get(ctx, hash)
		if err != nil {
			log.Warn("validation cache read failed", "err", err)
		} else if cached != nil {
			s.observe(cached, true)
			return *cached, nil
		}
	}

	ledgerStart := time.Now()
	valid, err := s.Ledger.Validate(ctx, hash)
	if s.Metrics != nil {
		s.Metrics.ObserveLedgerCall("validate", time.Since(ledgerStart))
	}
	if err != nil {
		return domain.ValidationReport{}, err
	}

	report := domain.ValidationReport{
		IPFSHash:  hash,
		Valid:     valid,
		CheckedAt: time.Now().UTC(),
	}

	cert, err := s.Store.Certificates().GetCertificateByHash(ctx, hash)
	switch {
	case err == nil:
		report.Certificate = &cert
		if !cert.ExpiresOn.IsZero() {
			expires := cert.ExpiresOn
			report.ExpiresOn = &expires
		}
		report.Expired = cert.Expired(report.CheckedAt)
	case !errors.Is(err, store.ErrNotFound):
		// A broken local lookup degrades the report, the chain answer
		// still stands.
		log.Warn("local certificate lookup failed", "ipfs_hash", hash, "err", err)
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, &report); err != nil {
			log.Warn("validation cache write failed", "err", err)
		}
	}

	s.observe(&report, false)
	s.recordAudit(&report)
	return report, nil
}

func (s *ValidationService) observe(report *domain.ValidationReport, fromCache bool) {
	if s.Metrics == nil {
		return
	}
	outcome := "invalid"
	if report.Valid {
		outcome = "valid"
		if report.Expired {
			outcome = "valid_expired"
		}
	}
	s.Metrics.RecordValidation(outcome, fromCache)
}

func (s *ValidationService) recordAudit(report *domain.ValidationReport) {
	if s.Audit == nil {
		return
	}
	detail := "invalid"
	if report.Valid {
		detail = "valid"
		if report.Expired {
			detail = "valid but expired"
		}
	}
	s.Audit.Record(domain.AuditCertValidated, "", report.IPFSHash, detail)
}
