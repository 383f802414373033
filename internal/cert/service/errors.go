package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidInput       = errors.New("invalid_input")

	// ErrPinFailed means the document never reached the pinning
	// service. Nothing was written anywhere, the request can simply be
	// retried.
	ErrPinFailed = errors.New("pin_failed")

	// ErrLedgerFailed means the document is pinned but the chain did
	// not record it. The pin is orphaned; retrying produces a fresh pin
	// for the same content.
	ErrLedgerFailed = errors.New("ledger_failed")
)

// LedgerFailure is the partial-success outcome of issuance: the
// document reached the content store under Hash, then the chain
// refused or never confirmed the transaction. Callers must surface the
// hash so the orphaned pin can be reconciled. Matches ErrLedgerFailed
// under errors.Is.
type LedgerFailure struct {
	Hash string
	Err  error
}

func (e *LedgerFailure) Error() string {
	return fmt.Sprintf("ledger_failed: document pinned as %s but not recorded on chain: %v", e.Hash, e.Err)
}

func (e *LedgerFailure) Unwrap() error { return e.Err }

func (e *LedgerFailure) Is(target error) bool { return target == ErrLedgerFailed }
