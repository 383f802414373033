package domain

import "time"

// ValidationReport is the outcome of checking a certificate hash
// against the ledger. Valid means the chain acknowledges the hash;
// Expired is advisory and never flips Valid to false.
type ValidationReport struct {
	IPFSHash  string
	Valid     bool
	Expired   bool
	ExpiresOn *time.Time

	// Certificate is the local record, when one exists for the hash.
	// Validation of a hash issued elsewhere still succeeds without it.
	Certificate *Certificate

	// CheckedAt records when the chain answered, which matters when the
	// report is served from cache.
	CheckedAt time.Time
}
