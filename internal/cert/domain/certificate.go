package domain

import (
	"strings"
	"time"
)

// Certificate is the locally persisted record of an issued certificate.
// The pinned document and the on-chain entry remain the sources of
// truth, this record exists for listing and lookup without paying for
// gateway or RPC round trips.
type Certificate struct {
	ID             string
	FirstName      string
	LastName       string
	Organization   string
	CourseName     string
	RecipientEmail string
	TemplateID     string
	AssignedOn     time.Time

	// ExpiresOn is zero when the certificate was issued without a
	// duration, in which case it never expires.
	ExpiresOn     time.Time
	DurationYears int

	// IPFSHash is the bare content hash, without the ipfs:// scheme.
	IPFSHash string

	// TxHash is the hash of the ledger transaction that recorded the
	// certificate on chain.
	TxHash string

	IssuerID  string
	CreatedAt time.Time
}

// RecipientName is the display name recorded on chain.
func (c *Certificate) RecipientName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CertificateData is the document pinned to IPFS. Field names follow
// the published document format, which validators elsewhere read, so
// they must not change.
type CertificateData struct {
	CertificateID  string `json:"certificate_id"`
	RecipientName  string `json:"recipient_name"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Organization   string `json:"organization"`
	CourseName     string `json:"course_name"`
	AssignedOn     string `json:"assigned_on"`          // RFC 3339 date
	ExpiresOn      string `json:"expires_on,omitempty"` // RFC 3339 date
	DurationYears  int    `json:"duration_years,omitempty"`
	RecipientEmail string `json:"recipient_email,omitempty"`
	TemplateID     string `json:"template_id,omitempty"`
	IssuerEmail    string `json:"issuer_email,omitempty"`
}

// ExpiryDate derives the expiry from the assignment date plus a
// duration in whole years, normalised to midnight UTC. A certificate
// assigned 2024-01-01 for one year expires 2025-01-01T00:00:00Z.
func ExpiryDate(assigned time.Time, years int) time.Time {
	assigned = assigned.UTC()
	day := time.Date(assigned.Year(), assigned.Month(), assigned.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(years, 0, 0)
}

// Expired reports whether the certificate is past its expiry at the
// given instant. Certificates without an expiry never expire. Expiry
// does not invalidate the on-chain record, it is reported alongside
// validity.
func (c *Certificate) Expired(now time.Time) bool {
	if c.ExpiresOn.IsZero() {
		return false
	}
	return now.UTC().After(c.ExpiresOn)
}

// Data builds the pinnable document for the certificate.
func (c *Certificate) Data(issuerEmail string) CertificateData {
	data := CertificateData{
		CertificateID:  c.ID,
		RecipientName:  c.RecipientName(),
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Organization:   c.Organization,
		CourseName:     c.CourseName,
		AssignedOn:     c.AssignedOn.UTC().Format(time.DateOnly),
		DurationYears:  c.DurationYears,
		RecipientEmail: c.RecipientEmail,
		TemplateID:     c.TemplateID,
		IssuerEmail:    issuerEmail,
	}
	if !c.ExpiresOn.IsZero() {
		data.ExpiresOn = c.ExpiresOn.UTC().Format(time.DateOnly)
	}
	return data
}
