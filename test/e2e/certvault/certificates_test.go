package certvault_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cypheracademy/certvault/pkg/certsdk"
)

func TestIssuanceWorkflow(t *testing.T) {
	client := setupService(t)
	session := registerAndLogin(t, client, issuerEmail)
	ctx := context.Background()

	cert, err := session.IssueCertificate(ctx, certsdk.IssueCertificateRequest{
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Organization:   "Cypher Academy",
		CourseName:     "Analytical Engines 101",
		RecipientEmail: "ada@example.com",
		AssignedDate:   "2024-01-01",
		DurationYears:  1,
	})
	require.NoError(t, err)

	t.Run("issued certificate carries the full provenance", func(t *testing.T) {
		require.NotEmpty(t, cert.ID)
		require.Equal(t, "Ada Lovelace", cert.RecipientName)
		require.Equal(t, "Cypher Academy", cert.Organization)
		require.Equal(t, "2024-01-01", cert.AssignedOn)
		require.Equal(t, "2025-01-01", cert.ExpiresOn)
		require.NotEmpty(t, cert.IPFSHash)
		require.Equal(t, "ipfs://"+cert.IPFSHash, cert.IPFSURI)
		require.NotEmpty(t, cert.TxHash)
	})

	t.Run("list and get agree with the issued record", func(t *testing.T) {
		list, err := session.ListCertificates(ctx)
		require.NoError(t, err)
		require.Len(t, list.Certificates, 1)
		require.Equal(t, cert.ID, list.Certificates[0].ID)

		got, err := session.GetCertificate(ctx, cert.ID)
		require.NoError(t, err)
		require.Equal(t, cert.IPFSHash, got.IPFSHash)
	})

	t.Run("pinned document matches the certificate", func(t *testing.T) {
		raw, err := session.GetDocument(ctx, cert.ID)
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(raw, &doc))
		require.Equal(t, cert.ID, doc["certificate_id"])
		require.Equal(t, "Ada Lovelace", doc["recipient_name"])
		require.Equal(t, "Cypher Academy", doc["organization"])
		require.Equal(t, "2025-01-01", doc["expires_on"])
		require.Equal(t, issuerEmail, doc["issuer_email"])
	})

	t.Run("chain entry matches the certificate", func(t *testing.T) {
		entry, err := session.ChainEntry(ctx, cert.ID)
		require.NoError(t, err)
		require.Equal(t, "Ada Lovelace", entry.RecipientName)
		require.Equal(t, cert.IPFSHash, entry.IPFSHash)
	})

	t.Run("unknown certificate id is a typed 404", func(t *testing.T) {
		_, err := session.GetCertificate(ctx, "no-such-id")
		require.True(t, certsdk.IsNotFound(err))
	})
}

func TestIssuanceValidation(t *testing.T) {
	client := setupService(t)
	session := registerAndLogin(t, client, issuerEmail)
	ctx := context.Background()

	valid := certsdk.IssueCertificateRequest{
		FirstName:      "Grace",
		LastName:       "Hopper",
		Organization:   "Cypher Academy",
		CourseName:     "Compilers",
		RecipientEmail: "grace@example.com",
		AssignedDate:   "2024-01-01",
		DurationYears:  1,
	}

	cases := []struct {
		name   string
		mutate func(*certsdk.IssueCertificateRequest)
	}{
		{"missing first name", func(r *certsdk.IssueCertificateRequest) { r.FirstName = "" }},
		{"missing last name", func(r *certsdk.IssueCertificateRequest) { r.LastName = "" }},
		{"missing organization", func(r *certsdk.IssueCertificateRequest) { r.Organization = "" }},
		{"missing course", func(r *certsdk.IssueCertificateRequest) { r.CourseName = "" }},
		{"missing recipient email", func(r *certsdk.IssueCertificateRequest) { r.RecipientEmail = "" }},
		{"negative duration", func(r *certsdk.IssueCertificateRequest) { r.DurationYears = -1 }},
		{"malformed date", func(r *certsdk.IssueCertificateRequest) { r.AssignedDate = "January 1st" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			_, err := session.IssueCertificate(ctx, req)
			var apiErr *certsdk.APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, "invalid_request", apiErr.Code)
		})
	}
}

func TestValidationWorkflow(t *testing.T) {
	client := setupService(t)
	session := registerAndLogin(t, client, issuerEmail)
	ctx := context.Background()

	cert, err := session.IssueCertificate(ctx, certsdk.IssueCertificateRequest{
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Organization:   "Cypher Academy",
		CourseName:     "Analytical Engines 101",
		RecipientEmail: "ada@example.com",
		AssignedDate:   "2024-01-01",
		DurationYears:  10,
	})
	require.NoError(t, err)

	t.Run("issued hash validates anonymously", func(t *testing.T) {
		report, err := client.Validate(ctx, cert.IPFSHash)
		require.NoError(t, err)
		require.True(t, report.Valid)
		require.NotNil(t, report.Certificate)
		require.Equal(t, cert.ID, report.Certificate.ID)
	})

	t.Run("forged hash reports invalid, not an error", func(t *testing.T) {
		report, err := client.Validate(ctx, "QmForgedForgedForged")
		require.NoError(t, err)
		require.False(t, report.Valid)
		require.Nil(t, report.Certificate)
	})

	t.Run("expired certificate stays valid with the expiry flagged", func(t *testing.T) {
		old, err := session.IssueCertificate(ctx, certsdk.IssueCertificateRequest{
			FirstName:      "Charles",
			LastName:       "Babbage",
			Organization:   "Cypher Academy",
			CourseName:     "Difference Engines",
			RecipientEmail: "charles@example.com",
			AssignedDate:   "2001-01-01",
			DurationYears:  1,
		})
		require.NoError(t, err)

		report, err := client.Validate(ctx, old.IPFSHash)
		require.NoError(t, err)
		require.True(t, report.Valid, "expiry must not flip chain validity")
		require.True(t, report.Expired)
		require.Equal(t, "2002-01-01", report.ExpiresOn)
	})

	t.Run("certificate without duration never expires", func(t *testing.T) {
		forever, err := session.IssueCertificate(ctx, certsdk.IssueCertificateRequest{
			FirstName:      "Alan",
			LastName:       "Turing",
			Organization:   "Cypher Academy",
			CourseName:     "Computability",
			RecipientEmail: "alan@example.com",
			AssignedDate:   "2001-01-01",
		})
		require.NoError(t, err)
		require.Empty(t, forever.ExpiresOn)

		report, err := client.Validate(ctx, forever.IPFSHash)
		require.NoError(t, err)
		require.True(t, report.Valid)
		require.False(t, report.Expired)
		require.Empty(t, report.ExpiresOn)
	})
}
