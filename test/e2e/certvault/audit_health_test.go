package certvault_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cypheracademy/certvault/pkg/certsdk"
)

func TestAuditAccessControl(t *testing.T) {
	client := setupService(t)
	adminSession := registerAndLogin(t, client, adminEmail)
	issuerSession := registerAndLogin(t, client, issuerEmail)
	ctx := context.Background()

	t.Run("issuers cannot read the audit log", func(t *testing.T) {
		_, err := issuerSession.AuditEvents(ctx, 0)
		var apiErr *certsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	})

	t.Run("admins can", func(t *testing.T) {
		_, err := adminSession.AuditEvents(ctx, 10)
		require.NoError(t, err)
	})
}

func TestScopeEnforcement(t *testing.T) {
	client := setupService(t)
	ctx := context.Background()

	// A session with no token at all must be turned away from every
	// authenticated endpoint.
	anon := client.NewSessionFromToken("", 3600)

	_, err := anon.ListCertificates(ctx)
	require.True(t, certsdk.IsUnauthorized(err))

	_, err = anon.IssueCertificate(ctx, certsdk.IssueCertificateRequest{
		FirstName: "No", LastName: "Body", Organization: "Nowhere",
		CourseName: "Nothing", RecipientEmail: "nobody@example.com",
		AssignedDate: "2024-01-01", DurationYears: 1,
	})
	require.True(t, certsdk.IsUnauthorized(err))
}

func TestHealthEndpoints(t *testing.T) {
	client := setupService(t)
	ctx := context.Background()

	live, err := client.Livez(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "e2e", live.Version)

	ready, err := client.Readyz(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Ledger)
	require.Empty(t, ready.Checks.Cache, "cache check should be skipped when not configured")
}
