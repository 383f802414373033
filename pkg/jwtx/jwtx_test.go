package jwtx_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cypheracademy/certvault/pkg/jwtx"
)

func newTestSigner(t *testing.T) *jwtx.EdDSASigner {
	t.Helper()
	signer, err := jwtx.NewEphemeralSignerEdDSA()
	require.NoError(t, err)
	return signer
}

func TestSignAndVerify(t *testing.T) {
	signer := newTestSigner(t)
	verifier := jwtx.NewVerifierEdDSA(signer.PublicKey(), "certvault", []string{"certvault-api"})

	claims := jwtx.NewAccessClaims(
		"user-01", "ada@example.org", "Ada Lovelace", "issuer",
		[]string{"certs:issue", "certs:read"},
		time.Hour, "certvault", []string{"certvault-api"},
		time.Now().UTC(),
	)

	token, err := signer.Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-01", got.Subject)
	require.Equal(t, "ada@example.org", got.Email)
	require.Equal(t, "Ada Lovelace", got.FullName)
	require.Equal(t, "issuer", got.Role)
	require.True(t, got.HasScope("certs:issue"))
	require.False(t, got.HasScope("certs:admin"))
	require.NotEmpty(t, got.ID, "jti should be populated")
}

func TestVerifyFailures(t *testing.T) {
	signer := newTestSigner(t)
	verifier := jwtx.NewVerifierEdDSA(signer.PublicKey(), "certvault", nil)

	t.Run("malformed token", func(t *testing.T) {
		_, err := verifier.Verify("not.a.jwt")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("wrong key", func(t *testing.T) {
		other := newTestSigner(t)
		claims := jwtx.NewAccessClaims(
			"user-01", "", "", "issuer", nil,
			time.Hour, "certvault", nil, time.Now().UTC(),
		)
		token, err := other.Sign(claims)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := jwtx.NewAccessClaims(
			"user-01", "", "", "issuer", nil,
			time.Hour, "certvault", nil,
			time.Now().UTC().Add(-2*time.Hour),
		)
		token, err := signer.Sign(claims)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		claims := jwtx.NewAccessClaims(
			"user-01", "", "", "issuer", nil,
			time.Hour, "someone-else", nil, time.Now().UTC(),
		)
		token, err := signer.Sign(claims)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("audience mismatch", func(t *testing.T) {
		audVerifier := jwtx.NewVerifierEdDSA(signer.PublicKey(), "", []string{"certvault-api"})
		claims := jwtx.NewAccessClaims(
			"user-01", "", "", "issuer", nil,
			time.Hour, "certvault", []string{"other-api"}, time.Now().UTC(),
		)
		token, err := signer.Sign(claims)
		require.NoError(t, err)

		_, err = audVerifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrAudience)
	})
}

func TestSignerPEMRoundTrip(t *testing.T) {
	signer := newTestSigner(t)

	pemKey, err := signer.MarshalPEM()
	require.NoError(t, err)

	loaded, err := jwtx.NewSignerEdDSA(pemKey)
	require.NoError(t, err)

	claims := jwtx.NewAccessClaims(
		"user-01", "", "", "admin", nil,
		time.Hour, "certvault", nil, time.Now().UTC(),
	)
	token, err := loaded.Sign(claims)
	require.NoError(t, err)

	verifier := jwtx.NewVerifierEdDSA(signer.PublicKey(), "certvault", nil)
	_, err = verifier.Verify(token)
	require.NoError(t, err, "key loaded from PEM should sign tokens the original key verifies")
}
