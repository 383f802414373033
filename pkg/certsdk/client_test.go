package certsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newStubServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Password != "correct-horse" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(ErrorResponse{
				Error:            "invalid_credentials",
				ErrorDescription: "Email or password is incorrect.",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(TokenResponse{
			AccessToken: "test-token",
			TokenType:   "Bearer",
			ExpiresIn:   1800,
		})
	})

	mux.HandleFunc("GET /v1/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "invalid_token"})
			return
		}
		_ = json.NewEncoder(w).Encode(UserResponse{
			ID: "user-1", Email: "issuer@example.com", Role: "issuer",
		})
	})

	mux.HandleFunc("POST /v1/certificates", func(w http.ResponseWriter, r *http.Request) {
		var req IssueCertificateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(CertificateResponse{
			ID:            "cert-1",
			RecipientName: req.FirstName + " " + req.LastName,
			IPFSHash:      "QmHash",
			TxHash:        "0xdeadbeef",
		})
	})

	mux.HandleFunc("GET /v1/validate/{hash}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ValidationResponse{
			IPFSHash:  r.PathValue("hash"),
			Valid:     r.PathValue("hash") == "QmKnown",
			CheckedAt: time.Now().UTC(),
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginAndAuthenticatedCalls(t *testing.T) {
	srv := newStubServer(t)
	client := NewSDKClient(srv.URL)
	ctx := context.Background()

	session, err := client.Login(ctx, "issuer@example.com", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, "test-token", session.AccessToken())

	user, err := session.UserInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, "issuer@example.com", user.Email)

	cert, err := session.IssueCertificate(ctx, IssueCertificateRequest{
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Organization:   "Cypher Academy",
		CourseName:     "Analytical Engines 101",
		RecipientEmail: "ada@example.com",
		AssignedDate:   "2024-01-01",
		DurationYears:  1,
	})
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", cert.RecipientName)
	require.Equal(t, "0xdeadbeef", cert.TxHash)
}

func TestLoginFailureIsTyped(t *testing.T) {
	srv := newStubServer(t)
	client := NewSDKClient(srv.URL)

	_, err := client.Login(context.Background(), "issuer@example.com", "wrong")
	require.Error(t, err)
	require.True(t, IsUnauthorized(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "invalid_credentials", apiErr.Code)
}

func TestValidateNeedsNoSession(t *testing.T) {
	srv := newStubServer(t)
	client := NewSDKClient(srv.URL)
	ctx := context.Background()

	report, err := client.Validate(ctx, "QmKnown")
	require.NoError(t, err)
	require.True(t, report.Valid)

	report, err = client.Validate(ctx, "QmForged")
	require.NoError(t, err)
	require.False(t, report.Valid)
}

func TestExpiredSessionDoesNotCallServer(t *testing.T) {
	srv := newStubServer(t)
	client := NewSDKClient(srv.URL)

	session := client.NewSessionFromToken("stale-token", 0)
	_, err := session.UserInfo(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)
}
