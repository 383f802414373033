package certsdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// expiryBuffer is subtracted from the token lifetime so a request
// started just before expiry does not arrive with a dead token.
const expiryBuffer = 30 * time.Second

// Session is an authenticated session. The service issues no refresh
// tokens, so an expired session cannot renew itself; methods return
// ErrSessionExpired and the caller logs in again.
type Session struct {
	client *SDKClient

	mu          sync.RWMutex
	accessToken string
	expiresAt   time.Time
}

func newSession(client *SDKClient, token *TokenResponse) *Session {
	return &Session{
		client:      client,
		accessToken: token.AccessToken,
		expiresAt:   time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - expiryBuffer),
	}
}

// AccessToken returns the raw bearer token without checking expiry.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Session) token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !time.Now().Before(s.expiresAt) {
		return "", ErrSessionExpired
	}
	return s.accessToken, nil
}

func (s *Session) doJSON(
	ctx context.Context,
	method, path string,
	body any,
	target any,
	expectedStatus int,
) error {
	token, err := s.token()
	if err != nil {
		return err
	}
	resp, err := s.client.send(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, expectedStatus)
}

// UserInfo returns the profile of the account this session belongs to.
func (s *Session) UserInfo(ctx context.Context) (*UserResponse, error) {
	var user UserResponse
	if err := s.doJSON(ctx, http.MethodGet, "/v1/userinfo", nil, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes the account's display name and returns the
// refreshed profile. The session token keeps the old name until the
// next login.
func (s *Session) UpdateProfile(ctx context.Context, fullName string) (*UserResponse, error) {
	var user UserResponse
	err := s.doJSON(ctx, http.MethodPatch, "/v1/userinfo", UpdateUserInfoRequest{
		FullName: fullName,
	}, &user, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout revokes the session's token server-side. The Session is
// unusable afterwards.
func (s *Session) Logout(ctx context.Context) error {
	token, err := s.token()
	if err != nil {
		return err
	}
	resp, err := s.client.send(ctx, http.MethodPost, "/v1/auth/logout", token, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// IssueCertificate pins the certificate document, records it on chain,
// and returns the stored certificate. Requires the certs:issue scope.
func (s *Session) IssueCertificate(ctx context.Context, req IssueCertificateRequest) (*CertificateResponse, error) {
	var cert CertificateResponse
	if err := s.doJSON(ctx, http.MethodPost, "/v1/certificates", req, &cert, http.StatusCreated); err != nil {
		return nil, err
	}
	return &cert, nil
}

// ListCertificates returns the certificates issued by this account,
// newest first.
func (s *Session) ListCertificates(ctx context.Context) (*CertificateListResponse, error) {
	var list CertificateListResponse
	if err := s.doJSON(ctx, http.MethodGet, "/v1/certificates", nil, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetCertificate returns the local record for a certificate ID.
func (s *Session) GetCertificate(ctx context.Context, id string) (*CertificateResponse, error) {
	var cert CertificateResponse
	path := "/v1/certificates/" + url.PathEscape(id)
	if err := s.doJSON(ctx, http.MethodGet, path, nil, &cert, http.StatusOK); err != nil {
		return nil, err
	}
	return &cert, nil
}

// GetDocument fetches the pinned JSON document for a certificate ID or
// bare IPFS hash.
func (s *Session) GetDocument(ctx context.Context, idOrHash string) ([]byte, error) {
	token, err := s.token()
	if err != nil {
		return nil, err
	}

	path := "/v1/certificates/" + url.PathEscape(idOrHash) + "/document"
	resp, err := s.client.send(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp, body)
	}
	return body, nil
}

// ChainEntry reads the on-chain record for a certificate ID or bare
// IPFS hash, bypassing the local database.
func (s *Session) ChainEntry(ctx context.Context, idOrHash string) (*ChainEntryResponse, error) {
	var entry ChainEntryResponse
	path := "/v1/certificates/" + url.PathEscape(idOrHash) + "/chain"
	if err := s.doJSON(ctx, http.MethodGet, path, nil, &entry, http.StatusOK); err != nil {
		return nil, err
	}
	return &entry, nil
}

// AuditEvents lists recent audit events, newest first. Requires the
// audit:read scope. A limit of 0 uses the server default.
func (s *Session) AuditEvents(ctx context.Context, limit int) (*AuditEventListResponse, error) {
	path := "/v1/audit"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var list AuditEventListResponse
	if err := s.doJSON(ctx, http.MethodGet, path, nil, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return &list, nil
}
