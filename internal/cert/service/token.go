package service

import (
	"context"
	"time"

	"github.com/cypheracademy/certvault/internal/cert/audit"
	"github.com/cypheracademy/certvault/internal/cert/cache"
	"github.com/cypheracademy/certvault/internal/cert/domain"
	"github.com/cypheracademy/certvault/pkg/jwtx"
)

type TokenService struct {
	Signer    jwtx.Signer
	Issuer    string
	Audience  []string
	AccessTTL time.Duration

	// Denylist enables logout. Nil when Redis is not configured, in
	// which case Revoke is a no-op and tokens simply age out.
	Denylist *cache.Denylist

	Audit *audit.Recorder
}

// IssueAccessToken mints an access token for the user. Scopes derive
// from the role at issuance time.
func (s *TokenService) IssueAccessToken(user domain.User) (string, int, error) {
	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}

	claims := jwtx.NewAccessClaims(
		user.ID,
		user.Email,
		user.FullName,
		string(user.Role),
		user.Role.Scopes(),
		ttl,
		s.Issuer,
		s.Audience,
		time.Now().UTC(),
	)

	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", 0, err
	}
	return token, int(ttl.Seconds()), nil
}

// Revoke denylists the token until its natural expiry. Without a
// denylist this is a no-op.
func (s *TokenService) Revoke(ctx context.Context, claims jwtx.Claims) error {
	if s.Denylist == nil || claims.ID == "" {
		return nil
	}

	ttl := time.Hour
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
		if ttl <= 0 {
			return nil // already expired
		}
	}

	if err := s.Denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		return err
	}
	if s.Audit != nil {
		s.Audit.Record(domain.AuditUserLoggedOut, claims.Subject, claims.Email, "")
	}
	return nil
}
