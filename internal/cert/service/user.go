package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/cypheracademy/certvault/internal/cert/audit"
	"github.com/cypheracademy/certvault/internal/cert/domain"
	"github.com/cypheracademy/certvault/internal/cert/store"
	"github.com/cypheracademy/certvault/pkg/cryptox"
	"github.com/cypheracademy/certvault/pkg/idx"
	"github.com/cypheracademy/certvault/pkg/slogx"
)

const minPasswordLength = 8

type UserService struct {
	Store store.Store
	Audit *audit.Recorder
}

// Register creates an account. The first account in an empty store is
// promoted to admin regardless of the requested role, so a fresh
// deployment always has an administrator.
func (s *UserService) Register(ctx context.Context, email, fullName, password string, role domain.Role) (domain.User, error) {
	log := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	fullName = strings.TrimSpace(fullName)

	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, ErrInvalidInput
	}
	if fullName == "" || len(password) < minPasswordLength {
		return domain.User{}, ErrInvalidInput
	}
	if role == "" {
		role = domain.RoleIssuer
	}
	if !role.Valid() {
		return domain.User{}, ErrInvalidInput
	}

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if empty {
		role = domain.RoleAdmin
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		Role:         role,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	log.Info("user registered", slog.String("user_id", user.ID), slog.String("role", string(user.Role)))
	s.audit(domain.AuditUserRegistered, user.ID, user.Email, string(user.Role))
	return user, nil
}

// Authenticate verifies credentials for login. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn time hashing anyway so the two failure paths are
			// not separable by timing.
			_, _ = cryptox.HashPassword(password)
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	s.audit(domain.AuditUserLoggedIn, user.ID, user.Email, "")
	return user, nil
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// UpdateFullName changes the display name for an account.
func (s *UserService) UpdateFullName(ctx context.Context, userID, fullName string) error {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return ErrInvalidInput
	}
	return s.Store.Users().UpdateFullName(ctx, userID, fullName)
}

func (s *UserService) audit(kind, actorID, subject, detail string) {
	if s.Audit != nil {
		s.Audit.Record(kind, actorID, subject, detail)
	}
}
