package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"aeroledger/internal/accounts/domain"
	"aeroledger/internal/auth"
)

// Service implements account authentication flows.
type Service struct {
	repo       domain.Repository
	secret     []byte
	sessionTTL time.Duration
}

// NewService constructs the accounts service.
func NewService(repo domain.Repository, secret []byte, sessionTTL time.Duration) (*Service, error) {
	if repo == nil {
		return nil, errors.New("accounts service: nil repository")
	}
	if len(secret) == 0 {
		return nil, errors.New("accounts service: empty signing secret")
	}
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	return &Service{repo: repo, secret: secret, sessionTTL: sessionTTL}, nil
}

// SessionTTL returns the configured session lifetime.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", auth.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("accounts service: lookup: %w", err)
	}
	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, "", auth.ErrInvalidCredentials
	}
	role, ok := auth.NormalizeRole(user.Role)
	if !ok {
		return nil, "", fmt.Errorf("accounts service: unknown role %q", user.Role)
	}
	token, err := auth.IssueToken(s.secret, user.ID, user.Email, role, s.sessionTTL)
	if err != nil {
		return nil, "", fmt.Errorf("accounts service: issue token: %w", err)
	}
	return user, token, nil
}

// Me resolves the account behind an authenticated request.
func (s *Service) Me(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, auth.ErrUnauthorized
	}
	return s.repo.FindByID(ctx, userID)
}

// Bootstrap creates an initial superadmin when the user table is empty.
// It is a no-op once any account exists.
func (s *Service) Bootstrap(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("accounts service: count users: %w", err)
	}
	if count > 0 {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("accounts service: hash password: %w", err)
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		DisplayName:  "Administrator",
		Role:         string(auth.RoleSuperadmin),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return fmt.Errorf("accounts service: create bootstrap user: %w", err)
	}
	return nil
}
