package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"aeroledger/internal/accounts/domain"
	"aeroledger/internal/auth"
)

type memoryRepo struct {
	users map[string]*domain.User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: map[string]*domain.User{}}
}

func (m *memoryRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memoryRepo) Create(_ context.Context, user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *memoryRepo) Count(_ context.Context) (int, error) {
	return len(m.users), nil
}

func seedUser(t *testing.T, repo *memoryRepo, email, password, role string) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &domain.User{
		ID:           "user-" + email,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func newTestService(t *testing.T, repo *memoryRepo) *Service {
	t.Helper()
	service, err := NewService(repo, []byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

func TestLogin_Success(t *testing.T) {
	repo := newMemoryRepo()
	seeded := seedUser(t, repo, "ops@example.com", "s3cret", string(auth.RoleSuperadmin))
	service := newTestService(t, repo)

	user, token, err := service.Login(context.Background(), "ops@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != seeded.ID {
		t.Fatalf("user id = %q, want %q", user.ID, seeded.ID)
	}
	claims, err := auth.ParseJWT(token, []byte("test-secret"))
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != seeded.ID || claims.Role != string(auth.RoleSuperadmin) {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newMemoryRepo()
	seedUser(t, repo, "ops@example.com", "s3cret", string(auth.RoleReader))
	service := newTestService(t, repo)

	if _, _, err := service.Login(context.Background(), "ops@example.com", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	service := newTestService(t, newMemoryRepo())

	if _, _, err := service.Login(context.Background(), "nobody@example.com", "pw"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestBootstrap_OnlyWhenEmpty(t *testing.T) {
	repo := newMemoryRepo()
	service := newTestService(t, repo)

	if err := service.Bootstrap(context.Background(), "admin@example.com", "changeme"); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if count, _ := repo.Count(context.Background()); count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	created, err := repo.FindByEmail(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("find bootstrap user: %v", err)
	}
	if created.Role != string(auth.RoleSuperadmin) {
		t.Fatalf("role = %q, want superadmin", created.Role)
	}

	// A second call against a populated table must not add anyone.
	if err := service.Bootstrap(context.Background(), "other@example.com", "pw"); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if count, _ := repo.Count(context.Background()); count != 1 {
		t.Fatalf("count after second bootstrap = %d, want 1", count)
	}
}

func TestMe(t *testing.T) {
	repo := newMemoryRepo()
	seeded := seedUser(t, repo, "ops@example.com", "s3cret", string(auth.RoleReader))
	service := newTestService(t, repo)

	user, err := service.Me(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if user.Email != "ops@example.com" {
		t.Fatalf("email = %q", user.Email)
	}

	if _, err := service.Me(context.Background(), ""); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}
