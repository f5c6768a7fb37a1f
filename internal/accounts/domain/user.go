package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports a missing user.
var ErrNotFound = errors.New("accounts: user not found")

// User is an operator account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository persists user accounts.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) error
	Count(ctx context.Context) (int, error)
}
