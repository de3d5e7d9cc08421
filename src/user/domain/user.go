package domain

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidCredentials is returned for both unknown emails and wrong
// passwords so a caller cannot probe which accounts exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

var ErrNotFound = errors.New("user not found")

// User is an operator or API consumer account. Passwords are stored as
// bcrypt hashes only.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	IsAdmin      bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
