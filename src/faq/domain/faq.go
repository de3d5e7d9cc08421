package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("faq entry not found")

// FAQ is one help-center entry. OrderIndex controls display order; inactive
// entries are hidden from the public listing but kept for editing.
type FAQ struct {
	ID         uint
	Question   string
	Answer     string
	OrderIndex int
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Repository interface {
	ListActive(ctx context.Context) ([]FAQ, error)
	ListAll(ctx context.Context) ([]FAQ, error)
	Create(ctx context.Context, f *FAQ) error
	Update(ctx context.Context, f *FAQ) error
	Delete(ctx context.Context, id uint) error
}
