package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("service fee not found")

// FeeType says how Amount is applied to an exchange.
type FeeType string

const (
	FeePercentage FeeType = "percentage"
	FeeFixed      FeeType = "fixed"
)

// ServiceFee is the commission applied on top of provider rates. At most one
// fee is active at a time; activating a fee deactivates the others.
type ServiceFee struct {
	ID        uint
	Name      string
	FeeType   FeeType
	Amount    decimal.Decimal
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository interface {
	GetActive(ctx context.Context) (*ServiceFee, error)
	List(ctx context.Context) ([]ServiceFee, error)
	Create(ctx context.Context, f *ServiceFee) error
	Update(ctx context.Context, f *ServiceFee) error
	Delete(ctx context.Context, id uint) error
	Activate(ctx context.Context, id uint) error
}
