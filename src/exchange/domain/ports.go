package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Provider is the external exchange-aggregator port.
type Provider interface {
	CreateExchange(ctx context.Context, req CreateExchangeRequest) (*ProviderExchange, error)
	GetExchangeStatus(ctx context.Context, transactionID string) (*ProviderStatus, error)
	ListCurrencies(ctx context.Context) ([]ProviderCurrency, error)
	ListPairs(ctx context.Context, filter PairFilter) ([]ProviderPair, error)
	GetEstimatedAmount(ctx context.Context, req EstimateRequest) (*Estimate, error)
	GetMinAmount(ctx context.Context, req EstimateRequest) (*MinAmount, error)
}

// CurrencyRepository persistence port. Mutated only by the catalog
// synchronizer.
type CurrencyRepository interface {
	ListAll(ctx context.Context) ([]Currency, error)
	UpsertBatch(ctx context.Context, currencies []Currency) error
}

// PairRepository persistence port. Mutated only by the catalog synchronizer,
// in batches.
type PairRepository interface {
	ListAll(ctx context.Context) ([]Pair, error)
	InsertBatch(ctx context.Context, pairs []Pair) error
	UpdateFlags(ctx context.Context, pairs []Pair) error
	DistinctCurrencyKeys(ctx context.Context) ([]CurrencyRef, error)
	EnhancedPairs(ctx context.Context) ([]EnhancedPair, error)
}

// ExchangeRepository persistence port for transaction records.
type ExchangeRepository interface {
	Create(ctx context.Context, e *Exchange) error
	GetByID(ctx context.Context, id uint) (*Exchange, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*Exchange, error)
	ListByUser(ctx context.Context, userID *string) ([]Exchange, error)
	ListPendingTransactionIDs(ctx context.Context) ([]string, error)
	UpdateStatus(ctx context.Context, transactionID string, status TransactionStatus, toAmount *decimal.Decimal) error
}
