package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	crondomain "github.com/blockhaven/backend/src/cron/domain"
	cronusecase "github.com/blockhaven/backend/src/cron/usecase"
	"github.com/blockhaven/backend/src/exchange/domain"
	"github.com/blockhaven/backend/src/exchange/usecase"
	"github.com/blockhaven/backend/src/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type stubProvider struct{}

func (stubProvider) CreateExchange(context.Context, domain.CreateExchangeRequest) (*domain.ProviderExchange, error) {
	return nil, nil
}
func (stubProvider) GetExchangeStatus(context.Context, string) (*domain.ProviderStatus, error) {
	return nil, nil
}
func (stubProvider) ListCurrencies(context.Context) ([]domain.ProviderCurrency, error) {
	return nil, nil
}
func (stubProvider) ListPairs(context.Context, domain.PairFilter) ([]domain.ProviderPair, error) {
	return nil, nil
}
func (stubProvider) GetEstimatedAmount(context.Context, domain.EstimateRequest) (*domain.Estimate, error) {
	return nil, nil
}
func (stubProvider) GetMinAmount(context.Context, domain.EstimateRequest) (*domain.MinAmount, error) {
	return nil, nil
}

type stubCurrencyRepo struct{}

func (stubCurrencyRepo) ListAll(context.Context) ([]domain.Currency, error)   { return nil, nil }
func (stubCurrencyRepo) UpsertBatch(context.Context, []domain.Currency) error { return nil }

type stubPairRepo struct{}

func (stubPairRepo) ListAll(context.Context) ([]domain.Pair, error)   { return nil, nil }
func (stubPairRepo) InsertBatch(context.Context, []domain.Pair) error { return nil }
func (stubPairRepo) UpdateFlags(context.Context, []domain.Pair) error { return nil }
func (stubPairRepo) DistinctCurrencyKeys(context.Context) ([]domain.CurrencyRef, error) {
	return nil, nil
}
func (stubPairRepo) EnhancedPairs(context.Context) ([]domain.EnhancedPair, error) {
	return nil, nil
}

// countingExchangeRepo counts pending-id listings so tests can tell whether
// the status-refresh job actually ran.
type countingExchangeRepo struct {
	mu      sync.Mutex
	pending int
}

func (r *countingExchangeRepo) pendingCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

func (r *countingExchangeRepo) Create(context.Context, *domain.Exchange) error { return nil }
func (r *countingExchangeRepo) GetByID(context.Context, uint) (*domain.Exchange, error) {
	return nil, domain.ErrNotFound
}
func (r *countingExchangeRepo) GetByTransactionID(context.Context, string) (*domain.Exchange, error) {
	return nil, domain.ErrNotFound
}
func (r *countingExchangeRepo) ListByUser(context.Context, *string) ([]domain.Exchange, error) {
	return nil, nil
}
func (r *countingExchangeRepo) ListPendingTransactionIDs(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending++
	return nil, nil
}
func (r *countingExchangeRepo) UpdateStatus(context.Context, string, domain.TransactionStatus, *decimal.Decimal) error {
	return nil
}

type fakeLockRepo struct {
	mu       sync.Mutex
	held     bool
	acquires int
	releases int
	maxAges  []time.Duration
}

func (f *fakeLockRepo) Acquire(_ context.Context, _ crondomain.JobLock, maxAge time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquires++
	f.maxAges = append(f.maxAges, maxAge)
	if f.held {
		return crondomain.ErrLockHeld
	}
	return nil
}

func (f *fakeLockRepo) Release(context.Context, crondomain.JobLock) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases++
	return nil
}

func (f *fakeLockRepo) acquireCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.acquires
}

func (f *fakeLockRepo) releaseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.releases
}

func (f *fakeLockRepo) maxAgesSeen() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Duration, len(f.maxAges))
	copy(out, f.maxAges)
	return out
}

func newExchangeService(exchanges *countingExchangeRepo) *usecase.Service {
	return usecase.NewService(stubProvider{}, stubCurrencyRepo{}, stubPairRepo{}, exchanges, logger.New("test"))
}

func TestSchedulerRunsJobAndReleasesLock(t *testing.T) {
	locks := &fakeLockRepo{}
	exchanges := &countingExchangeRepo{}
	sched := cronusecase.NewScheduler(newExchangeService(exchanges), locks, logger.New("test"), 0, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sched.Start(ctx)

	assert.Eventually(t, func() bool { return locks.releaseCount() > 0 }, time.Second, 5*time.Millisecond)
	cancel()

	assert.Positive(t, exchanges.pendingCalls())
	// Every acquire carries a takeover window so a crashed runner's lock row
	// cannot block the job forever, and short intervals stay on the floor: a
	// run is allowed to outlive a 5ms tick without being reaped mid-flight.
	ages := locks.maxAgesSeen()
	assert.NotEmpty(t, ages)
	for _, age := range ages {
		assert.Equal(t, 10*time.Minute, age)
	}
}

func TestSchedulerSkipsWhenLockHeldElsewhere(t *testing.T) {
	locks := &fakeLockRepo{held: true}
	exchanges := &countingExchangeRepo{}
	sched := cronusecase.NewScheduler(newExchangeService(exchanges), locks, logger.New("test"), 0, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sched.Start(ctx)

	assert.Eventually(t, func() bool { return locks.acquireCount() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	assert.Zero(t, exchanges.pendingCalls())
	assert.Zero(t, locks.releaseCount())
}
