package usecase_test

import (
	"context"
	"errors"

	"github.com/blockhaven/backend/src/exchange/domain"
	"github.com/shopspring/decimal"
)

type fakeProvider struct {
	currencies    []domain.ProviderCurrency
	currenciesErr error
	pairs         []domain.ProviderPair
	pairsErr      error

	createFn func(domain.CreateExchangeRequest) (*domain.ProviderExchange, error)
	statusFn func(string) (*domain.ProviderStatus, error)
}

func (f *fakeProvider) CreateExchange(_ context.Context, req domain.CreateExchangeRequest) (*domain.ProviderExchange, error) {
	if f.createFn == nil {
		return nil, errors.New("createFn not set")
	}
	return f.createFn(req)
}

func (f *fakeProvider) GetExchangeStatus(_ context.Context, transactionID string) (*domain.ProviderStatus, error) {
	if f.statusFn == nil {
		return nil, errors.New("statusFn not set")
	}
	return f.statusFn(transactionID)
}

func (f *fakeProvider) ListCurrencies(context.Context) ([]domain.ProviderCurrency, error) {
	return f.currencies, f.currenciesErr
}

func (f *fakeProvider) ListPairs(context.Context, domain.PairFilter) ([]domain.ProviderPair, error) {
	return f.pairs, f.pairsErr
}

func (f *fakeProvider) GetEstimatedAmount(context.Context, domain.EstimateRequest) (*domain.Estimate, error) {
	return &domain.Estimate{}, nil
}

func (f *fakeProvider) GetMinAmount(context.Context, domain.EstimateRequest) (*domain.MinAmount, error) {
	return &domain.MinAmount{}, nil
}

type fakeCurrencyRepo struct {
	rows    map[string]domain.Currency
	upserts [][]domain.Currency
}

func newFakeCurrencyRepo(rows ...domain.Currency) *fakeCurrencyRepo {
	r := &fakeCurrencyRepo{rows: map[string]domain.Currency{}}
	for _, c := range rows {
		r.rows[c.Key()] = c
	}
	return r
}

func (r *fakeCurrencyRepo) ListAll(context.Context) ([]domain.Currency, error) {
	out := make([]domain.Currency, 0, len(r.rows))
	for _, c := range r.rows {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCurrencyRepo) UpsertBatch(_ context.Context, currencies []domain.Currency) error {
	if len(currencies) > 0 {
		r.upserts = append(r.upserts, currencies)
	}
	for _, c := range currencies {
		r.rows[c.Key()] = c
	}
	return nil
}

type fakePairRepo struct {
	rows    map[string]domain.Pair
	inserts [][]domain.Pair
	updates [][]domain.Pair
}

func newFakePairRepo(rows ...domain.Pair) *fakePairRepo {
	r := &fakePairRepo{rows: map[string]domain.Pair{}}
	for _, p := range rows {
		r.rows[p.Key()] = p
	}
	return r
}

func (r *fakePairRepo) ListAll(context.Context) ([]domain.Pair, error) {
	out := make([]domain.Pair, 0, len(r.rows))
	for _, p := range r.rows {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePairRepo) InsertBatch(_ context.Context, pairs []domain.Pair) error {
	if len(pairs) > 0 {
		r.inserts = append(r.inserts, pairs)
	}
	for _, p := range pairs {
		r.rows[p.Key()] = p
	}
	return nil
}

func (r *fakePairRepo) UpdateFlags(_ context.Context, pairs []domain.Pair) error {
	if len(pairs) > 0 {
		r.updates = append(r.updates, pairs)
	}
	for _, p := range pairs {
		r.rows[p.Key()] = p
	}
	return nil
}

func (r *fakePairRepo) DistinctCurrencyKeys(context.Context) ([]domain.CurrencyRef, error) {
	seen := map[string]domain.CurrencyRef{}
	for _, p := range r.rows {
		seen[domain.CurrencyKey(p.FromTicker, p.FromNetwork)] = domain.CurrencyRef{Ticker: p.FromTicker, Network: p.FromNetwork}
		seen[domain.CurrencyKey(p.ToTicker, p.ToNetwork)] = domain.CurrencyRef{Ticker: p.ToTicker, Network: p.ToNetwork}
	}
	out := make([]domain.CurrencyRef, 0, len(seen))
	for _, ref := range seen {
		out = append(out, ref)
	}
	return out, nil
}

func (r *fakePairRepo) EnhancedPairs(context.Context) ([]domain.EnhancedPair, error) {
	return nil, nil
}

type fakeExchangeRepo struct {
	byTxID    map[string]*domain.Exchange
	createErr error
	nextID    uint
}

func newFakeExchangeRepo() *fakeExchangeRepo {
	return &fakeExchangeRepo{byTxID: map[string]*domain.Exchange{}}
}

func (r *fakeExchangeRepo) Create(_ context.Context, e *domain.Exchange) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	e.ID = r.nextID
	cp := *e
	r.byTxID[e.TransactionID] = &cp
	return nil
}

func (r *fakeExchangeRepo) GetByID(_ context.Context, id uint) (*domain.Exchange, error) {
	for _, e := range r.byTxID {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeExchangeRepo) GetByTransactionID(_ context.Context, transactionID string) (*domain.Exchange, error) {
	e, ok := r.byTxID[transactionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeExchangeRepo) ListByUser(_ context.Context, userID *string) ([]domain.Exchange, error) {
	var out []domain.Exchange
	for _, e := range r.byTxID {
		if userID != nil && (e.UserID == nil || *e.UserID != *userID) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeExchangeRepo) ListPendingTransactionIDs(context.Context) ([]string, error) {
	var out []string
	for id, e := range r.byTxID {
		switch e.Status {
		case domain.StatusFinished, domain.StatusFailed, domain.StatusRefunded:
		default:
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *fakeExchangeRepo) UpdateStatus(_ context.Context, transactionID string, status domain.TransactionStatus, toAmount *decimal.Decimal) error {
	e, ok := r.byTxID[transactionID]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = status
	if toAmount != nil {
		v := *toAmount
		e.ToAmount = &v
	}
	return nil
}
