package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/blockhaven/backend/src/exchange/domain"
	"github.com/blockhaven/backend/src/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Service orchestrates exchange transactions and the currency/pair catalog,
// isolating callers from provider quirks.
type Service struct {
	provider   domain.Provider
	currencies domain.CurrencyRepository
	pairs      domain.PairRepository
	exchanges  domain.ExchangeRepository
	logger     *logger.Logger

	// Collapses concurrent operator-triggered sync runs per catalog.
	syncGroup singleflight.Group
}

func NewService(
	provider domain.Provider,
	currencies domain.CurrencyRepository,
	pairs domain.PairRepository,
	exchanges domain.ExchangeRepository,
	logg *logger.Logger,
) *Service {
	return &Service{
		provider:   provider,
		currencies: currencies,
		pairs:      pairs,
		exchanges:  exchanges,
		logger:     logg,
	}
}

// CreateExchange validates the request, creates the transaction at the
// provider, and persists a local audit row. The provider response is
// authoritative: if the local write fails the result is still returned to the
// caller with PersistenceDegraded set, because the provider transaction is
// real and irreversible once created.
func (s *Service) CreateExchange(ctx context.Context, req domain.CreateExchangeRequest) (*domain.CreateExchangeResult, error) {
	if req.Flow == "" {
		req.Flow = domain.FlowStandard
	}
	if req.Type == "" {
		req.Type = domain.TypeDirect
	}
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	providerResp, err := s.provider.CreateExchange(ctx, req)
	if err != nil {
		// Nothing was persisted, nothing to compensate. Retries are the
		// caller's call: blockchain-addressed transactions must not be
		// silently duplicated.
		return nil, err
	}

	// Defense in depth: the adapter already rejects malformed responses, but
	// a creation without an id or payin address must never count as success.
	if providerResp.ID == "" || providerResp.PayinAddress == "" {
		return nil, domain.ErrProviderContractViolation
	}

	result := &domain.CreateExchangeResult{Exchange: *providerResp}

	row := &domain.Exchange{
		TransactionID:     providerResp.ID,
		FromCurrency:      providerResp.FromCurrency,
		FromNetwork:       providerResp.FromNetwork,
		ToCurrency:        providerResp.ToCurrency,
		ToNetwork:         providerResp.ToNetwork,
		FromAmount:        providerResp.FromAmount,
		ToAmount:          optionalDecimal(providerResp.ToAmount),
		PayinAddress:      providerResp.PayinAddress,
		PayoutAddress:     providerResp.PayoutAddress,
		PayinExtraID:      optionalString(providerResp.PayinExtraID),
		PayoutExtraID:     optionalString(providerResp.PayoutExtraID),
		RefundAddress:     optionalString(providerResp.RefundAddress),
		RefundExtraID:     optionalString(providerResp.RefundExtraID),
		Flow:              providerResp.Flow,
		Type:              providerResp.Type,
		RateID:            optionalString(providerResp.RateID),
		UserID:            optionalString(req.UserID),
		ContactEmail:      optionalString(req.ContactEmail),
		PayoutExtraIDName: optionalString(providerResp.PayoutExtraIDName),
		Status:            domain.StatusWaiting,
	}
	if err := s.exchanges.Create(ctx, row); err != nil {
		// The local row is a recoverable audit trail; a later status refresh
		// can re-derive it. Telling the caller "creation failed" when the
		// provider already issued addresses would be worse.
		s.logger.Errorf("failed to persist exchange %s (non-critical): %v", providerResp.ID, err)
		result.PersistenceDegraded = true
	}

	return result, nil
}

func validateCreateRequest(req domain.CreateExchangeRequest) error {
	switch {
	case req.FromCurrency == "":
		return &domain.ValidationError{Field: "fromCurrency", Reason: "is required"}
	case req.FromNetwork == "":
		return &domain.ValidationError{Field: "fromNetwork", Reason: "is required"}
	case req.ToCurrency == "":
		return &domain.ValidationError{Field: "toCurrency", Reason: "is required"}
	case req.ToNetwork == "":
		return &domain.ValidationError{Field: "toNetwork", Reason: "is required"}
	case req.Address == "":
		return &domain.ValidationError{Field: "address", Reason: "is required"}
	}
	if req.Flow != domain.FlowStandard && req.Flow != domain.FlowFixedRate {
		return &domain.ValidationError{Field: "flow", Reason: "must be standard or fixed-rate"}
	}
	if req.Type != domain.TypeDirect && req.Type != domain.TypeReverse {
		return &domain.ValidationError{Field: "type", Reason: "must be direct or reverse"}
	}
	if req.RateID != "" && req.Flow != domain.FlowFixedRate {
		return &domain.ValidationError{Field: "rateId", Reason: "is only valid for fixed-rate flow"}
	}
	return nil
}

// UpdateExchangeStatus re-queries the provider and stores the reported status
// and to-amount. All other fields are immutable and left untouched even if
// the provider response repeats them with different formatting. A provider
// failure leaves the local row as-is: stale-but-valid beats corrupt.
func (s *Service) UpdateExchangeStatus(ctx context.Context, transactionID string) (*domain.Exchange, error) {
	row, err := s.exchanges.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	status, err := s.provider.GetExchangeStatus(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	var toAmount *decimal.Decimal
	if !status.ToAmount.IsZero() {
		v := status.ToAmount
		toAmount = &v
	}
	if err := s.exchanges.UpdateStatus(ctx, transactionID, status.Status, toAmount); err != nil {
		return nil, &domain.PersistenceError{Op: "update exchange status", Err: err}
	}

	row.Status = status.Status
	if toAmount != nil {
		row.ToAmount = toAmount
	}
	return row, nil
}

// RefreshPendingStatuses re-queries the provider for every non-terminal
// transaction. Per-transaction failures are logged and skipped; one stuck
// transaction must not stall the rest.
func (s *Service) RefreshPendingStatuses(ctx context.Context) (int, error) {
	ids, err := s.exchanges.ListPendingTransactionIDs(ctx)
	if err != nil {
		return 0, &domain.PersistenceError{Op: "list pending exchanges", Err: err}
	}

	refreshed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		if _, err := s.UpdateExchangeStatus(ctx, id); err != nil {
			s.logger.Warnf("status refresh for %s failed: %v", id, err)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

func (s *Service) GetExchangeByID(ctx context.Context, id uint) (*domain.Exchange, error) {
	return s.exchanges.GetByID(ctx, id)
}

func (s *Service) GetExchangeByTransactionID(ctx context.Context, transactionID string) (*domain.Exchange, error) {
	return s.exchanges.GetByTransactionID(ctx, transactionID)
}

// ListExchanges returns a user's transactions newest first; a nil userID
// lists everything.
func (s *Service) ListExchanges(ctx context.Context, userID *string) ([]domain.Exchange, error) {
	return s.exchanges.ListByUser(ctx, userID)
}

// ListAvailableCurrencies merges the currency table with every (ticker,
// network) found on a pair leg but missing from it, so callers never see a
// pair referencing a currency the listing does not know about.
func (s *Service) ListAvailableCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencies.ListAll(ctx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list currencies", Err: err}
	}

	refs, err := s.pairs.DistinctCurrencyKeys(ctx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list pair currency keys", Err: err}
	}

	known := make(map[string]struct{}, len(currencies))
	for _, c := range currencies {
		known[c.Key()] = struct{}{}
	}
	for _, ref := range refs {
		if _, ok := known[domain.CurrencyKey(ref.Ticker, ref.Network)]; ok {
			continue
		}
		// Pair rows are authoritative for tradability; synthesize a minimal
		// entry for legs with no currency metadata.
		currencies = append(currencies, domain.Currency{
			Ticker:   ref.Ticker,
			Network:  ref.Network,
			Name:     strings.ToUpper(ref.Ticker),
			IsActive: true,
		})
	}

	sort.Slice(currencies, func(i, j int) bool {
		if currencies[i].Ticker != currencies[j].Ticker {
			return currencies[i].Ticker < currencies[j].Ticker
		}
		return currencies[i].Network < currencies[j].Network
	})
	return currencies, nil
}

// GetEnhancedPairs returns active pairs joined with display metadata.
func (s *Service) GetEnhancedPairs(ctx context.Context) ([]domain.EnhancedPair, error) {
	pairs, err := s.pairs.EnhancedPairs(ctx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list enhanced pairs", Err: err}
	}
	return pairs, nil
}

// GetEstimatedAmount is a thin pass-through to the provider.
func (s *Service) GetEstimatedAmount(ctx context.Context, req domain.EstimateRequest) (*domain.Estimate, error) {
	if req.FromCurrency == "" || req.ToCurrency == "" {
		return nil, &domain.ValidationError{Field: "fromCurrency/toCurrency", Reason: "are required"}
	}
	if req.Flow == "" {
		req.Flow = domain.FlowStandard
	}
	if req.Type == "" {
		req.Type = domain.TypeDirect
	}
	return s.provider.GetEstimatedAmount(ctx, req)
}

// GetMinAmount is a thin pass-through to the provider.
func (s *Service) GetMinAmount(ctx context.Context, req domain.EstimateRequest) (*domain.MinAmount, error) {
	if req.FromCurrency == "" || req.ToCurrency == "" {
		return nil, &domain.ValidationError{Field: "fromCurrency/toCurrency", Reason: "are required"}
	}
	return s.provider.GetMinAmount(ctx, req)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalDecimal(d decimal.Decimal) *decimal.Decimal {
	if d.IsZero() {
		return nil
	}
	return &d
}
