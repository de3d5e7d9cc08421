package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/blockhaven/backend/src/exchange/domain"
	"github.com/blockhaven/backend/src/exchange/usecase"
	"github.com/blockhaven/backend/src/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateRequest() domain.CreateExchangeRequest {
	return domain.CreateExchangeRequest{
		FromCurrency: "btc",
		FromNetwork:  "btc",
		ToCurrency:   "eth",
		ToNetwork:    "eth",
		FromAmount:   "0.05",
		Address:      "0xabc",
	}
}

func providerExchange() *domain.ProviderExchange {
	return &domain.ProviderExchange{
		ID:            "tx-1",
		FromAmount:    decimal.RequireFromString("0.05"),
		ToAmount:      decimal.RequireFromString("1.2"),
		Flow:          domain.FlowStandard,
		Type:          domain.TypeDirect,
		PayinAddress:  "payin-addr",
		PayoutAddress: "0xabc",
		FromCurrency:  "btc",
		FromNetwork:   "btc",
		ToCurrency:    "eth",
		ToNetwork:     "eth",
	}
}

func newExchangeService(provider *fakeProvider, repo *fakeExchangeRepo) *usecase.Service {
	return usecase.NewService(provider, newFakeCurrencyRepo(), newFakePairRepo(), repo, logger.New("test"))
}

func TestCreateExchangeValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.CreateExchangeRequest)
		field  string
	}{
		{"missing fromCurrency", func(r *domain.CreateExchangeRequest) { r.FromCurrency = "" }, "fromCurrency"},
		{"missing fromNetwork", func(r *domain.CreateExchangeRequest) { r.FromNetwork = "" }, "fromNetwork"},
		{"missing toCurrency", func(r *domain.CreateExchangeRequest) { r.ToCurrency = "" }, "toCurrency"},
		{"missing toNetwork", func(r *domain.CreateExchangeRequest) { r.ToNetwork = "" }, "toNetwork"},
		{"missing address", func(r *domain.CreateExchangeRequest) { r.Address = "" }, "address"},
		{"unknown flow", func(r *domain.CreateExchangeRequest) { r.Flow = "turbo" }, "flow"},
		{"unknown type", func(r *domain.CreateExchangeRequest) { r.Type = "sideways" }, "type"},
		{"rateId without fixed-rate", func(r *domain.CreateExchangeRequest) { r.RateID = "r-1" }, "rateId"},
	}

	svc := newExchangeService(&fakeProvider{}, newFakeExchangeRepo())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest()
			tc.mutate(&req)

			_, err := svc.CreateExchange(context.Background(), req)
			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestCreateExchangePersistsWaitingRow(t *testing.T) {
	var gotReq domain.CreateExchangeRequest
	provider := &fakeProvider{createFn: func(req domain.CreateExchangeRequest) (*domain.ProviderExchange, error) {
		gotReq = req
		return providerExchange(), nil
	}}
	repo := newFakeExchangeRepo()
	svc := newExchangeService(provider, repo)

	req := validCreateRequest()
	req.ClientIP = "203.0.113.7"
	result, err := svc.CreateExchange(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, result.PersistenceDegraded)
	assert.Equal(t, "tx-1", result.Exchange.ID)
	assert.Equal(t, domain.FlowStandard, gotReq.Flow, "flow defaults to standard")
	assert.Equal(t, domain.TypeDirect, gotReq.Type, "type defaults to direct")
	assert.Equal(t, "203.0.113.7", gotReq.ClientIP)

	row, err := repo.GetByTransactionID(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, row.Status)
	assert.Equal(t, "payin-addr", row.PayinAddress)
	assert.Nil(t, row.UserID)
}

func TestCreateExchangeProviderErrorDoesNotPersist(t *testing.T) {
	provider := &fakeProvider{createFn: func(domain.CreateExchangeRequest) (*domain.ProviderExchange, error) {
		return nil, &domain.ProviderError{Code: "pair_is_inactive", Message: "inactive"}
	}}
	repo := newFakeExchangeRepo()
	svc := newExchangeService(provider, repo)

	_, err := svc.CreateExchange(context.Background(), validCreateRequest())
	var pErr *domain.ProviderError
	require.ErrorAs(t, err, &pErr)
	assert.Empty(t, repo.byTxID)
}

func TestCreateExchangeRejectsResponseWithoutPayinAddress(t *testing.T) {
	provider := &fakeProvider{createFn: func(domain.CreateExchangeRequest) (*domain.ProviderExchange, error) {
		out := providerExchange()
		out.PayinAddress = ""
		return out, nil
	}}
	repo := newFakeExchangeRepo()
	svc := newExchangeService(provider, repo)

	_, err := svc.CreateExchange(context.Background(), validCreateRequest())
	assert.ErrorIs(t, err, domain.ErrProviderContractViolation)
	assert.Empty(t, repo.byTxID)
}

func TestCreateExchangeSurvivesPersistenceFailure(t *testing.T) {
	provider := &fakeProvider{createFn: func(domain.CreateExchangeRequest) (*domain.ProviderExchange, error) {
		return providerExchange(), nil
	}}
	repo := newFakeExchangeRepo()
	repo.createErr = errors.New("connection reset")
	svc := newExchangeService(provider, repo)

	result, err := svc.CreateExchange(context.Background(), validCreateRequest())
	require.NoError(t, err, "provider success must reach the caller even when the local write fails")
	assert.True(t, result.PersistenceDegraded)
	assert.Equal(t, "tx-1", result.Exchange.ID)
}

func TestUpdateExchangeStatusMutatesOnlyStatusAndToAmount(t *testing.T) {
	repo := newFakeExchangeRepo()
	userID := "user-1"
	require.NoError(t, repo.Create(context.Background(), &domain.Exchange{
		TransactionID: "tx-1",
		FromCurrency:  "btc",
		ToCurrency:    "eth",
		FromAmount:    decimal.RequireFromString("0.05"),
		PayinAddress:  "payin-addr",
		PayoutAddress: "0xabc",
		UserID:        &userID,
		Status:        domain.StatusWaiting,
	}))

	provider := &fakeProvider{statusFn: func(id string) (*domain.ProviderStatus, error) {
		return &domain.ProviderStatus{
			ID:       id,
			Status:   domain.StatusFinished,
			ToAmount: decimal.RequireFromString("1.19"),
		}, nil
	}}
	svc := newExchangeService(provider, repo)

	row, err := svc.UpdateExchangeStatus(context.Background(), "tx-1")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFinished, row.Status)
	require.NotNil(t, row.ToAmount)
	assert.Equal(t, "1.19", row.ToAmount.String())

	stored, err := repo.GetByTransactionID(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, "payin-addr", stored.PayinAddress, "identity fields stay untouched")
	require.NotNil(t, stored.UserID)
	assert.Equal(t, "user-1", *stored.UserID)
}

func TestUpdateExchangeStatusUnknownTransaction(t *testing.T) {
	svc := newExchangeService(&fakeProvider{}, newFakeExchangeRepo())

	_, err := svc.UpdateExchangeStatus(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateExchangeStatusProviderFailureLeavesRow(t *testing.T) {
	repo := newFakeExchangeRepo()
	require.NoError(t, repo.Create(context.Background(), &domain.Exchange{
		TransactionID: "tx-1",
		Status:        domain.StatusWaiting,
	}))
	provider := &fakeProvider{statusFn: func(string) (*domain.ProviderStatus, error) {
		return nil, domain.ErrProviderUnavailable
	}}
	svc := newExchangeService(provider, repo)

	_, err := svc.UpdateExchangeStatus(context.Background(), "tx-1")
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)

	stored, err := repo.GetByTransactionID(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, stored.Status)
}

func TestListAvailableCurrenciesSynthesizesPairOnlyEntries(t *testing.T) {
	currencies := newFakeCurrencyRepo(domain.Currency{
		Ticker: "btc", Network: "btc", Name: "Bitcoin", IsActive: true,
	})
	pairs := newFakePairRepo(domain.Pair{
		FromTicker: "btc", FromNetwork: "btc", ToTicker: "xmr", ToNetwork: "xmr",
		FlowStandard: true, IsActive: true,
	})
	svc := usecase.NewService(&fakeProvider{}, currencies, pairs, newFakeExchangeRepo(), logger.New("test"))

	out, err := svc.ListAvailableCurrencies(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "btc", out[0].Ticker)
	assert.Equal(t, "Bitcoin", out[0].Name)
	assert.Equal(t, "xmr", out[1].Ticker)
	assert.Equal(t, "XMR", out[1].Name, "pair-only legs get an upper-cased ticker as name")
	assert.True(t, out[1].IsActive)
}

func TestRefreshPendingStatusesSkipsFailures(t *testing.T) {
	repo := newFakeExchangeRepo()
	require.NoError(t, repo.Create(context.Background(), &domain.Exchange{TransactionID: "tx-ok", Status: domain.StatusWaiting}))
	require.NoError(t, repo.Create(context.Background(), &domain.Exchange{TransactionID: "tx-bad", Status: domain.StatusExchanging}))
	require.NoError(t, repo.Create(context.Background(), &domain.Exchange{TransactionID: "tx-done", Status: domain.StatusFinished}))

	provider := &fakeProvider{statusFn: func(id string) (*domain.ProviderStatus, error) {
		if id == "tx-bad" {
			return nil, domain.ErrProviderUnavailable
		}
		return &domain.ProviderStatus{ID: id, Status: domain.StatusSending}, nil
	}}
	svc := newExchangeService(provider, repo)

	n, err := svc.RefreshPendingStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n, "terminal rows are not refreshed, failing rows are skipped")

	stored, _ := repo.GetByTransactionID(context.Background(), "tx-ok")
	assert.Equal(t, domain.StatusSending, stored.Status)
	done, _ := repo.GetByTransactionID(context.Background(), "tx-done")
	assert.Equal(t, domain.StatusFinished, done.Status)
}
