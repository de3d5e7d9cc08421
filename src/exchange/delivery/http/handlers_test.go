package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	exchangeHD "github.com/blockhaven/backend/src/exchange/delivery/http"
	"github.com/blockhaven/backend/src/exchange/domain"
	"github.com/blockhaven/backend/src/exchange/usecase"
	"github.com/blockhaven/backend/src/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider answers every port method from canned values.
type stubProvider struct {
	exchange  *domain.ProviderExchange
	createErr error
	status    *domain.ProviderStatus
	statusErr error
}

func (s *stubProvider) CreateExchange(context.Context, domain.CreateExchangeRequest) (*domain.ProviderExchange, error) {
	return s.exchange, s.createErr
}
func (s *stubProvider) GetExchangeStatus(context.Context, string) (*domain.ProviderStatus, error) {
	return s.status, s.statusErr
}
func (s *stubProvider) ListCurrencies(context.Context) ([]domain.ProviderCurrency, error) {
	return nil, nil
}
func (s *stubProvider) ListPairs(context.Context, domain.PairFilter) ([]domain.ProviderPair, error) {
	return nil, nil
}
func (s *stubProvider) GetEstimatedAmount(context.Context, domain.EstimateRequest) (*domain.Estimate, error) {
	return &domain.Estimate{ToAmount: decimal.RequireFromString("1.2")}, nil
}
func (s *stubProvider) GetMinAmount(context.Context, domain.EstimateRequest) (*domain.MinAmount, error) {
	return &domain.MinAmount{MinAmount: decimal.RequireFromString("0.001")}, nil
}

type stubCurrencyRepo struct{ rows []domain.Currency }

func (s *stubCurrencyRepo) ListAll(context.Context) ([]domain.Currency, error) { return s.rows, nil }
func (s *stubCurrencyRepo) UpsertBatch(context.Context, []domain.Currency) error {
	return nil
}

type stubPairRepo struct{ enhanced []domain.EnhancedPair }

func (s *stubPairRepo) ListAll(context.Context) ([]domain.Pair, error)      { return nil, nil }
func (s *stubPairRepo) InsertBatch(context.Context, []domain.Pair) error   { return nil }
func (s *stubPairRepo) UpdateFlags(context.Context, []domain.Pair) error   { return nil }
func (s *stubPairRepo) DistinctCurrencyKeys(context.Context) ([]domain.CurrencyRef, error) {
	return nil, nil
}
func (s *stubPairRepo) EnhancedPairs(context.Context) ([]domain.EnhancedPair, error) {
	return s.enhanced, nil
}

type stubExchangeRepo struct {
	row *domain.Exchange
}

func (s *stubExchangeRepo) Create(_ context.Context, e *domain.Exchange) error { return nil }
func (s *stubExchangeRepo) GetByID(context.Context, uint) (*domain.Exchange, error) {
	if s.row == nil {
		return nil, domain.ErrNotFound
	}
	return s.row, nil
}
func (s *stubExchangeRepo) GetByTransactionID(context.Context, string) (*domain.Exchange, error) {
	if s.row == nil {
		return nil, domain.ErrNotFound
	}
	return s.row, nil
}
func (s *stubExchangeRepo) ListByUser(context.Context, *string) ([]domain.Exchange, error) {
	return nil, nil
}
func (s *stubExchangeRepo) ListPendingTransactionIDs(context.Context) ([]string, error) {
	return nil, nil
}
func (s *stubExchangeRepo) UpdateStatus(context.Context, string, domain.TransactionStatus, *decimal.Decimal) error {
	return nil
}

func newTestRouter(provider *stubProvider, repo *stubExchangeRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logg := logger.New("test")
	svc := usecase.NewService(provider, &stubCurrencyRepo{}, &stubPairRepo{}, repo, logg)
	handler := exchangeHD.NewHandler(svc, logg)

	r := gin.New()
	passthrough := func(c *gin.Context) { c.Next() }
	api := r.Group("/api")
	handler.RegisterRoutes(api, passthrough, passthrough)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return w, parsed
}

func TestCreateExchangeEndpoint(t *testing.T) {
	provider := &stubProvider{exchange: &domain.ProviderExchange{
		ID:            "tx-1",
		PayinAddress:  "payin-addr",
		PayoutAddress: "0xabc",
		Flow:          domain.FlowStandard,
		Type:          domain.TypeDirect,
	}}
	r := newTestRouter(provider, &stubExchangeRepo{})

	w, body := doRequest(t, r, http.MethodPost, "/api/exchanges",
		`{"fromCurrency":"btc","fromNetwork":"btc","toCurrency":"eth","toNetwork":"eth","fromAmount":"0.05","address":"0xabc"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "tx-1", data["id"])
	assert.Equal(t, "payin-addr", data["payinAddress"])
}

func TestCreateExchangeValidationEnvelope(t *testing.T) {
	r := newTestRouter(&stubProvider{}, &stubExchangeRepo{})

	w, body := doRequest(t, r, http.MethodPost, "/api/exchanges",
		`{"fromCurrency":"btc","fromNetwork":"btc","toCurrency":"eth","toNetwork":"eth"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "address")
}

func TestCreateExchangeProviderRejection(t *testing.T) {
	provider := &stubProvider{createErr: &domain.ProviderError{Code: "out_of_range", Message: "amount below minimum"}}
	r := newTestRouter(provider, &stubExchangeRepo{})

	w, body := doRequest(t, r, http.MethodPost, "/api/exchanges",
		`{"fromCurrency":"btc","fromNetwork":"btc","toCurrency":"eth","toNetwork":"eth","fromAmount":"0.000001","address":"0xabc"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "amount below minimum", body["error"])
	assert.Equal(t, "out_of_range", body["code"])
}

func TestCreateExchangeProviderUnavailableIsBadGateway(t *testing.T) {
	provider := &stubProvider{createErr: domain.ErrProviderUnavailable}
	r := newTestRouter(provider, &stubExchangeRepo{})

	w, body := doRequest(t, r, http.MethodPost, "/api/exchanges",
		`{"fromCurrency":"btc","fromNetwork":"btc","toCurrency":"eth","toNetwork":"eth","fromAmount":"0.05","address":"0xabc"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestGetExchangeByTransactionIDNotFound(t *testing.T) {
	r := newTestRouter(&stubProvider{}, &stubExchangeRepo{})

	w, body := doRequest(t, r, http.MethodGet, "/api/exchanges/transaction/unknown", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestUpdateStatusContractViolationIsBadGateway(t *testing.T) {
	repo := &stubExchangeRepo{row: &domain.Exchange{TransactionID: "tx-1", Status: domain.StatusWaiting}}
	provider := &stubProvider{statusErr: domain.ErrProviderContractViolation}
	r := newTestRouter(provider, repo)

	w, body := doRequest(t, r, http.MethodPut, "/api/exchanges/tx-1/status", "")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestEstimateEndpointRequiresCurrencies(t *testing.T) {
	r := newTestRouter(&stubProvider{}, &stubExchangeRepo{})

	w, body := doRequest(t, r, http.MethodGet, "/api/exchanges/estimate?fromCurrency=btc", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
}
