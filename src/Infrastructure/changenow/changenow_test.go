package changenow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, WithAPIKeys("test-key", "secondary-key"))
	require.NoError(t, err)
	return c
}

func TestCreateExchangeSendsHeaders(t *testing.T) {
	var gotAPIKey, gotForwardedFor string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("x-changenow-api-key")
		gotForwardedFor = r.Header.Get("x-forwarded-for")
		w.Write([]byte(`{"id":"abc123","payinAddress":"addr1","payoutAddress":"addr2","fromAmount":"0.1","toAmount":"2.5"}`))
	})

	out, err := c.CreateExchange(context.Background(), CreateExchangeRequest{
		FromCurrency: "btc", ToCurrency: "eth", Address: "addr2", Flow: "standard",
	}, "203.0.113.7")
	require.NoError(t, err)

	assert.Equal(t, "abc123", out.ID)
	assert.Equal(t, "addr1", out.PayinAddress)
	assert.Equal(t, "test-key", gotAPIKey)
	assert.Equal(t, "203.0.113.7", gotForwardedFor)
}

func TestCreateExchangeMissingIDIsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"payinAddress":"addr1"}`))
	})

	_, err := c.CreateExchange(context.Background(), CreateExchangeRequest{}, "")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestCreateExchangeMissingPayinAddressIsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"abc123"}`))
	})

	_, err := c.CreateExchange(context.Background(), CreateExchangeRequest{}, "")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestNon2xxBecomesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"pair_is_inactive","message":"This pair is currently inactive"}`))
	})

	_, err := c.CreateExchange(context.Background(), CreateExchangeRequest{}, "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "pair_is_inactive", apiErr.Code)
	assert.Equal(t, "This pair is currently inactive", apiErr.Message)
}

func TestNon2xxWithUnstructuredBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`upstream maintenance`))
	})

	_, err := c.ListCurrencies(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "upstream maintenance", apiErr.Message)
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.ListCurrencies(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestTimeoutIsUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	c.HTTP = &http.Client{Timeout: 20 * time.Millisecond}

	_, err := c.ListCurrencies(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGetExchangeStatusValidatesBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tx-9", r.URL.Query().Get("id"))
		assert.Equal(t, "secondary-key", r.Header.Get("x-api-key"))
		w.Write([]byte(`{"id":"tx-9","status":"finished","toAmount":"2.5"}`))
	})

	out, err := c.GetExchangeStatus(context.Background(), "tx-9")
	require.NoError(t, err)
	assert.Equal(t, "finished", out.Status)
	assert.Equal(t, "2.5", out.ToAmount.String())
}

func TestGetExchangeStatusMissingStatusIsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"tx-9"}`))
	})

	_, err := c.GetExchangeStatus(context.Background(), "tx-9")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestListPairsParsesFieldVariants(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"fromCurrency":"btc","fromNetwork":"btc","toCurrency":"eth","toNetwork":"eth","flow":"standard"},
			{"from_currency":"xmr","from_network":"xmr","to_currency":"ltc","to_network":"ltc","flow_type":"fixed-rate"},
			{"from":"doge","to":"shib","network":"eth","flows":["standard","fixed-rate"]}
		]`))
	})

	pairs, err := c.ListPairs(context.Background(), PairListOptions{})
	require.NoError(t, err)
	require.Len(t, pairs, 3)

	assert.Equal(t, "btc", pairs[0].FromCurrency)
	assert.Equal(t, "xmr", pairs[1].FromCurrencyAlt)
	assert.Equal(t, "fixed-rate", pairs[1].FlowType)
	assert.Equal(t, "doge", pairs[2].From)
	assert.Equal(t, []string{"standard", "fixed-rate"}, pairs[2].Flows)
}

func TestMalformedJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "abc`))
	})

	_, err := c.GetExchangeStatus(context.Background(), "tx-1")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
