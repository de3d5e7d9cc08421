// Package changenow implements a strongly-typed HTTP client for the ChangeNOW
// v2 REST API (exchange aggregator).
//
// Coverage: the subset the backend depends on — exchange creation, status
// lookup, currency catalog, pair catalog, amount estimation and minimal
// amount.
//
// Notes:
//   - Unlike envelope-style APIs, ChangeNOW returns plain JSON bodies; errors
//     arrive as non-2xx statuses with an {error, message} body.
//   - Authentication is via the x-changenow-api-key header; privileged
//     endpoints additionally require x-api-key.
//   - The catalog endpoints can return tens of thousands of entries and are
//     known to contain duplicate (ticker, network) rows; callers must dedup.
//   - Pair listings use inconsistent field naming across provider versions;
//     the Pair type retains every observed variant.
package changenow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Default HTTP timeouts tuned for server-side usage. The provider is known to
// hang on occasion; every call must be bounded.
var (
	DefaultHTTPClient = &http.Client{Timeout: 30 * time.Second}
)

// Sentinel errors used to classify failures. Callers match with errors.Is.
var (
	// ErrUnavailable wraps transport failures: timeouts, connection resets,
	// DNS errors. Safe to retry from the caller side.
	ErrUnavailable = errors.New("changenow: provider unavailable")
	// ErrMalformedResponse marks a 2xx response missing required fields.
	// A 200-but-broken body is a hard failure, never a partial success.
	ErrMalformedResponse = errors.New("changenow: malformed provider response")
)

// APIError is a structured error returned by the provider on non-2xx status.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("changenow api error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
}

// NewClient constructs a new API client. base should be like "https://api.changenow.io".
func NewClient(base string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	c := &Client{
		BaseURL:   u,
		HTTP:      DefaultHTTPClient,
		UserAgent: "blockhaven-changenow/1.0",
		Logger:    log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Option functional options.
type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.HTTP = h } }
func WithUserAgent(ua string) Option       { return func(c *Client) { c.UserAgent = ua } }
func WithLogger(l zerolog.Logger) Option   { return func(c *Client) { c.Logger = l } }

// WithAPIKeys sets the primary (x-changenow-api-key) and secondary (x-api-key)
// keys. Either may be empty; requests simply fail upstream when the provider
// requires them.
func WithAPIKeys(apiKey, secondaryKey string) Option {
	return func(c *Client) {
		c.APIKey = apiKey
		c.SecondaryKey = secondaryKey
	}
}

type Client struct {
	BaseURL      *url.URL
	HTTP         *http.Client
	APIKey       string
	SecondaryKey string
	UserAgent    string
	Logger       zerolog.Logger
}

// --- Core HTTP execution with logging ---
func (c *Client) do(
	ctx context.Context,
	method, p string,
	q url.Values,
	body any,
	out any,
	headers map[string]string,
) error {
	u := *c.BaseURL
	u.Path = path.Join(u.Path, p)
	u.RawQuery = q.Encode()

	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		r = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("x-changenow-api-key", c.APIKey)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	c.Logger.Info().
		Str("method", method).
		Str("url", u.String()).
		Int("status", resp.StatusCode).
		Str("duration", time.Since(start).String()).
		Bytes("response", truncate(b, 2048)).
		Msg("changenow response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp.StatusCode, b)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: unmarshal: %v", ErrMalformedResponse, err)
	}
	return nil
}

// apiError converts a non-2xx body into a structured APIError. The provider
// usually answers {"error": "...", "message": "..."}; fall back to the raw
// body tail when it does not.
func apiError(status int, body []byte) error {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil && (e.Error != "" || e.Message != "") {
		msg := e.Message
		if msg == "" {
			msg = e.Error
		}
		return &APIError{StatusCode: status, Code: e.Error, Message: msg}
	}
	return &APIError{StatusCode: status, Message: string(truncate(body, 512))}
}

func truncate(b []byte, max int) []byte {
	if len(b) > max {
		return b[:max]
	}
	return b
}

// withSecondaryKey returns headers for privileged endpoints.
func (c *Client) withSecondaryKey() map[string]string {
	if c.SecondaryKey == "" {
		return nil
	}
	return map[string]string{"x-api-key": c.SecondaryKey}
}

// --- Exchange creation ---

type CreateExchangeRequest struct {
	FromCurrency  string `json:"fromCurrency"`
	FromNetwork   string `json:"fromNetwork"`
	ToCurrency    string `json:"toCurrency"`
	ToNetwork     string `json:"toNetwork"`
	FromAmount    string `json:"fromAmount,omitempty"`
	ToAmount      string `json:"toAmount,omitempty"`
	Address       string `json:"address"`
	ExtraID       string `json:"extraId,omitempty"`
	RefundAddress string `json:"refundAddress,omitempty"`
	RefundExtraID string `json:"refundExtraId,omitempty"`
	UserID        string `json:"userId,omitempty"`
	ContactEmail  string `json:"contactEmail,omitempty"`
	Flow          string `json:"flow"`
	Type          string `json:"type,omitempty"`
	RateID        string `json:"rateId,omitempty"`
}

type CreateExchangeResponse struct {
	ID                string          `json:"id"`
	FromAmount        decimal.Decimal `json:"fromAmount"`
	ToAmount          decimal.Decimal `json:"toAmount"`
	Flow              string          `json:"flow"`
	Type              string          `json:"type"`
	PayinAddress      string          `json:"payinAddress"`
	PayoutAddress     string          `json:"payoutAddress"`
	PayinExtraID      string          `json:"payinExtraId"`
	PayoutExtraID     string          `json:"payoutExtraId"`
	FromCurrency      string          `json:"fromCurrency"`
	FromNetwork       string          `json:"fromNetwork"`
	ToCurrency        string          `json:"toCurrency"`
	ToNetwork         string          `json:"toNetwork"`
	RefundAddress     string          `json:"refundAddress"`
	RefundExtraID     string          `json:"refundExtraId"`
	PayoutExtraIDName string          `json:"payoutExtraIdName"`
	RateID            string          `json:"rateId"`
}

// CreateExchange posts a new exchange transaction. clientIP, when known, is
// forwarded via x-forwarded-for (the provider uses it for geofencing).
// A 2xx response missing the transaction id or payin address is rejected with
// ErrMalformedResponse.
func (c *Client) CreateExchange(ctx context.Context, in CreateExchangeRequest, clientIP string) (*CreateExchangeResponse, error) {
	headers := map[string]string{}
	if clientIP != "" {
		headers["x-forwarded-for"] = clientIP
	}
	var out CreateExchangeResponse
	if err := c.do(ctx, http.MethodPost, "/v2/exchange", nil, in, &out, headers); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, fmt.Errorf("%w: missing transaction id", ErrMalformedResponse)
	}
	if out.PayinAddress == "" {
		return nil, fmt.Errorf("%w: missing payin address", ErrMalformedResponse)
	}
	return &out, nil
}

// --- Exchange status ---

type ExchangeStatus struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	FromAmount    decimal.Decimal `json:"fromAmount"`
	ToAmount      decimal.Decimal `json:"toAmount"`
	FromCurrency  string          `json:"fromCurrency"`
	ToCurrency    string          `json:"toCurrency"`
	FromNetwork   string          `json:"fromNetwork"`
	ToNetwork     string          `json:"toNetwork"`
	PayinAddress  string          `json:"payinAddress"`
	PayoutAddress string          `json:"payoutAddress"`
	PayinHash     string          `json:"payinHash"`
	PayoutHash    string          `json:"payoutHash"`
	RefundHash    string          `json:"refundHash"`
	ValidUntil    string          `json:"validUntil"`
}

// GetExchangeStatus fetches the current provider-side state of a transaction.
func (c *Client) GetExchangeStatus(ctx context.Context, transactionID string) (*ExchangeStatus, error) {
	q := url.Values{"id": {transactionID}}
	var out ExchangeStatus
	if err := c.do(ctx, http.MethodGet, "/v2/exchange/by-id", q, nil, &out, c.withSecondaryKey()); err != nil {
		return nil, err
	}
	if out.ID == "" || out.Status == "" {
		return nil, fmt.Errorf("%w: missing id or status", ErrMalformedResponse)
	}
	return &out, nil
}

// --- Currency catalog ---

type Currency struct {
	Ticker             string `json:"ticker"`
	Name               string `json:"name"`
	Image              string `json:"image"`
	HasExternalID      bool   `json:"hasExternalId"`
	IsExtraIDSupported bool   `json:"isExtraIdSupported"`
	IsFiat             bool   `json:"isFiat"`
	Featured           bool   `json:"featured"`
	IsStable           bool   `json:"isStable"`
	SupportsFixedRate  bool   `json:"supportsFixedRate"`
	Network            string `json:"network"`
	TokenContract      string `json:"tokenContract"`
	Buy                bool   `json:"buy"`
	Sell               bool   `json:"sell"`
	LegacyTicker       string `json:"legacyTicker"`
}

// ListCurrencies fetches the full currency catalog. Tens of thousands of
// entries is normal; the list may also be empty.
func (c *Client) ListCurrencies(ctx context.Context) ([]Currency, error) {
	var out []Currency
	if err := c.do(ctx, http.MethodGet, "/v2/exchange/currencies", nil, nil, &out, c.withSecondaryKey()); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Pair catalog ---

// Pair retains every field-name variant the provider has been observed to use
// across versions. Identity resolution from the variants is the catalog
// synchronizer's job, not the client's.
type Pair struct {
	FromCurrency    string   `json:"fromCurrency"`
	FromCurrencyAlt string   `json:"from_currency"`
	From            string   `json:"from"`
	FromNetwork     string   `json:"fromNetwork"`
	FromNetworkAlt  string   `json:"from_network"`
	ToCurrency      string   `json:"toCurrency"`
	ToCurrencyAlt   string   `json:"to_currency"`
	To              string   `json:"to"`
	ToNetwork       string   `json:"toNetwork"`
	ToNetworkAlt    string   `json:"to_network"`
	Network         string   `json:"network"`
	Flow            string   `json:"flow"`
	FlowType        string   `json:"flow_type"`
	Flows           []string `json:"flows"`
}

// PairListOptions narrows the pair listing. Zero value lists everything.
type PairListOptions struct {
	FromCurrency string
	ToCurrency   string
	FromNetwork  string
	ToNetwork    string
	Flow         string
}

// ListPairs fetches tradable pairs, optionally filtered.
func (c *Client) ListPairs(ctx context.Context, opts PairListOptions) ([]Pair, error) {
	q := url.Values{}
	if opts.FromCurrency != "" {
		q.Set("fromCurrency", opts.FromCurrency)
	}
	if opts.ToCurrency != "" {
		q.Set("toCurrency", opts.ToCurrency)
	}
	if opts.FromNetwork != "" {
		q.Set("fromNetwork", opts.FromNetwork)
	}
	if opts.ToNetwork != "" {
		q.Set("toNetwork", opts.ToNetwork)
	}
	if opts.Flow != "" {
		q.Set("flow", opts.Flow)
	}
	var out []Pair
	if err := c.do(ctx, http.MethodGet, "/v2/exchange/available-pairs", q, nil, &out, c.withSecondaryKey()); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Estimation ---

type EstimateOptions struct {
	FromCurrency string
	ToCurrency   string
	FromAmount   string
	ToAmount     string
	FromNetwork  string
	ToNetwork    string
	Flow         string
	Type         string
}

type Estimate struct {
	FromCurrency             string          `json:"fromCurrency"`
	FromNetwork              string          `json:"fromNetwork"`
	ToCurrency               string          `json:"toCurrency"`
	ToNetwork                string          `json:"toNetwork"`
	Flow                     string          `json:"flow"`
	Type                     string          `json:"type"`
	RateID                   string          `json:"rateId"`
	ValidUntil               string          `json:"validUntil"`
	FromAmount               decimal.Decimal `json:"fromAmount"`
	ToAmount                 decimal.Decimal `json:"toAmount"`
	TransactionSpeedForecast string          `json:"transactionSpeedForecast"`
}

// GetEstimatedAmount asks the provider for the expected outcome of a trade.
func (c *Client) GetEstimatedAmount(ctx context.Context, opts EstimateOptions) (*Estimate, error) {
	q := url.Values{
		"fromCurrency": {opts.FromCurrency},
		"toCurrency":   {opts.ToCurrency},
	}
	if opts.FromAmount != "" {
		q.Set("fromAmount", opts.FromAmount)
	}
	if opts.ToAmount != "" {
		q.Set("toAmount", opts.ToAmount)
	}
	if opts.FromNetwork != "" {
		q.Set("fromNetwork", opts.FromNetwork)
	}
	if opts.ToNetwork != "" {
		q.Set("toNetwork", opts.ToNetwork)
	}
	if opts.Flow != "" {
		q.Set("flow", opts.Flow)
	}
	if opts.Type != "" {
		q.Set("type", opts.Type)
	}
	var out Estimate
	if err := c.do(ctx, http.MethodGet, "/v2/exchange/estimated-amount", q, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Minimal amount ---

type MinAmount struct {
	FromCurrency string          `json:"fromCurrency"`
	FromNetwork  string          `json:"fromNetwork"`
	ToCurrency   string          `json:"toCurrency"`
	ToNetwork    string          `json:"toNetwork"`
	Flow         string          `json:"flow"`
	MinAmount    decimal.Decimal `json:"minAmount"`
}

// GetMinAmount returns the minimal exchangeable amount for a pair.
func (c *Client) GetMinAmount(ctx context.Context, fromCurrency, toCurrency, fromNetwork, toNetwork, flow string) (*MinAmount, error) {
	q := url.Values{
		"fromCurrency": {fromCurrency},
		"toCurrency":   {toCurrency},
	}
	if fromNetwork != "" {
		q.Set("fromNetwork", fromNetwork)
	}
	if toNetwork != "" {
		q.Set("toNetwork", toNetwork)
	}
	if flow != "" {
		q.Set("flow", flow)
	}
	var out MinAmount
	if err := c.do(ctx, http.MethodGet, "/v2/exchange/min-amount", q, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}
