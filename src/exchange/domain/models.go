package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Flow is the pricing mode of an exchange.
type Flow string

const (
	FlowStandard  Flow = "standard"
	FlowFixedRate Flow = "fixed-rate"
)

// ExchangeType says which leg carries the requested amount.
type ExchangeType string

const (
	TypeDirect  ExchangeType = "direct"
	TypeReverse ExchangeType = "reverse"
)

// TransactionStatus values are stored verbatim as reported by the provider;
// the provider is the sole authority on transaction state.
type TransactionStatus string

const (
	StatusWaiting    TransactionStatus = "waiting"
	StatusConfirming TransactionStatus = "confirming"
	StatusExchanging TransactionStatus = "exchanging"
	StatusSending    TransactionStatus = "sending"
	StatusFinished   TransactionStatus = "finished"
	StatusFailed     TransactionStatus = "failed"
	StatusRefunded   TransactionStatus = "refunded"
	StatusVerifying  TransactionStatus = "verifying"
)

// Currency is one row of the local catalog. Identity is (ticker, network),
// case-insensitive.
type Currency struct {
	ID                 uint
	Ticker             string
	Network            string
	Name               string
	ImageURL           string
	HasExternalID      bool
	IsExtraIDSupported bool
	IsFiat             bool
	Featured           bool
	IsStable           bool
	SupportsFixedRate  bool
	TokenContract      string
	BuyEnabled         bool
	SellEnabled        bool
	LegacyTicker       string
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Key returns the case-insensitive composite identity of the currency.
func (c Currency) Key() string {
	return CurrencyKey(c.Ticker, c.Network)
}

func CurrencyKey(ticker, network string) string {
	return strings.ToLower(ticker) + ":" + strings.ToLower(network)
}

// Pair is one tradable (from, to) combination. Identity is the 4-tuple.
type Pair struct {
	ID            uint
	FromTicker    string
	FromNetwork   string
	ToTicker      string
	ToNetwork     string
	FlowStandard  bool
	FlowFixedRate bool
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Key returns the 4-tuple identity of the pair.
func (p Pair) Key() string {
	return PairKey(p.FromTicker, p.FromNetwork, p.ToTicker, p.ToNetwork)
}

func PairKey(fromTicker, fromNetwork, toTicker, toNetwork string) string {
	return fromTicker + ":" + fromNetwork + ":" + toTicker + ":" + toNetwork
}

// CurrencyRef is a bare (ticker, network) reference, as found on pair legs.
type CurrencyRef struct {
	Ticker  string
	Network string
}

// PairLeg is the currency metadata attached to one side of an enhanced pair.
type PairLeg struct {
	Ticker   string
	Network  string
	Name     string
	ImageURL string
	Featured bool
}

// EnhancedPair joins a pair with the display metadata of both legs. Legs
// missing from the currency table carry synthesized metadata.
type EnhancedPair struct {
	From          PairLeg
	To            PairLeg
	FlowStandard  bool
	FlowFixedRate bool
}

// Exchange is the locally persisted record of one exchange attempt. The
// provider-assigned TransactionID is immutable once set and is the join key
// for all status lookups. The local row is an audit trail, not the source of
// truth for whether the exchange happened.
type Exchange struct {
	ID                uint
	TransactionID     string
	FromCurrency      string
	FromNetwork       string
	ToCurrency        string
	ToNetwork         string
	FromAmount        decimal.Decimal
	ToAmount          *decimal.Decimal
	PayinAddress      string
	PayoutAddress     string
	PayinExtraID      *string
	PayoutExtraID     *string
	RefundAddress     *string
	RefundExtraID     *string
	Flow              Flow
	Type              ExchangeType
	RateID            *string
	UserID            *string
	ContactEmail      *string
	PayoutExtraIDName *string
	Status            TransactionStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CreateExchangeRequest is the caller-facing creation input. Amounts travel
// as decimal strings and are forwarded untouched to the provider.
type CreateExchangeRequest struct {
	FromCurrency  string
	FromNetwork   string
	ToCurrency    string
	ToNetwork     string
	FromAmount    string
	ToAmount      string
	Address       string
	ExtraID       string
	RefundAddress string
	RefundExtraID string
	ContactEmail  string
	Flow          Flow
	Type          ExchangeType
	RateID        string
	UserID        string
	ClientIP      string
}

// ProviderExchange is the provider's authoritative answer to a creation call.
type ProviderExchange struct {
	ID                string
	FromAmount        decimal.Decimal
	ToAmount          decimal.Decimal
	Flow              Flow
	Type              ExchangeType
	PayinAddress      string
	PayoutAddress     string
	PayinExtraID      string
	PayoutExtraID     string
	FromCurrency      string
	FromNetwork       string
	ToCurrency        string
	ToNetwork         string
	RefundAddress     string
	RefundExtraID     string
	PayoutExtraIDName string
	RateID            string
}

// CreateExchangeResult carries the provider outcome plus a flag telling
// observability apart: fully succeeded vs succeeded externally but the local
// audit row could not be written.
type CreateExchangeResult struct {
	Exchange            ProviderExchange
	PersistenceDegraded bool
}

// ProviderStatus is a status snapshot reported by the provider.
type ProviderStatus struct {
	ID       string
	Status   TransactionStatus
	ToAmount decimal.Decimal
}

// ProviderCurrency is one catalog entry as reported by the provider.
type ProviderCurrency struct {
	Ticker             string
	Network            string
	Name               string
	Image              string
	HasExternalID      bool
	IsExtraIDSupported bool
	IsFiat             bool
	Featured           bool
	IsStable           bool
	SupportsFixedRate  bool
	TokenContract      string
	Buy                bool
	Sell               bool
	LegacyTicker       string
}

// ProviderPair is one pair entry as reported by the provider. Field naming is
// inconsistent across provider versions, so every observed variant is kept;
// the synchronizer resolves identity via ResolveFrom/ResolveTo.
type ProviderPair struct {
	FromCurrency    string
	FromCurrencyAlt string
	From            string
	FromNetwork     string
	FromNetworkAlt  string
	ToCurrency      string
	ToCurrencyAlt   string
	To              string
	ToNetwork       string
	ToNetworkAlt    string
	Network         string
	Flow            string
	FlowType        string
	Flows           []string
}

// ResolveFrom returns the source leg, preferring the canonical field names.
// The ticker may come back empty, in which case the entry is unusable.
func (p ProviderPair) ResolveFrom() CurrencyRef {
	return CurrencyRef{
		Ticker:  firstNonEmpty(p.FromCurrency, p.FromCurrencyAlt, p.From),
		Network: firstNonEmpty(p.FromNetwork, p.FromNetworkAlt, p.Network),
	}
}

// ResolveTo returns the destination leg.
func (p ProviderPair) ResolveTo() CurrencyRef {
	return CurrencyRef{
		Ticker:  firstNonEmpty(p.ToCurrency, p.ToCurrencyAlt, p.To),
		Network: firstNonEmpty(p.ToNetwork, p.ToNetworkAlt, p.Network),
	}
}

// SupportsStandard reports whether the entry advertises the standard flow.
func (p ProviderPair) SupportsStandard() bool {
	return p.Flow == string(FlowStandard) || p.FlowType == string(FlowStandard) || containsString(p.Flows, string(FlowStandard))
}

// SupportsFixedRate reports whether the entry advertises the fixed-rate flow.
func (p ProviderPair) SupportsFixedRate() bool {
	return p.Flow == string(FlowFixedRate) || p.FlowType == string(FlowFixedRate) || containsString(p.Flows, string(FlowFixedRate))
}

// PairFilter narrows a provider pair listing. Zero value lists everything.
type PairFilter struct {
	FromCurrency string
	ToCurrency   string
	FromNetwork  string
	ToNetwork    string
	Flow         string
}

// EstimateRequest asks the provider how much a trade would yield.
type EstimateRequest struct {
	FromCurrency string
	ToCurrency   string
	FromAmount   string
	ToAmount     string
	FromNetwork  string
	ToNetwork    string
	Flow         Flow
	Type         ExchangeType
}

// Estimate is the provider's answer to an EstimateRequest.
type Estimate struct {
	FromCurrency string
	FromNetwork  string
	ToCurrency   string
	ToNetwork    string
	Flow         Flow
	Type         ExchangeType
	RateID       string
	ValidUntil   string
	FromAmount   decimal.Decimal
	ToAmount     decimal.Decimal
}

// MinAmount is the smallest exchangeable amount for a pair.
type MinAmount struct {
	FromCurrency string
	FromNetwork  string
	ToCurrency   string
	ToNetwork    string
	Flow         Flow
	MinAmount    decimal.Decimal
}

// SyncReport is the operator-visible outcome of one catalog sync run.
type SyncReport struct {
	Processed  int
	Inserted   int
	Updated    int
	Skipped    int
	Duplicates int
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
