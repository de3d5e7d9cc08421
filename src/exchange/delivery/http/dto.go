// Package http exposes the exchange REST surface.
//
// Schemes: http
// Host: localhost:8080
// BasePath: /api
// Version: 1.0.0
//
// Consumes:
// - application/json
//
// Produces:
// - application/json
//
// swagger:meta
package http

import (
	"time"

	"github.com/blockhaven/backend/src/exchange/domain"
	"github.com/shopspring/decimal"
)

// CreateExchangeRequestBody is the payload to create an exchange transaction.
// swagger:model CreateExchangeRequestBody
type CreateExchangeRequestBody struct {
	FromCurrency  string `json:"fromCurrency" example:"btc"`
	FromNetwork   string `json:"fromNetwork" example:"btc"`
	ToCurrency    string `json:"toCurrency" example:"eth"`
	ToNetwork     string `json:"toNetwork" example:"eth"`
	FromAmount    string `json:"fromAmount" example:"0.05"` // decimal string
	ToAmount      string `json:"toAmount,omitempty" example:"1.2"`
	Address       string `json:"address" example:"0xabc..."`
	ExtraID       string `json:"extraId,omitempty"`
	RefundAddress string `json:"refundAddress,omitempty"`
	RefundExtraID string `json:"refundExtraId,omitempty"`
	ContactEmail  string `json:"contactEmail,omitempty" example:"user@example.com"`
	Flow          string `json:"flow,omitempty" example:"standard"`
	Type          string `json:"type,omitempty" example:"direct"`
	RateID        string `json:"rateId,omitempty"`
	UserID        string `json:"userId,omitempty"`
}

// ExchangeCreatedDto is the provider-confirmed creation result.
// swagger:model ExchangeCreatedDto
type ExchangeCreatedDto struct {
	ID                string          `json:"id" example:"d1f3e9a4b5"`
	FromAmount        decimal.Decimal `json:"fromAmount" example:"0.05"`
	ToAmount          decimal.Decimal `json:"toAmount" example:"1.2"`
	Flow              string          `json:"flow" example:"standard"`
	Type              string          `json:"type" example:"direct"`
	PayinAddress      string          `json:"payinAddress"`
	PayoutAddress     string          `json:"payoutAddress"`
	PayinExtraID      string          `json:"payinExtraId,omitempty"`
	PayoutExtraID     string          `json:"payoutExtraId,omitempty"`
	FromCurrency      string          `json:"fromCurrency"`
	FromNetwork       string          `json:"fromNetwork"`
	ToCurrency        string          `json:"toCurrency"`
	ToNetwork         string          `json:"toNetwork"`
	RefundAddress     string          `json:"refundAddress,omitempty"`
	RefundExtraID     string          `json:"refundExtraId,omitempty"`
	PayoutExtraIDName string          `json:"payoutExtraIdName,omitempty"`
	RateID            string          `json:"rateId,omitempty"`
}

func ExchangeCreatedDtoFromDomain(e domain.ProviderExchange) ExchangeCreatedDto {
	return ExchangeCreatedDto{
		ID:                e.ID,
		FromAmount:        e.FromAmount,
		ToAmount:          e.ToAmount,
		Flow:              string(e.Flow),
		Type:              string(e.Type),
		PayinAddress:      e.PayinAddress,
		PayoutAddress:     e.PayoutAddress,
		PayinExtraID:      e.PayinExtraID,
		PayoutExtraID:     e.PayoutExtraID,
		FromCurrency:      e.FromCurrency,
		FromNetwork:       e.FromNetwork,
		ToCurrency:        e.ToCurrency,
		ToNetwork:         e.ToNetwork,
		RefundAddress:     e.RefundAddress,
		RefundExtraID:     e.RefundExtraID,
		PayoutExtraIDName: e.PayoutExtraIDName,
		RateID:            e.RateID,
	}
}

// ExchangeDto is one locally persisted exchange row.
// swagger:model ExchangeDto
type ExchangeDto struct {
	ID            uint             `json:"id" example:"42"`
	TransactionID string           `json:"transactionId" example:"d1f3e9a4b5"`
	FromCurrency  string           `json:"fromCurrency" example:"btc"`
	FromNetwork   string           `json:"fromNetwork" example:"btc"`
	ToCurrency    string           `json:"toCurrency" example:"eth"`
	ToNetwork     string           `json:"toNetwork" example:"eth"`
	FromAmount    decimal.Decimal  `json:"fromAmount" example:"0.05"`
	ToAmount      *decimal.Decimal `json:"toAmount,omitempty" example:"1.2"`
	PayinAddress  string           `json:"payinAddress"`
	PayoutAddress string           `json:"payoutAddress"`
	PayinExtraID  *string          `json:"payinExtraId,omitempty"`
	PayoutExtraID *string          `json:"payoutExtraId,omitempty"`
	RefundAddress *string          `json:"refundAddress,omitempty"`
	Flow          string           `json:"flow" example:"standard"`
	Type          string           `json:"type" example:"direct"`
	Status        string           `json:"status" example:"waiting"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

func ExchangeDtoFromDomain(e *domain.Exchange) ExchangeDto {
	return ExchangeDto{
		ID:            e.ID,
		TransactionID: e.TransactionID,
		FromCurrency:  e.FromCurrency,
		FromNetwork:   e.FromNetwork,
		ToCurrency:    e.ToCurrency,
		ToNetwork:     e.ToNetwork,
		FromAmount:    e.FromAmount,
		ToAmount:      e.ToAmount,
		PayinAddress:  e.PayinAddress,
		PayoutAddress: e.PayoutAddress,
		PayinExtraID:  e.PayinExtraID,
		PayoutExtraID: e.PayoutExtraID,
		RefundAddress: e.RefundAddress,
		Flow:          string(e.Flow),
		Type:          string(e.Type),
		Status:        string(e.Status),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func ExchangeDtosFromDomain(rows []domain.Exchange) []ExchangeDto {
	dtos := make([]ExchangeDto, len(rows))
	for i := range rows {
		dtos[i] = ExchangeDtoFromDomain(&rows[i])
	}
	return dtos
}

// CurrencyDto is one tradable currency.
// swagger:model CurrencyDto
type CurrencyDto struct {
	Ticker            string `json:"ticker" example:"btc"`
	Network           string `json:"network" example:"btc"`
	Name              string `json:"name" example:"Bitcoin"`
	Image             string `json:"image,omitempty"`
	HasExternalID     bool   `json:"hasExternalId"`
	IsFiat            bool   `json:"isFiat"`
	Featured          bool   `json:"featured"`
	IsStable          bool   `json:"isStable"`
	SupportsFixedRate bool   `json:"supportsFixedRate"`
	Buy               bool   `json:"buy"`
	Sell              bool   `json:"sell"`
}

func CurrencyDtoFromDomain(c domain.Currency) CurrencyDto {
	return CurrencyDto{
		Ticker:            c.Ticker,
		Network:           c.Network,
		Name:              c.Name,
		Image:             c.ImageURL,
		HasExternalID:     c.HasExternalID,
		IsFiat:            c.IsFiat,
		Featured:          c.Featured,
		IsStable:          c.IsStable,
		SupportsFixedRate: c.SupportsFixedRate,
		Buy:               c.BuyEnabled,
		Sell:              c.SellEnabled,
	}
}

// PairLegDto is one side of an enhanced pair.
// swagger:model PairLegDto
type PairLegDto struct {
	Ticker   string `json:"ticker" example:"btc"`
	Network  string `json:"network" example:"btc"`
	Name     string `json:"name" example:"Bitcoin"`
	Image    string `json:"image,omitempty"`
	Featured bool   `json:"featured"`
}

// EnhancedPairDto is a pair joined with display metadata on both legs.
// swagger:model EnhancedPairDto
type EnhancedPairDto struct {
	From          PairLegDto `json:"from"`
	To            PairLegDto `json:"to"`
	FlowStandard  bool       `json:"flowStandard"`
	FlowFixedRate bool       `json:"flowFixedRate"`
}

func EnhancedPairDtoFromDomain(p domain.EnhancedPair) EnhancedPairDto {
	return EnhancedPairDto{
		From:          pairLegDto(p.From),
		To:            pairLegDto(p.To),
		FlowStandard:  p.FlowStandard,
		FlowFixedRate: p.FlowFixedRate,
	}
}

func pairLegDto(l domain.PairLeg) PairLegDto {
	return PairLegDto{
		Ticker:   l.Ticker,
		Network:  l.Network,
		Name:     l.Name,
		Image:    l.ImageURL,
		Featured: l.Featured,
	}
}

// EstimateDto is the provider's conversion estimate.
// swagger:model EstimateDto
type EstimateDto struct {
	FromCurrency string          `json:"fromCurrency"`
	FromNetwork  string          `json:"fromNetwork"`
	ToCurrency   string          `json:"toCurrency"`
	ToNetwork    string          `json:"toNetwork"`
	Flow         string          `json:"flow"`
	Type         string          `json:"type"`
	RateID       string          `json:"rateId,omitempty"`
	ValidUntil   string          `json:"validUntil,omitempty"`
	FromAmount   decimal.Decimal `json:"fromAmount"`
	ToAmount     decimal.Decimal `json:"toAmount"`
}

func EstimateDtoFromDomain(e *domain.Estimate) EstimateDto {
	return EstimateDto{
		FromCurrency: e.FromCurrency,
		FromNetwork:  e.FromNetwork,
		ToCurrency:   e.ToCurrency,
		ToNetwork:    e.ToNetwork,
		Flow:         string(e.Flow),
		Type:         string(e.Type),
		RateID:       e.RateID,
		ValidUntil:   e.ValidUntil,
		FromAmount:   e.FromAmount,
		ToAmount:     e.ToAmount,
	}
}

// MinAmountDto is the smallest exchangeable amount for a pair.
// swagger:model MinAmountDto
type MinAmountDto struct {
	FromCurrency string          `json:"fromCurrency"`
	FromNetwork  string          `json:"fromNetwork"`
	ToCurrency   string          `json:"toCurrency"`
	ToNetwork    string          `json:"toNetwork"`
	Flow         string          `json:"flow"`
	MinAmount    decimal.Decimal `json:"minAmount"`
}

// SyncReportDto summarizes one catalog sync run.
// swagger:model SyncReportDto
type SyncReportDto struct {
	Processed  int `json:"processed" example:"51234"`
	Inserted   int `json:"inserted" example:"120"`
	Updated    int `json:"updated" example:"4"`
	Skipped    int `json:"skipped" example:"2"`
	Duplicates int `json:"duplicates" example:"17"`
}

func SyncReportDtoFromDomain(r *domain.SyncReport) SyncReportDto {
	if r == nil {
		return SyncReportDto{}
	}
	return SyncReportDto{
		Processed:  r.Processed,
		Inserted:   r.Inserted,
		Updated:    r.Updated,
		Skipped:    r.Skipped,
		Duplicates: r.Duplicates,
	}
}
