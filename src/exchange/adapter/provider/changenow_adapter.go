// Package provider adapts the ChangeNOW client to the exchange domain port,
// translating request/response shapes and classifying failures into the
// domain error taxonomy at the boundary.
package provider

import (
	"context"
	"errors"

	"github.com/blockhaven/backend/src/Infrastructure/changenow"
	"github.com/blockhaven/backend/src/exchange/domain"
)

var _ domain.Provider = (*ChangeNowAdapter)(nil)

type ChangeNowAdapter struct {
	client *changenow.Client
}

func NewChangeNowAdapter(client *changenow.Client) *ChangeNowAdapter {
	return &ChangeNowAdapter{client: client}
}

// mapErr folds client-level failures into the domain taxonomy. Anything the
// provider answered with a structured body becomes a ProviderError; transport
// problems and broken 2xx bodies keep their sentinel class.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *changenow.APIError
	if errors.As(err, &apiErr) {
		return &domain.ProviderError{Code: apiErr.Code, Message: apiErr.Message}
	}
	if errors.Is(err, changenow.ErrMalformedResponse) {
		return domain.ErrProviderContractViolation
	}
	if errors.Is(err, changenow.ErrUnavailable) {
		return domain.ErrProviderUnavailable
	}
	return err
}

func (a *ChangeNowAdapter) CreateExchange(ctx context.Context, req domain.CreateExchangeRequest) (*domain.ProviderExchange, error) {
	out, err := a.client.CreateExchange(ctx, changenow.CreateExchangeRequest{
		FromCurrency:  req.FromCurrency,
		FromNetwork:   req.FromNetwork,
		ToCurrency:    req.ToCurrency,
		ToNetwork:     req.ToNetwork,
		FromAmount:    req.FromAmount,
		ToAmount:      req.ToAmount,
		Address:       req.Address,
		ExtraID:       req.ExtraID,
		RefundAddress: req.RefundAddress,
		RefundExtraID: req.RefundExtraID,
		UserID:        req.UserID,
		ContactEmail:  req.ContactEmail,
		Flow:          string(req.Flow),
		Type:          string(req.Type),
		RateID:        req.RateID,
	}, req.ClientIP)
	if err != nil {
		return nil, mapErr(err)
	}
	return &domain.ProviderExchange{
		ID:                out.ID,
		FromAmount:        out.FromAmount,
		ToAmount:          out.ToAmount,
		Flow:              domain.Flow(out.Flow),
		Type:              domain.ExchangeType(out.Type),
		PayinAddress:      out.PayinAddress,
		PayoutAddress:     out.PayoutAddress,
		PayinExtraID:      out.PayinExtraID,
		PayoutExtraID:     out.PayoutExtraID,
		FromCurrency:      out.FromCurrency,
		FromNetwork:       out.FromNetwork,
		ToCurrency:        out.ToCurrency,
		ToNetwork:         out.ToNetwork,
		RefundAddress:     out.RefundAddress,
		RefundExtraID:     out.RefundExtraID,
		PayoutExtraIDName: out.PayoutExtraIDName,
		RateID:            out.RateID,
	}, nil
}

func (a *ChangeNowAdapter) GetExchangeStatus(ctx context.Context, transactionID string) (*domain.ProviderStatus, error) {
	out, err := a.client.GetExchangeStatus(ctx, transactionID)
	if err != nil {
		return nil, mapErr(err)
	}
	return &domain.ProviderStatus{
		ID:       out.ID,
		Status:   domain.TransactionStatus(out.Status),
		ToAmount: out.ToAmount,
	}, nil
}

func (a *ChangeNowAdapter) ListCurrencies(ctx context.Context) ([]domain.ProviderCurrency, error) {
	raw, err := a.client.ListCurrencies(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]domain.ProviderCurrency, 0, len(raw))
	for _, c := range raw {
		out = append(out, domain.ProviderCurrency{
			Ticker:             c.Ticker,
			Network:            c.Network,
			Name:               c.Name,
			Image:              c.Image,
			HasExternalID:      c.HasExternalID,
			IsExtraIDSupported: c.IsExtraIDSupported,
			IsFiat:             c.IsFiat,
			Featured:           c.Featured,
			IsStable:           c.IsStable,
			SupportsFixedRate:  c.SupportsFixedRate,
			TokenContract:      c.TokenContract,
			Buy:                c.Buy,
			Sell:               c.Sell,
			LegacyTicker:       c.LegacyTicker,
		})
	}
	return out, nil
}

func (a *ChangeNowAdapter) ListPairs(ctx context.Context, filter domain.PairFilter) ([]domain.ProviderPair, error) {
	raw, err := a.client.ListPairs(ctx, changenow.PairListOptions{
		FromCurrency: filter.FromCurrency,
		ToCurrency:   filter.ToCurrency,
		FromNetwork:  filter.FromNetwork,
		ToNetwork:    filter.ToNetwork,
		Flow:         filter.Flow,
	})
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]domain.ProviderPair, 0, len(raw))
	for _, p := range raw {
		out = append(out, domain.ProviderPair{
			FromCurrency:    p.FromCurrency,
			FromCurrencyAlt: p.FromCurrencyAlt,
			From:            p.From,
			FromNetwork:     p.FromNetwork,
			FromNetworkAlt:  p.FromNetworkAlt,
			ToCurrency:      p.ToCurrency,
			ToCurrencyAlt:   p.ToCurrencyAlt,
			To:              p.To,
			ToNetwork:       p.ToNetwork,
			ToNetworkAlt:    p.ToNetworkAlt,
			Network:         p.Network,
			Flow:            p.Flow,
			FlowType:        p.FlowType,
			Flows:           p.Flows,
		})
	}
	return out, nil
}

func (a *ChangeNowAdapter) GetEstimatedAmount(ctx context.Context, req domain.EstimateRequest) (*domain.Estimate, error) {
	out, err := a.client.GetEstimatedAmount(ctx, changenow.EstimateOptions{
		FromCurrency: req.FromCurrency,
		ToCurrency:   req.ToCurrency,
		FromAmount:   req.FromAmount,
		ToAmount:     req.ToAmount,
		FromNetwork:  req.FromNetwork,
		ToNetwork:    req.ToNetwork,
		Flow:         string(req.Flow),
		Type:         string(req.Type),
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return &domain.Estimate{
		FromCurrency: out.FromCurrency,
		FromNetwork:  out.FromNetwork,
		ToCurrency:   out.ToCurrency,
		ToNetwork:    out.ToNetwork,
		Flow:         domain.Flow(out.Flow),
		Type:         domain.ExchangeType(out.Type),
		RateID:       out.RateID,
		ValidUntil:   out.ValidUntil,
		FromAmount:   out.FromAmount,
		ToAmount:     out.ToAmount,
	}, nil
}

func (a *ChangeNowAdapter) GetMinAmount(ctx context.Context, req domain.EstimateRequest) (*domain.MinAmount, error) {
	out, err := a.client.GetMinAmount(ctx, req.FromCurrency, req.ToCurrency, req.FromNetwork, req.ToNetwork, string(req.Flow))
	if err != nil {
		return nil, mapErr(err)
	}
	return &domain.MinAmount{
		FromCurrency: out.FromCurrency,
		FromNetwork:  out.FromNetwork,
		ToCurrency:   out.ToCurrency,
		ToNetwork:    out.ToNetwork,
		Flow:         domain.Flow(out.Flow),
		MinAmount:    out.MinAmount,
	}, nil
}
