package currency

import (
	"context"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RateProvider resolves exchange rates into the base currency.
// Implementations may serve fixed configured rates or cached daily rates.
type RateProvider interface {
	// Rate returns how many units of `to` one unit of `from` buys.
	Rate(ctx context.Context, from, to valueobject.Currency) (decimal.Decimal, error)
}

// Service converts document amounts between currencies.
type Service struct {
	provider RateProvider
}

func NewService(provider RateProvider) *Service {
	return &Service{provider: provider}
}

// ResolveRate returns the exchange rate for a document. An explicit
// positive rate on the document wins; otherwise the provider is asked.
// Base currency documents always resolve to 1.
func (s *Service) ResolveRate(ctx context.Context, docCurrency valueobject.Currency, explicit decimal.Decimal) (decimal.Decimal, error) {
	if !docCurrency.IsValid() {
		return decimal.Zero, shared.NewValidationError("Invalid currency code")
	}
	if docCurrency == valueobject.BaseCurrency {
		return decimal.NewFromInt(1), nil
	}
	if explicit.GreaterThan(decimal.Zero) {
		return explicit, nil
	}
	if s.provider == nil {
		return decimal.Zero, shared.NewValidationError("No exchange rate available for " + string(docCurrency))
	}
	return s.provider.Rate(ctx, docCurrency, valueobject.BaseCurrency)
}

// ToBase converts an amount in the given currency to the base currency.
func (s *Service) ToBase(ctx context.Context, m valueobject.Money) (valueobject.Money, error) {
	if m.Currency() == valueobject.BaseCurrency {
		return m, nil
	}

	rate, err := s.ResolveRate(ctx, m.Currency(), decimal.Zero)
	if err != nil {
		return valueobject.Money{}, err
	}
	return m.Convert(valueobject.BaseCurrency, rate)
}

// StaticRateProvider serves rates from a fixed table, keyed by currency
// pair. Used for configured rates and in tests.
type StaticRateProvider struct {
	rates map[valueobject.Currency]decimal.Decimal
}

// NewStaticRateProvider builds a provider from per-currency rates into
// the base currency.
func NewStaticRateProvider(rates map[valueobject.Currency]decimal.Decimal) *StaticRateProvider {
	if rates == nil {
		rates = make(map[valueobject.Currency]decimal.Decimal)
	}
	return &StaticRateProvider{rates: rates}
}

func (p *StaticRateProvider) Rate(_ context.Context, from, to valueobject.Currency) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	if to != valueobject.BaseCurrency {
		return decimal.Zero, shared.NewValidationError("Only rates into the base currency are configured")
	}

	rate, ok := p.rates[from]
	if !ok || rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewValidationError("No exchange rate configured for " + string(from))
	}
	return rate, nil
}

var _ RateProvider = (*StaticRateProvider)(nil)
