package cache

import (
	"strings"

	"github.com/contaro/backend/internal/application/currency"
	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ParseConfiguredRates turns the config rate table ("EUR" = "4.97") into
// typed rates keyed by currency. Unknown codes and non-positive rates are
// rejected so a bad config fails at startup, not at posting time.
func ParseConfiguredRates(raw map[string]string) (map[valueobject.Currency]decimal.Decimal, error) {
	rates := make(map[valueobject.Currency]decimal.Decimal, len(raw))
	for code, value := range raw {
		cur := valueobject.Currency(strings.ToUpper(code))
		if !cur.IsValid() {
			return nil, shared.NewValidationError("Unknown currency code in rate table: " + code)
		}
		if cur == valueobject.BaseCurrency {
			continue // base currency rate is always 1
		}
		rate, err := decimal.NewFromString(value)
		if err != nil || rate.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewValidationError("Invalid exchange rate for " + code + ": " + value)
		}
		rates[cur] = rate
	}
	return rates, nil
}

// NewConfiguredRateProvider builds the static provider from the raw
// config rate table.
func NewConfiguredRateProvider(raw map[string]string) (*currency.StaticRateProvider, error) {
	rates, err := ParseConfiguredRates(raw)
	if err != nil {
		return nil, err
	}
	return currency.NewStaticRateProvider(rates), nil
}
