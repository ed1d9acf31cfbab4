package currency

import (
	"context"
	"testing"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(NewStaticRateProvider(map[valueobject.Currency]decimal.Decimal{
		valueobject.EUR: decimal.RequireFromString("4.97"),
		valueobject.USD: decimal.RequireFromString("4.58"),
	}))
}

func TestResolveRate_BaseCurrencyIsOne(t *testing.T) {
	svc := newTestService()

	rate, err := svc.ResolveRate(context.Background(), valueobject.RON, decimal.Zero)

	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
}

func TestResolveRate_BaseCurrencyIgnoresExplicitRate(t *testing.T) {
	svc := newTestService()

	rate, err := svc.ResolveRate(context.Background(), valueobject.RON, decimal.RequireFromString("4.97"))

	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
}

func TestResolveRate_ExplicitRateWins(t *testing.T) {
	svc := newTestService()

	rate, err := svc.ResolveRate(context.Background(), valueobject.EUR, decimal.RequireFromString("5.01"))

	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("5.01")))
}

func TestResolveRate_FallsBackToProvider(t *testing.T) {
	svc := newTestService()

	rate, err := svc.ResolveRate(context.Background(), valueobject.EUR, decimal.Zero)

	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("4.97")))
}

func TestResolveRate_NegativeExplicitIgnored(t *testing.T) {
	svc := newTestService()

	rate, err := svc.ResolveRate(context.Background(), valueobject.USD, decimal.NewFromInt(-2))

	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("4.58")))
}

func TestResolveRate_InvalidCurrencyRefused(t *testing.T) {
	svc := newTestService()

	_, err := svc.ResolveRate(context.Background(), valueobject.Currency("XXX"), decimal.Zero)

	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeValidation))
}

func TestResolveRate_UnconfiguredCurrencyRefused(t *testing.T) {
	svc := newTestService()

	_, err := svc.ResolveRate(context.Background(), valueobject.HUF, decimal.Zero)

	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeValidation))
}

func TestResolveRate_NoProviderRefused(t *testing.T) {
	svc := NewService(nil)

	_, err := svc.ResolveRate(context.Background(), valueobject.EUR, decimal.Zero)

	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeValidation))
}

func TestToBase_ConvertsAtProviderRate(t *testing.T) {
	svc := newTestService()
	m, err := valueobject.NewMoney(decimal.NewFromInt(100), valueobject.EUR)
	require.NoError(t, err)

	converted, err := svc.ToBase(context.Background(), m)

	require.NoError(t, err)
	assert.Equal(t, valueobject.RON, converted.Currency())
	assert.True(t, converted.Amount().Equal(decimal.RequireFromString("497")), "amount %s", converted.Amount())
}

func TestToBase_BaseCurrencyUnchanged(t *testing.T) {
	svc := newTestService()
	m := valueobject.NewMoneyRON(decimal.RequireFromString("123.45"))

	converted, err := svc.ToBase(context.Background(), m)

	require.NoError(t, err)
	assert.Equal(t, valueobject.RON, converted.Currency())
	assert.True(t, converted.Amount().Equal(decimal.RequireFromString("123.45")))
}

func TestStaticRateProvider_SameCurrencyIsOne(t *testing.T) {
	p := NewStaticRateProvider(nil)

	rate, err := p.Rate(context.Background(), valueobject.EUR, valueobject.EUR)

	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
}

func TestStaticRateProvider_CrossRateRefused(t *testing.T) {
	p := NewStaticRateProvider(map[valueobject.Currency]decimal.Decimal{
		valueobject.EUR: decimal.RequireFromString("4.97"),
	})

	_, err := p.Rate(context.Background(), valueobject.EUR, valueobject.USD)

	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeValidation))
}
