package cache

import (
	"context"
	"testing"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfiguredRates(t *testing.T) {
	t.Run("parses valid rate table", func(t *testing.T) {
		rates, err := ParseConfiguredRates(map[string]string{
			"EUR": "4.9750",
			"usd": "4.58",
		})

		require.NoError(t, err)
		assert.Equal(t, "4.975", rates[valueobject.EUR].String())
		assert.Equal(t, "4.58", rates[valueobject.USD].String())
	})

	t.Run("skips the base currency", func(t *testing.T) {
		rates, err := ParseConfiguredRates(map[string]string{"RON": "1"})

		require.NoError(t, err)
		assert.Empty(t, rates)
	})

	t.Run("rejects unknown currency codes", func(t *testing.T) {
		_, err := ParseConfiguredRates(map[string]string{"XYZ": "2.0"})

		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})

	t.Run("rejects non-positive rates", func(t *testing.T) {
		_, err := ParseConfiguredRates(map[string]string{"EUR": "0"})
		require.Error(t, err)

		_, err = ParseConfiguredRates(map[string]string{"EUR": "-1.5"})
		require.Error(t, err)
	})

	t.Run("rejects unparseable rates", func(t *testing.T) {
		_, err := ParseConfiguredRates(map[string]string{"EUR": "about five"})
		require.Error(t, err)
	})
}

func TestNewConfiguredRateProvider(t *testing.T) {
	provider, err := NewConfiguredRateProvider(map[string]string{"EUR": "4.97"})
	require.NoError(t, err)

	rate, err := provider.Rate(context.Background(), valueobject.EUR, valueobject.BaseCurrency)
	require.NoError(t, err)
	assert.Equal(t, "4.97", rate.String())
}
