package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m, err := New(1500, "eur")
	require.NoError(t, err)
	assert.Equal(t, Money{Amount: 1500, Currency: "EUR"}, m)

	_, err = New(10, "EURO")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestArithmetic(t *testing.T) {
	sum, err := Must(5000, "EUR").Add(Must(2500, "EUR"))
	require.NoError(t, err)
	assert.Equal(t, int64(7500), sum.Amount)

	_, err = Must(5000, "EUR").Add(Must(1, "USD"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	assert.Equal(t, Must(15000, "EUR"), Must(5000, "EUR").Multiply(3))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Must(0, "EUR").Validate())
	assert.ErrorIs(t, Money{Amount: -1, Currency: "EUR"}.Validate(), ErrNegativeAmount)
	assert.ErrorIs(t, Money{Amount: 1}.Validate(), ErrInvalidCurrency)
}

func TestString(t *testing.T) {
	assert.Equal(t, "150.05 EUR", Must(15005, "EUR").String())
}
