package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		amount   int64
		currency string
		symbol   string
		want     string
	}{
		{1234, "USD", "$", "$12.34"},
		{5, "USD", "$", "$0.05"},
		{-5, "USD", "$", "-$0.05"},
		{0, "EUR", "€", "€0.00"},
		{-250000, "EUR", "€", "-€2500.00"},
		{1500, "JPY", "¥", "¥1500"},
		{1500, "jpy", "¥", "¥1500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.amount, tt.currency, tt.symbol), "Format(%d, %s)", tt.amount, tt.currency)
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "12.34", String(1234, "USD"))
	assert.Equal(t, "-0.50", String(-50, "USD"))
	assert.Equal(t, "7", String(7, "KRW"))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in       string
		currency string
		want     int64
	}{
		{"12.34", "USD", 1234},
		{"12", "USD", 1200},
		{"0.005", "USD", 1},
		{"-0.005", "USD", -1},
		{" 3.1 ", "EUR", 310},
		{"1500", "JPY", 1500},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in, tt.currency)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := Parse("twelve", "USD")
	assert.Error(t, err)

	_, err = Parse("92233720368547758.08", "USD")
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = Parse("1e30", "JPY")
	assert.ErrorIs(t, err, ErrOutOfRange)

	got, err := Parse("92233720368547758.07", "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)
}

func TestSymbol(t *testing.T) {
	assert.Equal(t, "$", Symbol("usd"))
	assert.Equal(t, "€", Symbol("EUR"))
	assert.Equal(t, "NZD ", Symbol("NZD"))
}
