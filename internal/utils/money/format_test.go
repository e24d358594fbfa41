package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMinor(t *testing.T) {
	assert.Equal(t, "50.00", FormatMinor(5000, "USD"))
	assert.Equal(t, "0.05", FormatMinor(5, "usd"))
	assert.Equal(t, "-1.10", FormatMinor(-110, "EUR"))
	assert.Equal(t, "5000", FormatMinor(5000, "JPY"))
}

func TestParseMajor(t *testing.T) {
	minor, err := ParseMajor("12.50", "NGN")
	require.NoError(t, err)
	assert.Equal(t, int64(1250), minor)

	minor, err = ParseMajor(" 300 ", "XOF")
	require.NoError(t, err)
	assert.Equal(t, int64(300), minor)

	_, err = ParseMajor("1.005", "USD")
	assert.Error(t, err)

	_, err = ParseMajor("abc", "USD")
	assert.Error(t, err)
}

func TestProRata(t *testing.T) {
	tests := []struct {
		name                         string
		part, numerator, denominator int64
		want                         int64
	}{
		{"half", 200, 500, 1000, 100},
		{"rounds down", 200, 333, 1000, 66},
		{"full", 200, 1000, 1000, 200},
		{"zero part", 0, 500, 1000, 0},
		{"zero denominator", 200, 500, 0, 0},
		{"product beyond int64", 1_000_000_000, 10_000_000_000, 10_000_000_000, 1_000_000_000},
		{"large partial", 1_000_000_000, 3_333_333_333, 10_000_000_000, 333_333_333},
		{"max amounts", math.MaxInt64, math.MaxInt64 - 1, math.MaxInt64, math.MaxInt64 - 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProRata(tt.part, tt.numerator, tt.denominator))
		})
	}
}
