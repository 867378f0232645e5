package codec

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func bigFromString(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return v
}

func TestBigIntWires(t *testing.T) {
	tests := []struct {
		name  string
		value *big.Int
		hex   string
	}{
		{"zero", big.NewInt(0), "07 00 00 00 00"},
		{"one", big.NewInt(1), "07 00 00 00 01 01"},
		{"minus one", big.NewInt(-1), "07 04 00 00 01 01"},
		{"256", big.NewInt(256), "07 00 00 00 02 0100"},
		{"past int64", bigFromString(t, "18446744073709551616"), "07 00 00 00 09 010000000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.value)
			require.NoError(t, err)
			require.Equal(t, mustHex(t, tt.hex), data)

			back, err := Unmarshal(data)
			require.NoError(t, err)
			require.Zero(t, tt.value.Cmp(back.(*big.Int)))
		})
	}
}

func TestBigDecimalRoundTrip(t *testing.T) {
	tests := []*BigDecimal{
		{Unscaled: big.NewInt(1234), Scale: 2, Precision: 4},
		{Unscaled: big.NewInt(-1234), Scale: 2, Precision: 4},
		{Unscaled: big.NewInt(5), Scale: -3, Precision: 1},
		{Unscaled: bigFromString(t, "123456789012345678901234567890"), Scale: 10, Precision: 30},
		{Unscaled: big.NewInt(7), Scale: 1 << 20, Precision: 1 << 20},
	}
	for _, d := range tests {
		data, err := Marshal(d)
		require.NoError(t, err)

		back, err := Unmarshal(data)
		require.NoError(t, err)
		got, ok := back.(*BigDecimal)
		require.True(t, ok)
		require.Zero(t, d.Unscaled.Cmp(got.Unscaled))
		require.Equal(t, d.Scale, got.Scale)
		require.Equal(t, d.Precision, got.Precision)
	}
}

func TestBigDecimalWires(t *testing.T) {
	d := &BigDecimal{Unscaled: big.NewInt(1234), Scale: 2, Precision: 4}
	data, err := Marshal(d)
	require.NoError(t, err)
	require.Equal(t, mustHex(t, "07 00 02 04 02 04d2"), data)

	neg := &BigDecimal{Unscaled: big.NewInt(1234), Scale: -2, Precision: 4}
	data, err = Marshal(neg)
	require.NoError(t, err)
	require.Equal(t, mustHex(t, "07 80 02 04 02 04d2"), data)
}

// TestBigIntSignExtensionPad: a producer that pads the magnitude with a
// leading zero before a high-bit byte decodes to the same logical value.
func TestBigIntSignExtensionPad(t *testing.T) {
	padded := mustHex(t, "07 00 00 00 02 00 ff")
	v, err := Unmarshal(padded)
	require.NoError(t, err)
	require.Zero(t, big.NewInt(255).Cmp(v.(*big.Int)))

	// A zero byte before a low-bit byte is a real leading digit, not a pad.
	plain := mustHex(t, "07 00 00 00 02 00 7f")
	v, err = Unmarshal(plain)
	require.NoError(t, err)
	require.Zero(t, big.NewInt(127).Cmp(v.(*big.Int)))
}

func TestBigDecimalTruncated(t *testing.T) {
	data, err := Marshal(&BigDecimal{Unscaled: big.NewInt(1234), Scale: 2, Precision: 4})
	require.NoError(t, err)
	for i := 1; i < len(data); i++ {
		_, err := Unmarshal(data[:i])
		require.ErrorIs(t, err, ErrUnexpectedEOF, "truncated at %d", i)
	}
}
