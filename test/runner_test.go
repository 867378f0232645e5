// ABOUTME: Runs the shared JSON5 test suites against the Go codec
// ABOUTME: Each case must encode to the exact wire bytes and decode back
package test

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/anthropics/yajbe/codec"
)

var bigIntDiff = cmp.Comparer(func(a, b *big.Int) bool { return a.Cmp(b) == 0 })

// TestLoadTestSuites verifies the corpus parses.
func TestLoadTestSuites(t *testing.T) {
	suites, err := LoadAllTestSuites("testdata")
	require.NoError(t, err)
	require.NotEmpty(t, suites)

	t.Logf("loaded %d test suites:", len(suites))
	for _, suite := range suites {
		t.Logf("  - %s: %d test cases", suite.Name, len(suite.TestCases))
		require.NotEmpty(t, suite.TestCases, suite.Name)
	}
}

// TestSuites encodes every case and compares the wire bytes, then decodes
// the wire bytes and compares the logical value.
func TestSuites(t *testing.T) {
	suites, err := LoadAllTestSuites("testdata")
	require.NoError(t, err)

	for _, suite := range suites {
		t.Run(suite.Name, func(t *testing.T) {
			for _, tc := range suite.TestCases {
				t.Run(tc.Description, func(t *testing.T) {
					want, err := tc.WireBytes()
					require.NoError(t, err)
					value, err := tc.LogicalValue()
					require.NoError(t, err)

					data, err := codec.Marshal(value)
					require.NoError(t, err)
					require.Equal(t, want, data, "encoded bytes")

					back, err := codec.Unmarshal(want)
					require.NoError(t, err)
					if diff := cmp.Diff(value, back, bigIntDiff); diff != "" {
						t.Fatalf("decoded value mismatch (-want +got):\n%s", diff)
					}
				})
			}
		})
	}
}

// TestNormalization pins the cross-language value conventions.
func TestNormalization(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected any
	}{
		{"bigint string", "12345n", int64(12345)},
		{"negative bigint string", "-7n", int64(-7)},
		{"past int64", "18446744073709551616n", mustBig(t, "18446744073709551616")},
		{"regular string", "hello", "hello"},
		{"number", float64(123), float64(123)},
		{"array with bigints", []any{"1n", "2n"}, []any{int64(1), int64(2)}},
		{"map with bigint", map[string]any{"f": "9n"}, map[string]any{"f": int64(9)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeValue(tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.expected, got, bigIntDiff); diff != "" {
				t.Fatalf("normalization mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return v
}
