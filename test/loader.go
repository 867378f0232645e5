// ABOUTME: Loads JSON5 test suites shared across YAJBE language bindings
// ABOUTME: Cases pair logical values with their expected wire bytes as hex
package test

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aeolun/json5"
)

// TestSuite is one suite loaded from a .test.json5 file.
type TestSuite struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	TestCases   []TestCase `json:"test_cases"`
}

// TestCase pairs a logical value with its expected encoding.
//
// JSON5 cannot carry the full logical model directly, so values use the
// cross-language conventions: integers are strings with an "n" suffix
// ("25n"), plain numbers are float64, and the Type field forces "f32"
// (float32) or "bytes" (hex-encoded byte string).
type TestCase struct {
	Description string `json:"description"`
	Value       any    `json:"value"`
	Type        string `json:"type,omitempty"`
	Hex         string `json:"hex"`
}

// WireBytes decodes the expected encoding; spaces are cosmetic.
func (c *TestCase) WireBytes() ([]byte, error) {
	return hex.DecodeString(strings.ReplaceAll(c.Hex, " ", ""))
}

// LogicalValue normalizes the JSON5 value into the decoder's value model.
func (c *TestCase) LogicalValue() (any, error) {
	switch c.Type {
	case "":
		return normalizeValue(c.Value)
	case "f32":
		f, ok := c.Value.(float64)
		if !ok {
			return nil, fmt.Errorf("f32 case %q holds %T", c.Description, c.Value)
		}
		return float32(f), nil
	case "bytes":
		s, ok := c.Value.(string)
		if !ok {
			return nil, fmt.Errorf("bytes case %q holds %T", c.Description, c.Value)
		}
		return hex.DecodeString(s)
	default:
		return nil, fmt.Errorf("case %q has unknown type %q", c.Description, c.Type)
	}
}

// normalizeValue converts "123n" strings to int64 (or *big.Int past 64
// bits), recursing through arrays and objects.
func normalizeValue(v any) (any, error) {
	switch t := v.(type) {
	case string:
		if n, ok := strings.CutSuffix(t, "n"); ok {
			if i, err := strconv.ParseInt(n, 10, 64); err == nil {
				return i, nil
			}
			if z, ok := new(big.Int).SetString(n, 10); ok {
				return z, nil
			}
		}
		return t, nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			n, err := normalizeValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			n, err := normalizeValue(item)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	default:
		return v, nil
	}
}

// LoadTestSuite loads a single suite from a JSON5 file.
func LoadTestSuite(path string) (*TestSuite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test file %s: %w", path, err)
	}

	var suite TestSuite
	if err := json5.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("failed to parse test file %s: %w", path, err)
	}
	return &suite, nil
}

// LoadAllTestSuites loads every .test.json5 suite under rootDir.
func LoadAllTestSuites(rootDir string) ([]*TestSuite, error) {
	var suites []*TestSuite

	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".test.json5") {
			suite, err := LoadTestSuite(path)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", path, err)
			}
			suites = append(suites, suite)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return suites, nil
}
