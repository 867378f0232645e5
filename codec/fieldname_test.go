package codec

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeKeys(t *testing.T, w *fieldNameWriter, keys []string) []byte {
	t.Helper()
	sink := NewBufferSink(nil)
	for _, k := range keys {
		require.NoError(t, w.write(sink, k))
	}
	return sink.Bytes()
}

func readKeys(t *testing.T, r *fieldNameReader, data []byte, n int) []string {
	t.Helper()
	src := NewBufferSource(data)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		name, err := r.read(src)
		require.NoError(t, err)
		out = append(out, name)
	}
	return out
}

// TestFieldNameCompressionScenarios pins the exact bytes of the shared
// cross-binding scenarios: indexed references for repeats, prefix sharing,
// and prefix+suffix sharing against the previous key.
func TestFieldNameCompressionScenarios(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		hex  string
	}{
		{
			name: "indexed and prefix shared",
			keys: []string{"aaaaa", "bbbbb", "aaaaa", "aaabb", "aaacc"},
			hex:  "85 6161616161 85 6262626262 a0 c2 03 6262 c2 03 6363",
		},
		{
			name: "prefix and suffix shared",
			keys: []string{"aaaaa", "aaabbb", "aaaccc", "ddd", "dddeee", "dddffeee"},
			hex:  "85 6161616161 c3 03 626262 c3 03 636363 83 646464 86 646464656565 e2 03 03 6666",
		},
		{
			name: "short last key disables sharing",
			keys: []string{"abcd", "abcde"},
			hex:  "84 61626364 85 6162636465",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w fieldNameWriter
			data := writeKeys(t, &w, tt.keys)
			require.Equal(t, mustHex(t, tt.hex), data)

			var r fieldNameReader
			require.Equal(t, tt.keys, readKeys(t, &r, data, len(tt.keys)))
		})
	}
}

// TestFieldNameDictionarySync drives the same key sequence through a writer
// and a reader and checks the two dictionaries stay index-identical at every
// step.
func TestFieldNameDictionarySync(t *testing.T) {
	keys := []string{
		"timestamp", "level", "message", "timestamp", "fields", "message",
		"trace_id", "trace_flags", "trace_state", "trace_id",
		"aVeryLongFieldNameThatKeepsGoingWellPastTheInlineLengthLimit",
		"aVeryLongFieldNameThatKeepsGoingWellPastTheInlineLimitToo",
		"x", "y", "x",
	}

	var w fieldNameWriter
	var r fieldNameReader
	for i, k := range keys {
		sink := NewBufferSink(nil)
		require.NoError(t, w.write(sink, k), "key %d", i)
		name, err := r.read(NewBufferSource(sink.Bytes()))
		require.NoError(t, err, "key %d", i)
		require.Equal(t, k, name, "key %d", i)

		require.Len(t, r.indexed, len(w.indexed), "key %d", i)
		for idx, decoded := range r.indexed {
			require.Equal(t, idx, w.indexed[decoded], "key %d dictionary entry %q", i, decoded)
		}
	}
}

// TestFieldNameReemission: any key written once before comes back as an
// indexed reference, at any dictionary size.
func TestFieldNameReemission(t *testing.T) {
	var w fieldNameWriter
	sink := NewBufferSink(nil)
	for i := 0; i < 40; i++ {
		require.NoError(t, w.write(sink, fmt.Sprintf("field_%02d", i)))
	}

	// Index 35 is above the inline length limit, so the reference takes the
	// one-extra-byte form.
	sink.Reset()
	require.NoError(t, w.write(sink, "field_35"))
	require.Equal(t, mustHex(t, "be 06"), sink.Bytes())

	sink.Reset()
	require.NoError(t, w.write(sink, "field_07"))
	require.Equal(t, mustHex(t, "a7"), sink.Bytes())
}

func TestFieldNameLengthForms(t *testing.T) {
	short := strings.Repeat("s", 29)
	mid := strings.Repeat("m", 30)
	wide := strings.Repeat("w", 284)
	wider := strings.Repeat("v", 285)
	huge := strings.Repeat("h", 65819)

	keys := []string{short, mid, wide, wider, huge, mid, huge}
	var w fieldNameWriter
	data := writeKeys(t, &w, keys)

	var r fieldNameReader
	require.Equal(t, keys, readKeys(t, &r, data, len(keys)))
}

func TestFieldNameOverlongRejected(t *testing.T) {
	var w fieldNameWriter
	err := w.write(NewBufferSink(nil), strings.Repeat("x", 65820))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFieldNameMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		hex  string
	}{
		{"value tag in field slot", "40"},
		{"index out of range", "a5"},
		{"prefix beyond last key", "c2 09 6161"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r fieldNameReader
			_, err := r.read(NewBufferSource(mustHex(t, tt.hex)))
			require.ErrorIs(t, err, ErrMalformed)
		})
	}
}

// TestObjectKeyCompressionEndToEnd checks the compression through the public
// API: repeated keys across sibling objects reuse the document dictionary.
func TestObjectKeyCompressionEndToEnd(t *testing.T) {
	row := func(id int64) map[string]any {
		return map[string]any{"id": id, "name": "row", "value": id * 10}
	}
	doc := []any{row(1), row(2), row(3)}

	data, err := Marshal(doc)
	require.NoError(t, err)

	back, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, doc, back)

	// Rows 2 and 3 carry only 1-byte key references, so the whole array is
	// cheaper than three dictionary-less copies of row 1.
	oneRow, err := Marshal([]any{row(1)})
	require.NoError(t, err)
	require.Less(t, len(data), 3*len(oneRow))
}
