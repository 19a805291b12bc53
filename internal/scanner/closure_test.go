package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanForClosure(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantStart int
		wantEnd   int
	}{
		{name: "simple region", text: "{count}", wantStart: 0, wantEnd: 6},
		{name: "surrounding prose", text: "Total: {count} items", wantStart: 7, wantEnd: 13},
		{name: "nested braces", text: "a{f({x:1})}b", wantStart: 1, wantEnd: 10},
		{name: "double quoted closer", text: `{x:"}"}`, wantStart: 0, wantEnd: 6},
		{name: "single quoted opener", text: `{s = '{'}`, wantStart: 0, wantEnd: 8},
		{name: "escaped quote in literal", text: `{s = "a\"}"}`, wantStart: 0, wantEnd: 11},
		{name: "apostrophe before region", text: "Don't {x}", wantStart: 6, wantEnd: 8},
		{name: "stray closer first", text: "} {y}", wantStart: 2, wantEnd: 4},
		{name: "first of two regions", text: "{a} {b}", wantStart: 0, wantEnd: 2},
		{name: "empty region", text: "{}", wantStart: 0, wantEnd: 1},
		{name: "no delimiters", text: "plain text", wantStart: -1, wantEnd: -1},
		{name: "empty text", text: "", wantStart: -1, wantEnd: -1},
		{name: "unbalanced", text: "{ {x}", wantStart: -1, wantEnd: -1},
		{name: "unterminated string", text: `{x = "}`, wantStart: -1, wantEnd: -1},
		{name: "multi-line code", text: "\n  {\n    let n = 0;\n    if (n) { n++ }\n  }\n", wantStart: 3, wantEnd: 41},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := ScanForClosure(tt.text)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)

			if start >= 0 {
				assert.Equal(t, byte('{'), tt.text[start])
				assert.Equal(t, byte('}'), tt.text[end])
			}
		})
	}
}

func TestScan_Inner(t *testing.T) {
	span, err := Scan("<p>{count}</p>")
	require.NoError(t, err)
	require.True(t, span.Found())

	assert.Equal(t, "count", span.Inner("<p>{count}</p>"))
	assert.Equal(t, "{count}", span.Outer("<p>{count}</p>"))
}

func TestScan_Unbalanced(t *testing.T) {
	t.Run("open without close", func(t *testing.T) {
		span, err := Scan("{ let a = 1;")
		assert.ErrorIs(t, err, ErrUnbalanced)
		assert.Equal(t, NoSpan, span)
		assert.False(t, span.Found())
	})

	t.Run("no opener is not an error", func(t *testing.T) {
		span, err := Scan("closing only }")
		assert.NoError(t, err)
		assert.Equal(t, NoSpan, span)
	})
}

func TestScan_DoesNotMutateInput(t *testing.T) {
	text := `before {x:"}"} after`
	original := string([]byte(text))

	_, _ = Scan(text)
	_, _ = ScanForClosure(text)

	assert.Equal(t, original, text)
}

func TestSpan_NotFound(t *testing.T) {
	assert.Equal(t, "", NoSpan.Inner("{x}"))
	assert.Equal(t, "", NoSpan.Outer("{x}"))
}
