// Package scanner locates inline behavior code written with the curly-brace
// syntax inside markup text.
//
// The scanner finds the first top-level balanced brace region in a piece of
// text. Nested brace pairs do not end the region, and braces inside single-
// or double-quoted string literals are ignored so that behavior code such as
// { label = "}" } is captured whole. The scanner is a pure function of its
// input and keeps no state between calls.
package scanner

import "errors"

// ErrUnbalanced is returned by Scan when the text opens a brace region that
// is never closed.
var ErrUnbalanced = errors.New("unbalanced closure delimiters")

const (
	openDelim  = '{'
	closeDelim = '}'
	escapeChar = '\\'
)

// Span is an inclusive pair of byte offsets delimiting a brace region.
// A Span of {-1, -1} means no region was found.
type Span struct {
	Start int
	End   int
}

// NoSpan is the Span reported when text contains no brace region.
var NoSpan = Span{Start: -1, End: -1}

// Found reports whether the span delimits a region.
func (s Span) Found() bool {
	return s.Start >= 0 && s.End > s.Start
}

// Inner returns the text strictly between the delimiters.
func (s Span) Inner(text string) string {
	if !s.Found() {
		return ""
	}
	return text[s.Start+1 : s.End]
}

// Outer returns the region including both delimiters.
func (s Span) Outer(text string) string {
	if !s.Found() {
		return ""
	}
	return text[s.Start : s.End+1]
}

// ScanForClosure returns the offsets of the opening delimiter and its
// matching closing delimiter for the first top-level brace region in text.
// It returns (-1, -1) when there is no region or the delimiters do not
// balance.
func ScanForClosure(text string) (int, int) {
	span, err := Scan(text)
	if err != nil {
		return -1, -1
	}
	return span.Start, span.End
}

// Scan is ScanForClosure with a distinct error for text that opens a region
// without closing it. Text with no opening delimiter yields NoSpan and a nil
// error.
func Scan(text string) (Span, error) {
	depth := 0
	start := -1
	var quote byte
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		// Quotes only matter inside a region; prose around it may contain
		// apostrophes.
		if depth > 0 && quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == escapeChar:
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'':
			if depth > 0 {
				quote = c
			}
		case openDelim:
			if depth == 0 {
				start = i
			}
			depth++
		case closeDelim:
			if depth == 0 {
				// stray closer before any region
				continue
			}
			depth--
			if depth == 0 {
				return Span{Start: start, End: i}, nil
			}
		}
	}

	if depth > 0 {
		return NoSpan, ErrUnbalanced
	}
	return NoSpan, nil
}
