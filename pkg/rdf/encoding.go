// pkg/rdf/encoding.go
package rdf

import (
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ASCII replaces every non-ASCII rune with a decimal numeric character
// reference (&#233;). ASCII input is returned unchanged.
func ASCII(s string) string {
	i := 0
	for i < len(s) && s[i] < utf8.RuneSelf {
		i++
	}
	if i == len(s) {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s) + 16)
	sb.WriteString(s[:i])
	for _, r := range s[i:] {
		if r < utf8.RuneSelf {
			sb.WriteRune(r)
			continue
		}
		sb.WriteString("&#")
		sb.WriteString(strconv.Itoa(int(r)))
		sb.WriteByte(';')
	}
	return sb.String()
}

// ASCIIWriter applies ASCII to everything written through it
type ASCIIWriter struct {
	w io.Writer
}

// NewASCIIWriter wraps w
func NewASCIIWriter(w io.Writer) *ASCIIWriter {
	return &ASCIIWriter{w: w}
}

// WriteString writes s with non-ASCII runes escaped
func (a *ASCIIWriter) WriteString(s string) (int, error) {
	if _, err := io.WriteString(a.w, ASCII(s)); err != nil {
		return 0, err
	}
	return len(s), nil
}

// Write implements io.Writer. Callers must not split a UTF-8 sequence across
// writes.
func (a *ASCIIWriter) Write(p []byte) (int, error) {
	return a.WriteString(string(p))
}
