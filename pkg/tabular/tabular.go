// pkg/tabular/tabular.go

// Package tabular reads delimited text files with a header row.
package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/mconlon17/vivo-person-ingest/pkg/model"
)

// ErrMissingHeader is returned for empty input
var ErrMissingHeader = errors.New("missing header")

// Reader yields the data records of a delimited file
type Reader struct {
	csv    *csv.Reader
	closer io.Closer
	Meta   *model.ExtractMetadata
	line   int
}

// Open opens path for reading. The caller must Close the reader.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader wraps r. A UTF-8 or UTF-16 byte order mark is honored and
// removed; the delimiter is taken from the header line.
func NewReader(r io.Reader, source string) (*Reader, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	br := bufio.NewReader(decoded)

	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%s: %w", source, ErrMissingHeader)
		}
		return nil, fmt.Errorf("%s: failed to read header: %w", source, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	return &Reader{
		csv:  cr,
		Meta: model.NewExtractMetadata(source, header),
	}, nil
}

// Next returns the next record and its 1-based data row number, or io.EOF
func (r *Reader) Next() ([]string, int, error) {
	for {
		rec, err := r.csv.Read()
		if err != nil {
			return nil, 0, err
		}
		r.line++
		if blank(rec) {
			continue
		}
		return rec, r.line, nil
	}
}

// Require fails when any of the named columns is missing from the header
func (r *Reader) Require(columns []string) error {
	if missing := r.Meta.Missing(columns); len(missing) > 0 {
		return fmt.Errorf("%s: missing required header column(s): %s", r.Meta.Source, strings.Join(missing, ", "))
	}
	return nil
}

// Close releases the underlying file, if any
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// sniffDelimiter picks the most frequent of '|', tab and ',' on the first
// line, defaulting to ','
func sniffDelimiter(br *bufio.Reader) rune {
	peek, _ := br.Peek(4096)
	if i := bytes.IndexByte(peek, '\n'); i >= 0 {
		peek = peek[:i]
	}

	best, bestCount := ',', bytes.Count(peek, []byte{','})
	for _, d := range []rune{'|', '\t'} {
		if n := bytes.Count(peek, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
