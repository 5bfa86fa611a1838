// pkg/lookup/file.go
package lookup

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mconlon17/vivo-person-ingest/pkg/tabular"
)

// OpenRecords loads a delimited file keyed by keyColumn. When a key repeats
// the last row wins.
func OpenRecords(name, path, keyColumn string) (*MemoryStore, error) {
	r, err := tabular.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", name, err)
	}
	defer r.Close()

	if err := r.Require([]string{keyColumn}); err != nil {
		return nil, fmt.Errorf("%s store: %w", name, err)
	}

	records := make(map[string]map[string]string)
	for {
		rec, line, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s store %s row %d: %w", name, path, line, err)
		}

		key := strings.TrimSpace(r.Meta.Value(rec, keyColumn))
		if key == "" {
			continue
		}
		fields := make(map[string]string, len(r.Meta.Columns))
		for _, col := range r.Meta.Columns {
			if col.Index < len(rec) {
				fields[col.Name] = strings.TrimSpace(rec[col.Index])
			}
		}
		records[key] = fields
	}

	return NewMemoryStore(name, records), nil
}

// OpenList loads a file with one entry per line. Blank lines and lines
// starting with '#' are skipped; surrounding whitespace is trimmed.
func OpenList(name, path string) (*MemoryStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s list: %w", name, err)
	}
	defer f.Close()

	var keys []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keys = append(keys, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s list: %w", name, err)
	}

	return NewList(name, keys), nil
}
