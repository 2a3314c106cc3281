package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Source yields raw catalog rows.
type Source interface {
	Rows(ctx context.Context) ([]RawRow, error)
	String() string
}

// FileSource reads a delimited text file. Comma defaults to ','.
type FileSource struct {
	Path  string
	Comma rune
}

func (s FileSource) String() string { return s.Path }

func (s FileSource) Rows(ctx context.Context) ([]RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRows(f, s.Comma)
}

// ReadRows parses a header line followed by records. Only the required
// columns are kept; their position in the header does not matter.
func ReadRows(r io.Reader, comma rune) ([]RawRow, error) {
	cr := csv.NewReader(r)
	if comma != 0 {
		cr.Comma = comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}
	if err != nil {
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	idx := make([]int, len(RequiredColumns))
	for i, name := range RequiredColumns {
		pos, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, name)
		}
		idx[i] = pos
	}

	field := func(rec []string, i int) string {
		if idx[i] < len(rec) {
			return rec[idx[i]]
		}
		return ""
	}

	var rows []RawRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, RawRow{
			Line:           line,
			ProductService: field(rec, 0),
			ListPrice:      field(rec, 1),
			Term:           field(rec, 2),
			QuoteName:      field(rec, 3),
		})
	}
	return rows, nil
}

// Load reads src and normalizes it with rules. Every error is a *LoadError.
func Load(ctx context.Context, src Source, rules Rules) (*Catalog, []Skipped, error) {
	if err := rules.Validate(); err != nil {
		return nil, nil, &LoadError{Source: src.String(), Err: err}
	}
	rows, err := src.Rows(ctx)
	if err != nil {
		return nil, nil, &LoadError{Source: src.String(), Err: err}
	}
	cat, skipped := Normalize(rows, rules)
	return cat, skipped, nil
}
