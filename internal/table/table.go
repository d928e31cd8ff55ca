// Package table implements the in-memory CSV table model shared by the
// reconciler, the join engine, and the importer. Column operations are
// named rather than positional: callers address columns by header, never by
// index.
package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"filmtag/internal/apperr"
)

// Table is a header row plus data rows. Every row has exactly len(Header)
// cells once it has passed through Read or AppendRow.
type Table struct {
	Header []string
	Rows   [][]string
}

// New creates an empty table with the given header.
func New(header ...string) *Table {
	return &Table{Header: header}
}

// Read parses comma-delimited UTF-8 input. The first record is the header
// and is required; input without one is rejected with apperr.ErrEmptyInput.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("table: missing header row: %w", apperr.ErrEmptyInput)
	}
	if err != nil {
		return nil, fmt.Errorf("table: read header: %w", err)
	}

	t := &Table{Header: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return nil, fmt.Errorf("table: read row %d: %w", len(t.Rows)+2, err)
		}
		t.Rows = append(t.Rows, rec)
	}
}

// ReadFile reads path as a CSV table.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: open %s: %w", path, err)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("table: %s: %w", path, err)
	}
	return t, nil
}

// Write serialises the table as CSV, header first.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("table: write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("table: write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("table: flush: %w", err)
	}
	return nil
}

// Bytes returns the CSV serialisation of the table.
func (t *Table) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of name in the header, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether name appears in the header.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) != -1
}

// AddColumn appends a new column filled with fill for every existing row.
func (t *Table) AddColumn(name, fill string) {
	t.Header = append(t.Header, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], fill)
	}
}

// Get returns the cell at row i in the named column. Out-of-range rows and
// unknown columns yield the empty string.
func (t *Table) Get(i int, name string) string {
	if i < 0 || i >= len(t.Rows) {
		return ""
	}
	c := t.ColumnIndex(name)
	if c < 0 || c >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][c]
}

// AppendRow adds a data row. Short rows are padded with empty cells, long
// rows truncated, so the table stays rectangular.
func (t *Table) AppendRow(cells ...string) {
	row := make([]string, len(t.Header))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Select returns a new table containing the named columns in the given
// order. This is the named-column replacement for positional reordering.
func (t *Table) Select(names ...string) (*Table, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		c := t.ColumnIndex(n)
		if c < 0 {
			return nil, fmt.Errorf("table: select %q: %w", n, apperr.ErrMissingColumn)
		}
		idx[i] = c
	}

	out := &Table{Header: append([]string(nil), names...)}
	for _, row := range t.Rows {
		cells := make([]string, len(idx))
		for i, c := range idx {
			if c < len(row) {
				cells[i] = row[c]
			}
		}
		out.Rows = append(out.Rows, cells)
	}
	return out, nil
}

// Column returns all values of the named column in row order.
func (t *Table) Column(name string) []string {
	c := t.ColumnIndex(name)
	if c < 0 {
		return nil
	}
	out := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if c < len(row) {
			out = append(out, row[c])
		} else {
			out = append(out, "")
		}
	}
	return out
}
