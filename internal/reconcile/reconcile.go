// Package reconcile makes the metadata and recipe tables join-compatible
// before matching: every join-key column exists in both tables, and no join
// cell is left blank.
package reconcile

import (
	"strings"

	"filmtag/internal/table"
)

// Result reports what reconciliation changed in one table.
type Result struct {
	// Missing lists the join-key columns that were absent from the header
	// and synthesized, in key order.
	Missing []string
	// Normalized counts cells that were blank and rewritten to the sentinel.
	Normalized int
}

// Apply mutates t so that every key column exists (absent ones are added
// filled with sentinel) and every blank key cell holds sentinel instead.
// Non-key columns are never touched or fabricated.
func Apply(t *table.Table, keys []string, sentinel string) Result {
	var res Result

	for _, k := range keys {
		if !t.HasColumn(k) {
			t.AddColumn(k, sentinel)
			res.Missing = append(res.Missing, k)
		}
	}

	idx := make([]int, len(keys))
	for i, k := range keys {
		idx[i] = t.ColumnIndex(k)
	}
	for r := range t.Rows {
		for _, c := range idx {
			if c >= len(t.Rows[r]) {
				continue
			}
			if strings.TrimSpace(t.Rows[r][c]) == "" {
				t.Rows[r][c] = sentinel
				res.Normalized++
			}
		}
	}

	return res
}
