// Package engine provides the SQLite-backed tabular join engine. Each
// engine is ephemeral: it lives in a private temp directory that is removed
// unconditionally on Close, so no intermediate artifact survives a run.
package engine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"filmtag/internal/table"
)

// Engine wraps a throwaway SQLite database used for one join.
type Engine struct {
	conn *sql.DB
	dir  string
}

// Open creates the temp-backed engine. Callers must Close it on every path.
func Open() (*Engine, error) {
	dir, err := os.MkdirTemp("", "filmtag-join-")
	if err != nil {
		return nil, fmt.Errorf("engine: create temp dir: %w", err)
	}

	dsn := filepath.Join(dir, "join.db") + "?_journal_mode=MEMORY&_busy_timeout=5000"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("engine: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		os.RemoveAll(dir)
		return nil, fmt.Errorf("engine: ping: %w", err)
	}
	return &Engine{conn: conn, dir: dir}, nil
}

// Close closes the connection and removes the backing temp storage.
func (e *Engine) Close() error {
	err := e.conn.Close()
	if rmErr := os.RemoveAll(e.dir); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}

// Load materializes t as a TEXT-column table named name. TEXT affinity keeps
// all join comparisons textual and case-sensitive.
func (e *Engine) Load(name string, t *table.Table) error {
	if len(t.Header) == 0 {
		return fmt.Errorf("engine: load %s: table has no columns", name)
	}

	cols := make([]string, len(t.Header))
	holes := make([]string, len(t.Header))
	for i, h := range t.Header {
		cols[i] = quoteIdent(h) + " TEXT"
		holes[i] = "?"
	}
	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(cols, ", "))
	if _, err := e.conn.Exec(createSQL); err != nil {
		return fmt.Errorf("engine: create %s: %w", name, err)
	}

	tx, err := e.conn.Begin()
	if err != nil {
		return fmt.Errorf("engine: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	insertSQL := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(name), strings.Join(holes, ", "))
	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("engine: prepare insert %s: %w", name, err)
	}
	defer stmt.Close()

	args := make([]any, len(t.Header))
	for _, row := range t.Rows {
		for i := range args {
			if i < len(row) {
				args[i] = row[i]
			} else {
				args[i] = ""
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("engine: insert into %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// LeftJoin joins left against right on exact equality of every key column,
// preserving every left row. It projects leftCols from the left table and
// rightCols from the right; right cells of unmatched rows come back empty.
// The key list is an explicit parameter: physical column order in either
// table is irrelevant. Result order is deterministic (left insertion order,
// then right insertion order for fan-outs).
func (e *Engine) LeftJoin(left, right string, keys, leftCols, rightCols []string) (*table.Table, error) {
	sel := make([]string, 0, len(leftCols)+len(rightCols))
	for _, c := range leftCols {
		sel = append(sel, "l."+quoteIdent(c))
	}
	for _, c := range rightCols {
		sel = append(sel, "r."+quoteIdent(c))
	}

	conds := make([]string, len(keys))
	for i, k := range keys {
		conds[i] = fmt.Sprintf("l.%s = r.%s", quoteIdent(k), quoteIdent(k))
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s AS l LEFT JOIN %s AS r ON %s ORDER BY l.rowid, r.rowid",
		strings.Join(sel, ", "), quoteIdent(left), quoteIdent(right), strings.Join(conds, " AND "),
	)

	rows, err := e.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("engine: join: %w", err)
	}
	defer rows.Close()

	out := table.New(append(append([]string{}, leftCols...), rightCols...)...)
	width := len(leftCols) + len(rightCols)
	for rows.Next() {
		scanned := make([]sql.NullString, width)
		ptrs := make([]any, width)
		for i := range scanned {
			ptrs[i] = &scanned[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("engine: scan: %w", err)
		}
		cells := make([]string, width)
		for i, s := range scanned {
			if s.Valid {
				cells[i] = s.String
			}
		}
		out.AppendRow(cells...)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("engine: join rows: %w", err)
	}
	return out, nil
}

// quoteIdent makes a column or table name safe to splice into SQL. CSV
// headers are user-controlled, so this is not optional.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
