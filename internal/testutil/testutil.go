// Package testutil provides shared helpers for building metadata and recipe
// tables and temporary photo libraries.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"filmtag/internal/models"
	"filmtag/internal/table"
)

// MetaRow describes one photograph for MetaTable.
type MetaRow struct {
	Source string
	Name   string
	Attrs  map[string]string
}

// RecipeRow describes one recipe definition for RecipeTable.
type RecipeRow struct {
	Name  string
	Attrs map[string]string
}

// Attrs returns values for all 14 join attributes in schema order, defaulting
// to the sentinel and applying overrides.
func Attrs(overrides map[string]string) []string {
	keys := models.JoinAttributes()
	out := make([]string, len(keys))
	for i, k := range keys {
		if v, ok := overrides[k]; ok {
			out[i] = v
		} else {
			out[i] = models.Sentinel
		}
	}
	return out
}

// MetaTable builds a full-width metadata table (SourceFile, FileName, all
// join attributes).
func MetaTable(rows ...MetaRow) *table.Table {
	header := append([]string{models.ColSourceFile, models.ColFileName}, models.JoinAttributes()...)
	t := table.New(header...)
	for _, r := range rows {
		t.AppendRow(append([]string{r.Source, r.Name}, Attrs(r.Attrs)...)...)
	}
	return t
}

// RecipeTable builds a full-width recipes table (filmsim, all join
// attributes).
func RecipeTable(rows ...RecipeRow) *table.Table {
	header := append([]string{models.ColRecipe}, models.JoinAttributes()...)
	t := table.New(header...)
	for _, r := range rows {
		t.AppendRow(append([]string{r.Name}, Attrs(r.Attrs)...)...)
	}
	return t
}

// WriteCSV writes tbl to dir/name and returns the full path.
func WriteCSV(t *testing.T, dir, name string, tbl *table.Table) string {
	t.Helper()
	data, err := tbl.Bytes()
	if err != nil {
		t.Fatalf("serialize %s: %v", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// TestLibrary creates a temp directory containing placeholder image files.
func TestLibrary(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("\xff\xd8\xff\xe0 fake jpeg"), 0o644); err != nil {
			t.Fatalf("create %s: %v", n, err)
		}
	}
	return dir
}
