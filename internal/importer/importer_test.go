package importer

import (
	"errors"
	"strings"
	"testing"

	"filmtag/internal/apperr"
	"filmtag/internal/models"
)

const recipePage = `<html><body>
<h1>Film Recipes</h1>
<table>
  <tr><th>filmsim</th><th>FilmMode</th><th>GrainEffectSize</th><th>Clarity</th></tr>
  <tr><td>Kodachrome 64</td><td>Classic Chrome</td><td>Small</td><td>-2</td></tr>
  <tr><td>Portra 400</td><td>Classic Neg</td><td></td><td>0</td></tr>
</table>
</body></html>`

func TestParse(t *testing.T) {
	tbl, err := Parse(strings.NewReader(recipePage))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := []string{"filmsim", "FilmMode", "GrainEffectSize", "Clarity"}
	if len(tbl.Header) != len(want) {
		t.Fatalf("header = %v, want %v", tbl.Header, want)
	}
	for i, col := range want {
		if tbl.Header[i] != col {
			t.Errorf("header[%d] = %q, want %q", i, tbl.Header[i], col)
		}
	}
	if tbl.Len() != 2 {
		t.Fatalf("rows = %d, want 2", tbl.Len())
	}
	if got := tbl.Get(0, models.ColRecipe); got != "Kodachrome 64" {
		t.Errorf("row 0 recipe = %q", got)
	}
	if got := tbl.Get(1, "GrainEffectSize"); got != models.Sentinel {
		t.Errorf("blank cell = %q, want sentinel", got)
	}
}

func TestParseHeaderlessTable(t *testing.T) {
	page := `<table>
<tr><td>filmsim</td><td>FilmMode</td></tr>
<tr><td>Velvia Dream</td><td>Velvia</td></tr>
</table>`
	tbl, err := Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tbl.Len() != 1 || tbl.Get(0, models.ColRecipe) != "Velvia Dream" {
		t.Errorf("rows = %d, recipe = %q", tbl.Len(), tbl.Get(0, models.ColRecipe))
	}
}

func TestParseRequiresRecipeColumn(t *testing.T) {
	page := `<table><tr><th>Name</th></tr><tr><td>x</td></tr></table>`
	_, err := Parse(strings.NewReader(page))
	if !errors.Is(err, apperr.ErrMissingColumn) {
		t.Errorf("err = %v, want ErrMissingColumn", err)
	}
}

func TestParseNoTable(t *testing.T) {
	_, err := Parse(strings.NewReader("<html><body><p>nothing</p></body></html>"))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
