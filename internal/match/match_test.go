package match

import (
	"errors"
	"strings"
	"testing"

	"filmtag/internal/apperr"
	"filmtag/internal/models"
	"filmtag/internal/table"
	"filmtag/internal/testutil"
)

var mcCurry = map[string]string{
	"FilmMode":                "Classic Chrome",
	"DevelopmentDynamicRange": "100",
	"ColorChromeEffect":       "Strong",
	"ColorChromeFXBlue":       "Off",
	"GrainEffectSize":         "Small",
	"GrainEffectRoughness":    "Weak",
	"ColorTemperature":        "Auto",
	"WhiteBalanceFineTune":    "Red +2, Blue -4",
	"HighlightTone":           "-1",
	"ShadowTone":              "+2",
	"Saturation":              "+1",
	"Sharpness":               "0",
	"NoiseReduction":          "-4",
	"Clarity":                 "0",
}

func TestTables_ExactMatch(t *testing.T) {
	meta := testutil.MetaTable(testutil.MetaRow{Source: "/p/PRO36627.JPG", Name: "PRO36627.JPG", Attrs: mcCurry})
	recipes := testutil.RecipeTable(testutil.RecipeRow{Name: "McCurry", Attrs: mcCurry})

	res, err := Tables(nil, meta, recipes)
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if res.Matched.Len() != 1 {
		t.Fatalf("matched = %d rows, want 1", res.Matched.Len())
	}
	if got := res.Matched.Get(0, models.ColRecipe); got != "McCurry" {
		t.Errorf("filmsim = %q, want McCurry", got)
	}
	if got := res.Matched.Get(0, models.ColFileName); got != "PRO36627.JPG" {
		t.Errorf("FileName = %q", got)
	}
	if res.Unmatched.Len() != 0 {
		t.Errorf("unmatched = %v, want none", res.Unmatched.Rows)
	}
}

func TestTables_MatchedAndUnmatchedPartition(t *testing.T) {
	other := map[string]string{"FilmMode": "PRO Neg. Std"}
	meta := testutil.MetaTable(
		testutil.MetaRow{Source: "/p/PRO36627.JPG", Name: "PRO36627.JPG", Attrs: mcCurry},
		testutil.MetaRow{Source: "/p/PRO36628.JPG", Name: "PRO36628.JPG", Attrs: other},
	)
	recipes := testutil.RecipeTable(testutil.RecipeRow{Name: "McCurry", Attrs: mcCurry})

	res, err := Tables(nil, meta, recipes)
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if res.Matched.Len() != 1 || res.Matched.Get(0, models.ColFileName) != "PRO36627.JPG" {
		t.Errorf("matched = %v", res.Matched.Rows)
	}
	if res.Unmatched.Len() != 1 || res.Unmatched.Get(0, models.ColFileName) != "PRO36628.JPG" {
		t.Errorf("unmatched = %v", res.Unmatched.Rows)
	}
	want := models.Summary{Photos: 2, Matched: 1, Unmatched: 1}
	if res.Summary != want {
		t.Errorf("summary = %+v, want %+v", res.Summary, want)
	}
}

func TestTables_SparseMetadataAutoFilled(t *testing.T) {
	// Metadata carries only SourceFile, FileName and ColorTemperature; the
	// other 13 attributes must be synthesized and still match a recipe whose
	// remaining values are blank.
	meta := table.New(models.ColSourceFile, models.ColFileName, "ColorTemperature")
	meta.AppendRow("/p/a.jpg", "a.jpg", "5500K")

	recipes := testutil.RecipeTable(testutil.RecipeRow{
		Name:  "Daylight",
		Attrs: map[string]string{"ColorTemperature": "5500K"},
	})

	res, err := Tables(nil, meta, recipes)
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}

	var missingWarn string
	for _, w := range res.Warnings {
		if strings.Contains(w, "metadata table is missing") {
			missingWarn = w
		}
	}
	if missingWarn == "" {
		t.Fatalf("expected missing-column warning, got %v", res.Warnings)
	}
	if !strings.Contains(missingWarn, "13 join column(s)") {
		t.Errorf("warning should count 13 missing columns: %q", missingWarn)
	}
	if !strings.Contains(missingWarn, "FilmMode") || !strings.Contains(missingWarn, "Clarity") {
		t.Errorf("warning should name the missing columns: %q", missingWarn)
	}
	if res.Matched.Len() != 1 || res.Matched.Get(0, models.ColRecipe) != "Daylight" {
		t.Errorf("matched = %v", res.Matched.Rows)
	}
}

func TestTables_SentinelEquivalence(t *testing.T) {
	// Metadata column entirely absent vs recipe column present-but-empty:
	// both normalize to the sentinel and must match.
	meta := table.New(models.ColSourceFile, models.ColFileName, "FilmMode")
	meta.AppendRow("/p/a.jpg", "a.jpg", "Velvia")

	recipes := table.New(models.ColRecipe, "FilmMode", "GrainEffectSize")
	recipes.AppendRow("Vivid", "Velvia", "")

	res, err := Tables(nil, meta, recipes)
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if res.Matched.Len() != 1 {
		t.Fatalf("matched = %d, want 1 (sentinel equivalence)", res.Matched.Len())
	}
}

func TestTables_DuplicateRecipeFanOutWarns(t *testing.T) {
	meta := testutil.MetaTable(testutil.MetaRow{Source: "/p/a.jpg", Name: "a.jpg", Attrs: mcCurry})
	recipes := testutil.RecipeTable(
		testutil.RecipeRow{Name: "McCurry", Attrs: mcCurry},
		testutil.RecipeRow{Name: "McCurry Copy", Attrs: mcCurry},
	)

	res, err := Tables(nil, meta, recipes)
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if res.Matched.Len() != 2 {
		t.Fatalf("matched = %d, want 2 (fan-out preserved)", res.Matched.Len())
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "duplicate") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected duplicate-definition warning, got %v", res.Warnings)
	}
	if res.Unmatched.Len() != 0 {
		t.Errorf("fanned-out photo must not be unmatched: %v", res.Unmatched.Rows)
	}
}

func TestTables_ZeroMatchesWarns(t *testing.T) {
	meta := testutil.MetaTable(testutil.MetaRow{Source: "/p/a.jpg", Name: "a.jpg", Attrs: map[string]string{"FilmMode": "Astia"}})
	recipes := testutil.RecipeTable(testutil.RecipeRow{Name: "McCurry", Attrs: mcCurry})

	res, err := Tables(nil, meta, recipes)
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if res.Matched.Len() != 0 {
		t.Fatalf("matched = %d, want 0", res.Matched.Len())
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "no photos matched") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected zero-match warning, got %v", res.Warnings)
	}
}

func TestTables_MissingIdentifyingColumns(t *testing.T) {
	meta := table.New("FileName") // no SourceFile
	recipes := testutil.RecipeTable()
	if _, err := Tables(nil, meta, recipes); !errors.Is(err, apperr.ErrMissingColumn) {
		t.Errorf("metadata without SourceFile: err = %v", err)
	}

	meta = testutil.MetaTable()
	recipes = table.New("FilmMode") // no filmsim
	if _, err := Tables(nil, meta, recipes); !errors.Is(err, apperr.ErrMissingColumn) {
		t.Errorf("recipes without filmsim: err = %v", err)
	}
}

func TestTables_Completeness(t *testing.T) {
	// count(matched) + count(distinct unmatched) >= count(distinct FileName).
	meta := testutil.MetaTable(
		testutil.MetaRow{Source: "/p/a.jpg", Name: "a.jpg", Attrs: mcCurry},
		testutil.MetaRow{Source: "/q/a.jpg", Name: "a.jpg", Attrs: map[string]string{"FilmMode": "Astia"}},
		testutil.MetaRow{Source: "/p/b.jpg", Name: "b.jpg", Attrs: map[string]string{"FilmMode": "Eterna"}},
	)
	recipes := testutil.RecipeTable(testutil.RecipeRow{Name: "McCurry", Attrs: mcCurry})

	res, err := Tables(nil, meta, recipes)
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}

	distinct := map[string]struct{}{}
	for _, n := range meta.Column(models.ColFileName) {
		distinct[n] = struct{}{}
	}
	if res.Matched.Len()+res.Unmatched.Len() < len(distinct) {
		t.Errorf("completeness violated: matched=%d unmatched=%d distinct=%d",
			res.Matched.Len(), res.Unmatched.Len(), len(distinct))
	}
	// a.jpg matched via one source; its other source row does not add it to
	// unmatched (set difference on FileName).
	for i := 0; i < res.Unmatched.Len(); i++ {
		if res.Unmatched.Get(i, models.ColFileName) == "a.jpg" {
			t.Error("a.jpg matched once and must not be listed unmatched")
		}
	}
}
