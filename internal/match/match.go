// Package match implements the recipe matcher: schema reconciliation,
// a left equality join over the 14 join attributes, and the partition into
// matched and unmatched outputs.
package match

import (
	"fmt"
	"log/slog"
	"strings"

	"filmtag/internal/apperr"
	"filmtag/internal/engine"
	"filmtag/internal/models"
	"filmtag/internal/reconcile"
	"filmtag/internal/table"
)

// Result is the outcome of one matcher invocation.
type Result struct {
	// Matched has header SourceFile,FileName,filmsim; one row per
	// photo×matching-recipe pair. Duplicate recipe definitions fan out.
	Matched *table.Table
	// Unmatched has header FileName; one row per photo with zero matches,
	// in first-seen metadata order.
	Unmatched *table.Table
	Summary   models.Summary
	Warnings  []string
}

// Matches converts the matched table into typed rows for the keyword writer.
func (r *Result) Matches() []models.Match {
	out := make([]models.Match, 0, r.Matched.Len())
	for i := 0; i < r.Matched.Len(); i++ {
		out = append(out, models.Match{
			SourceFile: r.Matched.Get(i, models.ColSourceFile),
			FileName:   r.Matched.Get(i, models.ColFileName),
			Recipe:     r.Matched.Get(i, models.ColRecipe),
		})
	}
	return out
}

// Tables matches meta against recipes. Both tables are mutated by
// reconciliation. Identifying columns are validated up front; reconciliation
// gaps are warnings, engine failures are fatal with the raw diagnostic
// wrapped.
func Tables(logger *slog.Logger, meta, recipes *table.Table) (*Result, error) {
	for _, col := range []string{models.ColSourceFile, models.ColFileName} {
		if !meta.HasColumn(col) {
			return nil, fmt.Errorf("match: metadata table: column %s: %w", col, apperr.ErrMissingColumn)
		}
	}
	if !recipes.HasColumn(models.ColRecipe) {
		return nil, fmt.Errorf("match: recipes table: column %s: %w", models.ColRecipe, apperr.ErrMissingColumn)
	}

	keys := models.JoinAttributes()
	res := &Result{}

	metaRec := reconcile.Apply(meta, keys, models.Sentinel)
	recipeRec := reconcile.Apply(recipes, keys, models.Sentinel)
	res.addMissingWarning(logger, "metadata", metaRec.Missing)
	res.addMissingWarning(logger, "recipes", recipeRec.Missing)

	eng, err := engine.Open()
	if err != nil {
		return nil, err
	}
	defer eng.Close()

	if err := eng.Load("photos", meta); err != nil {
		return nil, err
	}
	if err := eng.Load("recipes", recipes); err != nil {
		return nil, err
	}

	joined, err := eng.LeftJoin("photos", "recipes", keys,
		[]string{models.ColSourceFile, models.ColFileName},
		[]string{models.ColRecipe})
	if err != nil {
		return nil, err
	}

	res.Matched = table.New(models.ColSourceFile, models.ColFileName, models.ColRecipe)
	matchedNames := make(map[string]struct{})
	for i := 0; i < joined.Len(); i++ {
		src := joined.Get(i, models.ColSourceFile)
		name := joined.Get(i, models.ColFileName)
		recipe := joined.Get(i, models.ColRecipe)
		if recipe == "" || src == "" {
			continue
		}
		res.Matched.AppendRow(src, name, recipe)
		matchedNames[name] = struct{}{}
	}

	res.Unmatched = table.New(models.ColFileName)
	seen := make(map[string]struct{})
	for i := 0; i < meta.Len(); i++ {
		name := meta.Get(i, models.ColFileName)
		if _, ok := matchedNames[name]; ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		res.Unmatched.AppendRow(name)
	}

	res.Summary = models.Summary{
		Photos:    meta.Len(),
		Matched:   res.Matched.Len(),
		Unmatched: res.Unmatched.Len(),
	}

	if res.Matched.Len() == 0 {
		res.warn(logger, "no photos matched any recipe; check that recipe values copy camera settings exactly")
	}
	if res.Matched.Len() > meta.Len() {
		res.warn(logger, fmt.Sprintf(
			"matched rows (%d) exceed photo count (%d); recipes file likely contains duplicate definitions",
			res.Matched.Len(), meta.Len()))
	}

	return res, nil
}

func (r *Result) addMissingWarning(logger *slog.Logger, which string, missing []string) {
	if len(missing) == 0 {
		return
	}
	r.warn(logger, fmt.Sprintf("%s table is missing %d join column(s), filled with %s: %s",
		which, len(missing), models.Sentinel, strings.Join(missing, ", ")))
}

func (r *Result) warn(logger *slog.Logger, msg string) {
	r.Warnings = append(r.Warnings, msg)
	if logger != nil {
		logger.Warn(msg)
	}
}
