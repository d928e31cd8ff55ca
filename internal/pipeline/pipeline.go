// Package pipeline orchestrates the full workflow: metadata export, recipe
// matching, output writing, and keyword write-back. Each run is sequential
// and fail-fast; the two named outputs are only written after the matcher
// has fully succeeded.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"filmtag/internal/apperr"
	"filmtag/internal/checksum"
	"filmtag/internal/match"
	"filmtag/internal/models"
	"filmtag/internal/storage"
	"filmtag/internal/table"
)

// Output file names inside the output directory.
const (
	MetadataFileName  = "metadata.csv"
	MatchedFileName   = "matched_recipes.csv"
	UnmatchedFileName = "unmatched_jpgs.csv"
)

// Inputs larger than this trigger a non-fatal performance warning.
const sizeWarnBytes = 30 << 20

// Tool is the external exiftool capability the pipeline depends on.
type Tool interface {
	Export(ctx context.Context, dir string) (*table.Table, error)
	Tag(ctx context.Context, matches []models.Match) (int, error)
}

// Options locate the pipeline's inputs and outputs.
type Options struct {
	Library     string
	RecipesFile string
	OutputDir   string
}

// Pipeline runs the workflow and retains the most recent result for serve
// mode consumers.
type Pipeline struct {
	logger *slog.Logger
	tool   Tool
	opts   Options

	// runMu serializes runs: the matcher itself is single-threaded, and
	// serve mode must never overlap two runs on the same output files.
	runMu sync.Mutex

	mu     sync.RWMutex
	last   *models.RunReport
	result *match.Result
}

// New creates a pipeline.
func New(logger *slog.Logger, tool Tool, opts Options) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger, tool: tool, opts: opts}
}

// ExportToFile extracts library metadata and writes it to
// <output>/metadata.csv, returning the written path.
func (p *Pipeline) ExportToFile(ctx context.Context) (string, error) {
	meta, err := p.tool.Export(ctx, p.opts.Library)
	if err != nil {
		return "", err
	}
	data, err := meta.Bytes()
	if err != nil {
		return "", err
	}
	path := filepath.Join(p.opts.OutputDir, MetadataFileName)
	if err := storage.WriteAtomic(path, data); err != nil {
		return "", err
	}
	p.logger.Info("metadata exported",
		slog.String("path", path), slog.Int("photos", meta.Len()))
	return path, nil
}

// MatchFiles matches an existing metadata CSV against a recipes CSV and
// writes the matched/unmatched outputs. No tagging is performed.
func (p *Pipeline) MatchFiles(ctx context.Context, metaPath, recipesPath string) (*models.RunReport, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	report := p.newReport()
	report.RecipesFile = recipesPath

	meta, warnings, err := p.readInput(metaPath)
	if err != nil {
		return nil, err
	}
	report.Warnings = append(report.Warnings, warnings...)

	recipes, warnings, err := p.readInput(recipesPath)
	if err != nil {
		return nil, err
	}
	report.Warnings = append(report.Warnings, warnings...)

	res, err := match.Tables(p.logger, meta, recipes)
	if err != nil {
		return nil, err
	}
	if err := p.finish(report, res, 0); err != nil {
		return nil, err
	}
	return report, nil
}

// Run executes the full pipeline: export, match, write outputs, and (when
// tag is true) keyword write-back.
func (p *Pipeline) Run(ctx context.Context, tag bool) (*models.RunReport, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	report := p.newReport()

	meta, err := p.tool.Export(ctx, p.opts.Library)
	if err != nil {
		return nil, err
	}

	recipes, warnings, err := p.readInput(p.opts.RecipesFile)
	if err != nil {
		return nil, err
	}
	report.Warnings = append(report.Warnings, warnings...)

	res, err := match.Tables(p.logger, meta, recipes)
	if err != nil {
		return nil, err
	}

	tagged := 0
	if tag && res.Matched.Len() > 0 {
		tagged, err = p.tool.Tag(ctx, res.Matches())
		if err != nil {
			return nil, err
		}
	}

	if err := p.finish(report, res, tagged); err != nil {
		return nil, err
	}
	return report, nil
}

// TagMatchedFile applies an existing matched_recipes.csv to the library. The
// file may carry extra columns in any order; it is projected down to the
// matched-output schema first.
func (p *Pipeline) TagMatchedFile(ctx context.Context, path string) (int, error) {
	tbl, _, err := p.readInput(path)
	if err != nil {
		return 0, err
	}
	proj, err := tbl.Select(models.ColSourceFile, models.ColFileName, models.ColRecipe)
	if err != nil {
		return 0, fmt.Errorf("pipeline: %s: %w", path, err)
	}
	matches := make([]models.Match, 0, proj.Len())
	for _, row := range proj.Rows {
		matches = append(matches, models.Match{
			SourceFile: row[0],
			FileName:   row[1],
			Recipe:     row[2],
		})
	}
	return p.tool.Tag(ctx, matches)
}

// IdentifyPhoto extracts one photo's metadata and returns the names of every
// recipe it matches.
func (p *Pipeline) IdentifyPhoto(ctx context.Context, photo string) ([]string, error) {
	meta, err := p.tool.Export(ctx, photo)
	if err != nil {
		return nil, err
	}
	recipes, _, err := p.readInput(p.opts.RecipesFile)
	if err != nil {
		return nil, err
	}
	res, err := match.Tables(p.logger, meta, recipes)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, res.Matched.Len())
	for i := 0; i < res.Matched.Len(); i++ {
		names = append(names, res.Matched.Get(i, models.ColRecipe))
	}
	return names, nil
}

// Recipes reads the configured recipes file.
func (p *Pipeline) Recipes() (*table.Table, error) {
	tbl, _, err := p.readInput(p.opts.RecipesFile)
	return tbl, err
}

// LastReport returns the report of the most recent completed run.
func (p *Pipeline) LastReport() (*models.RunReport, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last == nil {
		return nil, apperr.ErrNoReport
	}
	return p.last, nil
}

// LastResult returns the matcher result of the most recent completed run,
// or nil.
func (p *Pipeline) LastResult() *match.Result {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.result
}

func (p *Pipeline) newReport() *models.RunReport {
	return &models.RunReport{
		ID:          uuid.NewString(),
		Library:     p.opts.Library,
		RecipesFile: p.opts.RecipesFile,
		StartedAt:   time.Now(),
	}
}

// readInput validates an input CSV (existence, non-emptiness, size) before
// parsing it. Validation failures are fatal and happen before any output is
// touched; oversized inputs only warn.
func (p *Pipeline) readInput(path string) (*table.Table, []string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("pipeline: input %s: %w", path, err)
	}
	if info.Size() == 0 {
		return nil, nil, fmt.Errorf("pipeline: input %s: %w", path, apperr.ErrEmptyInput)
	}

	var warnings []string
	if info.Size() > sizeWarnBytes {
		w := fmt.Sprintf("input %s is %d MB; matching may be slow", path, info.Size()>>20)
		warnings = append(warnings, w)
		p.logger.Warn(w)
	}

	tbl, err := table.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return tbl, warnings, nil
}

// finish writes the outputs, completes the report, and retains both.
func (p *Pipeline) finish(report *models.RunReport, res *match.Result, tagged int) error {
	if err := p.writeOutputs(report, res); err != nil {
		return err
	}

	report.Summary = res.Summary
	report.Warnings = append(report.Warnings, res.Warnings...)
	report.Tagged = tagged
	report.FinishedAt = time.Now()
	report.Finalize()

	p.mu.Lock()
	p.last = report
	p.result = res
	p.mu.Unlock()

	p.logger.Info("run finished",
		slog.String("id", report.ID),
		slog.Int("photos", report.Summary.Photos),
		slog.Int("matched", report.Summary.Matched),
		slog.Int("unmatched", report.Summary.Unmatched),
		slog.Int("tagged", tagged))
	return nil
}

// writeOutputs writes matched_recipes.csv always (even with zero rows) and
// unmatched_jpgs.csv only when there are unmatched photos; a stale unmatched
// file from an earlier run is removed so the directory never lies.
func (p *Pipeline) writeOutputs(report *models.RunReport, res *match.Result) error {
	matchedPath := filepath.Join(p.opts.OutputDir, MatchedFileName)
	if err := p.writeTable(report, matchedPath, res.Matched); err != nil {
		return err
	}

	unmatchedPath := filepath.Join(p.opts.OutputDir, UnmatchedFileName)
	if res.Unmatched.Len() == 0 {
		if err := os.Remove(unmatchedPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("pipeline: remove stale %s: %w", unmatchedPath, err)
		}
		return nil
	}
	return p.writeTable(report, unmatchedPath, res.Unmatched)
}

func (p *Pipeline) writeTable(report *models.RunReport, path string, tbl *table.Table) error {
	data, err := tbl.Bytes()
	if err != nil {
		return err
	}
	if err := storage.WriteAtomic(path, data); err != nil {
		return err
	}
	report.Outputs = append(report.Outputs, models.OutputFile{
		Path:     path,
		Rows:     tbl.Len(),
		Checksum: checksum.Sum(data),
	})
	return nil
}
