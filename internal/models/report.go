package models

import "time"

// Match is one (photo, recipe) pair from the matched output. A photo that
// matches several recipe definitions appears once per definition.
type Match struct {
	SourceFile string `json:"source_file"`
	FileName   string `json:"file_name"`
	Recipe     string `json:"filmsim"`
}

// Summary counts one matcher invocation.
type Summary struct {
	Photos    int `json:"photos"`
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
}

// OutputFile records a written output with its fingerprint, so that two runs
// over identical inputs can be shown to produce identical bytes.
type OutputFile struct {
	Path     string `json:"path"`
	Rows     int    `json:"rows"`
	Checksum string `json:"checksum"`
}

// RunReport is the stable external result of one pipeline run.
type RunReport struct {
	ID          string    `json:"id"`
	Library     string    `json:"library"`
	RecipesFile string    `json:"recipes_file"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`

	Summary  Summary      `json:"summary"`
	Warnings []string     `json:"warnings"`
	Outputs  []OutputFile `json:"outputs"`
	Tagged   int          `json:"tagged"`
}

// Finalize normalises timestamps to UTC and guarantees non-nil slices so the
// JSON shape is stable.
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
	if r.Outputs == nil {
		r.Outputs = []OutputFile{}
	}
}

// PhotoInfo is a lightweight representation of a library image returned by
// list operations.
type PhotoInfo struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}
