// Package exiftool wraps the external exiftool binary: CSV metadata export
// over a directory tree and keyword write-back. It contains no matching
// logic; failures carry exiftool's own stderr so the caller sees the raw
// diagnostic.
package exiftool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"filmtag/internal/apperr"
	"filmtag/internal/models"
	"filmtag/internal/table"
)

// DefaultBinary is used when the config does not name an exiftool path.
const DefaultBinary = "exiftool"

// DefaultExtensions limits export and tagging to these file types.
var DefaultExtensions = []string{"jpg", "jpeg"}

// Tool invokes a single exiftool binary. The zero value is not usable; use
// New.
type Tool struct {
	bin        string
	extensions []string
}

// New creates a Tool for the given binary path and extension filter. Empty
// arguments fall back to the defaults.
func New(bin string, extensions []string) *Tool {
	if bin == "" {
		bin = DefaultBinary
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	return &Tool{bin: bin, extensions: extensions}
}

// Version probes the binary, confirming it is present and runnable.
func (t *Tool) Version(ctx context.Context) (string, error) {
	out, err := t.run(ctx, "-ver")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Export recursively extracts metadata for every matching image under dir
// and returns it as a table: SourceFile first, then FileName, passthrough
// tags, and whichever join attributes exiftool found. Attributes no photo
// carries are omitted from the header entirely; the reconciler fills them.
func (t *Tool) Export(ctx context.Context, dir string) (*table.Table, error) {
	out, err := t.run(ctx, exportArgs(t.extensions, dir)...)
	if err != nil {
		return nil, fmt.Errorf("exiftool: export %s: %w", dir, err)
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return nil, fmt.Errorf("exiftool: export %s: no images found: %w", dir, apperr.ErrEmptyInput)
	}
	tbl, err := table.Read(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("exiftool: export %s: %w", dir, err)
	}
	return tbl, nil
}

// Tag appends each match's recipe name to the photo's multi-value Keywords
// tag, removing any pre-existing identical value first so reruns never
// duplicate entries. It keeps going on per-file failures and returns the
// count written plus the joined errors.
func (t *Tool) Tag(ctx context.Context, matches []models.Match) (int, error) {
	var errs []error
	tagged := 0
	for _, m := range matches {
		if _, err := t.run(ctx, tagArgs(m)...); err != nil {
			errs = append(errs, fmt.Errorf("exiftool: tag %s: %w", m.SourceFile, err))
			continue
		}
		tagged++
	}
	return tagged, errors.Join(errs...)
}

func (t *Tool) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, t.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s: %w", t.bin, err)
		}
		return nil, fmt.Errorf("%s: %w: %s", t.bin, err, msg)
	}
	return stdout.Bytes(), nil
}

// exportArgs builds the -csv extraction command. Tag order fixes the output
// column order, which keeps exports byte-stable between runs.
func exportArgs(extensions []string, dir string) []string {
	args := []string{"-csv", "-r"}
	for _, ext := range extensions {
		args = append(args, "-ext", ext)
	}
	args = append(args, "-"+models.ColFileName)
	for _, tag := range models.PassthroughTags {
		args = append(args, "-"+tag)
	}
	for _, attr := range models.JoinAttributes() {
		args = append(args, "-"+attr)
	}
	return append(args, dir)
}

// tagArgs builds the remove-then-append Keywords update for one match.
func tagArgs(m models.Match) []string {
	return []string{
		"-overwrite_original",
		"-Keywords-=" + m.Recipe,
		"-Keywords+=" + m.Recipe,
		m.SourceFile,
	}
}
