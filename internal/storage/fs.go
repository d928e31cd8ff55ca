// Package storage provides access to the photo library on disk and atomic
// writes for output files.
package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"filmtag/internal/models"
)

// FS lists image files under a library root.
type FS struct {
	root       string // absolute path to the library directory
	extensions map[string]struct{}
}

// NewFS creates an FS rooted at dir. The directory must already exist.
// extensions are matched case-insensitively without the leading dot; empty
// means jpg/jpeg.
func NewFS(dir string, extensions []string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}

	if len(extensions) == 0 {
		extensions = []string{"jpg", "jpeg"}
	}
	set := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		set[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
	}
	return &FS{root: abs, extensions: set}, nil
}

// Root returns the absolute library root.
func (f *FS) Root() string {
	return f.root
}

// IsImage reports whether name has one of the configured image extensions.
func (f *FS) IsImage(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	_, ok := f.extensions[ext]
	return ok
}

// List walks the library and returns every image file with its size and
// modification time, in walk order.
func (f *FS) List() ([]models.PhotoInfo, error) {
	var out []models.PhotoInfo
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !f.IsImage(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(f.root, p)
		out = append(out, models.PhotoInfo{
			Path:      rel,
			Size:      info.Size(),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// WriteAtomic writes content to path via tmp file → fsync → rename, creating
// parent directories as needed. Readers never observe a partial file.
func WriteAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".filmtag-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
