package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempLibrary(t *testing.T, files ...string) *FS {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		p := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	fs, err := NewFS(dir, nil)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestList_ImagesOnly(t *testing.T) {
	fs := tempLibrary(t, "a.jpg", "b.JPEG", "notes.txt", "sub/c.jpg", "sub/d.raf")
	photos, err := fs.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(photos) != 3 {
		t.Fatalf("photos = %d, want 3: %v", len(photos), photos)
	}
	for _, p := range photos {
		if p.Size == 0 {
			t.Errorf("photo %s has zero size", p.Path)
		}
	}
}

func TestList_CustomExtensions(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"a.jpg", "b.raf"} {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	fs, err := NewFS(dir, []string{"raf"})
	if err != nil {
		t.Fatal(err)
	}
	photos, err := fs.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(photos) != 1 || photos[0].Path != "b.raf" {
		t.Errorf("photos = %v, want only b.raf", photos)
	}
}

func TestNewFS_MissingDir(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "absent"), nil); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestWriteAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "matched_recipes.csv")
	content := []byte("SourceFile,FileName,filmsim\n")
	if err := WriteAtomic(path, content); err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content = %q", got)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("leftover files in output dir: %v", entries)
	}
}

func TestWriteAtomic_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.csv")
	if err := WriteAtomic(path, []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := WriteAtomic(path, []byte("two")); err != nil {
		t.Fatal(err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "two" {
		t.Errorf("content = %q, want two", got)
	}
}
