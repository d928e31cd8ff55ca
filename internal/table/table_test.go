package table

import (
	"errors"
	"strings"
	"testing"

	"filmtag/internal/apperr"
)

func TestRead_HeaderAndRows(t *testing.T) {
	in := "SourceFile,FileName\n/p/a.jpg,a.jpg\n/p/b.jpg,b.jpg\n"
	tbl, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(tbl.Header) != 2 || tbl.Header[0] != "SourceFile" {
		t.Errorf("header = %v", tbl.Header)
	}
	if tbl.Len() != 2 {
		t.Fatalf("rows = %d, want 2", tbl.Len())
	}
	if got := tbl.Get(1, "FileName"); got != "b.jpg" {
		t.Errorf("Get(1, FileName) = %q", got)
	}
}

func TestRead_EmptyInput(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	if !errors.Is(err, apperr.ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
}

func TestRead_HeaderOnly(t *testing.T) {
	tbl, err := Read(strings.NewReader("FileName\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tbl.Len() != 0 {
		t.Errorf("rows = %d, want 0", tbl.Len())
	}
}

func TestRead_RaggedRowFails(t *testing.T) {
	_, err := Read(strings.NewReader("a,b\n1,2,3\n"))
	if err == nil {
		t.Fatal("expected error for ragged row")
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile("/nonexistent/metadata.csv")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "/nonexistent/metadata.csv") {
		t.Errorf("error should name the path: %v", err)
	}
}

func TestAddColumn(t *testing.T) {
	tbl := New("FileName")
	tbl.AppendRow("a.jpg")
	tbl.AddColumn("FilmMode", "NA")
	if got := tbl.Get(0, "FilmMode"); got != "NA" {
		t.Errorf("fill = %q, want NA", got)
	}
	if len(tbl.Rows[0]) != 2 {
		t.Errorf("row width = %d, want 2", len(tbl.Rows[0]))
	}
}

func TestSelect_ReordersByName(t *testing.T) {
	tbl := New("a", "b", "c")
	tbl.AppendRow("1", "2", "3")
	out, err := tbl.Select("c", "a")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if out.Header[0] != "c" || out.Header[1] != "a" {
		t.Errorf("header = %v", out.Header)
	}
	if out.Rows[0][0] != "3" || out.Rows[0][1] != "1" {
		t.Errorf("row = %v", out.Rows[0])
	}
}

func TestSelect_UnknownColumn(t *testing.T) {
	tbl := New("a")
	_, err := tbl.Select("missing")
	if !errors.Is(err, apperr.ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	tbl := New("FileName", "filmsim")
	tbl.AppendRow("a.jpg", "McCurry")
	data, err := tbl.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	back, err := Read(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("Read back: %v", err)
	}
	if back.Get(0, "filmsim") != "McCurry" {
		t.Errorf("round trip lost data: %v", back.Rows)
	}
}

func TestAppendRow_PadsShortRows(t *testing.T) {
	tbl := New("a", "b", "c")
	tbl.AppendRow("1")
	if len(tbl.Rows[0]) != 3 {
		t.Errorf("row width = %d, want 3", len(tbl.Rows[0]))
	}
	if tbl.Get(0, "b") != "" {
		t.Errorf("padding should be empty, got %q", tbl.Get(0, "b"))
	}
}
