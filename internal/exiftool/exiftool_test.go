package exiftool

import (
	"strings"
	"testing"

	"filmtag/internal/models"
)

func TestExportArgs(t *testing.T) {
	args := exportArgs([]string{"jpg", "jpeg"}, "/photos")

	joined := strings.Join(args, " ")
	for _, want := range []string{"-csv", "-r", "-ext jpg", "-ext jpeg", "-FileName", "-FilmMode", "-Clarity"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %v", want, args)
		}
	}
	if args[len(args)-1] != "/photos" {
		t.Errorf("directory must be the final argument: %v", args)
	}
}

func TestExportArgs_CoversAllJoinAttributes(t *testing.T) {
	args := exportArgs(nil, ".")
	set := make(map[string]struct{}, len(args))
	for _, a := range args {
		set[a] = struct{}{}
	}
	for _, attr := range models.JoinAttributes() {
		if _, ok := set["-"+attr]; !ok {
			t.Errorf("join attribute %s not requested", attr)
		}
	}
}

func TestTagArgs_RemoveThenAppend(t *testing.T) {
	m := models.Match{SourceFile: "/p/a.jpg", FileName: "a.jpg", Recipe: "McCurry"}
	args := tagArgs(m)

	removeAt, appendAt := -1, -1
	for i, a := range args {
		switch a {
		case "-Keywords-=McCurry":
			removeAt = i
		case "-Keywords+=McCurry":
			appendAt = i
		}
	}
	if removeAt == -1 || appendAt == -1 {
		t.Fatalf("args = %v, want remove and append operations", args)
	}
	if removeAt > appendAt {
		t.Error("remove must precede append to dedupe")
	}
	if args[0] != "-overwrite_original" {
		t.Errorf("args[0] = %q, want -overwrite_original", args[0])
	}
	if args[len(args)-1] != "/p/a.jpg" {
		t.Errorf("file must be the final argument: %v", args)
	}
}

func TestNew_Defaults(t *testing.T) {
	tool := New("", nil)
	if tool.bin != DefaultBinary {
		t.Errorf("bin = %q, want %q", tool.bin, DefaultBinary)
	}
	if len(tool.extensions) != 2 {
		t.Errorf("extensions = %v", tool.extensions)
	}
}
