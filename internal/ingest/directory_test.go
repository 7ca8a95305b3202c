package ingest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/docufield/invoice-extract/internal/ingest"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"), `{"parsing_res_list":[]}`)
	writeFile(t, filepath.Join(dir, "b.md"), "| a | b |")
	writeFile(t, filepath.Join(dir, "e.markdown"), "| c | d |")
	writeFile(t, filepath.Join(dir, "notes.docx"), "ignored")
	writeFile(t, filepath.Join(dir, ".hidden", "c.json"), "{}")
	writeFile(t, filepath.Join(dir, "sub", "d.txt"), "text body")

	files, stats, err := ingest.LoadDirectory(dir, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(files) != 4 {
		names := make([]string, 0, len(files))
		for _, f := range files {
			names = append(names, f.Name)
		}
		t.Fatalf("files = %v, want a.json b.md e.markdown d.txt", names)
	}
	if stats.Matched != 4 || stats.Loaded != 4 {
		t.Errorf("stats = %+v", stats)
	}
	for _, f := range files {
		if len(f.Content) == 0 {
			t.Errorf("%s not pre-loaded", f.Name)
		}
		if f.Extension == "" || f.Extension[0] == '.' {
			t.Errorf("%s extension not normalized: %q", f.Name, f.Extension)
		}
	}
}

func TestLoadDirectoryExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"), "{}")
	writeFile(t, filepath.Join(dir, "b.md"), "x")

	files, _, err := ingest.LoadDirectory(dir, []string{".json"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(files) != 1 || files[0].Name != "a.json" {
		t.Fatalf("files = %+v, want only a.json", files)
	}
}

func TestLoadDirectoryEmptyRoot(t *testing.T) {
	if _, _, err := ingest.LoadDirectory("", nil); err == nil {
		t.Fatal("empty root must fail")
	}
}
