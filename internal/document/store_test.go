package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/civiclab/qualsync/pkg/models"
)

func writePetition(t *testing.T, dir, name string, row models.SurveyRow) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Render(row), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestScan_IndexesByResponseID(t *testing.T) {
	dir := t.TempDir()
	p1 := writePetition(t, dir, "petition-a.md", models.SurveyRow{Title: "A", Body: "a", ResponseID: "R_1"})
	p2 := writePetition(t, dir, "petition-b.md", models.SurveyRow{Title: "B", Body: "b", ResponseID: "R_2"})

	s := NewStore(dir)
	if err := s.Scan(); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if got, ok := s.Lookup("R_1"); !ok || got != p1 {
		t.Errorf("Lookup(R_1) = %q, %v; want %q, true", got, ok, p1)
	}
	if got, ok := s.Lookup("R_2"); !ok || got != p2 {
		t.Errorf("Lookup(R_2) = %q, %v; want %q, true", got, ok, p2)
	}
	if id, ok := s.OwnerOf(p1); !ok || id != "R_1" {
		t.Errorf("OwnerOf(%q) = %q, %v; want R_1, true", p1, id, ok)
	}
	if s.Count() != 2 {
		t.Errorf("Count = %d, want 2", s.Count())
	}
}

func TestScan_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	// No front matter at all.
	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("just text\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Front matter without a response id.
	handWritten := "---\nlayout: petition\ntitle: \"Hand written\"\n---\n\nbody\n"
	if err := os.WriteFile(filepath.Join(dir, "hand.md"), []byte(handWritten), 0o644); err != nil {
		t.Fatal(err)
	}
	// Not markdown.
	if err := os.WriteFile(filepath.Join(dir, "data.csv"), []byte("a,b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(dir)
	if err := s.Scan(); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("Count = %d, want 0", s.Count())
	}
}

func TestScan_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "petitions")

	s := NewStore(dir)
	if err := s.Scan(); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("petitions directory should have been created: %v", err)
	}
}

func TestClaim_ReleasesOldPath(t *testing.T) {
	s := NewStore(t.TempDir())
	s.Claim("R_1", "/p/a.md")
	s.Claim("R_1", "/p/b.md")

	if _, ok := s.OwnerOf("/p/a.md"); ok {
		t.Error("old path should be released after re-claim")
	}
	if id, ok := s.OwnerOf("/p/b.md"); !ok || id != "R_1" {
		t.Errorf("OwnerOf(/p/b.md) = %q, %v; want R_1, true", id, ok)
	}
}

func TestRename_MovesFileAndIndex(t *testing.T) {
	dir := t.TempDir()
	old := writePetition(t, dir, "old.md", models.SurveyRow{Title: "T", Body: "b", ResponseID: "R_1"})

	s := NewStore(dir)
	if err := s.Scan(); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	target := filepath.Join(dir, "new.md")
	if err := s.Rename(old, target); err != nil {
		t.Fatalf("Rename: %v", err)
	}

	if s.Exists(old) {
		t.Error("old file should be gone")
	}
	if !s.Exists(target) {
		t.Error("new file should exist")
	}
	if got, _ := s.Lookup("R_1"); got != target {
		t.Errorf("Lookup(R_1) = %q, want %q", got, target)
	}
}

func TestRead_NotFound(t *testing.T) {
	s := NewStore(t.TempDir())
	_, found, err := s.Read(filepath.Join(s.Dir(), "missing.md"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if found {
		t.Error("found = true for missing file")
	}
}
