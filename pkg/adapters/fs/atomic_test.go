package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("Creates New File", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "doc.docx")
		content := []byte("PK package bytes")

		if err := writeFileAtomic(filename, content, 0644); err != nil {
			t.Fatalf("writeFileAtomic failed: %v", err)
		}

		got, err := os.ReadFile(filename)
		if err != nil {
			t.Fatalf("Failed to read file: %v", err)
		}
		if string(got) != string(content) {
			t.Errorf("Expected %q, got %q", content, got)
		}
	})

	t.Run("Overwrites Existing File And Leaves No Temp Files", func(t *testing.T) {
		dir := t.TempDir()
		filename := filepath.Join(dir, "doc.docx")
		if err := os.WriteFile(filename, []byte("before"), 0644); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}

		if err := writeFileAtomic(filename, []byte("after"), 0644); err != nil {
			t.Fatalf("writeFileAtomic failed: %v", err)
		}

		got, _ := os.ReadFile(filename)
		if string(got) != "after" {
			t.Errorf("Expected 'after', got %q", got)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range entries {
			if isTempFile(e.Name()) {
				t.Errorf("temp file left behind: %s", e.Name())
			}
		}
	})

	t.Run("Fails if Directory Missing", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "missing_folder", "doc.docx")
		if err := writeFileAtomic(filename, []byte("fail"), 0644); err == nil {
			t.Error("Expected error when directory is missing, got nil")
		}
	})
}

func TestIsTempFile(t *testing.T) {
	if !isTempFile(filepath.Join("dir", TempFilePrefix+"123")) {
		t.Error("expected temp file to be recognized")
	}
	if isTempFile(filepath.Join(TempFilePrefix+"dir", "doc.docx")) {
		t.Error("only the base name marks a temp file")
	}
}
