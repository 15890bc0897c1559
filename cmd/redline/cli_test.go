package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/redline/internal/testdocx"
	"github.com/aretw0/redline/pkg/core"
)

// buildBinary builds the redline binary in dir and returns its path.
func buildBinary(t *testing.T, dir string) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping CLI build in short mode")
	}
	bin := filepath.Join(dir, "redline.exe")
	buildCmd := exec.Command("go", "build", "-o", bin, ".")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build redline: %v\n%s", err, string(out))
	}
	return bin
}

func runCmd(t *testing.T, dir string, name string, args ...string) string {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "NO_COLOR=1")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput:\n%s", name, args, err, string(out))
	}
	return string(out)
}

func writeDocx(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, testdocx.Build(t, testdocx.Body(body)), 0644); err != nil {
		t.Fatal(err)
	}
}

const revised = `<w:p><w:ins w:id="1" w:author="Ana"><w:r><w:t>Hello</w:t></w:r></w:ins>` +
	`<w:del w:id="2" w:author="Ana"><w:r><w:delText>Bye</w:delText></w:r></w:del></w:p>`

func TestCLI(t *testing.T) {
	tempDir := t.TempDir()
	bin := buildBinary(t, tempDir)

	t.Run("Version", func(t *testing.T) {
		out := runCmd(t, tempDir, bin, "version")
		if !strings.HasPrefix(out, "redline version ") {
			t.Errorf("unexpected version output: %q", out)
		}
	})

	t.Run("Revisions JSON", func(t *testing.T) {
		src := filepath.Join(tempDir, "list.docx")
		writeDocx(t, src, revised)

		out := runCmd(t, tempDir, bin, "revisions", "--json", src)
		var infos []core.RevisionInfo
		if err := json.Unmarshal([]byte(out), &infos); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if len(infos) != 2 || infos[0].Kind != "insertion" || infos[1].Text != "Bye" {
			t.Errorf("unexpected revisions: %+v", infos)
		}
	})

	t.Run("Finish Into Copy With Diff", func(t *testing.T) {
		src := filepath.Join(tempDir, "draft.docx")
		dst := filepath.Join(tempDir, "final", "draft.docx")
		writeDocx(t, src, revised)
		before, _ := os.ReadFile(src)

		out := runCmd(t, tempDir, bin, "finish", "--diff", src, dst)
		if !strings.Contains(out, "accepted 2 revisions") {
			t.Errorf("missing summary:\n%s", out)
		}
		if !strings.Contains(out, "w:delText") {
			t.Errorf("diff should show the removed deletion:\n%s", out)
		}

		after, _ := os.ReadFile(src)
		if string(before) != string(after) {
			t.Error("source must not change when a destination is given")
		}
		shown := runCmd(t, tempDir, bin, "show", dst)
		if strings.Contains(shown, "w:ins") || !strings.Contains(shown, "Hello") {
			t.Errorf("unexpected reviewed document:\n%s", shown)
		}
	})

	t.Run("Batch With Config File", func(t *testing.T) {
		root := filepath.Join(tempDir, "batch")
		writeDocx(t, filepath.Join(root, "a.docx"), revised)
		writeDocx(t, filepath.Join(root, "skip", "b.docx"), revised)
		config := "suffix: -done\nexclude:\n  - \"skip/**\"\n"
		if err := os.WriteFile(filepath.Join(root, ".redline.yaml"), []byte(config), 0644); err != nil {
			t.Fatal(err)
		}

		out := runCmd(t, root, bin, "batch")
		if !strings.Contains(out, "1 documents, 2 revisions accepted, 0 failed") {
			t.Errorf("unexpected batch summary:\n%s", out)
		}
		if _, err := os.Stat(filepath.Join(root, "a-done.docx")); err != nil {
			t.Errorf("expected reviewed copy: %v", err)
		}
		if _, err := os.Stat(filepath.Join(root, "skip", "b-done.docx")); err == nil {
			t.Error("excluded document was reviewed")
		}
	})
}
