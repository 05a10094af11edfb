package testutils

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// RunCommand executes a command in the specified directory
func RunCommand(t *testing.T, dir string, command string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(command, args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// RequireGit skips the test when the git binary is not installed
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH")
	}
}

// CreateTestRepo creates a repository in a temporary directory that is
// removed when the test ends
func CreateTestRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	return dir, repo
}

// WriteFile writes a file below dir, creating parent directories
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// CommitFiles writes files and commits them
func CommitFiles(t *testing.T, dir string, repo *git.Repository, files map[string]string, message string) {
	t.Helper()

	w, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		WriteFile(t, dir, name, content)
		if _, err := w.Add(name); err != nil {
			t.Fatal(err)
		}
	}

	_, err = w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
}

// StagedContent returns the content of a file in the index
func StagedContent(t *testing.T, repo *git.Repository, name string) string {
	t.Helper()

	idx, err := repo.Storer.Index()
	if err != nil {
		t.Fatal(err)
	}
	entry, err := idx.Entry(name)
	if err != nil {
		t.Fatalf("%s is not in the index: %v", name, err)
	}
	blob, err := repo.BlobObject(entry.Hash)
	if err != nil {
		t.Fatal(err)
	}
	r, err := blob.Reader()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	content, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(content)
}

// NumberedLines returns count lines "prefix N" each ending with a newline
func NumberedLines(prefix string, count int) string {
	var sb strings.Builder
	for i := 1; i <= count; i++ {
		fmt.Fprintf(&sb, "%s %d\n", prefix, i)
	}
	return sb.String()
}
