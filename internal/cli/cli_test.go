package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syou6162/diffchunk/internal/config"
	"github.com/syou6162/diffchunk/internal/executor"
	"github.com/syou6162/diffchunk/internal/logger"
	"github.com/syou6162/diffchunk/internal/validator"
	"github.com/syou6162/diffchunk/testutils"
)

const filePatch = `diff --git a/f.txt b/f.txt
--- a/f.txt
+++ b/f.txt
@@ -1,3 +1,3 @@
 a
-b
+B
 c
`

func testFactory(exec executor.CommandExecutor) appFactory {
	return func(configPath string) (*App, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		log := logger.New(logger.ErrorLevel)
		log.SetOutput(io.Discard)
		return &App{
			Config:    cfg,
			Logger:    log,
			Executor:  exec,
			Validator: validator.NewValidator(exec),
		}, nil
	}
}

// run executes the root command in a fresh working directory with the
// user config isolated
func run(t *testing.T, exec executor.CommandExecutor, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(logger.VerboseEnv, "")

	cmd := newRootCmd(testFactory(exec))
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func runRoot(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, executor.NewMockCommandExecutor(), args...)
	require.NoError(t, err)
	return out
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	t.Chdir(dir)
	return dir
}

func TestDiffCommand(t *testing.T) {
	writeFiles(t, map[string]string{
		"left.txt":  "a\nb\nc\n",
		"right.txt": "a\nB\nc\n",
	})

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "defaults",
			args: []string{"diff", "left.txt", "right.txt", "--color", "never"},
			want: []string{"--- a/left.txt\n", "+++ b/right.txt\n", "@@ -1,3 +1,3 @@\n a\n-b\n+B\n c\n"},
		},
		{
			name: "no prefix and zero context",
			args: []string{"diff", "left.txt", "right.txt", "--no-prefix", "-U", "0"},
			want: []string{"--- left.txt\n", "+++ right.txt\n", "@@ -2,1 +2,1 @@\n-b\n+B\n"},
		},
		{
			name: "compact counts",
			args: []string{"diff", "left.txt", "right.txt", "-U0", "--compact"},
			want: []string{"@@ -2 +2 @@\n-b\n+B\n"},
		},
		{
			name: "new file",
			args: []string{"diff", "/dev/null", "right.txt"},
			want: []string{"new file mode 100644\n", "--- /dev/null\n", "+++ b/right.txt\n", "@@ -0,0 +1,3 @@\n+a\n+B\n+c\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runRoot(t, tt.args...)
			testutils.AssertPatchContains(t, out, tt.want...)
			assert.NotContains(t, out, "\x1b[")
		})
	}
}

func TestDiffCommandColor(t *testing.T) {
	writeFiles(t, map[string]string{
		"left.txt":  "a\tb\n",
		"right.txt": "a\tB\n",
	})

	out := runRoot(t, "diff", "left.txt", "right.txt", "--color", "always")
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "a\tB", "tabs are kept")

	out = runRoot(t, "diff", "left.txt", "right.txt", "--color", "never")
	assert.NotContains(t, out, "\x1b[")
}

func TestDiffCommandErrors(t *testing.T) {
	writeFiles(t, map[string]string{"left.txt": "a\n"})

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "bad color", args: []string{"diff", "left.txt", "left.txt", "--color", "sometimes"}, wantErr: "invalid --color value"},
		{name: "negative context", args: []string{"diff", "left.txt", "left.txt", "-U", "-1"}, wantErr: "context lines must not be negative"},
		{name: "missing file", args: []string{"diff", "left.txt", "nope.txt"}, wantErr: "nope.txt"},
		{name: "one argument", args: []string{"diff", "left.txt"}, wantErr: "accepts 2 arg(s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, executor.NewMockCommandExecutor(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDiffCommandUsesConfig(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"left.txt":    "a\nb\nc\n",
		"right.txt":   "a\nB\nc\n",
		"config.yaml": "diff:\n  context_lines: 0\npatch:\n  git_prefixes: false\n",
	})

	out := runRoot(t, "--config", filepath.Join(dir, "config.yaml"), "diff", "left.txt", "right.txt")
	testutils.AssertPatchContains(t, out, "--- left.txt\n", "@@ -2,1 +2,1 @@\n")

	out = runRoot(t, "--config", filepath.Join(dir, "config.yaml"), "diff", "left.txt", "right.txt", "-U", "1")
	testutils.AssertPatchContains(t, out, "@@ -1,3 +1,3 @@\n")
}

func TestWorktreeCommand(t *testing.T) {
	dir, repo := testutils.CreateTestRepo(t)
	testutils.CommitFiles(t, dir, repo, map[string]string{
		"a.txt":     "one\n",
		"dir/b.txt": "x\n",
	}, "initial")
	testutils.WriteFile(t, dir, "a.txt", "two\n")
	testutils.WriteFile(t, dir, "dir/b.txt", "y\n")
	testutils.WriteFile(t, dir, "new.txt", "fresh\n")
	t.Chdir(dir)

	out := runRoot(t, "worktree")
	testutils.AssertPatchContains(t, out,
		"diff --git a/a.txt b/a.txt\n", "-one\n+two\n",
		"diff --git a/dir/b.txt b/dir/b.txt\n", "-x\n+y\n")
	testutils.AssertPatchNotContains(t, out, "new.txt")

	out = runRoot(t, "worktree", "dir")
	testutils.AssertPatchContains(t, out, "-x\n+y\n")
	testutils.AssertPatchNotContains(t, out, "a.txt")

	out = runRoot(t, "worktree", "--untracked", "new.txt")
	testutils.AssertPatchContains(t, out, "new file mode 100644\n", "+fresh\n")
}

func TestParseCommand(t *testing.T) {
	writeFiles(t, map[string]string{"changes.patch": filePatch + `diff --git a/g.txt b/g.txt
deleted file mode 100644
--- a/g.txt
+++ /dev/null
@@ -1 +0,0 @@
-gone
`})

	out := runRoot(t, "parse", "changes.patch")
	assert.Contains(t, out, "f.txt (change)\n")
	assert.Contains(t, out, "g.txt (delete)\n")
	assert.Regexp(t, `(?m)^  #1 [0-9a-f]{8} @@ -1,3 \+1,3 @@$`, out)
	assert.Regexp(t, `(?m)^  #1 [0-9a-f]{8} @@ -1,1 \+0,0 @@$`, out)

	_, err := run(t, executor.NewMockCommandExecutor(), "parse", "missing.patch")
	assert.Error(t, err)
}

func TestStageCommandPrint(t *testing.T) {
	writeFiles(t, map[string]string{"changes.patch": filePatch})

	tests := []struct {
		name string
		args []string
		want []string
		not  []string
	}{
		{
			name: "deletion only",
			args: []string{"--file", "f.txt", "--hunk", "1", "--left", "2"},
			want: []string{"--- a/f.txt\n", "@@ -1,3 +1,2 @@\n a\n-b\n c\n"},
			not:  []string{"+B"},
		},
		{
			name: "insertion only",
			args: []string{"--file", "f.txt", "--hunk", "1", "--right", "2"},
			want: []string{"@@ -1,3 +1,4 @@\n a\n b\n+B\n c\n"},
		},
		{
			name: "revert deletion",
			args: []string{"--file", "f.txt", "--hunk", "1", "--left", "2", "--revert"},
			want: []string{"@@ -1,4 +1,3 @@\n a\n-b\n B\n c\n"},
		},
		{
			name: "whole hunk by spec",
			args: []string{"--hunk", "f.txt:1"},
			want: []string{"@@ -1,3 +1,3 @@\n a\n-b\n+B\n c\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"stage", "--patch", "changes.patch"}, tt.args...)
			out := runRoot(t, args...)
			testutils.AssertPatchContains(t, out, tt.want...)
			testutils.AssertPatchNotContains(t, out, tt.not...)
		})
	}
}

func TestStageCommandApply(t *testing.T) {
	writeFiles(t, map[string]string{"changes.patch": filePatch})

	tests := []struct {
		name     string
		args     []string
		wantArgs []string
	}{
		{
			name:     "hunk spec to index",
			args:     []string{"--hunk", "f.txt:1"},
			wantArgs: []string{"apply", "--cached"},
		},
		{
			name:     "rows to index",
			args:     []string{"--file", "f.txt", "--hunk", "1", "--left", "2"},
			wantArgs: []string{"apply", "--cached"},
		},
		{
			name:     "revert in worktree",
			args:     []string{"--file", "f.txt", "--hunk", "1", "--left", "2", "--revert", "--worktree"},
			wantArgs: []string{"apply", "-R"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := executor.NewMockCommandExecutor()
			mock.Commands["git [--version]"] = executor.MockResponse{Output: []byte("git version 2.43.0\n")}
			check := append([]string{"apply", "--check"}, tt.wantArgs[1:]...)
			mock.Commands["git "+formatArgs(check)] = executor.MockResponse{}
			mock.Commands["git "+formatArgs(tt.wantArgs)] = executor.MockResponse{}

			args := append([]string{"stage", "--patch", "changes.patch", "--apply"}, tt.args...)
			out, err := run(t, mock, args...)
			require.NoError(t, err)
			assert.Empty(t, out)

			require.Len(t, mock.ExecutedCommands, 3)
			assert.Equal(t, []string{"--version"}, mock.ExecutedCommands[0].Args)
			assert.Equal(t, check, mock.ExecutedCommands[1].Args)
			assert.Equal(t, tt.wantArgs, mock.ExecutedCommands[2].Args)
			assert.Contains(t, string(mock.ExecutedCommands[2].Stdin), "-b\n")
		})
	}
}

func formatArgs(args []string) string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, a := range args {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(a)
	}
	buf.WriteByte(']')
	return buf.String()
}

func TestStageCommandErrors(t *testing.T) {
	writeFiles(t, map[string]string{"changes.patch": filePatch})

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no patch", args: []string{"stage", "--hunk", "f.txt:1"}, wantErr: "patch file cannot be empty"},
		{name: "no hunk", args: []string{"stage", "--patch", "changes.patch"}, wantErr: "at least one hunk specification is required"},
		{name: "rows without file", args: []string{"stage", "--patch", "changes.patch", "--hunk", "f.txt:1", "--left", "1"}, wantErr: "row selections need --file"},
		{name: "revert without file", args: []string{"stage", "--patch", "changes.patch", "--hunk", "f.txt:1", "--revert"}, wantErr: "--revert and --worktree need --file"},
		{name: "unknown hunk", args: []string{"stage", "--patch", "changes.patch", "--hunk", "f.txt:9"}, wantErr: "not found"},
		{name: "row out of range", args: []string{"stage", "--patch", "changes.patch", "--file", "f.txt", "--hunk", "1", "--left", "9"}, wantErr: "out of range"},
		{name: "huge row range", args: []string{"stage", "--patch", "changes.patch", "--file", "f.txt", "--hunk", "1", "--left", "1-2000000000"}, wantErr: "row 2000000000 out of range"},
		{name: "git missing", args: []string{"stage", "--patch", "changes.patch", "--hunk", "f.txt:1", "--apply"}, wantErr: "git command not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, executor.NewMockCommandExecutor(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigCommand(t *testing.T) {
	out := runRoot(t, "config")
	assert.Contains(t, out, `"context_lines": 3`)
	assert.Contains(t, out, `"git_prefixes": true`)

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o644))
	_, err := run(t, executor.NewMockCommandExecutor(), "--config", path, "config")
	assert.Error(t, err)
}

func TestPainterRender(t *testing.T) {
	var buf bytes.Buffer
	p, err := newPainter(&buf, "always")
	require.NoError(t, err)

	out := p.Render(filePatch)
	assert.Equal(t, len(bytes.Split([]byte(filePatch), []byte("\n"))), len(bytes.Split([]byte(out), []byte("\n"))))
	assert.Contains(t, out, "\x1b[")

	p, err = newPainter(&buf, "never")
	require.NoError(t, err)
	assert.Equal(t, filePatch, p.Render(filePatch))
}
