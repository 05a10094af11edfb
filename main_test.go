package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "no arguments shows usage",
			args:       []string{},
			wantCode:   0,
			wantStdout: "Available Commands:",
		},
		{
			name:       "help flag",
			args:       []string{"--help"},
			wantCode:   0,
			wantStdout: "stage",
		},
		{
			name:       "stage help",
			args:       []string{"stage", "--help"},
			wantCode:   0,
			wantStdout: "file:refs",
		},
		{
			name:       "unknown command",
			args:       []string{"bogus"},
			wantCode:   1,
			wantStderr: `Error: unknown command "bogus"`,
		},
		{
			name:       "missing patch flag",
			args:       []string{"stage", "--hunk", "file.go:1"},
			wantCode:   1,
			wantStderr: "patch file cannot be empty",
		},
		{
			name:       "invalid hunk spec",
			args:       []string{"stage", "--patch", "x.patch", "--hunk", "file.go"},
			wantCode:   1,
			wantStderr: "invalid hunk spec format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			var stdout, stderr bytes.Buffer

			code := run(tt.args, &stdout, &stderr)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout %q does not contain %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr %q does not contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}
