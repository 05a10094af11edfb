package testutils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertPatchContains fails the test unless every want fragment occurs in
// patch. The whole patch is printed on failure.
func AssertPatchContains(t *testing.T, patch string, want ...string) {
	t.Helper()
	for _, s := range want {
		assert.Contains(t, patch, s, "patch:\n%s", patch)
	}
}

// AssertPatchNotContains is the inverse of AssertPatchContains
func AssertPatchNotContains(t *testing.T, patch string, unwanted ...string) {
	t.Helper()
	for _, s := range unwanted {
		assert.NotContains(t, patch, s, "patch:\n%s", patch)
	}
}

// AssertPatchApplies applies the file section of patch named path to src
// with go-gitdiff and compares the result with want
func AssertPatchApplies(t *testing.T, patch, path, src, want string) {
	t.Helper()
	files, _, err := gitdiff.Parse(strings.NewReader(patch))
	require.NoError(t, err, "patch:\n%s", patch)

	for _, f := range files {
		if f.NewName != path && f.OldName != path {
			continue
		}
		var out bytes.Buffer
		require.NoError(t, gitdiff.Apply(&out, strings.NewReader(src), f), "patch:\n%s", patch)
		assert.Equal(t, want, out.String())
		return
	}
	t.Fatalf("patch has no section for %s\n\npatch:\n%s", path, patch)
}
