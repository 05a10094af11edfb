package stager

import (
	"crypto/sha1"
	"fmt"
	"strconv"
	"strings"

	"github.com/syou6162/diffchunk/internal/engine"
	"github.com/syou6162/diffchunk/internal/model"
	"github.com/syou6162/diffchunk/internal/patch"
)

const hunkIDLength = 8

// Hunk is one visible chunk of a parsed patch together with the standalone
// patch that applies it
type Hunk struct {
	// Number is 1-based within its file
	Number int
	ID     string
	// FileIndex and ChunkIndex locate the chunk in the parsed patch
	FileIndex  int
	ChunkIndex int
	FilePath   string
	// Rows is the number of rows in the chunk
	Rows    int
	Header  string
	Content string
}

// ListHunks numbers the visible chunks of every file. Binary files have
// none.
func ListHunks(files []model.FileDiff, opts patch.FormatOptions) ([]Hunk, error) {
	var hunks []Hunk
	for fi, fd := range files {
		if fd.IsBinary {
			continue
		}
		for n, ci := range fd.VisibleChunks() {
			content, err := engine.MakePartialPatch(fd, ci, model.NewSelection(), false, opts)
			if err != nil {
				return nil, err
			}
			hunks = append(hunks, Hunk{
				Number:     n + 1,
				ID:         calculateHunkID(content),
				FileIndex:  fi,
				ChunkIndex: ci,
				FilePath:   fd.DisplayPath(),
				Rows:       len(fd.Chunks[ci].Rows),
				Header:     hunkHeaderLine(content),
				Content:    content,
			})
		}
	}
	return hunks, nil
}

// FindHunk resolves a hunk number or ID. Numbers count within a file and
// are only tried when path is set; IDs are unique across the patch.
func FindHunk(hunks []Hunk, path, ref string) (Hunk, error) {
	num, err := strconv.Atoi(ref)
	isNumber := err == nil && path != ""

	for _, h := range hunks {
		if path != "" && !matchesPath(h, path) {
			continue
		}
		if isNumber && h.Number == num {
			return h, nil
		}
		if strings.EqualFold(h.ID, ref) {
			return h, nil
		}
	}
	return Hunk{}, NewHunkNotFoundError(path, ref)
}

// matchesPath also accepts the old path of a renamed file
func matchesPath(h Hunk, path string) bool {
	if h.FilePath == path {
		return true
	}
	if before, after, ok := strings.Cut(h.FilePath, " => "); ok {
		return before == path || after == path
	}
	return false
}

func hunkHeaderLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "@@") {
			return line
		}
	}
	return ""
}

// calculateHunkID generates a short stable ID for a hunk using SHA1
func calculateHunkID(content string) string {
	sum := sha1.Sum([]byte(content))
	return fmt.Sprintf("%x", sum)[:hunkIDLength]
}
