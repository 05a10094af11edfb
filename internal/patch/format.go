package patch

import (
	"fmt"
	"strings"

	"github.com/syou6162/diffchunk/internal/model"
)

// DevNull names the absent side of a new or deleted file
const DevNull = "/dev/null"

const (
	noNewlineLine = `\ No newline at end of file`
	defaultMode   = "100644"
)

// FormatOptions controls how patches are written
type FormatOptions struct {
	// GitPrefixes writes git headers and a/ b/ path prefixes
	GitPrefixes bool
	// CompactCounts omits a range length of 1 in hunk headers
	CompactCounts bool
}

// MakeChunk writes one hunk. isLastChunk must be set only for the final
// chunk of a file in which a side lacks a trailing newline: the last line
// of each side is then followed by the no-newline marker, or dropped when
// it is the empty segment after the final newline.
func MakeChunk(chunk model.Chunk, isLastChunk bool, opts FormatOptions) string {
	rows := chunk.Rows

	lastLeft, lastRight := -1, -1
	split := -1
	if isLastChunk {
		for i, r := range rows {
			if r.Left.IsReal() {
				lastLeft = i
			}
			if r.Right.IsReal() {
				lastRight = i
			}
		}
		split = model.EOFSplitRow(rows)
	}

	var body strings.Builder
	leftCount, rightCount := 0, 0

	write := func(prefix byte, text string, last bool) bool {
		if last && text == "" {
			return false
		}
		body.WriteByte(prefix)
		body.WriteString(text)
		body.WriteByte('\n')
		if last {
			body.WriteString(noNewlineLine)
			body.WriteByte('\n')
		}
		return true
	}

	type pending struct {
		text string
		row  int
	}
	var deleted, inserted []pending
	flush := func() {
		for _, p := range deleted {
			if write('-', p.text, p.row == lastLeft) {
				leftCount++
			}
		}
		for _, p := range inserted {
			if write('+', p.text, p.row == lastRight) {
				rightCount++
			}
		}
		deleted, inserted = deleted[:0], inserted[:0]
	}

	for i, r := range rows {
		if r.Equal && i != split {
			flush()
			if write(' ', r.Left.Text, i == lastLeft) {
				leftCount++
				rightCount++
			}
			continue
		}
		if r.Left.IsReal() {
			deleted = append(deleted, pending{r.Left.Text, i})
		}
		if r.Right.IsReal() {
			inserted = append(inserted, pending{r.Right.Text, i})
		}
	}
	flush()

	header := hunkHeader(chunk.LeftStart, leftCount, chunk.RightStart, rightCount, opts.CompactCounts)
	if chunk.Header != "" {
		header += " " + chunk.Header
	}
	return header + "\n" + body.String()
}

func hunkHeader(leftStart, leftCount, rightStart, rightCount int, compact bool) string {
	return fmt.Sprintf("@@ -%s +%s @@",
		hunkRange(leftStart, leftCount, compact),
		hunkRange(rightStart, rightCount, compact))
}

// hunkRange prints a 0-based start as a 1-based line number. For an empty
// side the start already points at the line before the hunk, which is what
// the unified format expects.
func hunkRange(start, count int, compact bool) string {
	line := max(start+1, 0)
	if compact && count == 1 {
		return fmt.Sprintf("%d", line)
	}
	return fmt.Sprintf("%d,%d", line, count)
}

// MakePatch writes a single hunk with its file header lines
func MakePatch(chunk model.Chunk, leftFileName, rightFileName string, isLastChunk bool, opts FormatOptions) string {
	var sb strings.Builder
	sb.WriteString("--- " + pathLabel("a/", leftFileName, opts) + "\n")
	sb.WriteString("+++ " + pathLabel("b/", rightFileName, opts) + "\n")
	sb.WriteString(MakeChunk(chunk, isLastChunk, opts))
	return sb.String()
}

func pathLabel(prefix, name string, opts FormatOptions) string {
	if name == DevNull || !opts.GitPrefixes {
		return name
	}
	return prefix + name
}

// MakeDiffFile writes the complete patch text of one file. Context-only
// chunks are skipped.
func MakeDiffFile(fd model.FileDiff, opts FormatOptions) string {
	var sb strings.Builder

	leftName, rightName := fd.Left.Path, fd.Right.Path
	if rightName == "" {
		rightName = leftName
	}
	if leftName == "" {
		leftName = rightName
	}

	if opts.GitPrefixes {
		writeGitHeader(&sb, fd, leftName, rightName)
	}

	leftLabel := pathLabel("a/", leftName, opts)
	rightLabel := pathLabel("b/", rightName, opts)
	switch fd.Operation {
	case model.NewFile:
		leftLabel = DevNull
	case model.DeleteFile:
		rightLabel = DevNull
	}

	if fd.IsBinary {
		fmt.Fprintf(&sb, "Binary files %s and %s differ\n", leftLabel, rightLabel)
		return sb.String()
	}

	visible := fd.VisibleChunks()
	if len(visible) == 0 {
		return sb.String()
	}

	sb.WriteString("--- " + leftLabel + "\n")
	sb.WriteString("+++ " + rightLabel + "\n")
	for _, i := range visible {
		last := i == len(fd.Chunks)-1 && fd.LastChunkTouchesEOF
		sb.WriteString(MakeChunk(fd.Chunks[i], last, opts))
	}
	return sb.String()
}

func writeGitHeader(sb *strings.Builder, fd model.FileDiff, leftName, rightName string) {
	fmt.Fprintf(sb, "diff --git a/%s b/%s\n", leftName, rightName)

	switch fd.Operation {
	case model.NewFile:
		fmt.Fprintf(sb, "new file mode %s\n", orDefaultMode(fd.NewMode))
	case model.DeleteFile:
		fmt.Fprintf(sb, "deleted file mode %s\n", orDefaultMode(fd.OldMode))
	default:
		if fd.Operation == model.ChangeMode || (fd.OldMode != "" && fd.NewMode != "" && fd.OldMode != fd.NewMode) {
			fmt.Fprintf(sb, "old mode %s\nnew mode %s\n", orDefaultMode(fd.OldMode), orDefaultMode(fd.NewMode))
		}
	}

	if fd.Operation == model.CopyFile || fd.Operation == model.RenameFile {
		verb := "rename"
		if fd.Operation == model.CopyFile {
			verb = "copy"
		}
		fmt.Fprintf(sb, "similarity index %d%%\n", fd.Similarity)
		fmt.Fprintf(sb, "%s from %s\n%s to %s\n", verb, leftName, verb, rightName)
	}

	if fd.Left.Revision != "" && fd.Right.Revision != "" {
		fmt.Fprintf(sb, "index %s..%s", fd.Left.Revision, fd.Right.Revision)
		if fd.Operation == model.ChangeFile && fd.OldMode != "" && fd.OldMode == fd.NewMode {
			fmt.Fprintf(sb, " %s", fd.OldMode)
		}
		sb.WriteByte('\n')
	}
}

func orDefaultMode(mode string) string {
	if mode == "" {
		return defaultMode
	}
	return mode
}

// FormatPatch writes a multi-file patch
func FormatPatch(files []model.FileDiff, opts FormatOptions) string {
	var sb strings.Builder
	for _, fd := range files {
		sb.WriteString(MakeDiffFile(fd, opts))
	}
	return sb.String()
}
