// Package model holds the value types shared by the diff engine: rows of
// aligned lines, chunks, file diffs and row selections.
package model

import "strings"

// TextLineKind tells a real line apart from alignment padding
type TextLineKind int

const (
	// KindLine is a line that exists in the file
	KindLine TextLineKind = iota
	// KindSeparator pads the shorter side of a change
	KindSeparator
)

// TextLine is one side of a row
type TextLine struct {
	Text string
	Kind TextLineKind
}

// Line returns a real line holding text
func Line(text string) TextLine {
	return TextLine{Text: text, Kind: KindLine}
}

// Sep returns a separator
func Sep() TextLine {
	return TextLine{Kind: KindSeparator}
}

// IsReal reports whether the line exists in the file
func (l TextLine) IsReal() bool {
	return l.Kind == KindLine
}

// Row pairs a left line with a right line
type Row struct {
	Equal bool
	Left  TextLine
	Right TextLine
}

// EqualRow returns a row that shows the same text on both sides
func EqualRow(text string) Row {
	return Row{Equal: true, Left: Line(text), Right: Line(text)}
}

// PairRow aligns two sides and marks the row equal when both sides are
// real and carry the same text.
func PairRow(left, right TextLine) Row {
	return Row{
		Equal: left.IsReal() && right.IsReal() && left.Text == right.Text,
		Left:  left,
		Right: right,
	}
}

// Chunk is a contiguous run of rows. Starts are 0-based line indices; when
// a side has no lines in the chunk its start is the index of the line
// before it, so -1 means "before the start of the file".
type Chunk struct {
	LeftStart   int
	RightStart  int
	Header      string
	ContextOnly bool
	Rows        []Row
}

// LeftLineCount returns the number of real left lines
func (c Chunk) LeftLineCount() int {
	n := 0
	for _, r := range c.Rows {
		if r.Left.IsReal() {
			n++
		}
	}
	return n
}

// RightLineCount returns the number of real right lines
func (c Chunk) RightLineCount() int {
	n := 0
	for _, r := range c.Rows {
		if r.Right.IsReal() {
			n++
		}
	}
	return n
}

// HasChanges reports whether any row differs
func (c Chunk) HasChanges() bool {
	for _, r := range c.Rows {
		if !r.Equal {
			return true
		}
	}
	return false
}

// EOFSplitRow returns the index of an equal row that has to be written as
// a deletion plus an insertion because only one of its sides is the last
// line of its file, or -1. This happens when one file ends with a newline
// and the other does not.
func EOFSplitRow(rows []Row) int {
	lastLeft, lastRight := -1, -1
	for i, r := range rows {
		if r.Left.IsReal() {
			lastLeft = i
		}
		if r.Right.IsReal() {
			lastRight = i
		}
	}
	if lastLeft == lastRight {
		return -1
	}
	k := lastLeft
	if lastRight < k {
		k = lastRight
	}
	if k < 0 || !rows[k].Equal {
		return -1
	}
	return k
}

// EndpointRole describes who owns a side of the diff
type EndpointRole int

const (
	// RoleNone is a plain revision or file
	RoleNone EndpointRole = iota
	// RoleEditorBacked is a side whose text comes from a live buffer
	RoleEditorBacked
)

// FileEndpoint identifies one side of a file diff
type FileEndpoint struct {
	Path     string
	Revision string
	Role     EndpointRole
}

// FileOperation is what happened to the file
type FileOperation int

const (
	ChangeFile FileOperation = iota
	NewFile
	DeleteFile
	CopyFile
	RenameFile
	ChangeMode
)

// String returns the operation name
func (op FileOperation) String() string {
	switch op {
	case ChangeFile:
		return "change"
	case NewFile:
		return "new"
	case DeleteFile:
		return "delete"
	case CopyFile:
		return "copy"
	case RenameFile:
		return "rename"
	case ChangeMode:
		return "mode"
	default:
		return "unknown"
	}
}

// FileDiff is the full comparison of one file. A binary diff carries no
// chunks.
type FileDiff struct {
	Left                FileEndpoint
	Right               FileEndpoint
	Operation           FileOperation
	OldMode             string
	NewMode             string
	Similarity          int
	IsBinary            bool
	LastChunkTouchesEOF bool
	Chunks              []Chunk
}

// DisplayPath returns the path shown for the file
func (fd FileDiff) DisplayPath() string {
	switch fd.Operation {
	case CopyFile, RenameFile:
		if fd.Left.Path != fd.Right.Path {
			return fd.Left.Path + " => " + fd.Right.Path
		}
	case DeleteFile:
		return fd.Left.Path
	}
	if fd.Right.Path != "" {
		return fd.Right.Path
	}
	return fd.Left.Path
}

// VisibleChunks returns the chunks that carry at least one change
func (fd FileDiff) VisibleChunks() []int {
	var idx []int
	for i, c := range fd.Chunks {
		if !c.ContextOnly {
			idx = append(idx, i)
		}
	}
	return idx
}

// IsNullRevision reports whether rev is an all-zero object name, which git
// uses for an absent side.
func IsNullRevision(rev string) bool {
	return rev != "" && strings.Trim(rev, "0") == ""
}
