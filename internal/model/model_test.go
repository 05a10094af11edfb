package model

import (
	"testing"
)

func TestPairRow(t *testing.T) {
	tests := []struct {
		name      string
		left      TextLine
		right     TextLine
		wantEqual bool
	}{
		{"same text", Line("a"), Line("a"), true},
		{"different text", Line("a"), Line("b"), false},
		{"left separator", Sep(), Line(""), false},
		{"right separator", Line(""), Sep(), false},
		{"both empty", Line(""), Line(""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PairRow(tt.left, tt.right)
			if got.Equal != tt.wantEqual {
				t.Errorf("PairRow().Equal = %v, want %v", got.Equal, tt.wantEqual)
			}
		})
	}
}

func TestChunkLineCounts(t *testing.T) {
	chunk := Chunk{Rows: []Row{
		EqualRow("a"),
		{Left: Line("b"), Right: Sep()},
		{Left: Sep(), Right: Line("c")},
		{Left: Sep(), Right: Line("d")},
	}}

	if got := chunk.LeftLineCount(); got != 2 {
		t.Errorf("LeftLineCount() = %d, want 2", got)
	}
	if got := chunk.RightLineCount(); got != 3 {
		t.Errorf("RightLineCount() = %d, want 3", got)
	}
	if !chunk.HasChanges() {
		t.Error("HasChanges() = false, want true")
	}
	if (Chunk{Rows: []Row{EqualRow("x")}}).HasChanges() {
		t.Error("HasChanges() = true for an all-equal chunk")
	}
}

func TestEOFSplitRow(t *testing.T) {
	tests := []struct {
		name string
		rows []Row
		want int
	}{
		{
			name: "equal row followed by left terminator",
			rows: []Row{EqualRow("a"), {Left: Line(""), Right: Sep()}},
			want: 0,
		},
		{
			name: "equal row followed by right terminator",
			rows: []Row{EqualRow("x"), EqualRow("b"), {Left: Sep(), Right: Line("")}},
			want: 1,
		},
		{
			name: "last rows changed",
			rows: []Row{{Left: Line("x"), Right: Line("y")}, {Left: Line(""), Right: Sep()}},
			want: -1,
		},
		{
			name: "both sides end together",
			rows: []Row{EqualRow("a"), EqualRow("b")},
			want: -1,
		},
		{
			name: "no rows",
			want: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EOFSplitRow(tt.rows); got != tt.want {
				t.Errorf("EOFSplitRow() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFileOperationString(t *testing.T) {
	tests := []struct {
		op   FileOperation
		want string
	}{
		{ChangeFile, "change"},
		{NewFile, "new"},
		{DeleteFile, "delete"},
		{CopyFile, "copy"},
		{RenameFile, "rename"},
		{ChangeMode, "mode"},
		{FileOperation(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("FileOperation(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestDisplayPath(t *testing.T) {
	tests := []struct {
		name string
		fd   FileDiff
		want string
	}{
		{
			name: "change",
			fd:   FileDiff{Left: FileEndpoint{Path: "a.go"}, Right: FileEndpoint{Path: "a.go"}},
			want: "a.go",
		},
		{
			name: "rename",
			fd:   FileDiff{Operation: RenameFile, Left: FileEndpoint{Path: "old.go"}, Right: FileEndpoint{Path: "new.go"}},
			want: "old.go => new.go",
		},
		{
			name: "delete",
			fd:   FileDiff{Operation: DeleteFile, Left: FileEndpoint{Path: "gone.go"}, Right: FileEndpoint{Path: "gone.go"}},
			want: "gone.go",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fd.DisplayPath(); got != tt.want {
				t.Errorf("DisplayPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsNullRevision(t *testing.T) {
	tests := []struct {
		rev  string
		want bool
	}{
		{"0000000", true},
		{"0000000000000000000000000000000000000000", true},
		{"257cc56", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsNullRevision(tt.rev); got != tt.want {
			t.Errorf("IsNullRevision(%q) = %v, want %v", tt.rev, got, tt.want)
		}
	}
}

func TestSelection(t *testing.T) {
	sel := NewSelection()
	if !sel.IsEmpty() {
		t.Fatal("new selection is not empty")
	}
	sel = sel.SelectLeft(3, 1).SelectRight(2)
	if !sel.HasLeft(1) || !sel.HasLeft(3) || sel.HasLeft(2) {
		t.Errorf("unexpected left rows: %v", Rows(sel.LeftRows))
	}
	if !sel.HasRight(2) || sel.HasRight(1) {
		t.Errorf("unexpected right rows: %v", Rows(sel.RightRows))
	}
	got := Rows(sel.LeftRows)
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("Rows() = %v, want [1 3]", got)
	}
}
