package patch

import (
	"testing"

	"github.com/syou6162/diffchunk/internal/model"
)

func changed(left, right string) model.Row {
	return model.PairRow(model.Line(left), model.Line(right))
}

func deleted(text string) model.Row {
	return model.Row{Left: model.Line(text), Right: model.Sep()}
}

func inserted(text string) model.Row {
	return model.Row{Left: model.Sep(), Right: model.Line(text)}
}

func TestMakeChunk(t *testing.T) {
	tests := []struct {
		name   string
		chunk  model.Chunk
		isLast bool
		opts   FormatOptions
		want   string
	}{
		{
			name: "first line removed",
			chunk: model.Chunk{Rows: []model.Row{
				deleted("ABCD"),
				model.EqualRow("EFGH"),
			}},
			want: "@@ -1,2 +1,1 @@\n-ABCD\n EFGH\n",
		},
		{
			name: "compact counts",
			chunk: model.Chunk{Rows: []model.Row{
				deleted("ABCD"),
				model.EqualRow("EFGH"),
			}},
			opts: FormatOptions{CompactCounts: true},
			want: "@@ -1,2 +1 @@\n-ABCD\n EFGH\n",
		},
		{
			name: "deletions before insertions",
			chunk: model.Chunk{LeftStart: 4, RightStart: 4, Rows: []model.Row{
				model.EqualRow("ctx"),
				changed("a", "b"),
				changed("c", "d"),
				inserted("e"),
			}},
			want: "@@ -5,3 +5,4 @@\n ctx\n-a\n-c\n+b\n+d\n+e\n",
		},
		{
			name:  "new file",
			chunk: model.Chunk{LeftStart: -1, Rows: []model.Row{inserted("a"), inserted("b")}},
			want:  "@@ -0,0 +1,2 @@\n+a\n+b\n",
		},
		{
			name:  "pure insertion prints the line before",
			chunk: model.Chunk{LeftStart: 0, RightStart: 1, Rows: []model.Row{inserted("q")}},
			want:  "@@ -1,0 +2,1 @@\n+q\n",
		},
		{
			name:  "header label",
			chunk: model.Chunk{Header: "func main() {", Rows: []model.Row{changed("x", "y")}},
			want:  "@@ -1,1 +1,1 @@ func main() {\n-x\n+y\n",
		},
		{
			name: "newline added at end of file",
			chunk: model.Chunk{Rows: []model.Row{
				model.EqualRow("a"),
				{Left: model.Line(""), Right: model.Sep()},
			}},
			isLast: true,
			want:   "@@ -1,1 +1,1 @@\n-a\n+a\n\\ No newline at end of file\n",
		},
		{
			name: "newline removed at end of file",
			chunk: model.Chunk{Rows: []model.Row{
				changed("a", "b"),
				{Left: model.Sep(), Right: model.Line("")},
			}},
			isLast: true,
			want:   "@@ -1,1 +1,1 @@\n-a\n\\ No newline at end of file\n+b\n",
		},
		{
			name: "both sides without newline",
			chunk: model.Chunk{Rows: []model.Row{
				changed("x", "y"),
				model.EqualRow("b"),
			}},
			isLast: true,
			want:   "@@ -1,2 +1,2 @@\n-x\n+y\n b\n\\ No newline at end of file\n",
		},
		{
			name: "same rows in a middle chunk",
			chunk: model.Chunk{Rows: []model.Row{
				changed("x", "y"),
				model.EqualRow("b"),
			}},
			want: "@@ -1,2 +1,2 @@\n-x\n+y\n b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MakeChunk(tt.chunk, tt.isLast, tt.opts)
			if got != tt.want {
				t.Errorf("MakeChunk() =\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestMakePatch(t *testing.T) {
	chunk := model.Chunk{Rows: []model.Row{changed("old", "new")}}

	got := MakePatch(chunk, "file.txt", "file.txt", false, FormatOptions{GitPrefixes: true})
	want := "--- a/file.txt\n+++ b/file.txt\n@@ -1,1 +1,1 @@\n-old\n+new\n"
	if got != want {
		t.Errorf("MakePatch() =\n%s\nwant:\n%s", got, want)
	}

	got = MakePatch(chunk, "left.txt", "right.txt", false, FormatOptions{})
	want = "--- left.txt\n+++ right.txt\n@@ -1,1 +1,1 @@\n-old\n+new\n"
	if got != want {
		t.Errorf("MakePatch() without prefixes =\n%s\nwant:\n%s", got, want)
	}
}

func TestMakeDiffFile(t *testing.T) {
	tests := []struct {
		name string
		fd   model.FileDiff
		opts FormatOptions
		want string
	}{
		{
			name: "new file",
			fd: model.FileDiff{
				Operation: model.NewFile,
				Left:      model.FileEndpoint{Path: "new.txt", Revision: "0000000"},
				Right:     model.FileEndpoint{Path: "new.txt", Revision: "257cc56"},
				NewMode:   "100644",
				Chunks:    []model.Chunk{{LeftStart: -1, Rows: []model.Row{inserted("foo")}}},
			},
			opts: FormatOptions{GitPrefixes: true},
			want: "diff --git a/new.txt b/new.txt\n" +
				"new file mode 100644\n" +
				"index 0000000..257cc56\n" +
				"--- /dev/null\n" +
				"+++ b/new.txt\n" +
				"@@ -0,0 +1,1 @@\n" +
				"+foo\n",
		},
		{
			name: "deleted file",
			fd: model.FileDiff{
				Operation: model.DeleteFile,
				Left:      model.FileEndpoint{Path: "gone.txt", Revision: "257cc56"},
				Right:     model.FileEndpoint{Path: "gone.txt", Revision: "0000000"},
				OldMode:   "100644",
				Chunks:    []model.Chunk{{RightStart: -1, Rows: []model.Row{deleted("foo")}}},
			},
			opts: FormatOptions{GitPrefixes: true},
			want: "diff --git a/gone.txt b/gone.txt\n" +
				"deleted file mode 100644\n" +
				"index 257cc56..0000000\n" +
				"--- a/gone.txt\n" +
				"+++ /dev/null\n" +
				"@@ -1,1 +0,0 @@\n" +
				"-foo\n",
		},
		{
			name: "pure rename",
			fd: model.FileDiff{
				Operation:  model.RenameFile,
				Similarity: 100,
				Left:       model.FileEndpoint{Path: "old name.txt"},
				Right:      model.FileEndpoint{Path: "new name.txt"},
			},
			opts: FormatOptions{GitPrefixes: true},
			want: "diff --git a/old name.txt b/new name.txt\n" +
				"similarity index 100%\n" +
				"rename from old name.txt\n" +
				"rename to new name.txt\n",
		},
		{
			name: "binary",
			fd: model.FileDiff{
				IsBinary: true,
				Left:     model.FileEndpoint{Path: "img.png", Revision: "1111111"},
				Right:    model.FileEndpoint{Path: "img.png", Revision: "2222222"},
				OldMode:  "100644",
				NewMode:  "100644",
			},
			opts: FormatOptions{GitPrefixes: true},
			want: "diff --git a/img.png b/img.png\n" +
				"index 1111111..2222222 100644\n" +
				"Binary files a/img.png and b/img.png differ\n",
		},
		{
			name: "mode change",
			fd: model.FileDiff{
				Operation: model.ChangeMode,
				Left:      model.FileEndpoint{Path: "run.sh"},
				Right:     model.FileEndpoint{Path: "run.sh"},
				OldMode:   "100644",
				NewMode:   "100755",
			},
			opts: FormatOptions{GitPrefixes: true},
			want: "diff --git a/run.sh b/run.sh\nold mode 100644\nnew mode 100755\n",
		},
		{
			name: "plain unified skips context chunks",
			fd: model.FileDiff{
				Left:  model.FileEndpoint{Path: "a.txt"},
				Right: model.FileEndpoint{Path: "a.txt"},
				Chunks: []model.Chunk{
					{ContextOnly: true, Rows: []model.Row{model.EqualRow("1"), model.EqualRow("2")}},
					{LeftStart: 2, RightStart: 2, Rows: []model.Row{changed("3", "three")}},
				},
			},
			want: "--- a.txt\n+++ a.txt\n@@ -3,1 +3,1 @@\n-3\n+three\n",
		},
		{
			name: "missing newline in the last chunk",
			fd: model.FileDiff{
				Left:                model.FileEndpoint{Path: "f"},
				Right:               model.FileEndpoint{Path: "f"},
				LastChunkTouchesEOF: true,
				Chunks: []model.Chunk{
					{Rows: []model.Row{changed("a", "b")}},
					{ContextOnly: true, Rows: []model.Row{model.EqualRow("c")}},
					{LeftStart: 2, RightStart: 2, Rows: []model.Row{changed("d", "e")}},
				},
			},
			opts: FormatOptions{GitPrefixes: true},
			want: "diff --git a/f b/f\n--- a/f\n+++ b/f\n" +
				"@@ -1,1 +1,1 @@\n-a\n+b\n" +
				"@@ -3,1 +3,1 @@\n-d\n\\ No newline at end of file\n+e\n\\ No newline at end of file\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MakeDiffFile(tt.fd, tt.opts)
			if got != tt.want {
				t.Errorf("MakeDiffFile() =\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestFormatPatchConcatenatesFiles(t *testing.T) {
	files := []model.FileDiff{
		{Left: model.FileEndpoint{Path: "a"}, Right: model.FileEndpoint{Path: "a"}, Chunks: []model.Chunk{{Rows: []model.Row{changed("1", "2")}}}},
		{Left: model.FileEndpoint{Path: "b"}, Right: model.FileEndpoint{Path: "b"}, Chunks: []model.Chunk{{Rows: []model.Row{changed("3", "4")}}}},
	}
	got := FormatPatch(files, FormatOptions{GitPrefixes: true})
	want := "diff --git a/a b/a\n--- a/a\n+++ b/a\n@@ -1,1 +1,1 @@\n-1\n+2\n" +
		"diff --git a/b b/b\n--- a/b\n+++ b/b\n@@ -1,1 +1,1 @@\n-3\n+4\n"
	if got != want {
		t.Errorf("FormatPatch() =\n%s\nwant:\n%s", got, want)
	}
}
