package differ

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sideTexts(ops []Op) (left, right string) {
	var l, r strings.Builder
	for _, op := range ops {
		switch op.Command {
		case Equal:
			l.WriteString(op.Text)
			r.WriteString(op.Text)
		case Delete:
			l.WriteString(op.Text)
		case Insert:
			r.WriteString(op.Text)
		}
	}
	return l.String(), r.String()
}

func longText(n int, mutate func(i int) string) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if mutate != nil {
			if s := mutate(i); s != "" {
				sb.WriteString(s)
				continue
			}
		}
		fmt.Fprintf(&sb, "line number %d with some padding text\n", i)
	}
	return sb.String()
}

func TestDiffReconstructsBothSides(t *testing.T) {
	tests := []struct {
		name  string
		left  string
		right string
	}{
		{"empty", "", ""},
		{"insert into empty", "", "abc\n"},
		{"delete everything", "abc\n", ""},
		{"one line changed", "a\nb\nc\n", "a\nX\nc\n"},
		{"contained", "abc", "xxabcxx"},
		{"single rune", "a", "b"},
		{"no common text", "abcdef", "uvwxyz"},
		{"unicode", "héllo wörld\n", "hello world\n"},
		{"newline only change", "a\nb", "a\nb\n"},
		{"line mode", longText(200, nil), longText(200, func(i int) string {
			if i%17 == 0 {
				return fmt.Sprintf("changed %d\n", i)
			}
			return ""
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, err := Diff(context.Background(), tt.left, tt.right)
			require.NoError(t, err)

			left, right := sideTexts(ops)
			assert.Equal(t, tt.left, left)
			assert.Equal(t, tt.right, right)
			for _, op := range ops {
				assert.NotEmpty(t, op.Text, "ops must not carry empty text")
			}
		})
	}
}

func TestDiffIdentity(t *testing.T) {
	ops, err := Diff(context.Background(), "same\ntext\n", "same\ntext\n")
	require.NoError(t, err)
	require.Equal(t, []Op{{Command: Equal, Text: "same\ntext\n"}}, ops)

	ops, err = Diff(context.Background(), "", "")
	require.NoError(t, err)
	require.Empty(t, ops)
}

func TestDiffCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ops, err := Diff(ctx, longText(500, nil), longText(500, func(i int) string {
		if i%3 == 0 {
			return "x\n"
		}
		return ""
	}))
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, ops)
}

func TestDiffSimpleEdit(t *testing.T) {
	ops, err := Diff(context.Background(), "abc", "abd")
	require.NoError(t, err)
	require.Equal(t, []Op{
		{Command: Equal, Text: "ab"},
		{Command: Delete, Text: "c"},
		{Command: Insert, Text: "d"},
	}, ops)
}

func TestCleanupSemanticsIdempotent(t *testing.T) {
	inputs := [][2]string{
		{"The cat sat on the mat.\n", "The dog sat on a hat.\n"},
		{"func a() {\n\treturn 1\n}\n", "func b() {\n\treturn 2\n}\n"},
		{"abcdefgh", "axcxexgx"},
	}
	for _, in := range inputs {
		ops, err := Diff(context.Background(), in[0], in[1])
		require.NoError(t, err)

		once := CleanupSemantics(ops)
		twice := CleanupSemantics(once)
		assert.Equal(t, once, twice)

		left, right := sideTexts(once)
		assert.Equal(t, in[0], left)
		assert.Equal(t, in[1], right)
	}
}

func TestSplitDiffList(t *testing.T) {
	ops := []Op{
		{Command: Equal, Text: "a\n"},
		{Command: Delete, Text: "b\n"},
		{Command: Insert, Text: "c\n"},
		{Command: Equal, Text: "d\n"},
		{Command: Insert, Text: "e\n"},
	}
	left, right := SplitDiffList(ops)

	assert.Equal(t, "a\nb\nd\n", Text(left))
	assert.Equal(t, "a\nc\nd\ne\n", Text(right))

	count := func(ops []Op) int {
		n := 0
		for _, op := range ops {
			if op.Command == Equal {
				n++
			}
		}
		return n
	}
	assert.Equal(t, count(left), count(right))
	for _, op := range left {
		assert.NotEqual(t, Insert, op.Command)
	}
	for _, op := range right {
		assert.NotEqual(t, Delete, op.Command)
	}
}

func TestDiffSidesIgnoreWhitespace(t *testing.T) {
	tests := []struct {
		name       string
		left       string
		right      string
		wantChange bool
	}{
		{"inner spaces", "a  b\n", "a b\n", false},
		{"tabs versus spaces", "\tx := 1\n", "    x := 1\n", false},
		{"trailing space", "value \n", "value\n", false},
		{"carriage return", "line\r\n", "line\n", false},
		{"real change", "a b\n", "a c\n", true},
		{"blank line is not whitespace", "a\n\nb\n", "a\nb\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right, err := DiffSides(context.Background(), tt.left, tt.right, Options{IgnoreWhitespace: true})
			require.NoError(t, err)

			assert.Equal(t, tt.left, Text(left))
			assert.Equal(t, tt.right, Text(right))

			changed := false
			for _, op := range append(append([]Op{}, left...), right...) {
				if op.Command != Equal {
					changed = true
				}
			}
			assert.Equal(t, tt.wantChange, changed)
		})
	}
}

func TestWhitespacePassesKeepNewlines(t *testing.T) {
	left := []Op{{Command: Equal, Text: "a"}, {Command: Delete, Text: " \n "}, {Command: Equal, Text: "b"}}
	right := []Op{{Command: Equal, Text: "a"}, {Command: Equal, Text: "b"}}

	l, r := MoveWhitespaceIntoEqualities(left, right)
	l, r = IgnoreWhitespaceBetweenEqualities(l, r)

	assert.Equal(t, "a \n b", Text(l))
	assert.Equal(t, "ab", Text(r))
	require.Len(t, l, 3)
	assert.Equal(t, Op{Command: Delete, Text: "\n"}, l[1])
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "Delete", Delete.String())
	assert.Equal(t, "Insert", Insert.String())
	assert.Equal(t, "Equal", Equal.String())
}
