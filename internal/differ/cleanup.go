package differ

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// maxCleanupPasses bounds the fixpoint loop in CleanupSemantics
const maxCleanupPasses = 8

// CleanupSemantics removes coincidental equalities and shifts edit
// boundaries onto word and line breaks. Applying it twice gives the same
// result as applying it once.
func CleanupSemantics(ops []Op) []Op {
	if len(ops) == 0 {
		return ops
	}
	dmp := diffmatchpatch.New()
	diffs := toDMP(ops)
	for i := 0; i < maxCleanupPasses; i++ {
		next := dmp.DiffCleanupSemantic(copyDMP(diffs))
		if sameDMP(next, diffs) {
			break
		}
		diffs = next
	}
	return fromDMP(diffs)
}

// SplitDiffList separates a combined edit script into the ops seen from
// each side. Both lists carry every Equal op, so equalities line up by
// ordinal.
func SplitDiffList(ops []Op) (left, right []Op) {
	for _, op := range ops {
		switch op.Command {
		case Equal:
			left = append(left, op)
			right = append(right, op)
		case Delete:
			left = append(left, op)
		case Insert:
			right = append(right, op)
		}
	}
	return left, right
}

// Text concatenates the texts of ops
func Text(ops []Op) string {
	n := 0
	for _, op := range ops {
		n += len(op.Text)
	}
	buf := make([]byte, 0, n)
	for _, op := range ops {
		buf = append(buf, op.Text...)
	}
	return string(buf)
}

func toDMP(ops []Op) []diffmatchpatch.Diff {
	diffs := make([]diffmatchpatch.Diff, 0, len(ops))
	for _, op := range ops {
		var t diffmatchpatch.Operation
		switch op.Command {
		case Delete:
			t = diffmatchpatch.DiffDelete
		case Insert:
			t = diffmatchpatch.DiffInsert
		default:
			t = diffmatchpatch.DiffEqual
		}
		diffs = append(diffs, diffmatchpatch.Diff{Type: t, Text: op.Text})
	}
	return diffs
}

func fromDMP(diffs []diffmatchpatch.Diff) []Op {
	ops := make([]Op, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		var c Command
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			c = Delete
		case diffmatchpatch.DiffInsert:
			c = Insert
		default:
			c = Equal
		}
		ops = append(ops, Op{Command: c, Text: d.Text})
	}
	return ops
}

func copyDMP(diffs []diffmatchpatch.Diff) []diffmatchpatch.Diff {
	return append([]diffmatchpatch.Diff(nil), diffs...)
}

func sameDMP(a, b []diffmatchpatch.Diff) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
