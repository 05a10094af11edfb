// Package chunker turns split edit scripts into aligned rows and groups the
// rows into chunks with a configurable amount of context.
package chunker

import (
	"strings"

	"github.com/syou6162/diffchunk/internal/differ"
	"github.com/syou6162/diffchunk/internal/model"
)

// Tail describes how the two texts end
type Tail struct {
	// LeftNoNewline is set when the left text is not empty and does not end
	// with a newline
	LeftNoNewline  bool
	RightNoNewline bool
	// LeftTerminator is set when the last left line is the empty segment
	// after the final newline. It is kept only when the other side ends
	// without one.
	LeftTerminator  bool
	RightTerminator bool
}

// MissingNewline reports whether either side lacks a trailing newline
func (t Tail) MissingNewline() bool {
	return t.LeftNoNewline || t.RightNoNewline
}

type sideLine struct {
	text  string
	clean bool
	// for clean lines: equality ordinal and newlines before the line in it
	eq  int
	idx int
}

type lineKey struct {
	eq, idx int
}

// splitSide cuts one side of an edit script into lines. A line is clean
// when all of its characters, its newline included, come from one
// equality.
func splitSide(ops []differ.Op) []sideLine {
	ordinal := make([]int, len(ops))
	n := 0
	for i, op := range ops {
		ordinal[i] = -1
		if op.Command == differ.Equal {
			ordinal[i] = n
			n++
		}
	}

	var lines []sideLine
	var cur strings.Builder
	startOp, startIdx := -1, 0
	mixed := false

	touch := func(op, idx int) {
		if startOp == -1 {
			startOp, startIdx = op, idx
		} else if startOp != op {
			mixed = true
		}
		if ops[op].Command != differ.Equal {
			mixed = true
		}
	}
	finish := func() sideLine {
		l := sideLine{text: cur.String()}
		if startOp != -1 && !mixed {
			l.clean = true
			l.eq = ordinal[startOp]
			l.idx = startIdx
		}
		cur.Reset()
		startOp, startIdx, mixed = -1, 0, false
		return l
	}

	for i, op := range ops {
		text := op.Text
		nl := 0
		for {
			j := strings.IndexByte(text, '\n')
			if j < 0 {
				break
			}
			touch(i, nl)
			cur.WriteString(text[:j])
			lines = append(lines, finish())
			nl++
			text = text[j+1:]
		}
		if text != "" {
			touch(i, nl)
			cur.WriteString(text)
		}
	}
	return append(lines, finish())
}

// CalculateOriginalData aligns the lines of both sides into rows covering
// the whole file. Clean lines at the same position of the same equality
// pair into equal rows; the lines between two pairs are aligned in order,
// the shorter side padded with separators.
func CalculateOriginalData(leftOps, rightOps []differ.Op) (model.Chunk, Tail) {
	left := splitSide(leftOps)
	right := splitSide(rightOps)

	var tail Tail
	lastLeft, lastRight := left[len(left)-1], right[len(right)-1]
	tail.LeftNoNewline = lastLeft.text != ""
	tail.RightNoNewline = lastRight.text != ""
	if lastLeft.text == "" && lastRight.text == "" {
		// both texts end with a newline (or are empty)
		left = left[:len(left)-1]
		right = right[:len(right)-1]
	} else {
		tail.LeftTerminator = lastLeft.text == ""
		tail.RightTerminator = lastRight.text == ""
	}

	leftByKey := make(map[lineKey]int)
	for i, l := range left {
		if l.clean {
			leftByKey[lineKey{l.eq, l.idx}] = i
		}
	}

	rows := make([]model.Row, 0, max(len(left), len(right)))
	li, ri := 0, 0
	group := func(lEnd, rEnd int) {
		n := max(lEnd-li, rEnd-ri)
		for k := 0; k < n; k++ {
			l, r := model.Sep(), model.Sep()
			if li+k < lEnd {
				l = model.Line(left[li+k].text)
			}
			if ri+k < rEnd {
				r = model.Line(right[ri+k].text)
			}
			rows = append(rows, model.PairRow(l, r))
		}
		li, ri = lEnd, rEnd
	}

	for j, r := range right {
		if !r.clean {
			continue
		}
		i, ok := leftByKey[lineKey{r.eq, r.idx}]
		if !ok || i < li || j < ri {
			continue
		}
		group(i, j)
		rows = append(rows, model.Row{
			Equal: true,
			Left:  model.Line(left[i].text),
			Right: model.Line(r.text),
		})
		li, ri = i+1, j+1
	}
	group(len(left), len(right))

	return model.Chunk{Rows: rows}, tail
}
