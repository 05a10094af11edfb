package chunker

import (
	"github.com/syou6162/diffchunk/internal/model"
)

// CalculateContextData cuts the rows of a whole file into chunks. Runs of
// equal rows keep contextLineCount rows next to each change and hide the
// rest in context-only chunks, unless no more than extraContext rows would
// be hidden. A negative contextLineCount keeps the whole file in one
// visible chunk. Identical texts produce no chunks.
func CalculateContextData(original model.Chunk, tail Tail, contextLineCount, extraContext int) model.FileDiff {
	var fd model.FileDiff
	rows := original.Rows
	if !original.HasChanges() {
		return fd
	}

	split := -1
	if tail.MissingNewline() {
		split = model.EOFSplitRow(rows)
	}

	hidden := make([]bool, len(rows))
	if contextLineCount >= 0 {
		for i := 0; i < len(rows); {
			if !rows[i].Equal || i == split {
				i++
				continue
			}
			j := i
			for j < len(rows) && rows[j].Equal && j != split {
				j++
			}

			from := i + contextLineCount
			if i == 0 {
				from = 0
			}
			to := j - contextLineCount
			if j == len(rows) {
				to = len(rows)
			}
			if from < to-extraContext {
				for k := from; k < to; k++ {
					hidden[k] = true
				}
			}
			i = j
		}
	}

	leftTerm, rightTerm := terminatorRows(rows, tail)

	leftLine, rightLine := 0, 0
	for start := 0; start < len(rows); {
		end := start
		for end < len(rows) && hidden[end] == hidden[start] {
			end++
		}

		chunk := model.Chunk{
			LeftStart:   leftLine,
			RightStart:  rightLine,
			ContextOnly: hidden[start],
			Rows:        append([]model.Row(nil), rows[start:end]...),
		}
		leftCount, rightCount := chunk.LeftLineCount(), chunk.RightLineCount()
		if !chunk.ContextOnly {
			if leftTerm >= start && leftTerm < end {
				leftCount--
			}
			if rightTerm >= start && rightTerm < end {
				rightCount--
			}
			if leftCount == 0 {
				chunk.LeftStart--
			}
			if rightCount == 0 {
				chunk.RightStart--
			}
		}
		fd.Chunks = append(fd.Chunks, chunk)

		leftLine += chunk.LeftLineCount()
		rightLine += chunk.RightLineCount()
		start = end
	}

	last := fd.Chunks[len(fd.Chunks)-1]
	fd.LastChunkTouchesEOF = tail.MissingNewline() && !last.ContextOnly
	return fd
}

// terminatorRows returns the rows holding the empty segment after the final
// newline of each side, or -1.
func terminatorRows(rows []model.Row, tail Tail) (left, right int) {
	left, right = -1, -1
	for i, r := range rows {
		if tail.LeftTerminator && r.Left.IsReal() {
			left = i
		}
		if tail.RightTerminator && r.Right.IsReal() {
			right = i
		}
	}
	return left, right
}
