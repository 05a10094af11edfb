// Package selector reduces a chunk to the rows a user picked, for building
// partial stage, unstage and revert patches.
package selector

import "github.com/syou6162/diffchunk/internal/model"

// FilterChunk returns chunk reduced to the selected changes. The result is
// meant to be applied to the left text, or with revert to be applied in
// reverse to the right text. Unselected changes turn into context on the
// side the patch is applied to and disappear from the other side. Rows are
// never reordered. An empty selection returns the chunk unchanged.
func FilterChunk(chunk model.Chunk, sel model.Selection, revert bool) model.Chunk {
	if sel.IsEmpty() {
		return chunk
	}

	rows := make([]model.Row, 0, len(chunk.Rows))
	for i, r := range chunk.Rows {
		if r.Equal {
			rows = append(rows, r)
			continue
		}
		rows = append(rows, filterRow(r, sel.HasLeft(i), sel.HasRight(i), revert)...)
	}

	out := chunk
	out.Rows = rows
	out.LeftStart = fixStart(chunk.LeftStart, chunk.LeftLineCount(), out.LeftLineCount())
	out.RightStart = fixStart(chunk.RightStart, chunk.RightLineCount(), out.RightLineCount())
	return out
}

func filterRow(r model.Row, left, right, revert bool) []model.Row {
	hasLeft, hasRight := r.Left.IsReal(), r.Right.IsReal()
	left = left && hasLeft
	right = right && hasRight

	if left == hasLeft && right == hasRight {
		return []model.Row{r}
	}

	deletion := model.Row{Left: r.Left, Right: model.Sep()}
	insertion := model.Row{Left: model.Sep(), Right: r.Right}

	// the side the patch is applied to keeps its unselected text as context
	if !revert {
		var out []model.Row
		if hasLeft {
			if left {
				out = append(out, deletion)
			} else {
				out = append(out, model.EqualRow(r.Left.Text))
			}
		}
		if right {
			out = append(out, insertion)
		}
		return out
	}

	var out []model.Row
	if left {
		out = append(out, deletion)
	}
	if hasRight {
		if right {
			out = append(out, insertion)
		} else {
			out = append(out, model.EqualRow(r.Right.Text))
		}
	}
	return out
}

// fixStart keeps the line-before convention of empty sides
func fixStart(start, before, after int) int {
	switch {
	case before == 0 && after > 0:
		return start + 1
	case before > 0 && after == 0:
		return start - 1
	}
	return start
}
