// Package differ computes character-level edit scripts between two texts.
//
// The core is a Myers bisection over runes that checks its context while it
// searches, so a long comparison can be abandoned early. Large inputs take a
// line-level pass first and only re-diff the regions that changed.
package differ

import (
	"context"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Command is the kind of an edit
type Command int

const (
	// Delete removes text from the left side
	Delete Command = iota
	// Insert adds text to the right side
	Insert
	// Equal keeps text present on both sides
	Equal
)

// String returns the command name
func (c Command) String() string {
	switch c {
	case Delete:
		return "Delete"
	case Insert:
		return "Insert"
	case Equal:
		return "Equal"
	default:
		return "Unknown"
	}
}

// Op is a single edit
type Op struct {
	Command Command
	Text    string
}

const (
	// inputs longer than this (in runes) on both sides go through line mode
	lineModeThreshold = 100
	// the bisection polls its context once per this many edit-distance steps
	checkInterval = 16
)

type runeOp struct {
	command Command
	text    []rune
}

type differ struct {
	ctx context.Context
}

// Diff returns the edit script turning left into right. Concatenating the
// Equal and Delete texts rebuilds left; Equal and Insert rebuild right.
// On cancellation it returns ctx.Err() and no ops.
func Diff(ctx context.Context, left, right string) ([]Op, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if left == right {
		if left == "" {
			return nil, nil
		}
		return []Op{{Command: Equal, Text: left}}, nil
	}

	d := &differ{ctx: ctx}
	rops, err := d.main([]rune(left), []rune(right), true)
	if err != nil {
		return nil, err
	}

	ops := make([]Op, 0, len(rops))
	for _, op := range rops {
		if len(op.text) == 0 {
			continue
		}
		ops = append(ops, Op{Command: op.command, Text: string(op.text)})
	}
	return fromDMP(diffmatchpatch.New().DiffCleanupMerge(toDMP(ops))), nil
}

func (d *differ) main(a, b []rune, lineMode bool) ([]runeOp, error) {
	if err := d.ctx.Err(); err != nil {
		return nil, err
	}
	if runesEqual(a, b) {
		if len(a) == 0 {
			return nil, nil
		}
		return []runeOp{{Equal, a}}, nil
	}

	p := commonPrefix(a, b)
	prefix := a[:p]
	a, b = a[p:], b[p:]

	s := commonSuffix(a, b)
	suffix := a[len(a)-s:]
	a, b = a[:len(a)-s], b[:len(b)-s]

	ops, err := d.compute(a, b, lineMode)
	if err != nil {
		return nil, err
	}
	if len(prefix) > 0 {
		ops = append([]runeOp{{Equal, prefix}}, ops...)
	}
	if len(suffix) > 0 {
		ops = append(ops, runeOp{Equal, suffix})
	}
	return ops, nil
}

func (d *differ) compute(a, b []rune, lineMode bool) ([]runeOp, error) {
	if len(a) == 0 {
		return []runeOp{{Insert, b}}, nil
	}
	if len(b) == 0 {
		return []runeOp{{Delete, a}}, nil
	}

	long, short := a, b
	if len(a) < len(b) {
		long, short = b, a
	}
	if i := runesIndex(long, short); i != -1 {
		cmd := Insert
		if len(a) > len(b) {
			cmd = Delete
		}
		return compact([]runeOp{
			{cmd, long[:i]},
			{Equal, short},
			{cmd, long[i+len(short):]},
		}), nil
	}
	if len(short) == 1 {
		return []runeOp{{Delete, a}, {Insert, b}}, nil
	}

	if lineMode && len(a) > lineModeThreshold && len(b) > lineModeThreshold {
		return d.lineMode(a, b)
	}
	return d.bisect(a, b)
}

// lineMode diffs whole lines first, then re-diffs every replaced region
// character by character.
func (d *differ) lineMode(a, b []rune) ([]runeOp, error) {
	dmp := diffmatchpatch.New()
	encodedA, encodedB, lines := dmp.DiffLinesToRunes(string(a), string(b))

	lineOps, err := d.main(encodedA, encodedB, false)
	if err != nil {
		return nil, err
	}

	decoded := make([]Op, 0, len(lineOps))
	for _, op := range lineOps {
		var sb strings.Builder
		for _, r := range op.text {
			if idx := int(r); idx >= 0 && idx < len(lines) {
				sb.WriteString(lines[idx])
			}
		}
		decoded = append(decoded, Op{Command: op.command, Text: sb.String()})
	}
	decoded = CleanupSemantics(decoded)

	var out []runeOp
	var deleted, inserted []rune
	flush := func() error {
		switch {
		case len(deleted) > 0 && len(inserted) > 0:
			sub, err := d.main(deleted, inserted, false)
			if err != nil {
				return err
			}
			out = append(out, sub...)
		case len(deleted) > 0:
			out = append(out, runeOp{Delete, deleted})
		case len(inserted) > 0:
			out = append(out, runeOp{Insert, inserted})
		}
		deleted, inserted = nil, nil
		return nil
	}

	for _, op := range decoded {
		switch op.Command {
		case Delete:
			deleted = append(deleted, []rune(op.Text)...)
		case Insert:
			inserted = append(inserted, []rune(op.Text)...)
		case Equal:
			if err := flush(); err != nil {
				return nil, err
			}
			out = append(out, runeOp{Equal, []rune(op.Text)})
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

// bisect finds the middle snake of the edit graph and recurses on both
// halves.
func (d *differ) bisect(a, b []rune) ([]runeOp, error) {
	n, m := len(a), len(b)
	maxD := (n + m + 1) / 2
	vOffset := maxD
	vLength := 2 * maxD

	v1 := make([]int, vLength)
	v2 := make([]int, vLength)
	for i := range v1 {
		v1[i] = -1
		v2[i] = -1
	}
	v1[vOffset+1] = 0
	v2[vOffset+1] = 0

	delta := n - m
	// an odd delta means the forward path collides with the reverse one
	front := delta%2 != 0

	k1start, k1end, k2start, k2end := 0, 0, 0, 0
	for step := 0; step < maxD; step++ {
		if step%checkInterval == 0 {
			if err := d.ctx.Err(); err != nil {
				return nil, err
			}
		}

		for k1 := -step + k1start; k1 <= step-k1end; k1 += 2 {
			k1Offset := vOffset + k1
			var x1 int
			if k1 == -step || (k1 != step && v1[k1Offset-1] < v1[k1Offset+1]) {
				x1 = v1[k1Offset+1]
			} else {
				x1 = v1[k1Offset-1] + 1
			}
			y1 := x1 - k1
			for x1 < n && y1 < m && a[x1] == b[y1] {
				x1++
				y1++
			}
			v1[k1Offset] = x1
			switch {
			case x1 > n:
				k1end += 2
			case y1 > m:
				k1start += 2
			case front:
				k2Offset := vOffset + delta - k1
				if k2Offset >= 0 && k2Offset < vLength && v2[k2Offset] != -1 {
					if x1 >= n-v2[k2Offset] {
						return d.split(a, b, x1, y1)
					}
				}
			}
		}

		for k2 := -step + k2start; k2 <= step-k2end; k2 += 2 {
			k2Offset := vOffset + k2
			var x2 int
			if k2 == -step || (k2 != step && v2[k2Offset-1] < v2[k2Offset+1]) {
				x2 = v2[k2Offset+1]
			} else {
				x2 = v2[k2Offset-1] + 1
			}
			y2 := x2 - k2
			for x2 < n && y2 < m && a[n-x2-1] == b[m-y2-1] {
				x2++
				y2++
			}
			v2[k2Offset] = x2
			switch {
			case x2 > n:
				k2end += 2
			case y2 > m:
				k2start += 2
			case !front:
				k1Offset := vOffset + delta - k2
				if k1Offset >= 0 && k1Offset < vLength && v1[k1Offset] != -1 {
					x1 := v1[k1Offset]
					y1 := vOffset + x1 - k1Offset
					if x1 >= n-x2 {
						return d.split(a, b, x1, y1)
					}
				}
			}
		}
	}

	// no common subsequence
	return []runeOp{{Delete, a}, {Insert, b}}, nil
}

func (d *differ) split(a, b []rune, x, y int) ([]runeOp, error) {
	head, err := d.main(a[:x], b[:y], false)
	if err != nil {
		return nil, err
	}
	tail, err := d.main(a[x:], b[y:], false)
	if err != nil {
		return nil, err
	}
	return append(head, tail...), nil
}

func compact(ops []runeOp) []runeOp {
	out := ops[:0]
	for _, op := range ops {
		if len(op.text) > 0 {
			out = append(out, op)
		}
	}
	return out
}

func runesEqual(a, b []rune) bool {
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

func commonPrefix(a, b []rune) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func commonSuffix(a, b []rune) int {
	n := min(len(a), len(b))
	for i := 1; i <= n; i++ {
		if a[len(a)-i] != b[len(b)-i] {
			return i - 1
		}
	}
	return n
}

// runesIndex returns the index of the first occurrence of sub in s, or -1
func runesIndex(s, sub []rune) int {
	last := len(s) - len(sub)
	for i := 0; i <= last; i++ {
		if runesEqual(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}
