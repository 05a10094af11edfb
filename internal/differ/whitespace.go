package differ

import (
	"context"
	"strings"
)

// Options controls DiffSides
type Options struct {
	IgnoreWhitespace bool
}

// DiffSides runs the full pipeline: diff, semantic cleanup, split into left
// and right lists and, when asked, the whitespace passes.
func DiffSides(ctx context.Context, left, right string, opts Options) ([]Op, []Op, error) {
	ops, err := Diff(ctx, left, right)
	if err != nil {
		return nil, nil, err
	}
	leftOps, rightOps := SplitDiffList(CleanupSemantics(ops))
	if opts.IgnoreWhitespace {
		leftOps, rightOps = MoveWhitespaceIntoEqualities(leftOps, rightOps)
		leftOps, rightOps = IgnoreWhitespaceBetweenEqualities(leftOps, rightOps)
	}
	return leftOps, rightOps, nil
}

// aligned views two split lists as equalities interleaved with change
// regions. regions[i] holds what changed just before equality i; the last
// region follows the last equality.
type aligned struct {
	eqLeft, eqRight []string
	regions         []region
}

type region struct {
	deleted, inserted string
}

func align(left, right []Op) aligned {
	var a aligned
	collect := func(ops []Op, eqs *[]string, setChange func(i int, text string)) {
		var pending strings.Builder
		for _, op := range ops {
			if op.Command == Equal {
				setChange(len(*eqs), pending.String())
				pending.Reset()
				*eqs = append(*eqs, op.Text)
				continue
			}
			pending.WriteString(op.Text)
		}
		setChange(len(*eqs), pending.String())
	}

	grow := func(i int) {
		for len(a.regions) <= i {
			a.regions = append(a.regions, region{})
		}
	}
	collect(left, &a.eqLeft, func(i int, text string) {
		grow(i)
		a.regions[i].deleted = text
	})
	collect(right, &a.eqRight, func(i int, text string) {
		grow(i)
		a.regions[i].inserted = text
	})
	return a
}

func (a aligned) ops() (left, right []Op) {
	for i, r := range a.regions {
		if r.deleted != "" {
			left = append(left, Op{Command: Delete, Text: r.deleted})
		}
		if r.inserted != "" {
			right = append(right, Op{Command: Insert, Text: r.inserted})
		}
		if i < len(a.eqLeft) && i < len(a.eqRight) {
			left = append(left, Op{Command: Equal, Text: a.eqLeft[i]})
			right = append(right, Op{Command: Equal, Text: a.eqRight[i]})
		}
	}
	return left, right
}

// MoveWhitespaceIntoEqualities moves horizontal whitespace at the edges of
// a change into the neighbouring equality on the same side. Newlines never
// move.
func MoveWhitespaceIntoEqualities(left, right []Op) ([]Op, []Op) {
	a := align(left, right)
	if len(a.eqLeft) != len(a.eqRight) {
		return left, right
	}
	for i := range a.regions {
		r := &a.regions[i]
		if i > 0 {
			var lead string
			lead, r.deleted = cutLeadingSpace(r.deleted)
			a.eqLeft[i-1] += lead
			lead, r.inserted = cutLeadingSpace(r.inserted)
			a.eqRight[i-1] += lead
		}
		if i < len(a.eqLeft) {
			var trail string
			r.deleted, trail = cutTrailingSpace(r.deleted)
			a.eqLeft[i] = trail + a.eqLeft[i]
			r.inserted, trail = cutTrailingSpace(r.inserted)
			a.eqRight[i] = trail + a.eqRight[i]
		}
	}
	return a.fold(func(r region) bool { return r == region{} }).ops()
}

// IgnoreWhitespaceBetweenEqualities turns every change region whose two
// sides differ only in horizontal whitespace into an equality and merges it
// with its neighbours.
func IgnoreWhitespaceBetweenEqualities(left, right []Op) ([]Op, []Op) {
	a := align(left, right)
	if len(a.eqLeft) != len(a.eqRight) {
		return left, right
	}
	return a.fold(func(r region) bool {
		return stripSpace(r.deleted) == stripSpace(r.inserted)
	}).ops()
}

// fold absorbs every region for which same returns true into the
// surrounding equalities.
func (a aligned) fold(same func(region) bool) aligned {
	var out aligned
	var pending region
	var accLeft, accRight strings.Builder
	hasAcc := false

	emit := func() {
		if !hasAcc {
			return
		}
		out.regions = append(out.regions, pending)
		out.eqLeft = append(out.eqLeft, accLeft.String())
		out.eqRight = append(out.eqRight, accRight.String())
		pending = region{}
		accLeft.Reset()
		accRight.Reset()
		hasAcc = false
	}

	for i, r := range a.regions {
		switch {
		case r == region{}:
		case same(r):
			accLeft.WriteString(r.deleted)
			accRight.WriteString(r.inserted)
			hasAcc = true
		default:
			emit()
			pending.deleted += r.deleted
			pending.inserted += r.inserted
		}
		if i < len(a.eqLeft) {
			accLeft.WriteString(a.eqLeft[i])
			accRight.WriteString(a.eqRight[i])
			hasAcc = true
		}
	}
	emit()
	out.regions = append(out.regions, pending)
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

func cutLeadingSpace(s string) (space, rest string) {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func cutTrailingSpace(s string) (rest, space string) {
	i := len(s)
	for i > 0 && isSpace(s[i-1]) {
		i--
	}
	return s[:i], s[i:]
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\r' {
			return -1
		}
		return r
	}, s)
}
