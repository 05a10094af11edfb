package stager

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syou6162/diffchunk/internal/model"
)

// HunkSpec names hunks of one file, as in "path:1,3" or "path:3fa2b1c0".
// A reference is either a 1-based hunk number or a hunk ID.
type HunkSpec struct {
	Path string
	Refs []string
}

// ParseHunkSpec parses a "file:refs" hunk specification. The last colon
// separates the path so that paths may contain colons.
func ParseHunkSpec(spec string) (HunkSpec, error) {
	idx := strings.LastIndex(spec, ":")
	if idx <= 0 || idx == len(spec)-1 {
		return HunkSpec{}, NewInvalidArgumentError(
			fmt.Sprintf("invalid hunk spec format: %s (expected file:hunks)", spec), nil)
	}

	out := HunkSpec{Path: spec[:idx]}
	for _, ref := range strings.Split(spec[idx+1:], ",") {
		ref = strings.TrimSpace(ref)
		if err := checkHunkRef(ref); err != nil {
			return HunkSpec{}, err
		}
		out.Refs = append(out.Refs, ref)
	}
	return out, nil
}

// checkHunkRef accepts positive numbers and hex hunk IDs
func checkHunkRef(ref string) error {
	if ref == "" {
		return NewInvalidArgumentError("empty hunk reference", nil)
	}
	if num, err := strconv.Atoi(ref); err == nil {
		if num <= 0 {
			return NewInvalidArgumentError(fmt.Sprintf("hunk number must be positive: %d", num), nil)
		}
		return nil
	}
	if len(ref) != hunkIDLength || strings.Trim(strings.ToLower(ref), "0123456789abcdef") != "" {
		return NewInvalidArgumentError(fmt.Sprintf("invalid hunk reference: %s", ref), nil)
	}
	return nil
}

// RowRange is an inclusive range of 1-based rows
type RowRange struct {
	From, To int
}

// ParseRowRanges parses a list of 1-based rows and ranges such as "1,3-5"
// without expanding it. An empty spec selects nothing.
func ParseRowRanges(spec string) ([]RowRange, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}

	var ranges []RowRange
	for _, part := range strings.Split(spec, ",") {
		from, to, err := parseRowRange(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, RowRange{From: from, To: to})
	}
	return ranges, nil
}

// ParseRowSpec parses spec like ParseRowRanges and returns sorted 0-based
// row indices without duplicates. Rows past count are rejected before any
// range is expanded.
func ParseRowSpec(spec string, count int) ([]int, error) {
	ranges, err := ParseRowRanges(spec)
	if err != nil || len(ranges) == 0 {
		return nil, err
	}
	for _, r := range ranges {
		if r.To > count {
			return nil, NewInvalidArgumentError(
				fmt.Sprintf("row %d out of range (%d rows)", r.To, count), nil)
		}
	}

	seen := make(map[int]struct{})
	for _, r := range ranges {
		for row := r.From; row <= r.To; row++ {
			seen[row-1] = struct{}{}
		}
	}
	return model.Rows(seen), nil
}

func parseRowRange(part string) (int, int, error) {
	lo, hi, isRange := strings.Cut(part, "-")
	from, err := parseRow(lo)
	if err != nil {
		return 0, 0, err
	}
	if !isRange {
		return from, from, nil
	}
	to, err := parseRow(hi)
	if err != nil {
		return 0, 0, err
	}
	if to < from {
		return 0, 0, NewInvalidArgumentError(fmt.Sprintf("invalid row range: %s", part), nil)
	}
	return from, to, nil
}

func parseRow(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, NewInvalidArgumentError(fmt.Sprintf("invalid row number: %s", s), err)
	}
	if n <= 0 {
		return 0, NewInvalidArgumentError(fmt.Sprintf("row number must be positive: %d", n), nil)
	}
	return n, nil
}
