package model

import "sort"

// Selection is a set of row indices chosen on each side of a chunk
type Selection struct {
	LeftRows  map[int]struct{}
	RightRows map[int]struct{}
}

// NewSelection returns an empty selection
func NewSelection() Selection {
	return Selection{
		LeftRows:  make(map[int]struct{}),
		RightRows: make(map[int]struct{}),
	}
}

// SelectLeft adds left rows to the selection
func (s Selection) SelectLeft(rows ...int) Selection {
	for _, r := range rows {
		s.LeftRows[r] = struct{}{}
	}
	return s
}

// SelectRight adds right rows to the selection
func (s Selection) SelectRight(rows ...int) Selection {
	for _, r := range rows {
		s.RightRows[r] = struct{}{}
	}
	return s
}

// SelectBoth adds rows to both sides
func (s Selection) SelectBoth(rows ...int) Selection {
	return s.SelectLeft(rows...).SelectRight(rows...)
}

// HasLeft reports whether the left side of row is selected
func (s Selection) HasLeft(row int) bool {
	_, ok := s.LeftRows[row]
	return ok
}

// HasRight reports whether the right side of row is selected
func (s Selection) HasRight(row int) bool {
	_, ok := s.RightRows[row]
	return ok
}

// IsEmpty reports whether nothing is selected
func (s Selection) IsEmpty() bool {
	return len(s.LeftRows) == 0 && len(s.RightRows) == 0
}

// Rows returns the selected indices of one side in ascending order
func Rows(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Ints(out)
	return out
}

// Clone returns an independent copy
func (s Selection) Clone() Selection {
	out := NewSelection()
	for r := range s.LeftRows {
		out.LeftRows[r] = struct{}{}
	}
	for r := range s.RightRows {
		out.RightRows[r] = struct{}{}
	}
	return out
}
