// Package engine exposes the diff core: computing file diffs, formatting
// and parsing patches, and filtering chunks into partial patches.
package engine

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/syou6162/diffchunk/internal/chunker"
	"github.com/syou6162/diffchunk/internal/differ"
	"github.com/syou6162/diffchunk/internal/model"
	"github.com/syou6162/diffchunk/internal/patch"
	"github.com/syou6162/diffchunk/internal/selector"
)

// FileInput is one file handed over by a text source
type FileInput struct {
	Left, Right                 string
	LeftEndpoint, RightEndpoint model.FileEndpoint
	// IsBinary skips diffing; the file diff carries no chunks
	IsBinary   bool
	Operation  model.FileOperation
	OldMode    string
	NewMode    string
	Similarity int
}

// Options controls how file diffs are computed
type Options struct {
	ContextLines     int
	ExtraContext     int
	IgnoreWhitespace bool
	// Workers bounds ComputeFileDiffs; 0 means one per CPU
	Workers int
}

// DefaultOptions returns three lines of context and a join threshold of one
// line
func DefaultOptions() Options {
	return Options{
		ContextLines: 3,
		ExtraContext: 1,
	}
}

// ComputeFileDiff diffs one file. The only error is the context's.
func ComputeFileDiff(ctx context.Context, in FileInput, opts Options) (model.FileDiff, error) {
	fd := model.FileDiff{
		Left:       in.LeftEndpoint,
		Right:      in.RightEndpoint,
		Operation:  in.Operation,
		OldMode:    in.OldMode,
		NewMode:    in.NewMode,
		Similarity: in.Similarity,
		IsBinary:   in.IsBinary,
	}
	if in.IsBinary {
		return fd, ctx.Err()
	}

	leftOps, rightOps, err := differ.DiffSides(ctx, in.Left, in.Right, differ.Options{
		IgnoreWhitespace: opts.IgnoreWhitespace,
	})
	if err != nil {
		return model.FileDiff{}, err
	}

	original, tail := chunker.CalculateOriginalData(leftOps, rightOps)
	data := chunker.CalculateContextData(original, tail, opts.ContextLines, opts.ExtraContext)
	fd.Chunks = data.Chunks
	fd.LastChunkTouchesEOF = data.LastChunkTouchesEOF
	return fd, nil
}

// ComputeFileDiffs diffs files in parallel. Results keep the input order.
// The first error cancels the remaining work.
func ComputeFileDiffs(ctx context.Context, inputs []FileInput, opts Options) ([]model.FileDiff, error) {
	results := make([]model.FileDiff, len(inputs))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		g.Go(func() error {
			fd, err := ComputeFileDiff(gctx, in, opts)
			if err != nil {
				return err
			}
			results[i] = fd
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// FormatPatch writes the patch text of one file
func FormatPatch(fd model.FileDiff, opts patch.FormatOptions) string {
	return patch.MakeDiffFile(fd, opts)
}

// FormatPatches writes a multi-file patch
func FormatPatches(files []model.FileDiff, opts patch.FormatOptions) string {
	return patch.FormatPatch(files, opts)
}

// ParsePatch reads patch text. Failures are *patch.ParseError values.
func ParsePatch(text string) ([]model.FileDiff, error) {
	return patch.ReadPatch(text)
}

// FilterChunk reduces a chunk to the selected rows
func FilterChunk(chunk model.Chunk, sel model.Selection, revert bool) model.Chunk {
	return selector.FilterChunk(chunk, sel, revert)
}

// MakePartialPatch builds a single-hunk patch holding the selected changes
// of one chunk. The patch applies to the left text, or in reverse to the
// right text when revert is set. An empty selection takes the whole chunk.
// The patch is empty when nothing is left to apply.
func MakePartialPatch(fd model.FileDiff, chunkIndex int, sel model.Selection, revert bool, opts patch.FormatOptions) (string, error) {
	if fd.IsBinary {
		return "", fmt.Errorf("%s: binary files have no chunks", fd.DisplayPath())
	}
	if chunkIndex < 0 || chunkIndex >= len(fd.Chunks) {
		return "", fmt.Errorf("%s: chunk %d out of range (%d chunks)", fd.DisplayPath(), chunkIndex, len(fd.Chunks))
	}

	last := chunkIndex == len(fd.Chunks)-1 && fd.LastChunkTouchesEOF
	if last && !sel.IsEmpty() {
		sel = eofSelection(fd.Chunks[chunkIndex], sel)
		if sel.IsEmpty() {
			return "", nil
		}
	}
	chunk := selector.FilterChunk(fd.Chunks[chunkIndex], sel, revert)
	if !chunk.HasChanges() {
		return "", nil
	}

	left, right := fd.Left.Path, fd.Right.Path
	if left == "" {
		left = right
	}
	if right == "" {
		right = left
	}
	switch fd.Operation {
	case model.NewFile:
		left = patch.DevNull
	case model.DeleteFile:
		right = patch.DevNull
	}

	return patch.MakePatch(chunk, left, right, last, opts), nil
}

// eofSelection ties the empty segment after a final newline to the line it
// is paired with. The segment is not a line of its own, so it is selected
// exactly when the other side of its row is.
func eofSelection(chunk model.Chunk, sel model.Selection) model.Selection {
	lastLeft, lastRight := -1, -1
	for i, r := range chunk.Rows {
		if r.Left.IsReal() {
			lastLeft = i
		}
		if r.Right.IsReal() {
			lastRight = i
		}
	}

	out := sel.Clone()
	if lastLeft >= 0 {
		if r := chunk.Rows[lastLeft]; !r.Equal && r.Left.Text == "" && r.Right.IsReal() {
			delete(out.LeftRows, lastLeft)
			if sel.HasRight(lastLeft) {
				out.SelectLeft(lastLeft)
			}
		}
	}
	if lastRight >= 0 {
		if r := chunk.Rows[lastRight]; !r.Equal && r.Right.Text == "" && r.Left.IsReal() {
			delete(out.RightRows, lastRight)
			if sel.HasLeft(lastRight) {
				out.SelectRight(lastRight)
			}
		}
	}
	return out
}
