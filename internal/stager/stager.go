package stager

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/syou6162/diffchunk/internal/engine"
	"github.com/syou6162/diffchunk/internal/executor"
	"github.com/syou6162/diffchunk/internal/logger"
	"github.com/syou6162/diffchunk/internal/model"
	"github.com/syou6162/diffchunk/internal/patch"
)

// Target is where git applies a patch
type Target int

const (
	// TargetIndex applies to the index only (git apply --cached)
	TargetIndex Target = iota
	// TargetWorktree applies to the working tree files
	TargetWorktree
)

// Request selects rows of one hunk. Rows are 0-based indices into the
// chunk; no rows at all takes the whole hunk.
type Request struct {
	Path      string
	Hunk      string
	LeftRows  []int
	RightRows []int
	// Revert builds a patch that undoes the selected changes when applied
	// in reverse to the right text
	Revert bool
}

// Stager builds partial patches and hands them to git apply
type Stager struct {
	executor executor.CommandExecutor
	logger   *logger.Logger
	opts     patch.FormatOptions
}

// NewStager creates a new stager
func NewStager(exec executor.CommandExecutor, log *logger.Logger, opts patch.FormatOptions) *Stager {
	if log == nil {
		log = logger.NewFromEnv()
	}
	return &Stager{
		executor: exec,
		logger:   log.Named("stager"),
		opts:     opts,
	}
}

// ReadPatchFile reads and parses a patch file
func ReadPatchFile(path string) ([]model.FileDiff, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewIOError("reading patch file", err).WithContext("path", path)
	}
	files, err := engine.ParsePatch(string(content))
	if err != nil {
		return nil, NewParsingError(path, err)
	}
	return files, nil
}

// BuildPatch returns the partial patch for req together with the hunk it
// was cut from. The patch is empty when the selection leaves no change.
func (s *Stager) BuildPatch(files []model.FileDiff, req Request) (string, Hunk, error) {
	hunks, err := ListHunks(files, s.opts)
	if err != nil {
		return "", Hunk{}, err
	}
	h, err := FindHunk(hunks, req.Path, req.Hunk)
	if err != nil {
		return "", Hunk{}, err
	}

	fd := files[h.FileIndex]
	rows := h.Rows
	for _, r := range append(append([]int(nil), req.LeftRows...), req.RightRows...) {
		if r < 0 || r >= rows {
			return "", h, NewInvalidArgumentError(
				fmt.Sprintf("row %d out of range for hunk %d of %s (%d rows)", r+1, h.Number, h.FilePath, rows), nil)
		}
	}

	sel := model.NewSelection().SelectLeft(req.LeftRows...).SelectRight(req.RightRows...)
	text, err := engine.MakePartialPatch(fd, h.ChunkIndex, sel, req.Revert, s.opts)
	if err != nil {
		return "", h, NewInvalidArgumentError("cannot build partial patch", err)
	}
	s.logger.Debug("built partial patch for hunk %d (%s) of %s", h.Number, h.ID, h.FilePath)
	return text, h, nil
}

// Stage builds the partial patch for req and applies it to target. A
// revert request is applied in reverse.
func (s *Stager) Stage(ctx context.Context, files []model.FileDiff, req Request, target Target) error {
	text, h, err := s.BuildPatch(files, req)
	if err != nil {
		return err
	}
	if text == "" {
		s.logger.Info("nothing selected in hunk %d of %s", h.Number, h.FilePath)
		return nil
	}
	if err := s.Apply(ctx, text, target, req.Revert); err != nil {
		return NewPatchApplicationError(h.ID, err).
			WithContext("file", h.FilePath).
			WithContext("hunk", h.Number)
	}
	return nil
}

// StageHunks stages whole hunks one after another. Every reference is
// resolved before anything is applied.
func (s *Stager) StageHunks(ctx context.Context, patchText string, specs []HunkSpec) error {
	files, err := engine.ParsePatch(patchText)
	if err != nil {
		return NewParsingError("patch", err)
	}
	hunks, err := ListHunks(files, s.opts)
	if err != nil {
		return err
	}

	var todo []Hunk
	for _, spec := range specs {
		for _, ref := range spec.Refs {
			h, err := FindHunk(hunks, spec.Path, ref)
			if err != nil {
				return err
			}
			todo = append(todo, h)
		}
	}

	for _, h := range todo {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.logger.Debug("staging hunk %d (%s) of %s", h.Number, h.ID, h.FilePath)
		if err := s.Apply(ctx, h.Content, TargetIndex, false); err != nil {
			return NewPatchApplicationError(h.ID, err).
				WithContext("file", h.FilePath).
				WithContext("hunk", h.Number)
		}
	}
	return nil
}

// Apply checks patchText with git apply --check and then applies it
func (s *Stager) Apply(ctx context.Context, patchText string, target Target, reverse bool) error {
	if err := ValidatePatch(patchText); err != nil {
		return err
	}

	args := s.applyArgs(target, reverse)
	check := append([]string{"apply", "--check"}, args...)
	if _, err := s.executor.ExecuteWithStdin(ctx, "git", strings.NewReader(patchText), check...); err != nil {
		return NewGitCommandError(strings.Join(check, " "), err)
	}

	apply := append([]string{"apply"}, args...)
	if _, err := s.executor.ExecuteWithStdin(ctx, "git", strings.NewReader(patchText), apply...); err != nil {
		return NewGitCommandError(strings.Join(apply, " "), err)
	}
	return nil
}

func (s *Stager) applyArgs(target Target, reverse bool) []string {
	var args []string
	if target == TargetIndex {
		args = append(args, "--cached")
	}
	if reverse {
		args = append(args, "-R")
	}
	if !s.opts.GitPrefixes {
		args = append(args, "-p0")
	}
	return args
}

// ValidatePatch parses patchText with an independent parser and checks
// the line counts of every hunk
func ValidatePatch(patchText string) error {
	files, _, err := gitdiff.Parse(strings.NewReader(patchText))
	if err != nil {
		return NewParsingError("patch", err)
	}
	if len(files) == 0 {
		return NewParsingError("patch", fmt.Errorf("no file sections"))
	}
	for _, f := range files {
		for _, frag := range f.TextFragments {
			if err := frag.Validate(); err != nil {
				return NewParsingError(fmt.Sprintf("hunk %s of %s", frag.Header(), f.NewName), err)
			}
		}
	}
	return nil
}

// ApplyToText applies a single-file patch to original in process. An
// empty patch leaves the text unchanged.
func ApplyToText(patchText, original string) (string, error) {
	if patchText == "" {
		return original, nil
	}
	files, _, err := gitdiff.Parse(strings.NewReader(patchText))
	if err != nil {
		return "", NewParsingError("patch", err)
	}
	if len(files) != 1 {
		return "", NewInvalidArgumentError(fmt.Sprintf("expected a patch for one file, got %d", len(files)), nil)
	}

	var out bytes.Buffer
	if err := gitdiff.Apply(&out, strings.NewReader(original), files[0]); err != nil {
		return "", NewPatchApplicationError(calculateHunkID(patchText), err)
	}
	return out.String(), nil
}
