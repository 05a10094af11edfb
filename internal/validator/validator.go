package validator

import (
	"context"
	"fmt"

	"github.com/syou6162/diffchunk/internal/executor"
	"github.com/syou6162/diffchunk/internal/stager"
)

// Validator handles dependency checks and argument validation for the
// diffchunk commands.
type Validator struct {
	executor executor.CommandExecutor
}

// NewValidator creates a new Validator instance with the provided command executor.
func NewValidator(exec executor.CommandExecutor) *Validator {
	return &Validator{
		executor: exec,
	}
}

// CheckDependencies checks that git is available. Only commands that hand
// patches to git need it.
func (v *Validator) CheckDependencies(ctx context.Context) error {
	if _, err := v.executor.Execute(ctx, "git", "--version"); err != nil {
		return stager.NewDependencyMissingError("git")
	}
	return nil
}

// StageArgs are the arguments of the stage command
type StageArgs struct {
	PatchFile string
	// File selects single-hunk mode, in which Hunks holds one reference
	// and rows may be picked
	File  string
	Hunks []string
	Left  string
	Right string
}

// ValidateStageArgs validates the stage command arguments. Without a file
// every hunk is a "file:refs" specification.
func (v *Validator) ValidateStageArgs(args StageArgs) error {
	if args.PatchFile == "" {
		return stager.NewInvalidArgumentError("patch file cannot be empty", nil)
	}
	if len(args.Hunks) == 0 {
		return stager.NewInvalidArgumentError("at least one hunk specification is required", nil)
	}

	if args.File == "" {
		if args.Left != "" || args.Right != "" {
			return stager.NewInvalidArgumentError("row selections need --file", nil)
		}
		for _, spec := range args.Hunks {
			if _, err := stager.ParseHunkSpec(spec); err != nil {
				return err
			}
		}
		return nil
	}

	if len(args.Hunks) != 1 {
		return stager.NewInvalidArgumentError(
			fmt.Sprintf("exactly one hunk is required with --file, got %d", len(args.Hunks)), nil)
	}
	if _, err := stager.ParseHunkSpec(args.File + ":" + args.Hunks[0]); err != nil {
		return err
	}
	if _, err := stager.ParseRowRanges(args.Left); err != nil {
		return err
	}
	if _, err := stager.ParseRowRanges(args.Right); err != nil {
		return err
	}
	return nil
}

// ValidateDiffArgs validates the options shared by the diff commands
func (v *Validator) ValidateDiffArgs(contextLines, extraContext int) error {
	if contextLines < 0 {
		return stager.NewInvalidArgumentError(fmt.Sprintf("context lines must not be negative: %d", contextLines), nil)
	}
	if extraContext < 0 {
		return stager.NewInvalidArgumentError(fmt.Sprintf("extra context must not be negative: %d", extraContext), nil)
	}
	return nil
}
