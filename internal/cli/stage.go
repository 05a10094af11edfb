package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syou6162/diffchunk/internal/stager"
	"github.com/syou6162/diffchunk/internal/validator"
)

type stageFlags struct {
	patchFile string
	file      string
	hunks     []string
	left      string
	right     string
	revert    bool
	apply     bool
	worktree  bool
}

func NewStageCmd() *cobra.Command {
	var flags stageFlags

	cmd := &cobra.Command{
		Use:   "stage",
		Short: "Cut hunks or single lines out of a patch and stage them",
		Long: `Cut hunks or single lines out of a patch and stage them.

Without --file every --hunk is a file:refs specification, where refs is a
comma separated list of hunk numbers or IDs:

  diffchunk stage --patch changes.patch --hunk src/main.go:1,3

With --file a single --hunk is taken and --left/--right pick rows of it
(1-based, e.g. 1,3-5). Unselected deletions become context and unselected
insertions are dropped.

The resulting patch is printed unless --apply is given, in which case it
is applied to the index (or the working tree with --worktree) using git
apply.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.Validator.ValidateStageArgs(validator.StageArgs{
				PatchFile: flags.patchFile,
				File:      flags.file,
				Hunks:     flags.hunks,
				Left:      flags.left,
				Right:     flags.right,
			}); err != nil {
				return err
			}
			if flags.apply {
				if err := app.Validator.CheckDependencies(cmd.Context()); err != nil {
					return err
				}
			}

			s := stager.NewStager(app.Executor, app.Logger, app.Config.FormatOptions())
			if flags.file != "" {
				return runStageRows(cmd, s, app, flags)
			}
			return runStageHunks(cmd, s, app, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.patchFile, "patch", "p", "", "Patch file to read hunks from")
	cmd.Flags().StringVar(&flags.file, "file", "", "File whose hunk rows are selected")
	cmd.Flags().StringArrayVar(&flags.hunks, "hunk", nil, "Hunk to stage (repeatable)")
	cmd.Flags().StringVar(&flags.left, "left", "", "Rows to take from the left side")
	cmd.Flags().StringVar(&flags.right, "right", "", "Rows to take from the right side")
	cmd.Flags().BoolVar(&flags.revert, "revert", false, "Build a patch that reverts the selected rows")
	cmd.Flags().BoolVar(&flags.apply, "apply", false, "Apply the patch instead of printing it")
	cmd.Flags().BoolVar(&flags.worktree, "worktree", false, "Apply to the working tree instead of the index")
	return cmd
}

func runStageRows(cmd *cobra.Command, s *stager.Stager, app *App, flags stageFlags) error {
	files, err := stager.ReadPatchFile(flags.patchFile)
	if err != nil {
		return err
	}
	hunks, err := stager.ListHunks(files, app.Config.FormatOptions())
	if err != nil {
		return err
	}
	h, err := stager.FindHunk(hunks, flags.file, flags.hunks[0])
	if err != nil {
		return err
	}
	left, err := stager.ParseRowSpec(flags.left, h.Rows)
	if err != nil {
		return err
	}
	right, err := stager.ParseRowSpec(flags.right, h.Rows)
	if err != nil {
		return err
	}

	req := stager.Request{
		Path:      flags.file,
		Hunk:      flags.hunks[0],
		LeftRows:  left,
		RightRows: right,
		Revert:    flags.revert,
	}

	if !flags.apply {
		text, _, err := s.BuildPatch(files, req)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), text)
		return err
	}

	target := stager.TargetIndex
	if flags.worktree {
		target = stager.TargetWorktree
	}
	return s.Stage(cmd.Context(), files, req, target)
}

func runStageHunks(cmd *cobra.Command, s *stager.Stager, app *App, flags stageFlags) error {
	if flags.revert || flags.worktree {
		return stager.NewInvalidArgumentError("--revert and --worktree need --file", nil)
	}

	specs := make([]stager.HunkSpec, 0, len(flags.hunks))
	for _, h := range flags.hunks {
		spec, err := stager.ParseHunkSpec(h)
		if err != nil {
			return err
		}
		specs = append(specs, spec)
	}

	content, err := os.ReadFile(flags.patchFile)
	if err != nil {
		return stager.NewIOError("reading patch file", err).WithContext("path", flags.patchFile)
	}

	if flags.apply {
		return s.StageHunks(cmd.Context(), string(content), specs)
	}

	files, err := stager.ReadPatchFile(flags.patchFile)
	if err != nil {
		return err
	}
	hunks, err := stager.ListHunks(files, app.Config.FormatOptions())
	if err != nil {
		return err
	}
	for _, spec := range specs {
		for _, ref := range spec.Refs {
			h, err := stager.FindHunk(hunks, spec.Path, ref)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), h.Content)
		}
	}
	return nil
}
