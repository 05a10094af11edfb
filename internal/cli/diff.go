package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syou6162/diffchunk/internal/engine"
	"github.com/syou6162/diffchunk/internal/patch"
	"github.com/syou6162/diffchunk/internal/source"
)

// diffFlags are shared by diff and worktree. Flags the user did not set
// fall back to the loaded config.
type diffFlags struct {
	contextLines     int
	extraContext     int
	ignoreWhitespace bool
	noPrefix         bool
	compact          bool
	color            string
}

func (f *diffFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.contextLines, "unified", "U", 3, "Number of context lines around changes")
	cmd.Flags().IntVar(&f.extraContext, "inter-hunk-context", 1, "Merge hunks separated by at most this many lines")
	cmd.Flags().BoolVarP(&f.ignoreWhitespace, "ignore-all-space", "w", false, "Ignore whitespace when comparing lines")
	cmd.Flags().BoolVar(&f.noPrefix, "no-prefix", false, "Omit the a/ and b/ path prefixes")
	cmd.Flags().BoolVar(&f.compact, "compact", false, "Omit hunk counts equal to one")
	cmd.Flags().StringVar(&f.color, "color", "auto", "Color output: auto, always or never")
}

func (f *diffFlags) options(cmd *cobra.Command, app *App) (engine.Options, patch.FormatOptions, error) {
	opts := app.Config.EngineOptions()
	fopts := app.Config.FormatOptions()

	if cmd.Flags().Changed("unified") {
		opts.ContextLines = f.contextLines
	}
	if cmd.Flags().Changed("inter-hunk-context") {
		opts.ExtraContext = f.extraContext
	}
	if cmd.Flags().Changed("ignore-all-space") {
		opts.IgnoreWhitespace = f.ignoreWhitespace
	}
	if cmd.Flags().Changed("no-prefix") {
		fopts.GitPrefixes = !f.noPrefix
	}
	if cmd.Flags().Changed("compact") {
		fopts.CompactCounts = f.compact
	}

	if err := app.Validator.ValidateDiffArgs(opts.ContextLines, opts.ExtraContext); err != nil {
		return engine.Options{}, patch.FormatOptions{}, err
	}
	return opts, fopts, nil
}

func (f *diffFlags) write(cmd *cobra.Command, text string) error {
	p, err := newPainter(cmd.OutOrStdout(), f.color)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), p.Render(text))
	return err
}

func NewDiffCmd() *cobra.Command {
	var flags diffFlags

	cmd := &cobra.Command{
		Use:   "diff <left> <right>",
		Short: "Print a unified diff of two files",
		Long: `Print a unified diff of two files.

Either side may be /dev/null to diff a new or deleted file.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd.Context())
			if err != nil {
				return err
			}
			opts, fopts, err := flags.options(cmd, app)
			if err != nil {
				return err
			}

			input, err := source.ReadFiles(args[0], args[1])
			if err != nil {
				return err
			}
			fd, err := engine.ComputeFileDiff(cmd.Context(), input, opts)
			if err != nil {
				return err
			}
			app.Logger.Debug("%s: %d chunks", fd.DisplayPath(), len(fd.Chunks))
			return flags.write(cmd, engine.FormatPatch(fd, fopts))
		},
	}

	flags.register(cmd)
	return cmd
}

func NewWorktreeCmd() *cobra.Command {
	var (
		flags     diffFlags
		untracked bool
	)

	cmd := &cobra.Command{
		Use:   "worktree [paths...]",
		Short: "Print the changes of the working tree against HEAD",
		Long: `Print the changes of the working tree against HEAD.

Paths are relative to the repository root and limit the output to those
files or directories.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd.Context())
			if err != nil {
				return err
			}
			opts, fopts, err := flags.options(cmd, app)
			if err != nil {
				return err
			}

			src, err := source.OpenGitSource(".", app.Logger)
			if err != nil {
				return err
			}
			src.IncludeUntracked = untracked

			inputs, err := src.WorktreeInputs(cmd.Context(), args...)
			if err != nil {
				return err
			}
			files, err := engine.ComputeFileDiffs(cmd.Context(), inputs, opts)
			if err != nil {
				return err
			}
			app.Logger.Info("%d changed files in %s", len(files), src.Root())
			return flags.write(cmd, engine.FormatPatches(files, fopts))
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&untracked, "untracked", false, "Include untracked files as new files")
	return cmd
}
