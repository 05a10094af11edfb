package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syou6162/diffchunk/internal/stager"
)

func NewParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <patch>",
		Short: "List the files and hunks of a patch",
		Long: `List the files and hunks of a patch.

Each hunk is printed with its number within the file and its ID. Either
can be passed to stage.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd.Context())
			if err != nil {
				return err
			}

			files, err := stager.ReadPatchFile(args[0])
			if err != nil {
				return err
			}
			hunks, err := stager.ListHunks(files, app.Config.FormatOptions())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for fi, fd := range files {
				kind := fd.Operation.String()
				if fd.IsBinary {
					kind += ", binary"
				}
				fmt.Fprintf(out, "%s (%s)\n", fd.DisplayPath(), kind)
				for _, h := range hunks {
					if h.FileIndex == fi {
						fmt.Fprintf(out, "  #%d %s %s\n", h.Number, h.ID, h.Header)
					}
				}
			}
			return nil
		},
	}
	return cmd
}
