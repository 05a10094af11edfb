package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	return newRootCmd(initApp)
}

func newRootCmd(newApp appFactory) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "diffchunk",
		Short:         "Diff, parse and partially stage text changes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withApp(ctx, app))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Override config path")

	root.AddCommand(NewDiffCmd())
	root.AddCommand(NewWorktreeCmd())
	root.AddCommand(NewParseCmd())
	root.AddCommand(NewStageCmd())
	root.AddCommand(NewConfigCmd())

	return root
}
