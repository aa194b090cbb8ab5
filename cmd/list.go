package cmd

import "github.com/spf13/cobra"

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <module>...",
		Short: "List input modules and their eligible method counts",
		Long: `Resolve and load the input modules, then show how many methods each
one defines and how many of those the current filters would verify.
No verification is performed.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.List(cmd.Context(), runArgs(args))
		},
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
