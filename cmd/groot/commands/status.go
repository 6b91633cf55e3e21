package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show HEAD and the staged files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if App == nil {
			return fmt.Errorf("app not initialized")
		}
		out := cmd.OutOrStdout()

		// 1. HEAD
		head, ok, err := App.Repo.Head(cmd.Context())
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintf(out, "HEAD: %s\n", head.Short())
		} else {
			fmt.Fprintln(out, "No commits yet")
		}

		// 2. 暂存区
		entries := App.Repo.Entries()
		if len(entries) == 0 {
			fmt.Fprintln(out, "nothing staged")
			return nil
		}
		fmt.Fprintf(out, "\nChanges to be committed (%d):\n", len(entries))
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, e := range entries {
			fmt.Fprintf(tw, "\t%s\t%s\n", e.Hash.Short(), e.Path)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
