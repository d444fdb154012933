package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Request engine-level compaction/garbage collection on every shard directory in the table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := openTable()
		if err != nil {
			return err
		}
		defer t.Close()

		return t.Compact(context.Background())
	},
}

func init() {
	rootCmd.AddCommand(compactCmd)
}
