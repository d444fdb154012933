package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pgerbes1/kfs/pkg/keyalgo"
)

var unlinkCmd = &cobra.Command{
	Use:   "unlink <key>",
	Short: "Remove the blob at key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := keyalgo.ParseKey(args[0])
		if err != nil {
			return err
		}

		t, err := openTable()
		if err != nil {
			return err
		}
		defer t.Close()

		return t.Unlink(context.Background(), k)
	},
}

func init() {
	rootCmd.AddCommand(unlinkCmd)
}
