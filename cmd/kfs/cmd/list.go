package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/pgerbes1/kfs/pkg/humanize"
)

var listCmd = &cobra.Command{
	Use:   "list <bucket-index|key>",
	Short: "List the blobs stored in one shard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := parseSelector(args[0])
		if err != nil {
			return err
		}

		t, err := openTable()
		if err != nil {
			return err
		}
		defer t.Close()

		blobs, err := t.List(context.Background(), sel)
		if err != nil {
			return err
		}

		table := uitable.New()
		table.AddRow(color.HiBlackString("HASH"), color.HiBlackString("SIZE"))
		for _, b := range blobs {
			table.AddRow(b.Hash, humanize.ToHumanReadableSize(b.ApproxSize))
		}
		fmt.Println(table)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
