package cmd

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pgerbes1/kfs/pkg/keyalgo"
)

var readCmd = &cobra.Command{
	Use:   "read <key> [path]",
	Short: "Read the blob at key, writing to path or stdout",
	Args:  cobra.RangeArgs(1, 2),
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

		rs, err := t.CreateReadStream(context.Background(), k)
		if err != nil {
			return err
		}
		defer rs.Close()

		dst := io.Writer(os.Stdout)
		if len(args) == 2 {
			f, err := os.Create(args[1])
			if err != nil {
				return errors.Wrapf(err, "creating %q", args[1])
			}
			defer f.Close()
			dst = f
		}

		_, err = io.Copy(dst, rs)
		return err
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
}
