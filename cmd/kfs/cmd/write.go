package cmd

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pgerbes1/kfs/pkg/keyalgo"
	"github.com/pgerbes1/kfs/pkg/kfs"
)

var writeCmd = &cobra.Command{
	Use:   "write <key> [path]",
	Short: "Write a blob at key, reading from path or stdin",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := keyalgo.ParseKey(args[0])
		if err != nil {
			return err
		}

		var src io.Reader = os.Stdin
		var size int64 = -1
		if len(args) == 2 {
			f, err := os.Open(args[1])
			if err != nil {
				return errors.Wrapf(err, "opening %q", args[1])
			}
			defer f.Close()
			if fi, err := f.Stat(); err == nil {
				size = fi.Size()
			}
			src = f
		}

		t, err := openTable()
		if err != nil {
			return err
		}
		defer t.Close()

		ctx := context.Background()
		ws, err := t.CreateWriteStream(ctx, k, kfs.WriteOpts{ExpectedSize: size})
		if err != nil {
			return err
		}
		if _, err := io.Copy(ws, src); err != nil {
			ws.Abort()
			return errors.Wrap(err, "writing blob")
		}
		return ws.Close()
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)
}
