package cmd

import (
	"bytes"
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestCLI_WriteReadUnlinkRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "kfs-cli")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	srcPath := dir + "/src"
	dstPath := dir + "/dst"
	require.NoError(t, ioutil.WriteFile(srcPath, []byte("hello, kfs"), 0600))

	const key = "0102030405060708090a0b0c0d0e0f1011121314"

	require.NoError(t, runCLI(t, "--dir", dir+"/table", "write", key, srcPath))
	require.NoError(t, runCLI(t, "--dir", dir+"/table", "read", key, dstPath))

	got, err := ioutil.ReadFile(dstPath)
	require.NoError(t, err)
	require.True(t, bytes.Equal([]byte("hello, kfs"), got))

	require.NoError(t, runCLI(t, "--dir", dir+"/table", "unlink", key))
}
