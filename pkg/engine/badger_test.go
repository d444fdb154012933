package engine

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBadgerEngine_Conformance(t *testing.T) {
	dir, err := ioutil.TempDir("", "kfs-badger-engine")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	e, err := OpenBadger(dir, 0)
	require.NoError(t, err)

	conformance(t, e)
}
