package kfs

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgerbes1/kfs/pkg/config"
	"github.com/pgerbes1/kfs/pkg/engine"
	"github.com/pgerbes1/kfs/pkg/keyalgo"
)

func memTable(t *testing.T, cfg config.Config) *Table {
	t.Helper()
	return openMemTable(t, afero.NewMemMapFs(), cfg)
}

// openMemTable opens a table against a caller-supplied afero.Fs, so a
// test can close and reopen a fresh *Table over the same on-disk (in
// memory) shard directories, simulating a restart.
func openMemTable(t *testing.T, fs afero.Fs, cfg config.Config) *Table {
	t.Helper()
	tbl, err := Open(fs, "test.kfs",
		WithConfig(cfg),
		WithEngineFactory(func(dir string, _ map[string]string) (engine.Engine, error) {
			return engine.NewMem(), nil
		}),
	)
	require.NoError(t, err)
	return tbl
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.ChunkSize = 16
	cfg.ShardMaxSize = 1 << 20
	return cfg
}

func TestTable_WriteReadFile(t *testing.T) {
	tbl := memTable(t, testConfig())
	defer tbl.Close()

	k, err := keyalgo.ParseKey("0102030405060708090a0b0c0d0e0f1011121314")
	require.NoError(t, err)

	data := []byte("the quick brown fox jumps over the lazy dog")
	require.NoError(t, tbl.WriteFile(context.Background(), k, data))

	got, err := tbl.ReadFile(context.Background(), k)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	exists, err := tbl.Exists(context.Background(), k)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, tbl.Unlink(context.Background(), k))
	exists, err = tbl.Exists(context.Background(), k)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTable_RoutesDeterministically(t *testing.T) {
	tbl := memTable(t, testConfig())
	defer tbl.Close()

	k, err := keyalgo.ParseKey("0102030405060708090a0b0c0d0e0f1011121314")
	require.NoError(t, err)

	want := keyalgo.ShardIndex(k, tbl.ref)
	b, err := tbl.shard(k)
	require.NoError(t, err)
	assert.Equal(t, want, b.Index())
}

func TestTable_StatAllReportsEveryShard(t *testing.T) {
	cfg := testConfig()
	tbl := memTable(t, cfg)
	defer tbl.Close()

	stats, err := tbl.StatAll(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, config.ShardCountCanonical)
	for idx, st := range stats {
		assert.Equal(t, idx, st.Index)
		assert.Equal(t, int64(0), st.Size)
		assert.Equal(t, cfg.ShardMaxSize, st.Free)
	}

	k, err := keyalgo.ParseKey("0102030405060708090a0b0c0d0e0f1011121314")
	require.NoError(t, err)
	require.NoError(t, tbl.WriteFile(context.Background(), k, []byte("x")))
	written := keyalgo.ShardIndex(k, tbl.ref)

	stats, err = tbl.StatAll(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, config.ShardCountCanonical)
	assert.Greater(t, stats[written].Size, int64(0))
	for idx, st := range stats {
		if idx == written {
			continue
		}
		assert.Equal(t, int64(0), st.Size)
	}
}

func TestTable_ListAndStatByIndex(t *testing.T) {
	tbl := memTable(t, testConfig())
	defer tbl.Close()

	k, err := keyalgo.ParseKey("0102030405060708090a0b0c0d0e0f1011121314")
	require.NoError(t, err)
	require.NoError(t, tbl.WriteFile(context.Background(), k, []byte("payload")))

	idx := keyalgo.ShardIndex(k, tbl.ref)
	blobs, err := tbl.List(context.Background(), ByIndex(idx))
	require.NoError(t, err)
	assert.Len(t, blobs, 1)

	st, err := tbl.StatOne(context.Background(), ByKey(k))
	require.NoError(t, err)
	assert.Greater(t, st.Size, int64(0))
}

func TestTable_CompactIsNoopOnAFreshTable(t *testing.T) {
	tbl := memTable(t, testConfig())
	defer tbl.Close()

	require.NoError(t, tbl.Compact(context.Background()))
}

// TestTable_CompactRepairsShardsUnopenedInThisProcess locks in the
// restart scenario: a shard written by one *Table handle must still
// get repaired by Compact on a second handle that never opened it
// itself, since its directory already exists on disk.
func TestTable_CompactRepairsShardsUnopenedInThisProcess(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := testConfig()

	tbl := openMemTable(t, fs, cfg)
	k, err := keyalgo.ParseKey("0102030405060708090a0b0c0d0e0f1011121314")
	require.NoError(t, err)
	require.NoError(t, tbl.WriteFile(context.Background(), k, []byte("x")))
	idx := keyalgo.ShardIndex(k, tbl.ref)
	require.NoError(t, tbl.Close())

	tbl2 := openMemTable(t, fs, cfg)
	defer tbl2.Close()

	require.NoError(t, tbl2.Compact(context.Background()))

	st, err := tbl2.StatOne(context.Background(), ByIndex(idx))
	require.NoError(t, err)
	assert.Equal(t, idx, st.Index)
}
