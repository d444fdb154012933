package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, ShardCountCanonical, c.ShardCount)
	assert.Equal(t, int64(DefaultChunkSize), int64(c.ChunkSize))
	assert.Equal(t, int64(ShardCountCanonical)*DefaultShardMaxSize, c.MaxTableSize)
}

func TestWithOverrides_OnlyOverridesSetFields(t *testing.T) {
	c := Default()
	merged, err := c.WithOverrides(Config{ChunkSize: 4096})
	require.NoError(t, err)

	assert.Equal(t, 4096, merged.ChunkSize)
	assert.Equal(t, c.ShardCount, merged.ShardCount)
	assert.Equal(t, c.ShardMaxSize, merged.ShardMaxSize)
}
