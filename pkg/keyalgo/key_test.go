package keyalgo

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgerbes1/kfs/pkg/kfserrors"
)

const testKeyHex = "911bc2b07dd96c21ef3ab8b56ffeca4e0b8d1b70"

func TestParseKey_FailsOnBadInput(t *testing.T) {
	_, err := ParseKey("too-short")
	require.Error(t, err)
	require.True(t, kfserrors.Is(err, kfserrors.ErrBadKey))

	upper := "911BC2B07DD96C21EF3AB8B56FFECA4E0B8D1B70"
	_, err = ParseKey(upper)
	require.Error(t, err)
	require.True(t, kfserrors.Is(err, kfserrors.ErrBadKey))
}

func TestParseKey_Succeeds(t *testing.T) {
	k, err := ParseKey(testKeyHex)
	require.NoError(t, err)
	assert.Equal(t, testKeyHex, k.String())
}

func TestShardIndex_IsByteZeroOfXOR(t *testing.T) {
	var k Key
	var r RefID
	kb := make([]byte, KeySize)
	rb := make([]byte, KeySize)
	_, err := rand.Read(kb)
	require.NoError(t, err)
	_, err = rand.Read(rb)
	require.NoError(t, err)
	copy(k[:], kb)
	copy(r[:], rb)

	want := int(k[0] ^ r[0])
	assert.Equal(t, want, ShardIndex(k, r))
}

func TestChunkKey_Width(t *testing.T) {
	k, err := ParseKey(testKeyHex)
	require.NoError(t, err)

	ck := ChunkKey(k, 42)
	assert.Len(t, ck, ChunkKeyWidth)
	assert.Regexp(t, `^[0-9a-f]{40} \d{6}$`, ck)
}

func TestChunkHash_IsNotTheKeyItself(t *testing.T) {
	k, err := ParseKey(testKeyHex)
	require.NoError(t, err)

	h := ChunkHash(k)
	assert.NotEqual(t, hex.EncodeToString(k[:]), hex.EncodeToString(h[:]))
}

func TestRangeFor_IsOrdered(t *testing.T) {
	k, err := ParseKey(testKeyHex)
	require.NoError(t, err)

	lo, hi := RangeFor(k)
	assert.Less(t, lo, hi)
	assert.Equal(t, ChunkKey(k, 0), lo)
}

func TestSbucketDirName(t *testing.T) {
	assert.Equal(t, "042.s", SbucketDirName(42))
	assert.Equal(t, "000.s", SbucketDirName(0))
}

func TestParseSbucketDirName(t *testing.T) {
	idx, ok := ParseSbucketDirName("042.s")
	require.True(t, ok)
	assert.Equal(t, 42, idx)

	_, ok = ParseSbucketDirName("r")
	assert.False(t, ok)

	_, ok = ParseSbucketDirName("42.s")
	assert.False(t, ok)
}

func TestCoerceTablePath(t *testing.T) {
	assert.Equal(t, "foo.kfs", CoerceTablePath("foo"))
	assert.Equal(t, "foo.kfs", CoerceTablePath("foo.kfs"))
}
