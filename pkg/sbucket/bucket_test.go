package sbucket

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgerbes1/kfs/pkg/engine"
	"github.com/pgerbes1/kfs/pkg/keyalgo"
	"github.com/pgerbes1/kfs/pkg/kfserrors"
)

const testChunkSize = 8

func newTestBucket(t *testing.T, smax int64) *Bucket {
	t.Helper()
	return New(0, engine.NewMem(), smax)
}

func writeAll(t *testing.T, b *Bucket, k keyalgo.Key, data []byte) {
	t.Helper()
	ws, err := b.CreateWriteStream(context.Background(), k, testChunkSize, WriteOpts{ExpectedSize: int64(len(data))})
	require.NoError(t, err)
	_, err = ws.Write(data)
	require.NoError(t, err)
	require.NoError(t, ws.Close())
}

func readAll(t *testing.T, b *Bucket, k keyalgo.Key) []byte {
	t.Helper()
	rs, err := b.CreateReadStream(context.Background(), k, testChunkSize)
	require.NoError(t, err)
	defer rs.Close()
	data, err := ioutil.ReadAll(rs)
	require.NoError(t, err)
	return data
}

func TestWriteReadRoundTrip(t *testing.T) {
	b := newTestBucket(t, 1<<20)
	k := keyalgo.Key{1, 2, 3}

	for _, size := range []int{0, 1, testChunkSize - 1, testChunkSize, testChunkSize + 1, testChunkSize * 3} {
		data := bytes.Repeat([]byte{byte(size)}, size)
		writeAll(t, b, k, data)
		got := readAll(t, b, k)
		assert.Equal(t, data, got, "size=%d", size)
	}
}

func TestReadStream_NotFound(t *testing.T) {
	b := newTestBucket(t, 1<<20)
	_, err := b.CreateReadStream(context.Background(), keyalgo.Key{9}, testChunkSize)
	require.Error(t, err)
	assert.True(t, kfserrors.Is(err, kfserrors.ErrNotFound))
}

func TestUnlink_IsIdempotent(t *testing.T) {
	b := newTestBucket(t, 1<<20)
	k := keyalgo.Key{5}
	require.NoError(t, b.Unlink(context.Background(), k))

	writeAll(t, b, k, []byte("hi"))
	exists, err := b.Exists(context.Background(), k)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, b.Unlink(context.Background(), k))
	require.NoError(t, b.Unlink(context.Background(), k))
	exists, err = b.Exists(context.Background(), k)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWriteStream_RejectsOverCapacity(t *testing.T) {
	b := newTestBucket(t, 4)
	k := keyalgo.Key{7}
	_, err := b.CreateWriteStream(context.Background(), k, testChunkSize, WriteOpts{ExpectedSize: 100})
	require.Error(t, err)
	assert.True(t, kfserrors.Is(err, kfserrors.ErrNoSpace))
}

func TestReadStream_DetectsGap(t *testing.T) {
	b := newTestBucket(t, 1<<20)
	k := keyalgo.Key{3}
	data := bytes.Repeat([]byte{1}, testChunkSize*2)
	writeAll(t, b, k, data)

	hash := keyalgo.ChunkHash(k)
	require.NoError(t, b.eng.Delete(context.Background(), []byte(keyalgo.ChunkKeyFromHash(hash, 1))))

	rs, err := b.CreateReadStream(context.Background(), k, testChunkSize)
	require.NoError(t, err)
	defer rs.Close()

	_, err = ioutil.ReadAll(rs)
	require.Error(t, err)
	assert.True(t, kfserrors.Is(err, kfserrors.ErrIOError))
	assert.True(t, kfserrors.Is(err, kfserrors.ErrCorrupt))
}

func TestList_GroupsByBlob(t *testing.T) {
	b := newTestBucket(t, 1<<20)
	k1 := keyalgo.Key{1}
	k2 := keyalgo.Key{2}
	writeAll(t, b, k1, []byte("aaa"))
	writeAll(t, b, k2, []byte("bbbbbbbbbb"))

	list, err := b.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestStat_ReflectsWritesAndUnlinks(t *testing.T) {
	b := newTestBucket(t, 1<<20)
	k := keyalgo.Key{4}

	st0, err := b.Stat(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), st0.Size)

	writeAll(t, b, k, bytes.Repeat([]byte{1}, 100))
	st1, err := b.Stat(context.Background())
	require.NoError(t, err)
	assert.Greater(t, st1.Size, int64(0))

	require.NoError(t, b.Unlink(context.Background(), k))
	st2, err := b.Stat(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), st2.Size)
}

var _ io.Reader = (*ReadStream)(nil)
