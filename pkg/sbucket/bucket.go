// Package sbucket implements one S-bucket: the chunked-blob storage
// unit that owns exactly one Engine and enforces its own space cap.
package sbucket

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/pgerbes1/kfs/pkg/engine"
	"github.com/pgerbes1/kfs/pkg/keyalgo"
	"github.com/pgerbes1/kfs/pkg/kfserrors"
)

// Bucket is one shard: an Engine handle plus the shard's index and
// configured capacity. Every method is safe to call concurrently for
// distinct keys; the store itself does not serialize per-key access
// beyond what the caller does (spec: callers serialize their own
// concurrent operations against the same key).
type Bucket struct {
	index int
	smax  int64
	eng   engine.Engine

	// cachedSize is -1 when stale; Stat recomputes it from the engine
	// and Write/Unlink invalidate it rather than keep it exact, so a
	// hot write path never pays for a full range scan.
	cachedSize atomic.Int64
}

// New wraps eng as the shard at index with capacity smax bytes.
func New(index int, eng engine.Engine, smax int64) *Bucket {
	b := &Bucket{index: index, smax: smax, eng: eng}
	b.cachedSize.Store(-1)
	return b
}

// Index returns the shard's index within its table.
func (b *Bucket) Index() int { return b.index }

// Exists reports whether a complete or partial blob is stored at k
// (its first chunk is present).
func (b *Bucket) Exists(ctx context.Context, k keyalgo.Key) (bool, error) {
	_, err := b.eng.Get(ctx, []byte(keyalgo.ChunkKey(k, 0)))
	if err != nil {
		if kfserrors.Is(err, kfserrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Unlink removes every chunk of the blob at k. Unlinking an absent
// blob is not an error.
func (b *Bucket) Unlink(ctx context.Context, k keyalgo.Key) error {
	lo, hi := keyalgo.RangeFor(k)
	if err := b.eng.DeleteRange(ctx, []byte(lo), []byte(hi)); err != nil {
		return errors.Wrapf(err, "unlinking %s from shard %d", k, b.index)
	}
	b.invalidate()
	return nil
}

// BlobInfo describes one blob found by List.
type BlobInfo struct {
	Hash       string // hex(H(K)), the engine-level key prefix grouping the blob's chunks
	ApproxSize int64
}

// List enumerates the distinct blobs stored in the shard, ordered by
// hash prefix ascending.
func (b *Bucket) List(ctx context.Context) ([]BlobInfo, error) {
	it, err := b.eng.Iterate(ctx, []byte{}, []byte{0xFF})
	if err != nil {
		return nil, errors.Wrapf(err, "listing shard %d", b.index)
	}
	defer it.Close()

	byHash := make(map[string]int64)
	var order []string
	for it.Next() {
		key := string(it.Key())
		sp := strings.IndexByte(key, ' ')
		if sp < 0 {
			continue
		}
		hash := key[:sp]
		if _, seen := byHash[hash]; !seen {
			order = append(order, hash)
		}
		byHash[hash] += int64(len(it.Key())) + int64(len(it.Value()))
	}
	if err := it.Err(); err != nil {
		return nil, errors.Wrapf(err, "listing shard %d", b.index)
	}

	sort.Strings(order)
	out := make([]BlobInfo, 0, len(order))
	for _, h := range order {
		out = append(out, BlobInfo{Hash: h, ApproxSize: byHash[h]})
	}
	return out, nil
}

// Close releases the shard's engine handle.
func (b *Bucket) Close() error {
	return b.eng.Close()
}

// Repair requests engine-level compaction/garbage collection.
func (b *Bucket) Repair(ctx context.Context) error {
	return b.eng.Repair(ctx)
}
