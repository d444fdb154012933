// Package engine abstracts the ordered key-value primitive an S-bucket
// is built on: point get/put/delete, ordered range iteration, batched
// range deletion, an approximate size query and a compaction/repair
// request. One Engine instance backs exactly one shard.
package engine

import "context"

// Iterator walks engine keys in ascending order over some range.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Err() error
	Close() error
}

// Engine is the capability set an S-bucket needs from its underlying
// ordered key-value store. Implementations own their storage handle
// exclusively: nothing outside the Engine instance touches its backing
// files or connections.
type Engine interface {
	// Get returns the value stored at key, or kfserrors.ErrNotFound.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Put stores value at key, replacing any existing value.
	Put(ctx context.Context, key, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key []byte) error

	// DeleteRange removes every key in [lo, hi] as one batch.
	DeleteRange(ctx context.Context, lo, hi []byte) error

	// Iterate returns keys in [lo, hi] in ascending order.
	Iterate(ctx context.Context, lo, hi []byte) (Iterator, error)

	// ApproximateSize estimates, in bytes, the storage occupied by
	// [lo, hi]. Implementations may over- or under-count; callers must
	// treat the result as an estimate, never an exact accounting.
	ApproximateSize(ctx context.Context, lo, hi []byte) (int64, error)

	// Repair requests that the engine reclaim space and/or compact its
	// on-disk representation. Repair does not block on a
	// caller-visible schedule; the engine may defer or coalesce
	// requests.
	Repair(ctx context.Context) error

	// Close releases the engine's storage handle. Close is idempotent.
	Close() error
}
