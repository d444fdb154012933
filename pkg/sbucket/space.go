package sbucket

import "context"

// Stat reports a shard's occupancy. Size and Free are approximations
// (the underlying engine is only asked for an approximate range size);
// Perc preserves the historical size/free ratio definition used by the
// command-line "stat" output, kept even though size/SMax would be the
// more obviously meaningful ratio, so existing tooling parsing that
// field does not need to change.
type Stat struct {
	Index int
	Size  int64
	Free  int64
	SMax  int64
	Perc  float64
}

// Stat computes the shard's current occupancy, refreshing the cached
// approximate size if it was invalidated by a write or unlink since
// the last call.
func (b *Bucket) Stat(ctx context.Context) (Stat, error) {
	size := b.cachedSize.Load()
	if size < 0 {
		var err error
		size, err = b.eng.ApproximateSize(ctx, []byte{}, []byte{0xFF})
		if err != nil {
			return Stat{}, err
		}
		b.cachedSize.Store(size)
	}

	free := b.smax - size
	if free < 0 {
		free = 0
	}
	var perc float64
	if free > 0 {
		perc = float64(size) / float64(free)
	}
	return Stat{Index: b.index, Size: size, Free: free, SMax: b.smax, Perc: perc}, nil
}

// invalidate marks the cached size stale after a mutation.
func (b *Bucket) invalidate() { b.cachedSize.Store(-1) }
