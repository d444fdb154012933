package sbucket

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/pgerbes1/kfs/pkg/keyalgo"
	"github.com/pgerbes1/kfs/pkg/kfserrors"
)

// WriteOpts controls admission for a write stream.
type WriteOpts struct {
	// ExpectedSize, when >= 0, lets the admission check reserve the
	// blob's full size up front instead of one chunk at a time.
	ExpectedSize int64
	// ChunkSize overrides the shard's default chunk size; zero means
	// "use the table's configured chunk size."
	ChunkSize int
}

// WriteStream is the push-based write adapter for one blob. It never
// accepts more bytes while a chunk put is outstanding: Write flushes a
// full chunk synchronously before returning, which is this adapter's
// expression of the required backpressure.
type WriteStream struct {
	ctx       context.Context
	b         *Bucket
	key       keyalgo.Key
	hash      [20]byte
	chunkSize int
	smax      int64

	buf    []byte
	off    int
	n      uint32
	closed bool
	failed bool
}

// CreateWriteStream opens a write stream for k, replacing any existing
// blob at that key. The old blob is unlinked immediately so a
// subsequent read never observes a mix of old and new chunks.
func (b *Bucket) CreateWriteStream(ctx context.Context, k keyalgo.Key, chunkSize int, opts WriteOpts) (*WriteStream, error) {
	if err := b.Unlink(ctx, k); err != nil {
		return nil, err
	}
	if opts.ChunkSize > 0 {
		chunkSize = opts.ChunkSize
	}

	reserve := int64(chunkSize)
	if opts.ExpectedSize >= 0 {
		reserve = opts.ExpectedSize
	}
	st, err := b.Stat(ctx)
	if err != nil {
		return nil, err
	}
	if reserve > st.Free {
		return nil, kfserrors.ErrNoSpace.Wrap(errors.Errorf("shard %d has %d bytes free, need %d", b.index, st.Free, reserve))
	}

	return &WriteStream{
		ctx:       ctx,
		b:         b,
		key:       k,
		hash:      keyalgo.ChunkHash(k),
		chunkSize: chunkSize,
		smax:      st.SMax,
		buf:       make([]byte, chunkSize),
	}, nil
}

// Write buffers p, flushing full chunks to the engine as they fill.
func (w *WriteStream) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("write on closed stream")
	}
	if w.failed {
		return 0, kfserrors.ErrIOError
	}
	written := 0
	for len(p) > 0 {
		room := len(w.buf) - w.off
		take := room
		if take > len(p) {
			take = len(p)
		}
		copy(w.buf[w.off:], p[:take])
		w.off += take
		p = p[take:]
		written += take

		if w.off == len(w.buf) {
			if err := w.flush(false); err != nil {
				w.failed = true
				return written, err
			}
		}
	}
	return written, nil
}

func (w *WriteStream) flush(final bool) error {
	if !final && w.off < len(w.buf) {
		return nil
	}

	st, err := w.b.Stat(w.ctx)
	if err != nil {
		return err
	}
	if int64(w.off) > st.Free {
		_ = w.b.Unlink(w.ctx, w.key)
		return kfserrors.ErrNoSpace.Wrap(errors.Errorf("shard %d ran out of space at chunk %d", w.b.index, w.n))
	}

	ck := keyalgo.ChunkKeyFromHash(w.hash, w.n)
	if err := w.b.eng.Put(w.ctx, []byte(ck), append([]byte(nil), w.buf[:w.off]...)); err != nil {
		return errors.Wrapf(err, "writing chunk %d of %s", w.n, w.key)
	}
	w.b.invalidate()
	w.n++
	w.off = 0
	return nil
}

// Abort discards any buffered bytes without writing a terminator chunk
// and leaves already-written chunks in place. The next write stream
// opened for the same key unlinks and replaces them.
func (w *WriteStream) Abort() {
	w.closed = true
}

// Close flushes the final chunk — always, even when it is empty, so
// the last chunk index is unambiguous regardless of whether the blob's
// length happens to be an exact multiple of the chunk size.
func (w *WriteStream) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.failed {
		return kfserrors.ErrIOError
	}
	return w.flush(true)
}

// ReadStream is the pull-based read adapter for one blob. Read drains
// the current chunk fully before requesting the next one from the
// engine, which is this adapter's expression of the required
// backpressure: no chunk is fetched until the previous one has been
// consumed by the caller.
type ReadStream struct {
	ctx       context.Context
	b         *Bucket
	key       keyalgo.Key
	hash      [20]byte
	chunkSize int
	n         uint32
	cur       []byte
	off       int
	last      bool
	closed    bool
	err       error
}

// CreateReadStream opens a read stream for k, returning
// kfserrors.ErrNotFound immediately if no blob is stored there.
// chunkSize must match the size chunks were written with, so the
// adapter can tell a genuine end-of-blob terminator (always shorter
// than a full chunk) apart from a corrupt gap (a full chunk followed
// by a missing next one).
func (b *Bucket) CreateReadStream(ctx context.Context, k keyalgo.Key, chunkSize int) (*ReadStream, error) {
	hash := keyalgo.ChunkHash(k)
	first, err := b.eng.Get(ctx, []byte(keyalgo.ChunkKeyFromHash(hash, 0)))
	if err != nil {
		return nil, err
	}
	r := &ReadStream{ctx: ctx, b: b, key: k, hash: hash, chunkSize: chunkSize, n: 1, cur: first}
	if len(first) < chunkSize {
		r.last = true
	}
	return r, nil
}

func (r *ReadStream) Read(p []byte) (int, error) {
	if r.closed {
		return 0, kfserrors.ErrCancelled
	}
	if r.err != nil {
		return 0, r.err
	}
	if r.off >= len(r.cur) {
		if r.last {
			return 0, io.EOF
		}
		if err := r.advance(); err != nil {
			r.err = err
			return 0, err
		}
	}
	n := copy(p, r.cur[r.off:])
	r.off += n
	if n == 0 && r.last {
		return 0, io.EOF
	}
	return n, nil
}

func (r *ReadStream) advance() error {
	select {
	case <-r.ctx.Done():
		return kfserrors.ErrCancelled
	default:
	}

	ck := keyalgo.ChunkKeyFromHash(r.hash, r.n)
	next, err := r.b.eng.Get(r.ctx, []byte(ck))
	if err != nil {
		if kfserrors.Is(err, kfserrors.ErrNotFound) {
			// Chunk n-1 (the one we just finished reading) was a full
			// chunk, so a terminator must follow it; its absence is a
			// gap, not a normal end of blob (see CreateReadStream).
			return kfserrors.ErrIOError.Wrap(kfserrors.ErrCorrupt.Wrap(errors.Errorf("missing chunk %d of %s", r.n, r.key)))
		}
		return kfserrors.ErrIOError.Wrap(err)
	}
	r.n++
	r.cur = next
	r.off = 0
	if len(next) < r.chunkSize {
		r.last = true
	}
	return nil
}

// Close releases the read stream. Further reads return ErrCancelled.
func (r *ReadStream) Close() error {
	r.closed = true
	return nil
}
