package kfs

import "github.com/pgerbes1/kfs/pkg/sbucket"

// WriteOpts, Stat and BlobInfo pass straight through from sbucket; the
// façade only adds shard routing and metrics on top of its streams.
type (
	WriteOpts = sbucket.WriteOpts
	Stat      = sbucket.Stat
	BlobInfo  = sbucket.BlobInfo
)

// WriteStream wraps sbucket.WriteStream to report bytes accepted
// through metrics.Set.BytesTotal once the stream closes successfully.
type WriteStream struct {
	*sbucket.WriteStream
	t *Table
	n int64
}

func (w *WriteStream) Write(p []byte) (int, error) {
	n, err := w.WriteStream.Write(p)
	w.n += int64(n)
	return n, err
}

func (w *WriteStream) Close() error {
	err := w.WriteStream.Close()
	if err == nil {
		w.t.metrics.BytesTotal.WithLabelValues("write").Add(float64(w.n))
	}
	return err
}

// ReadStream wraps sbucket.ReadStream to report bytes delivered
// through metrics.Set.BytesTotal as they are read.
type ReadStream struct {
	*sbucket.ReadStream
	t *Table
}

func (r *ReadStream) Read(p []byte) (int, error) {
	n, err := r.ReadStream.Read(p)
	if n > 0 {
		r.t.metrics.BytesTotal.WithLabelValues("read").Add(float64(n))
	}
	return n, err
}
