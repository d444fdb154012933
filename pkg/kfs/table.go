// Package kfs implements the B-table façade: the public entry point
// that owns a table's shards, its reference id and its configuration,
// and routes every operation to the shard a file key maps to.
package kfs

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"strconv"
	"sync"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/pgerbes1/kfs/pkg/config"
	"github.com/pgerbes1/kfs/pkg/engine"
	"github.com/pgerbes1/kfs/pkg/keyalgo"
	"github.com/pgerbes1/kfs/pkg/kfserrors"
	"github.com/pgerbes1/kfs/pkg/metrics"
	"github.com/pgerbes1/kfs/pkg/refid"
	"github.com/pgerbes1/kfs/pkg/sbucket"
)

// re-export the error kinds at the façade's import path, so callers
// only need to import one package for both operations and errors.
var (
	ErrBadKey    = kfserrors.ErrBadKey
	ErrNotFound  = kfserrors.ErrNotFound
	ErrNoSpace   = kfserrors.ErrNoSpace
	ErrIOError   = kfserrors.ErrIOError
	ErrCancelled = kfserrors.ErrCancelled
	ErrCorrupt   = kfserrors.ErrCorrupt
)

// Table is the open handle on a KFS store directory.
type Table struct {
	fs  afero.Fs
	dir string
	ref keyalgo.RefID
	cfg config.Config

	log     *zap.Logger
	tracer  opentracing.Tracer
	metrics *metrics.Set
	factory EngineFactory

	mu     sync.Mutex
	once   []sync.Once
	shards []*sbucket.Bucket
	errs   []error
}

// EngineFactory constructs the Engine backing one shard directory.
// dir is the shard's on-disk directory (created before the factory is
// called); opts is the table's configured sBucketOpts, forwarded
// verbatim.
type EngineFactory func(dir string, opts map[string]string) (engine.Engine, error)

// BadgerEngineFactory is the default EngineFactory: one badger.DB per
// shard, with "valueLogFileSize" recognized in opts as a byte count.
func BadgerEngineFactory(dir string, opts map[string]string) (engine.Engine, error) {
	var valueLogSize int64
	if s, ok := opts["valueLogFileSize"]; ok {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "parsing sBucketOpts.valueLogFileSize")
		}
		valueLogSize = v
	}
	return engine.OpenBadger(dir, valueLogSize)
}

// Option configures a Table at Open time.
type Option func(*Table)

// WithConfig overrides the package defaults.
func WithConfig(c config.Config) Option {
	return func(t *Table) { t.cfg = c }
}

// WithLogger sets the table's structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Table) { t.log = l }
}

// WithTracer sets the table's opentracing tracer.
func WithTracer(tr opentracing.Tracer) Option {
	return func(t *Table) { t.tracer = tr }
}

// WithMetrics attaches a metrics.Set the table updates inline.
func WithMetrics(m *metrics.Set) Option {
	return func(t *Table) { t.metrics = m }
}

// WithEngineFactory overrides how shard engines are constructed, e.g.
// to inject engine.NewMem() in tests.
func WithEngineFactory(f EngineFactory) Option {
	return func(t *Table) { t.factory = f }
}

// Open opens (creating if absent) the table rooted at dir. A
// WithConfig carrying a non-empty Config.ReferenceID overrides the
// random reference id a brand-new table would otherwise generate.
func Open(fs afero.Fs, dir string, opts ...Option) (*Table, error) {
	dir = keyalgo.CoerceTablePath(dir)
	if fs == nil {
		fs = afero.NewOsFs()
	}

	cfg := config.Default()
	t := &Table{
		fs:      fs,
		dir:     dir,
		cfg:     cfg,
		log:     zap.NewNop(),
		tracer:  opentracing.NoopTracer{},
		metrics: metrics.Noop(),
		factory: BadgerEngineFactory,
	}
	for _, o := range opts {
		o(t)
	}
	// The key algebra's ShardIndex is hard-wired to a 256-way route
	// (byte 0 of K XOR R); ShardCount exists in Config for forward
	// documentation of the on-disk layout, not as a tunable knob.
	t.cfg.ShardCount = config.ShardCountCanonical

	var override *keyalgo.RefID
	if t.cfg.ReferenceID != "" {
		id, err := keyalgo.ParseRefID(t.cfg.ReferenceID)
		if err != nil {
			return nil, err
		}
		override = &id
	}
	ref, err := refid.Ensure(fs, dir, override)
	if err != nil {
		return nil, err
	}
	t.ref = ref

	t.once = make([]sync.Once, t.cfg.ShardCount)
	t.shards = make([]*sbucket.Bucket, t.cfg.ShardCount)
	t.errs = make([]error, t.cfg.ShardCount)
	return t, nil
}

func (t *Table) shardDir(idx int) string {
	return filepath.Join(t.dir, keyalgo.SbucketDirName(idx))
}

// shard lazily opens the bucket for k, opening its engine at most once
// per table lifetime and never closing it until Table.Close.
func (t *Table) shard(k keyalgo.Key) (*sbucket.Bucket, error) {
	idx := keyalgo.ShardIndex(k, t.ref)
	return t.shardByIndex(idx)
}

func (t *Table) shardByIndex(idx int) (*sbucket.Bucket, error) {
	if idx < 0 || idx >= len(t.shards) {
		return nil, kfserrors.ErrBadKey.Wrap(errors.Errorf("shard index %d out of range [0,%d)", idx, len(t.shards)))
	}
	t.once[idx].Do(func() {
		dir := t.shardDir(idx)
		if err := t.fs.MkdirAll(dir, 0700); err != nil {
			t.errs[idx] = errors.Wrapf(err, "creating shard directory %q", dir)
			return
		}
		eng, err := t.factory(dir, t.cfg.SBucketOpts)
		if err != nil {
			t.errs[idx] = errors.Wrapf(err, "opening shard %d", idx)
			return
		}
		t.shards[idx] = sbucket.New(idx, eng, t.cfg.ShardMaxSize)
	})
	if t.errs[idx] != nil {
		return nil, t.errs[idx]
	}
	return t.shards[idx], nil
}

// shardDirIndices lists the shard indices whose directory already
// exists on disk, whether or not this process has opened them yet —
// an operator running "compact" or "stat" in a fresh process must see
// shards a previous process wrote to, not just the ones it happens to
// have opened itself.
func (t *Table) shardDirIndices() ([]int, error) {
	entries, err := afero.ReadDir(t.fs, t.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading table directory %q", t.dir)
	}
	idxs := make([]int, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if idx, ok := keyalgo.ParseSbucketDirName(e.Name()); ok {
			idxs = append(idxs, idx)
		}
	}
	return idxs, nil
}

// span starts a span on the table's own tracer, parented off whatever
// span ctx already carries. opentracing-go v1.0.2 (pinned in go.mod)
// only exposes StartSpanFromContext against the global tracer, so a
// per-table tracer needs this done by hand instead.
func (t *Table) span(ctx context.Context, op string) (opentracing.Span, context.Context) {
	var opts []opentracing.StartSpanOption
	if parent := opentracing.SpanFromContext(ctx); parent != nil {
		opts = append(opts, opentracing.ChildOf(parent.Context()))
	}
	span := t.tracer.StartSpan("kfs."+op, opts...)
	return span, opentracing.ContextWithSpan(ctx, span)
}

// Exists reports whether a blob is stored at k.
func (t *Table) Exists(ctx context.Context, k keyalgo.Key) (bool, error) {
	span, ctx := t.span(ctx, "exists")
	defer span.Finish()

	b, err := t.shard(k)
	if err != nil {
		return false, err
	}
	return b.Exists(ctx, k)
}

// Unlink removes the blob stored at k, if any.
func (t *Table) Unlink(ctx context.Context, k keyalgo.Key) error {
	span, ctx := t.span(ctx, "unlink")
	defer span.Finish()

	b, err := t.shard(k)
	if err != nil {
		return err
	}
	err = b.Unlink(ctx, k)
	t.recordOp("unlink", err)
	return err
}

// WriteFile stores data at k as a single call, replacing any existing
// blob at that key.
func (t *Table) WriteFile(ctx context.Context, k keyalgo.Key, data []byte) error {
	span, ctx := t.span(ctx, "write_file")
	defer span.Finish()

	ws, err := t.CreateWriteStream(ctx, k, WriteOpts{ExpectedSize: int64(len(data))})
	if err != nil {
		return err
	}
	if _, err := ws.Write(data); err != nil {
		ws.Abort()
		return err
	}
	return ws.Close()
}

// ReadFile reads the entire blob stored at k into memory. Callers
// expecting large blobs should use CreateReadStream instead.
func (t *Table) ReadFile(ctx context.Context, k keyalgo.Key) ([]byte, error) {
	span, ctx := t.span(ctx, "read_file")
	defer span.Finish()

	rs, err := t.CreateReadStream(ctx, k)
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	data, err := ioutil.ReadAll(rs)
	if err != nil {
		return nil, kfserrors.ErrIOError.Wrap(err)
	}
	return data, nil
}

// CreateWriteStream opens a push-based write adapter for k.
func (t *Table) CreateWriteStream(ctx context.Context, k keyalgo.Key, opts WriteOpts) (*WriteStream, error) {
	span, ctx := t.span(ctx, "create_write_stream")
	defer span.Finish()

	b, err := t.shard(k)
	if err != nil {
		return nil, err
	}
	if opts.ExpectedSize < 0 {
		opts.ExpectedSize = -1
	}
	ws, err := b.CreateWriteStream(ctx, k, t.cfg.ChunkSize, opts)
	if err != nil {
		if kfserrors.Is(err, kfserrors.ErrNoSpace) {
			t.metrics.AdmissionRejected.Inc()
		}
		t.recordOp("create_write_stream", err)
		return nil, err
	}
	return &WriteStream{WriteStream: ws, t: t}, nil
}

// CreateReadStream opens a pull-based read adapter for k.
func (t *Table) CreateReadStream(ctx context.Context, k keyalgo.Key) (*ReadStream, error) {
	span, ctx := t.span(ctx, "create_read_stream")
	defer span.Finish()

	b, err := t.shard(k)
	if err != nil {
		return nil, err
	}
	rs, err := b.CreateReadStream(ctx, k, t.cfg.ChunkSize)
	t.recordOp("create_read_stream", err)
	if err != nil {
		return nil, err
	}
	return &ReadStream{ReadStream: rs, t: t}, nil
}

// KeyOrIndex selects a shard either by the file key that routes to it
// or by its raw index, for the operations that can address a shard
// directly.
type KeyOrIndex struct {
	key   keyalgo.Key
	index int
	byKey bool
}

// ByKey selects the shard k routes to.
func ByKey(k keyalgo.Key) KeyOrIndex { return KeyOrIndex{key: k, byKey: true} }

// ByIndex selects a shard by its raw index.
func ByIndex(i int) KeyOrIndex { return KeyOrIndex{index: i} }

func (t *Table) resolve(sel KeyOrIndex) (*sbucket.Bucket, error) {
	if sel.byKey {
		return t.shard(sel.key)
	}
	return t.shardByIndex(sel.index)
}

// StatOne reports occupancy for a single shard, selected by key or index.
func (t *Table) StatOne(ctx context.Context, sel KeyOrIndex) (Stat, error) {
	span, ctx := t.span(ctx, "stat")
	defer span.Finish()

	b, err := t.resolve(sel)
	if err != nil {
		return Stat{}, err
	}
	st, err := b.Stat(ctx)
	if err == nil {
		t.metrics.ShardFreeBytes.WithLabelValues(strconv.Itoa(st.Index)).Set(float64(st.Free))
	}
	return st, err
}

// StatAll reports occupancy for all 256 shards, each tagged with its
// index. A shard with no directory on disk yet (never written to, in
// this process or a previous one) is reported empty rather than
// skipped.
func (t *Table) StatAll(ctx context.Context) ([]Stat, error) {
	span, ctx := t.span(ctx, "stat_all")
	defer span.Finish()

	t.mu.Lock()
	onDisk, err := t.shardDirIndices()
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}
	present := make(map[int]bool, len(onDisk))
	for _, idx := range onDisk {
		present[idx] = true
	}

	out := make([]Stat, len(t.shards))
	for idx := range t.shards {
		if !present[idx] {
			out[idx] = Stat{Index: idx, Size: 0, Free: t.cfg.ShardMaxSize, SMax: t.cfg.ShardMaxSize}
			continue
		}
		b, err := t.shardByIndex(idx)
		if err != nil {
			return nil, errors.Wrapf(err, "opening shard %d", idx)
		}
		st, err := b.Stat(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "stat shard %d", idx)
		}
		out[idx] = st
	}
	for _, st := range out {
		t.metrics.ShardFreeBytes.WithLabelValues(strconv.Itoa(st.Index)).Set(float64(st.Free))
	}
	return out, nil
}

// List enumerates the blobs in a single shard, selected by key or index.
func (t *Table) List(ctx context.Context, sel KeyOrIndex) ([]BlobInfo, error) {
	span, ctx := t.span(ctx, "list")
	defer span.Finish()

	b, err := t.resolve(sel)
	if err != nil {
		return nil, err
	}
	return b.List(ctx)
}

// Compact requests engine-level repair on every shard directory that
// exists on disk, opening any that this process hasn't touched yet —
// an operator running "kfs compact" after a restart must repair every
// shard a prior process wrote to, not just the ones opened so far.
func (t *Table) Compact(ctx context.Context) error {
	span, ctx := t.span(ctx, "compact")
	defer span.Finish()

	t.mu.Lock()
	defer t.mu.Unlock()

	idxs, err := t.shardDirIndices()
	if err != nil {
		return err
	}

	var combined error
	for _, idx := range idxs {
		b, err := t.shardByIndex(idx)
		if err != nil {
			combined = multierr.Append(combined, errors.Wrapf(err, "opening shard %d", idx))
			continue
		}
		if err := b.Repair(ctx); err != nil {
			combined = multierr.Append(combined, errors.Wrapf(err, "compacting shard %d", idx))
		}
	}
	return combined
}

// Close closes every shard opened during the table's lifetime.
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var combined error
	for _, b := range t.shards {
		if b == nil {
			continue
		}
		if err := b.Close(); err != nil {
			combined = multierr.Append(combined, err)
		}
	}
	return combined
}

func (t *Table) recordOp(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	t.metrics.OpsTotal.WithLabelValues(op, outcome).Inc()
}
