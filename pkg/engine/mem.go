package engine

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/pgerbes1/kfs/pkg/kfserrors"
)

// memEngine is an in-memory Engine used by unit tests that exercise
// S-bucket/table logic without paying for a real badger instance.
// Ordering, range semantics and error kinds match badgerEngine.
type memEngine struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMem returns an in-memory Engine.
func NewMem() Engine {
	return &memEngine{data: make(map[string][]byte)}
}

func (e *memEngine) Get(_ context.Context, key []byte) ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.data[string(key)]
	if !ok {
		return nil, kfserrors.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (e *memEngine) Put(_ context.Context, key, value []byte) error {
	if len(key) == 0 {
		return kfserrors.ErrBadKey
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (e *memEngine) Delete(_ context.Context, key []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.data, string(key))
	return nil
}

func (e *memEngine) sortedKeys() []string {
	keys := make([]string, 0, len(e.data))
	for k := range e.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *memEngine) DeleteRange(_ context.Context, lo, hi []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, k := range e.sortedKeys() {
		if bytes.Compare([]byte(k), lo) >= 0 && bytes.Compare([]byte(k), hi) <= 0 {
			delete(e.data, k)
		}
	}
	return nil
}

type memIterator struct {
	keys []string
	vals [][]byte
	pos  int
}

func (it *memIterator) Next() bool {
	if it.pos >= len(it.keys) {
		return false
	}
	it.pos++
	return true
}
func (it *memIterator) Key() []byte   { return []byte(it.keys[it.pos-1]) }
func (it *memIterator) Value() []byte { return it.vals[it.pos-1] }
func (it *memIterator) Err() error    { return nil }
func (it *memIterator) Close() error  { return nil }

func (e *memEngine) Iterate(_ context.Context, lo, hi []byte) (Iterator, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var keys []string
	var vals [][]byte
	for _, k := range e.sortedKeys() {
		if bytes.Compare([]byte(k), lo) >= 0 && bytes.Compare([]byte(k), hi) <= 0 {
			keys = append(keys, k)
			vals = append(vals, e.data[k])
		}
	}
	return &memIterator{keys: keys, vals: vals}, nil
}

func (e *memEngine) ApproximateSize(ctx context.Context, lo, hi []byte) (int64, error) {
	it, err := e.Iterate(ctx, lo, hi)
	if err != nil {
		return 0, err
	}
	defer it.Close()
	var total int64
	for it.Next() {
		total += int64(len(it.Key())) + int64(len(it.Value()))
	}
	return total, nil
}

func (e *memEngine) Repair(context.Context) error { return nil }

func (e *memEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
