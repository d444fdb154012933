package engine

import (
	"bytes"
	"context"

	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"

	"github.com/pgerbes1/kfs/pkg/kfserrors"
)

// badgerEngine implements Engine over one badger.DB per shard
// directory, grounded on the object-metadata store's transaction and
// iterator usage: single-key Get/Set inside View/Update, a
// PrefetchValues-disabled iterator for range scans and batched
// deletion (mirroring objectMetaStore.Clear's delete-while-iterating
// inside one Update txn), and RunValueLogGC as the repair primitive.
type badgerEngine struct {
	db *badger.DB
}

// OpenBadger opens (creating if absent) a badger-backed engine rooted
// at dir. valueLogFileSize, when non-zero, overrides badger's default
// and corresponds to the sBucketOpts forwarded from table config.
func OpenBadger(dir string, valueLogFileSize int64) (Engine, error) {
	opts := badger.DefaultOptions
	opts.Dir = dir
	opts.ValueDir = dir
	if valueLogFileSize > 0 {
		opts.ValueLogFileSize = valueLogFileSize
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening badger engine at %q", dir)
	}
	return &badgerEngine{db: db}, nil
}

func rewriteBadgerErr(err error) error {
	switch err {
	case nil:
		return nil
	case badger.ErrKeyNotFound:
		return kfserrors.ErrNotFound.Wrap(err)
	case badger.ErrEmptyKey:
		return kfserrors.ErrBadKey.Wrap(err)
	default:
		return kfserrors.ErrIOError.Wrap(err)
	}
}

func (e *badgerEngine) Get(_ context.Context, key []byte) ([]byte, error) {
	var value []byte
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		v, err := item.Value()
		if err != nil {
			return err
		}
		value = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, rewriteBadgerErr(err)
	}
	return value, nil
}

func (e *badgerEngine) Put(_ context.Context, key, value []byte) error {
	err := e.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	return rewriteBadgerErr(err)
}

func (e *badgerEngine) Delete(_ context.Context, key []byte) error {
	err := e.db.Update(func(txn *badger.Txn) error {
		derr := txn.Delete(key)
		if derr == badger.ErrKeyNotFound {
			return nil
		}
		return derr
	})
	return rewriteBadgerErr(err)
}

func (e *badgerEngine) DeleteRange(_ context.Context, lo, hi []byte) error {
	err := e.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()
		for it.Seek(lo); it.Valid(); it.Next() {
			key := it.Item().Key()
			if bytes.Compare(key, hi) > 0 {
				break
			}
			if err := txn.Delete(append([]byte(nil), key...)); err != nil {
				return err
			}
		}
		return nil
	})
	return rewriteBadgerErr(err)
}

type badgerIterator struct {
	txn *badger.Txn
	it  *badger.Iterator
	hi  []byte
	key []byte
	val []byte
	err error
}

func (it *badgerIterator) Next() bool {
	if !it.it.Valid() {
		return false
	}
	item := it.it.Item()
	key := append([]byte(nil), item.Key()...)
	if it.hi != nil && bytes.Compare(key, it.hi) > 0 {
		return false
	}
	val, err := item.Value()
	if err != nil {
		it.err = err
		return false
	}
	it.key = key
	it.val = append([]byte(nil), val...)
	it.it.Next()
	return true
}

func (it *badgerIterator) Key() []byte   { return it.key }
func (it *badgerIterator) Value() []byte { return it.val }
func (it *badgerIterator) Err() error    { return rewriteBadgerErr(it.err) }
func (it *badgerIterator) Close() error {
	it.it.Close()
	it.txn.Discard()
	return nil
}

func (e *badgerEngine) Iterate(_ context.Context, lo, hi []byte) (Iterator, error) {
	txn := e.db.NewTransaction(false)
	it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
	it.Seek(lo)
	return &badgerIterator{txn: txn, it: it, hi: hi}, nil
}

func (e *badgerEngine) ApproximateSize(ctx context.Context, lo, hi []byte) (int64, error) {
	it, err := e.Iterate(ctx, lo, hi)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	var total int64
	for it.Next() {
		total += int64(len(it.Key())) + int64(len(it.Value()))
	}
	if err := it.Err(); err != nil {
		return 0, err
	}
	return total, nil
}

func (e *badgerEngine) Repair(context.Context) error {
	err := e.db.RunValueLogGC(0.5)
	if err != nil && err != badger.ErrNoRewrite {
		return kfserrors.ErrIOError.Wrap(err)
	}
	return nil
}

func (e *badgerEngine) Close() error {
	return rewriteBadgerErr(e.db.Close())
}
