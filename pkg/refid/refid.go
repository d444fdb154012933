// Package refid manages a table's persistent reference id: the random
// 160-bit value XORed against a file key to route it to a shard.
package refid

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/pgerbes1/kfs/pkg/keyalgo"
	"github.com/pgerbes1/kfs/pkg/kfserrors"
)

// fileName is the reserved name of the reference-id file within a
// table's directory. Shard directory walkers must skip it.
const fileName = "r"

const stagePrefix = ".r.tmp-"

// Ensure returns the table's reference id at dir, creating dir and
// generating a fresh reference id on first use. override, when non-nil,
// is written instead of a random id on first creation; it has no effect
// on a table that already has a reference id on disk.
//
// The id is written via stage-then-rename: the bytes land in a
// throwaway file in the same directory first, then Fs.Rename moves it
// over the final name. A crash between those two steps leaves only the
// stage file behind, never a truncated reference-id file.
func Ensure(fs afero.Fs, dir string, override *keyalgo.RefID) (keyalgo.RefID, error) {
	if err := fs.MkdirAll(dir, 0700); err != nil {
		return keyalgo.RefID{}, errors.Wrapf(err, "creating table directory %q", dir)
	}

	path := filepath.Join(dir, fileName)
	if exists, err := afero.Exists(fs, path); err != nil {
		return keyalgo.RefID{}, errors.Wrapf(err, "checking reference id at %q", path)
	} else if exists {
		return Load(fs, dir)
	}

	var id keyalgo.RefID
	if override != nil {
		id = *override
	} else if _, err := rand.Read(id[:]); err != nil {
		return keyalgo.RefID{}, errors.Wrap(err, "generating reference id")
	}

	stagePath := filepath.Join(dir, fmt.Sprintf("%s%x", stagePrefix, id[:4]))
	stage, err := fs.OpenFile(stagePath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return keyalgo.RefID{}, errors.Wrapf(err, "staging reference id at %q", stagePath)
	}
	if _, err := stage.Write(id[:]); err != nil {
		_ = stage.Close()
		return keyalgo.RefID{}, errors.Wrap(err, "writing staged reference id")
	}
	if err := stage.Close(); err != nil {
		return keyalgo.RefID{}, errors.Wrap(err, "closing staged reference id")
	}
	if err := fs.Rename(stagePath, path); err != nil {
		return keyalgo.RefID{}, errors.Wrapf(err, "committing reference id to %q", path)
	}
	return id, nil
}

// Load reads an existing reference id, failing with ErrCorrupt if the
// file is not exactly keyalgo.KeySize bytes.
func Load(fs afero.Fs, dir string) (keyalgo.RefID, error) {
	path := filepath.Join(dir, fileName)
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return keyalgo.RefID{}, errors.Wrapf(err, "reading reference id at %q", path)
	}
	if len(b) != keyalgo.KeySize {
		return keyalgo.RefID{}, kfserrors.ErrCorrupt.Wrap(fmt.Errorf("reference id at %q has %d bytes, want %d", path, len(b), keyalgo.KeySize))
	}
	var id keyalgo.RefID
	copy(id[:], b)
	return id, nil
}
