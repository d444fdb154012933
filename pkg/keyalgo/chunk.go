package keyalgo

import (
	"encoding/hex"
	"fmt"
	"strconv"
)

// ChunkKeyWidth is the fixed byte width of a chunk key's text form:
// 40 hex characters, one space, six decimal digits.
const ChunkKeyWidth = HexSize + 1 + 6

// ChunkKey renders the engine-level key for chunk n of the blob whose
// file key hashes to H = ChunkHash(k): "<40 hex> <6-digit n>".
func ChunkKey(k Key, n uint32) string {
	return fmt.Sprintf("%s %06d", hashHex(k), n)
}

// ChunkKeyFromHash is ChunkKey expressed directly against a
// precomputed hash, for callers iterating many chunks of one blob
// without rehashing K each time.
func ChunkKeyFromHash(h [20]byte, n uint32) string {
	return fmt.Sprintf("%s %06d", hex.EncodeToString(h[:]), n)
}

func hashHex(k Key) string {
	h := ChunkHash(k)
	return hex.EncodeToString(h[:])
}

// RangeFor returns the inclusive engine-key range spanning every chunk
// that could ever belong to k's blob, for range scans and range deletes.
func RangeFor(k Key) (lo, hi string) {
	h := hashHex(k)
	return h + " 000000", h + " 999999"
}

// SbucketDirName renders the zero-padded shard directory name for
// shard index i, e.g. 42 -> "042.s".
func SbucketDirName(i int) string {
	return fmt.Sprintf("%03d.s", i)
}

// ParseSbucketDirName parses a directory name produced by
// SbucketDirName, reporting ok=false for anything else a table
// directory might hold (e.g. the reference-id file).
func ParseSbucketDirName(name string) (int, bool) {
	const suffix = ".s"
	if len(name) != 3+len(suffix) || name[3:] != suffix {
		return 0, false
	}
	idx, err := strconv.Atoi(name[:3])
	if err != nil {
		return 0, false
	}
	return idx, true
}

// CoerceTablePath appends the table directory suffix if the caller's
// path does not already carry it.
func CoerceTablePath(p string) string {
	const suffix = ".kfs"
	if len(p) >= len(suffix) && p[len(p)-len(suffix):] == suffix {
		return p
	}
	return p + suffix
}
