// Package keyalgo implements the key algebra binding a file key to a
// chunk-key text encoding and to the shard it routes to: parsing,
// hashing, shard routing and the wire encoding of chunk keys.
package keyalgo

import (
	"crypto/sha1" // nolint:gosec // used as a fixed, non-adversarial content-address hash, not for authentication
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/pgerbes1/kfs/pkg/kfserrors"
)

// KeySize is the width, in bytes, of a file key or a reference id.
const KeySize = 20

// HexSize is the width of a key's canonical lowercase-hex text form.
const HexSize = KeySize * 2

// Key is a 160-bit file identifier.
type Key [KeySize]byte

// RefID is a table's 160-bit reference id, used to derive shard routing.
type RefID [KeySize]byte

// ParseKey decodes the canonical 40-character lowercase hex form of a
// file key. Uppercase hex, short/long strings and non-hex characters
// are all rejected as ErrBadKey.
func ParseKey(s string) (Key, error) {
	var k Key
	if len(s) != HexSize {
		return k, kfserrors.ErrBadKey.Wrap(fmt.Errorf("key must be %d hex characters, got %d", HexSize, len(s)))
	}
	for _, r := range s {
		if !isLowerHex(r) {
			return k, kfserrors.ErrBadKey.Wrap(fmt.Errorf("key must be lowercase hex, got %q", s))
		}
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return k, kfserrors.ErrBadKey.Wrap(err)
	}
	copy(k[:], b)
	return k, nil
}

// ParseRefID decodes the canonical 40-character lowercase hex form of a
// reference id, the same text encoding ParseKey accepts for file keys.
func ParseRefID(s string) (RefID, error) {
	k, err := ParseKey(s)
	if err != nil {
		return RefID{}, err
	}
	return RefID(k), nil
}

func isLowerHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}

// String renders the key as canonical lowercase hex.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// String renders the reference id as lowercase hex.
func (r RefID) String() string {
	return hex.EncodeToString(r[:])
}

// ChunkHash returns SHA-1(K), the raw 20-byte digest used as the chunk
// key prefix. Callers must never substitute the key's own hex text for
// this value: the chunk key is keyed off the hash of K, not K itself.
func ChunkHash(k Key) [20]byte {
	return sha1.Sum(k[:]) // nolint:gosec
}

// ShardIndex returns the canonical 256-way shard index for k under
// reference id r: byte 0 of the bytewise XOR of the two.
func ShardIndex(k Key, r RefID) int {
	return int(k[0] ^ r[0])
}

// ShardIndexN generalizes ShardIndex to an arbitrary shard count b,
// reducing the full XOR (not just its leading byte) modulo b. KFS
// itself only ever constructs 256-way tables; this exists for callers
// building a non-canonical table directly against the key algebra.
func ShardIndexN(k Key, r RefID, b int) int {
	if b <= 0 {
		return 0
	}
	var x [KeySize]byte
	for i := 0; i < KeySize; i++ {
		x[i] = k[i] ^ r[i]
	}
	n := new(big.Int).SetBytes(x[:])
	return int(n.Mod(n, big.NewInt(int64(b))).Int64())
}
