// Package fingerprint derives stable content fingerprints used as cache
// key components. A fingerprint is a pure function of the supplied bytes;
// callers that want semantic equality (e.g. two JSON encodings of the same
// value) must canonicalize before fingerprinting.
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"
)

// Fingerprint is an opaque, fixed-length digest of one or more inputs.
// Fingerprints are only ever compared for equality.
type Fingerprint string

// Sum computes the fingerprint of an ordered sequence of byte parts.
// Each part is length-prefixed before hashing so that no two distinct
// part sequences can serialize identically ("ab","c" != "a","bc").
func Sum(parts ...[]byte) Fingerprint {
	h := sha256.New()
	var prefix [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(prefix[:], uint64(len(p)))
		h.Write(prefix[:])
		h.Write(p)
	}
	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// Text is Sum over UTF-8 encoded string parts.
func Text(parts ...string) Fingerprint {
	bs := make([][]byte, len(parts))
	for i, p := range parts {
		bs[i] = []byte(p)
	}
	return Sum(bs...)
}

// SortedSet fingerprints an unordered collection: elements are sorted
// before hashing, so callers get the same fingerprint regardless of the
// order they supply elements in. Used for candidate-resume sets where
// reordering must not invalidate a cached selection.
func SortedSet(elems []string) Fingerprint {
	sorted := make([]string, len(elems))
	copy(sorted, elems)
	sort.Strings(sorted)
	return Text(sorted...)
}

func (f Fingerprint) String() string {
	return string(f)
}

// Short returns a truncated form for logs and file names.
func (f Fingerprint) Short() string {
	if len(f) <= 16 {
		return string(f)
	}
	return string(f[:16])
}
