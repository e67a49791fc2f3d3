// Package xxhash implements the seeded 64-bit content hash used to detect
// whether an edited file changed. It is modeled on the four-lane XXH64
// construction but returns the raw accumulator (there is no avalanche step),
// so its output is not interchangeable with other XXH64 implementations.
//
// The hash is not cryptographic. Collisions are possible and accepted.
package xxhash

import (
	"encoding/binary"
	"math/bits"
)

const (
	seed uint64 = 0

	prime0 uint64 = 11400714785074694791
	prime1 uint64 = 14029467366897019727
	prime2 uint64 = 1609587929392839161
	prime3 uint64 = 9650029242287828579
	prime4 uint64 = 2870177450012600261

	stripeSize = 32
)

// Sum64 returns the digest of b.
func Sum64(b []byte) uint64 {
	n := len(b)
	p := 0

	// p0/p1 are variables so the lane seeds wrap at runtime instead of
	// overflowing as constant expressions.
	p0, p1 := prime0, prime1
	v0 := seed + p0 + p1
	v1 := seed + p1
	v2 := seed
	v3 := seed - p0

	for n-p >= stripeSize {
		v0 = round(v0, u64(b[p:]))
		v1 = round(v1, u64(b[p+8:]))
		v2 = round(v2, u64(b[p+16:]))
		v3 = round(v3, u64(b[p+24:]))
		p += stripeSize
	}

	var h uint64
	if n < stripeSize {
		// Short inputs only fold in lane 2. Lanes 0, 1 and 3 are dropped.
		h = v2 + prime4
	} else {
		h = bits.RotateLeft64(v0, 1) + bits.RotateLeft64(v1, 7) +
			bits.RotateLeft64(v2, 12) + bits.RotateLeft64(v3, 18)
		h = mergeRound(h, v0)
		h = mergeRound(h, v1)
		h = mergeRound(h, v2)
		h = mergeRound(h, v3)
	}

	h += uint64(n)

	// The tail phases use strict comparisons: an exactly 8-byte (or 4-byte)
	// remainder falls through to the next, smaller phase.
	for n-p > 8 {
		h ^= round(0, u64(b[p:]))
		h = bits.RotateLeft64(h, 27)*prime0 + prime3
		p += 8
	}
	for n-p > 4 {
		h ^= uint64(u32(b[p:])) * prime0
		h = bits.RotateLeft64(h, 23)*prime1 + prime2
		p += 4
	}
	for ; p < n; p++ {
		h ^= uint64(b[p]) * prime4
		h = bits.RotateLeft64(h, 11) * prime0
	}

	return h
}

func round(acc, input uint64) uint64 {
	acc += input * prime1
	acc = bits.RotateLeft64(acc, 31)
	return acc * prime0
}

func mergeRound(acc, val uint64) uint64 {
	acc ^= round(0, val)
	return acc*prime0 + prime3
}

func u64(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }
func u32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
