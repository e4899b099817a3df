package graphstreams

import (
	"encoding/binary"
	"errors"
	"math/bits"
	"math/rand"

	"github.com/cespare/xxhash/v2"
)

// A HashFamily is a k-wise independent hash function over a prime field:
// a random polynomial of degree k-1 evaluated at the input. Identical seeds
// produce identical functions, which is what makes merges of independently
// built sketches and test replays deterministic.
type HashFamily struct {
	field  PrimeField
	coeffs []uint64
	seed   uint64
}

// NewHashFamily draws a hash function from the k-wise independent family
// over a domain of the given size. k is typically 2 or 4, chosen by the
// consuming algorithm's accuracy proof.
func NewHashFamily(seed uint64, k int, domain uint64) (HashFamily, error) {
	if k < 2 {
		return HashFamily{}, errors.New("hash family requires independence k >= 2")
	}
	if domain == 0 {
		return HashFamily{}, errors.New("hash family requires a non-empty domain")
	}

	field := FieldForUniverse(domain)
	rng := rand.New(rand.NewSource(int64(seed)))

	coeffs := make([]uint64, k)
	for i := range coeffs {
		coeffs[i] = field.Rand(rng)
	}

	// A zero leading coefficient would lower the polynomial's degree.
	for coeffs[k-1] == 0 {
		coeffs[k-1] = field.Rand(rng)
	}

	return HashFamily{field: field, coeffs: coeffs, seed: seed}, nil
}

// Sum evaluates the hash at x, returning a value in [0, p) for the family's
// field prime p.
func (h HashFamily) Sum(x uint64) uint64 {
	x %= h.field.Order()

	// Horner evaluation of the degree k-1 polynomial.
	acc := uint64(0)
	for i := len(h.coeffs) - 1; i >= 0; i-- {
		acc = h.field.Add(h.field.Mul(acc, x), h.coeffs[i])
	}

	return acc
}

// Bucket maps x to one of m buckets.
func (h HashFamily) Bucket(x, m uint64) uint64 {
	return h.Sum(x) % m
}

// Level returns the number of trailing zero bits of the hash of x. An item
// reaches level l with probability 2^-l, the geometric subsampling used by
// the L0 sampler and the cut sparsifier.
func (h HashFamily) Level(x uint64) uint {
	sum := h.Sum(x)
	if sum == 0 {
		return 64
	}

	return uint(bits.TrailingZeros64(sum))
}

// Seed returns the seed the family was drawn with.
func (h HashFamily) Seed() uint64 {
	return h.seed
}

// deriveSeed deterministically derives an independent sub-seed, so that a
// sketch constructed from one caller-provided seed can hand distinct seeds
// to its levels, rows, and copies.
func deriveSeed(seed uint64, index uint64) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], seed)
	binary.LittleEndian.PutUint64(buf[8:], index)

	return xxhash.Sum64(buf[:])
}

// mixHash hashes a token under a seed, the seed-mixing shape used by the
// tidemark distinct-elements sketch.
func mixHash(seed, token uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], token)

	return xxhash.Sum64(buf[:]) ^ seed
}
