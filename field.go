package graphstreams

import (
	"math/bits"
	"math/rand"
)

// A PrimeField performs arithmetic modulo a prime. Sketch fingerprints live
// in a prime field sized so that fingerprint collisions stay within each
// sketch's stated error probability.
type PrimeField struct {
	p uint64
}

// Mersenne primes 2^13-1 through 2^61-1. Field sizes are drawn from this
// ladder rather than generated at runtime, which keeps sketch construction
// cheap and seeds reproducible.
var fieldPrimes = []uint64{
	1<<13 - 1,
	1<<17 - 1,
	1<<19 - 1,
	1<<31 - 1,
	1<<61 - 1,
}

// FieldForUniverse returns the smallest ladder prime exceeding n^3, the
// field size the one-sparse fingerprint analysis requires for a false
// positive probability of O(1/n^2). The n^3 bound is only attainable up to
// n = 2^20, where n^3 reaches the top ladder prime; beyond that every
// universe uses 2^61-1 and trades the cubic bound for the largest Mersenne
// prime a 64-bit word holds.
func FieldForUniverse(n uint64) PrimeField {
	if n <= 1<<20 {
		for _, p := range fieldPrimes {
			if p > n*n*n {
				return PrimeField{p: p}
			}
		}
	}

	return PrimeField{p: fieldPrimes[len(fieldPrimes)-1]}
}

// Order returns the field's prime modulus.
func (f PrimeField) Order() uint64 {
	return f.p
}

// Add returns a+b mod p.
func (f PrimeField) Add(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry == 1 || sum >= f.p {
		sum -= f.p
	}

	return sum
}

// Neg returns -a mod p.
func (f PrimeField) Neg(a uint64) uint64 {
	if a == 0 {
		return 0
	}

	return f.p - a
}

// Sub returns a-b mod p.
func (f PrimeField) Sub(a, b uint64) uint64 {
	return f.Add(a, f.Neg(b))
}

// Mul returns a*b mod p. Operands must already be reduced; the 128-bit
// intermediate keeps the reduction exact for any ladder prime.
func (f PrimeField) Mul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi, lo, f.p)

	return rem
}

// Pow returns base^exp mod p by square-and-multiply.
func (f PrimeField) Pow(base, exp uint64) uint64 {
	result := uint64(1)
	base %= f.p

	for exp > 0 {
		if exp&1 == 1 {
			result = f.Mul(result, base)
		}

		base = f.Mul(base, base)
		exp >>= 1
	}

	return result
}

// FromInt64 reduces a signed integer into the field.
func (f PrimeField) FromInt64(v int64) uint64 {
	if v >= 0 {
		return uint64(v) % f.p
	}

	return f.Neg(uint64(-v) % f.p)
}

// Rand returns a uniformly random field element drawn from rng.
func (f PrimeField) Rand(rng *rand.Rand) uint64 {
	return uint64(rng.Int63n(int64(f.p)))
}
