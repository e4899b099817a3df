package graphstreams

import (
	"fmt"
	"math/rand"
)

// OneSparseOutcome classifies the state of a one-sparse recovery sketch.
type OneSparseOutcome int

const (
	// OutcomeZero: every update was canceled out; the stream's net vector is zero.
	OutcomeZero OneSparseOutcome = iota

	// OutcomeOneSparse: exactly one coordinate very likely survives.
	OutcomeOneSparse

	// OutcomeNotOneSparse: more than one coordinate survives.
	OutcomeNotOneSparse
)

// A OneSparseResult is the answer of a one-sparse recovery query. Index and
// Weight are only meaningful when Outcome is OutcomeOneSparse.
type OneSparseResult struct {
	Outcome OneSparseOutcome
	Index   uint64
	Weight  int64
}

// A OneSparse recovery sketch detects whether the net vector of a turnstile
// stream over [0, n) has exactly one non-zero coordinate, and if so recovers
// its index and weight. It keeps three counters: the sum of signs, the
// sign-weighted sum of indices, and a fingerprint over a prime field
// evaluated at a random point r.
//
// When the stream really is one-sparse the answer is exact; a stream that
// is not one-sparse is misclassified as one-sparse with probability
// O(1/n^2) over the choice of r.
//
// OneSparse is a linear sketch: updates commute, insert/delete pairs cancel
// exactly, and sketches built with the same seed merge by component-wise
// addition.
type OneSparse struct {
	n     uint64
	field PrimeField
	r     uint64

	count int64
	sum   int64
	print uint64
}

// NewOneSparse returns a one-sparse recovery sketch over the universe
// [0, n), seeded with the given randomness.
func NewOneSparse(n uint64, seed uint64) *OneSparse {
	field := FieldForUniverse(n)
	rng := rand.New(rand.NewSource(int64(seed)))

	return newOneSparse(n, field, field.Rand(rng))
}

// newOneSparse builds a sketch with an explicit field and evaluation point,
// used by composite sketches that derive cell randomness from one seed.
func newOneSparse(n uint64, field PrimeField, r uint64) *OneSparse {
	return &OneSparse{n: n, field: field, r: r}
}

// Feed applies one signed update to coordinate index.
func (s *OneSparse) Feed(index uint64, sign Sign) {
	s.feed(index, int64(sign))
}

func (s *OneSparse) feed(index uint64, c int64) {
	s.count += c
	s.sum += c * int64(index)

	power := s.field.Pow(s.r, index)
	if c >= 0 {
		s.print = s.field.Add(s.print, power)
	} else {
		s.print = s.field.Sub(s.print, power)
	}
}

// Outcome queries the sketch without consuming it. Queries are idempotent;
// further updates may be fed afterwards.
func (s *OneSparse) Outcome() OneSparseResult {
	if s.count == 0 && s.sum == 0 && s.print == 0 {
		return OneSparseResult{Outcome: OutcomeZero}
	}

	if s.count == 0 || s.sum%s.count != 0 {
		return OneSparseResult{Outcome: OutcomeNotOneSparse}
	}

	index := s.sum / s.count
	if index < 0 || uint64(index) >= s.n {
		return OneSparseResult{Outcome: OutcomeNotOneSparse}
	}

	expected := s.field.Mul(s.field.FromInt64(s.count), s.field.Pow(s.r, uint64(index)))
	if expected != s.print {
		return OneSparseResult{Outcome: OutcomeNotOneSparse}
	}

	return OneSparseResult{
		Outcome: OutcomeOneSparse,
		Index:   uint64(index),
		Weight:  s.count,
	}
}

// Merge adds other into s. Both sketches must have been built over the same
// universe with the same seed; otherwise the merge is rejected with
// ErrIncompatibleMerge and s is left unchanged.
func (s *OneSparse) Merge(other *OneSparse) error {
	if s.n != other.n || s.field != other.field || s.r != other.r {
		return incompatible("one-sparse sketches differ in universe or randomness")
	}

	s.count += other.count
	s.sum += other.sum
	s.print = s.field.Add(s.print, other.print)

	return nil
}

func (s *OneSparse) clone() *OneSparse {
	c := *s
	return &c
}

// String implements fmt.Stringer.
func (s *OneSparse) String() string {
	return fmt.Sprintf("onesparse(n=%d, count=%d, sum=%d)", s.n, s.count, s.sum)
}
