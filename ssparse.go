package graphstreams

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// A SparseRecovery sketch recovers the full support of a turnstile stream
// over [0, n), provided at most s coordinates survive. It hashes the domain
// into O(s) buckets of one-sparse cells across t = ceil(log2(s/delta))
// independent rows; each surviving coordinate lands alone in some bucket of
// some row with probability at least 1-delta.
//
// Storage is O(s log(s/delta)) cells; cells are allocated lazily so empty
// buckets cost nothing.
type SparseRecovery struct {
	n       uint64
	s       uint64
	rows    int
	buckets uint64

	hashes []HashFamily
	cells  []map[uint64]*OneSparse

	field PrimeField
	seed  uint64
}

// NewSparseRecovery returns a sketch that recovers up to s surviving
// coordinates of a stream over [0, n), failing with probability at most
// delta over the seed's randomness.
func NewSparseRecovery(n, s uint64, delta float64, seed uint64) (*SparseRecovery, error) {
	if n == 0 {
		return nil, errors.New("sparse recovery requires a non-empty universe")
	}
	if s == 0 {
		return nil, errors.New("sparse recovery requires sparsity >= 1")
	}
	if delta <= 0 || delta >= 1 {
		return nil, errors.New("sparse recovery requires 0 < delta < 1")
	}

	if s > n {
		s = n
	}

	rows := int(math.Ceil(math.Log2(float64(s) / delta)))
	if rows < 1 {
		rows = 1
	}

	buckets := nextPow2(2 * s)

	hashes := make([]HashFamily, rows)
	cells := make([]map[uint64]*OneSparse, rows)
	for row := range hashes {
		hash, err := NewHashFamily(deriveSeed(seed, uint64(2*row)), 2, n)
		if err != nil {
			return nil, err
		}

		hashes[row] = hash
		cells[row] = map[uint64]*OneSparse{}
	}

	return &SparseRecovery{
		n:       n,
		s:       s,
		rows:    rows,
		buckets: buckets,
		hashes:  hashes,
		cells:   cells,
		field:   FieldForUniverse(n),
		seed:    seed,
	}, nil
}

// Feed applies one signed update to coordinate index.
func (r *SparseRecovery) Feed(index uint64, sign Sign) {
	for row := 0; row < r.rows; row++ {
		bucket := r.hashes[row].Bucket(index, r.buckets)
		r.cell(row, bucket).Feed(index, sign)
	}
}

// cell returns the one-sparse cell for (row, bucket), allocating it with
// randomness derived from the sketch seed so that equal-seed sketches agree
// cell-by-cell and stay mergeable.
func (r *SparseRecovery) cell(row int, bucket uint64) *OneSparse {
	if cell, ok := r.cells[row][bucket]; ok {
		return cell
	}

	cellSeed := deriveSeed(deriveSeed(r.seed, uint64(2*row+1)), bucket)
	rng := rand.New(rand.NewSource(int64(cellSeed)))

	cell := newOneSparse(r.n, r.field, r.field.Rand(rng))
	r.cells[row][bucket] = cell

	return cell
}

// Query recovers the surviving coordinates and their net weights. ok is
// false when the stream was not s-sparse, or when an unlucky seed made the
// one-sparse cells disagree. A stream whose updates all canceled out
// recovers an empty support with ok true. Query does not consume the
// sketch.
func (r *SparseRecovery) Query() (support map[uint64]int64, ok bool) {
	support = map[uint64]int64{}

	recoveredAny := false
	collided := false

	for row := 0; row < r.rows; row++ {
		for _, cell := range r.cells[row] {
			res := cell.Outcome()
			switch res.Outcome {
			case OutcomeOneSparse:
				if prev, seen := support[res.Index]; seen && prev != res.Weight {
					return nil, false
				}

				support[res.Index] = res.Weight
				if uint64(len(support)) > r.s {
					return nil, false
				}

				recoveredAny = true

			case OutcomeNotOneSparse:
				collided = true
			}
		}
	}

	if collided && !recoveredAny {
		return nil, false
	}

	return support, true
}

// Support recovers the surviving coordinates as Query does, failing with
// ErrInsufficientData when the stream's support is still too dense to
// recover. Feeding further updates that thin it out makes the query
// succeed.
func (r *SparseRecovery) Support() (map[uint64]int64, error) {
	support, ok := r.Query()
	if !ok {
		return nil, fmt.Errorf("%w: stream support exceeds %d coordinates", ErrInsufficientData, r.s)
	}

	return support, nil
}

// Merge adds other into r. Both sketches must share seed, universe, and
// shape; otherwise the merge is rejected with ErrIncompatibleMerge.
func (r *SparseRecovery) Merge(other *SparseRecovery) error {
	if r.seed != other.seed || r.n != other.n || r.s != other.s || r.rows != other.rows || r.buckets != other.buckets {
		return incompatible("sparse recovery sketches differ in seed or shape")
	}

	for row := 0; row < r.rows; row++ {
		for bucket, otherCell := range other.cells[row] {
			if err := r.cell(row, bucket).Merge(otherCell); err != nil {
				return err
			}
		}
	}

	return nil
}

func nextPow2(v uint64) uint64 {
	p := uint64(1)
	for p < v {
		p <<= 1
	}

	return p
}
