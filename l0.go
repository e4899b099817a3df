package graphstreams

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// An L0Sampler returns a coordinate drawn (almost) uniformly at random from
// the surviving coordinates of a turnstile stream over [0, n). Each of
// O(log 1/delta) repetitions subsamples the domain geometrically: level l
// keeps coordinates whose hash has at least l trailing zero bits, so the
// expected number of survivors halves per level and some level very likely
// isolates exactly one, which a one-sparse cell then recovers.
//
// L0Sampler is a linear sketch: mergeable across equal-seed instances and
// exact under insert/delete cancellation. It is the building block of the
// spanning-forest sketch and answers standalone "does any coordinate
// survive" queries.
type L0Sampler struct {
	n      uint64
	levels int
	reps   []l0rep

	field PrimeField
	seed  uint64
}

type l0rep struct {
	hash  HashFamily
	cells []*OneSparse
}

// NewL0Sampler returns an L0 sampler over [0, n) that fails to produce a
// sample from a non-empty survivor set with probability at most delta.
func NewL0Sampler(n uint64, delta float64, seed uint64) (*L0Sampler, error) {
	if n == 0 {
		return nil, errors.New("l0 sampler requires a non-empty universe")
	}
	if delta <= 0 || delta >= 1 {
		return nil, errors.New("l0 sampler requires 0 < delta < 1")
	}

	levels := int(math.Ceil(math.Log2(float64(n)))) + 2
	if levels < 2 {
		levels = 2
	}

	repeats := int(math.Ceil(math.Log2(1 / delta)))
	if repeats < 1 {
		repeats = 1
	}

	field := FieldForUniverse(n)

	reps := make([]l0rep, repeats)
	for i := range reps {
		hash, err := NewHashFamily(deriveSeed(seed, uint64(2*i)), 2, n)
		if err != nil {
			return nil, err
		}

		cellRng := rand.New(rand.NewSource(int64(deriveSeed(seed, uint64(2*i+1)))))

		cells := make([]*OneSparse, levels)
		for l := range cells {
			cells[l] = newOneSparse(n, field, field.Rand(cellRng))
		}

		reps[i] = l0rep{hash: hash, cells: cells}
	}

	return &L0Sampler{
		n:      n,
		levels: levels,
		reps:   reps,
		field:  field,
		seed:   seed,
	}, nil
}

// Feed applies one signed update to coordinate index.
func (s *L0Sampler) Feed(index uint64, sign Sign) {
	for _, rep := range s.reps {
		depth := int(rep.hash.Level(index))
		if depth >= s.levels {
			depth = s.levels - 1
		}

		for l := 0; l <= depth; l++ {
			rep.cells[l].Feed(index, sign)
		}
	}
}

// Sample returns a surviving coordinate and its net weight. ok is false if
// no coordinate survives, or (with probability at most delta) if every
// subsampling level failed to isolate a single survivor. Sample does not
// consume the sketch.
func (s *L0Sampler) Sample() (index uint64, weight int64, ok bool) {
	for _, rep := range s.reps {
		for _, cell := range rep.cells {
			res := cell.Outcome()
			if res.Outcome == OutcomeOneSparse {
				return res.Index, res.Weight, true
			}
		}
	}

	return 0, 0, false
}

// Recover returns a surviving coordinate as Sample does, failing with
// ErrInsufficientData when no subsampling level isolated one.
func (s *L0Sampler) Recover() (uint64, int64, error) {
	index, weight, ok := s.Sample()
	if !ok {
		return 0, 0, fmt.Errorf("%w: no subsampling level isolated a coordinate", ErrInsufficientData)
	}

	return index, weight, nil
}

// Merge adds other into s. Both sketches must share seed, universe, and
// shape; otherwise the merge is rejected with ErrIncompatibleMerge.
func (s *L0Sampler) Merge(other *L0Sampler) error {
	if s.seed != other.seed || s.n != other.n || s.levels != other.levels || len(s.reps) != len(other.reps) {
		return incompatible("l0 samplers differ in seed or shape")
	}

	for i := range s.reps {
		for l := range s.reps[i].cells {
			if err := s.reps[i].cells[l].Merge(other.reps[i].cells[l]); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *L0Sampler) clone() *L0Sampler {
	c := *s

	c.reps = make([]l0rep, len(s.reps))
	for i, rep := range s.reps {
		cells := make([]*OneSparse, len(rep.cells))
		for l, cell := range rep.cells {
			cells[l] = cell.clone()
		}

		c.reps[i] = l0rep{hash: rep.hash, cells: cells}
	}

	return &c
}
