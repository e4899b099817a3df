package graphstreams

import (
	"math"
	"math/bits"
	"math/rand"
)

// A Tidemark estimates the number of distinct tokens in a stream using a
// single machine word: it tracks the maximum number of trailing zero bits
// of a seeded hash over all tokens. A set of d distinct tokens pushes the
// mark to about log₂(d), so 2^mark estimates d within a constant factor
// with constant probability. Tidemarks with equal seeds merge by taking
// the larger mark.
type Tidemark struct {
	seed uint64
	mark int
	any  bool
}

// NewTidemark returns an empty tidemark.
func NewTidemark(seed uint64) *Tidemark {
	return &Tidemark{seed: seed}
}

// Add offers one token. Duplicates never raise the mark beyond what the
// first occurrence set.
func (t *Tidemark) Add(token uint64) {
	t.any = true

	zeros := bits.TrailingZeros64(mixHash(t.seed, token))
	if zeros > t.mark {
		t.mark = zeros
	}
}

// AddEdge offers an edge, identified by its slot.
func (t *Tidemark) AddEdge(edge Edge) {
	t.Add(edge.Slot())
}

// Estimate returns the distinct-count estimate, zero for an empty sketch.
func (t *Tidemark) Estimate() float64 {
	if !t.any {
		return 0
	}

	return math.Pow(2, float64(t.mark))
}

// Result wraps the estimate. The bound reflects the constant-factor
// guarantee of a single-word sketch.
func (t *Tidemark) Result() Result {
	return EstimateResult(t.Estimate(), 1)
}

// Merge adds other into t. Both tidemarks must share a seed, since marks
// under different hashes are not comparable.
func (t *Tidemark) Merge(other *Tidemark) error {
	if t.seed != other.seed {
		return incompatible("tidemarks differ in seed: %d and %d", t.seed, other.seed)
	}

	t.any = t.any || other.any
	if other.mark > t.mark {
		t.mark = other.mark
	}

	return nil
}

// A MorrisCounter counts approximately using log log space: it stores only
// an exponent and increments it with probability 2^-exponent, so the
// expected estimate 2^exponent - 1 equals the true count.
type MorrisCounter struct {
	seed     uint64
	rng      *rand.Rand
	exponent int
}

// NewMorrisCounter returns a counter at zero.
func NewMorrisCounter(seed uint64) *MorrisCounter {
	return &MorrisCounter{
		seed: seed,
		rng:  rand.New(rand.NewSource(int64(seed))),
	}
}

// Increment counts one event.
func (m *MorrisCounter) Increment() {
	if m.exponent >= 63 {
		return
	}

	if m.rng.Float64() < 1/float64(uint64(1)<<m.exponent) {
		m.exponent++
	}
}

// Estimate returns the unbiased count estimate 2^exponent - 1.
func (m *MorrisCounter) Estimate() float64 {
	return float64(uint64(1)<<m.exponent) - 1
}

// Result wraps the estimate.
func (m *MorrisCounter) Result() Result {
	return EstimateResult(m.Estimate(), 1)
}
