package graphstreams

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"golang.org/x/exp/slices"
)

type sampleEntry[T any] struct {
	item T
	pri  float64
}

// A Reservoir maintains a uniform sample without replacement of at most k
// items from a stream of unknown length. Every item is tagged with a
// random priority and the k lowest-priority items are kept, so each seen
// item ends up in the sample with probability k/seen, and two reservoirs
// built with independent seeds merge by keeping the k lowest tags of
// their union.
type Reservoir[T any] struct {
	k    int
	seed uint64
	rng  *rand.Rand
	seen uint64

	// entries sorted ascending by priority.
	entries []sampleEntry[T]
}

// NewReservoir returns a reservoir holding at most k items.
func NewReservoir[T any](k int, seed uint64) (*Reservoir[T], error) {
	if k <= 0 {
		return nil, fmt.Errorf("sample size %d is not positive", k)
	}

	return &Reservoir[T]{
		k:    k,
		seed: seed,
		rng:  rand.New(rand.NewSource(int64(seed))),
	}, nil
}

// Add offers one item to the sample.
func (r *Reservoir[T]) Add(item T) {
	r.seen++
	r.insert(sampleEntry[T]{item: item, pri: r.rng.Float64()})
}

func (r *Reservoir[T]) insert(entry sampleEntry[T]) {
	if len(r.entries) == r.k && entry.pri >= r.entries[r.k-1].pri {
		return
	}

	i := sort.Search(len(r.entries), func(i int) bool {
		return r.entries[i].pri > entry.pri
	})

	r.entries = slices.Insert(r.entries, i, entry)
	if len(r.entries) > r.k {
		r.entries = r.entries[:r.k]
	}
}

// Seen returns the number of items offered so far.
func (r *Reservoir[T]) Seen() uint64 {
	return r.seen
}

// Sample returns the current sample, in undefined order.
func (r *Reservoir[T]) Sample() []T {
	sample := make([]T, len(r.entries))
	for i, entry := range r.entries {
		sample[i] = entry.item
	}

	return sample
}

// Merge adds other into r. The reservoirs must have equal sample sizes and
// must have been built with independent seeds; merging two reservoirs that
// tagged their items with the same random sequence biases the sample.
func (r *Reservoir[T]) Merge(other *Reservoir[T]) error {
	if r.k != other.k {
		return incompatible("reservoirs differ in sample size: %d and %d", r.k, other.k)
	}
	if r.seed == other.seed {
		return incompatible("reservoirs share seed %d", r.seed)
	}

	r.seen += other.seen
	for _, entry := range other.entries {
		r.insert(entry)
	}

	return nil
}

// SampleEdges processes an insert-only stream in a single pass and returns
// a uniform sample of at most k of its edges. Deletions are rejected with
// an *InputError.
func SampleEdges(ctx context.Context, stream EdgeStream, k int, seed uint64) (*Reservoir[Edge], error) {
	reservoir, err := NewReservoir[Edge](k, seed)
	if err != nil {
		return nil, err
	}

	err = Each(ctx, stream.Producer(), func(_ context.Context, cancel context.CancelCauseFunc, upd Update, _ uint64) {
		if upd.Sign == Delete {
			cancel(&InputError{Update: upd, Reason: "edge sampling requires an insert-only stream"})
			return
		}

		reservoir.Add(upd.Edge)
	})
	if err != nil {
		return nil, err
	}

	return reservoir, nil
}

type weightedEntry[T any] struct {
	item   T
	weight float64
	pri    float64
}

// A PrioritySampler maintains a weighted sample of at most k items, from
// which subset sums can be estimated without bias. Each item of weight w
// receives priority w/u for a uniform u in (0, 1], and the sampler keeps
// the k+1 largest priorities; the (k+1)-th serves as the estimation
// threshold. Samplers built with independent seeds merge by keeping the
// k+1 largest priorities of their union.
type PrioritySampler[T any] struct {
	k    int
	seed uint64
	rng  *rand.Rand
	seen uint64

	// entries sorted descending by priority, at most k+1 of them.
	entries []weightedEntry[T]
}

// NewPrioritySampler returns a priority sampler holding at most k items.
func NewPrioritySampler[T any](k int, seed uint64) (*PrioritySampler[T], error) {
	if k <= 0 {
		return nil, fmt.Errorf("sample size %d is not positive", k)
	}

	return &PrioritySampler[T]{
		k:    k,
		seed: seed,
		rng:  rand.New(rand.NewSource(int64(seed))),
	}, nil
}

// Add offers one item with a positive weight.
func (p *PrioritySampler[T]) Add(item T, weight float64) {
	if weight <= 0 {
		return
	}

	p.seen++

	u := 1 - p.rng.Float64()
	p.insert(weightedEntry[T]{item: item, weight: weight, pri: weight / u})
}

func (p *PrioritySampler[T]) insert(entry weightedEntry[T]) {
	if len(p.entries) == p.k+1 && entry.pri <= p.entries[p.k].pri {
		return
	}

	i := sort.Search(len(p.entries), func(i int) bool {
		return p.entries[i].pri < entry.pri
	})

	p.entries = slices.Insert(p.entries, i, entry)
	if len(p.entries) > p.k+1 {
		p.entries = p.entries[:p.k+1]
	}
}

// Seen returns the number of items offered so far.
func (p *PrioritySampler[T]) Seen() uint64 {
	return p.seen
}

// Sample returns the k sampled items, highest priority first.
func (p *PrioritySampler[T]) Sample() []T {
	n := len(p.entries)
	if n > p.k {
		n = p.k
	}

	sample := make([]T, n)
	for i := range sample {
		sample[i] = p.entries[i].item
	}

	return sample
}

// EstimateSubset estimates the total weight of all seen items matching
// pred. The estimate is unbiased, and exact while fewer than k+1 items
// have been offered.
func (p *PrioritySampler[T]) EstimateSubset(pred func(item T) bool) float64 {
	if len(p.entries) <= p.k {
		total := 0.0
		for _, entry := range p.entries {
			if pred(entry.item) {
				total += entry.weight
			}
		}

		return total
	}

	threshold := p.entries[p.k].pri

	total := 0.0
	for _, entry := range p.entries[:p.k] {
		if !pred(entry.item) {
			continue
		}

		if entry.weight > threshold {
			total += entry.weight
		} else {
			total += threshold
		}
	}

	return total
}

// EstimateTotal estimates the total weight of all seen items.
func (p *PrioritySampler[T]) EstimateTotal() float64 {
	return p.EstimateSubset(func(T) bool { return true })
}

// Merge adds other into p. The samplers must have equal sample sizes and
// independent seeds.
func (p *PrioritySampler[T]) Merge(other *PrioritySampler[T]) error {
	if p.k != other.k {
		return incompatible("priority samplers differ in sample size: %d and %d", p.k, other.k)
	}
	if p.seed == other.seed {
		return incompatible("priority samplers share seed %d", p.seed)
	}

	p.seen += other.seen
	for _, entry := range other.entries {
		p.insert(entry)
	}

	return nil
}
