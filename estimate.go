package graphstreams

import (
	"context"
	"fmt"
	"math"
	"math/rand"
)

// A TriangleEstimator estimates the number of triangles in an insert-only
// edge stream from a fixed-size uniform edge sample. Each arriving edge is
// reservoir-sampled; a running counter tracks the triangles closed inside
// the sample and is scaled by the inverse probability that all three edges
// of a triangle are sampled together, which makes the estimate unbiased.
// While the stream still fits the sample the count is exact.
type TriangleEstimator struct {
	k    int
	seed uint64
	rng  *rand.Rand
	seen uint64

	sample []Edge

	// neighbors[v][w] is the multiplicity of the sampled edge (v,w); the
	// sample is a multiset, so parallel copies must not share one entry.
	neighbors map[Vertex]map[Vertex]int64
	closed    int64
}

// NewTriangleEstimator returns a triangle estimator sampling at most k
// edges. k must be at least 3, the size of the structure being counted.
func NewTriangleEstimator(k int, seed uint64) (*TriangleEstimator, error) {
	if k < 3 {
		return nil, fmt.Errorf("sample size %d is below 3", k)
	}

	return &TriangleEstimator{
		k:         k,
		seed:      seed,
		rng:       rand.New(rand.NewSource(int64(seed))),
		neighbors: map[Vertex]map[Vertex]int64{},
	}, nil
}

// Update applies one insertion. Deletions are rejected with an
// *InputError.
func (t *TriangleEstimator) Update(upd Update) error {
	if upd.Sign == Delete {
		return &InputError{Update: upd, Reason: "triangle estimation requires an insert-only stream"}
	}

	t.seen++

	if len(t.sample) < t.k {
		t.admit(upd.Edge)
		return nil
	}

	if t.rng.Float64() >= float64(t.k)/float64(t.seen) {
		return nil
	}

	evicted := t.rng.Intn(len(t.sample))
	t.evict(evicted)
	t.admit(upd.Edge)

	return nil
}

func (t *TriangleEstimator) admit(edge Edge) {
	t.closed += t.sharedWedges(edge)

	t.sample = append(t.sample, edge)
	t.link(edge.U, edge.V, 1)
	t.link(edge.V, edge.U, 1)
}

// evict removes one sampled copy of the edge at index i; wedges counted on
// admission against the remaining sample stay counted.
func (t *TriangleEstimator) evict(i int) {
	edge := t.sample[i]

	t.sample[i] = t.sample[len(t.sample)-1]
	t.sample = t.sample[:len(t.sample)-1]
	t.link(edge.U, edge.V, -1)
	t.link(edge.V, edge.U, -1)

	t.closed -= t.sharedWedges(edge)
}

func (t *TriangleEstimator) link(v, w Vertex, delta int64) {
	adj, ok := t.neighbors[v]
	if !ok {
		adj = map[Vertex]int64{}
		t.neighbors[v] = adj
	}

	adj[w] += delta
	if adj[w] == 0 {
		delete(adj, w)
	}
}

// sharedWedges counts the sampled wedges the given edge would close, each
// weighted by the multiplicities of its two arms.
func (t *TriangleEstimator) sharedWedges(edge Edge) int64 {
	u, v := t.neighbors[edge.U], t.neighbors[edge.V]
	if len(u) > len(v) {
		u, v = v, u
	}

	shared := int64(0)
	for w := range u {
		shared += u[w] * v[w]
	}

	return shared
}

// Consume feeds every update produced by prod into the estimator, in
// stream order, stopping at the first rejected update.
func (t *TriangleEstimator) Consume(ctx context.Context, prod ProducerFunc[Update]) error {
	return Each(ctx, prod, func(_ context.Context, cancel context.CancelCauseFunc, upd Update, _ uint64) {
		if err := t.Update(upd); err != nil {
			cancel(err)
		}
	})
}

// scale is the inverse probability that three fixed edges are all in the
// sample after seen arrivals.
func (t *TriangleEstimator) scale() float64 {
	seen, k := float64(t.seen), float64(t.k)

	scale := (seen / k) * ((seen - 1) / (k - 1)) * ((seen - 2) / (k - 2))
	if scale < 1 {
		return 1
	}

	return scale
}

// Estimate returns the current triangle-count estimate. It is unbiased,
// and exact while the stream fits the sample.
func (t *TriangleEstimator) Estimate() float64 {
	return float64(t.closed) * t.scale()
}

// Seen returns the number of edges offered so far.
func (t *TriangleEstimator) Seen() uint64 {
	return t.seen
}

// Result wraps the estimate. While the stream fits the sample the result
// is exact; afterwards the error bound is a coarse dispersion proxy that
// grows with the subsampling rate.
func (t *TriangleEstimator) Result() Result {
	if t.seen <= uint64(t.k) {
		return ExactResult(float64(t.closed))
	}

	return EstimateResult(t.Estimate(), math.Sqrt(t.scale()/float64(t.k)))
}

// A DegreeEstimator estimates per-vertex degrees of an insert-only edge
// stream from a uniform edge sample: a vertex incident to c of the k
// sampled edges out of m seen has estimated degree c·m/k.
type DegreeEstimator struct {
	reservoir *Reservoir[Edge]
}

// NewDegreeEstimator returns a degree estimator sampling at most k edges.
func NewDegreeEstimator(k int, seed uint64) (*DegreeEstimator, error) {
	reservoir, err := NewReservoir[Edge](k, seed)
	if err != nil {
		return nil, err
	}

	return &DegreeEstimator{reservoir: reservoir}, nil
}

// Update applies one insertion. Deletions are rejected with an
// *InputError.
func (d *DegreeEstimator) Update(upd Update) error {
	if upd.Sign == Delete {
		return &InputError{Update: upd, Reason: "degree estimation requires an insert-only stream"}
	}

	d.reservoir.Add(upd.Edge)

	return nil
}

// Consume feeds every update produced by prod into the estimator, in
// stream order, stopping at the first rejected update.
func (d *DegreeEstimator) Consume(ctx context.Context, prod ProducerFunc[Update]) error {
	return Each(ctx, prod, func(_ context.Context, cancel context.CancelCauseFunc, upd Update, _ uint64) {
		if err := d.Update(upd); err != nil {
			cancel(err)
		}
	})
}

// Seen returns the number of edges offered so far.
func (d *DegreeEstimator) Seen() uint64 {
	return d.reservoir.Seen()
}

// Degree estimates the degree of v. The estimate is unbiased, and exact
// while the stream fits the sample.
func (d *DegreeEstimator) Degree(v Vertex) Result {
	incident := 0
	for _, edge := range d.reservoir.Sample() {
		if edge.Incident(v) {
			incident++
		}
	}

	seen, k := d.reservoir.Seen(), uint64(d.reservoir.k)
	if seen <= k {
		return ExactResult(float64(incident))
	}

	return EstimateResult(float64(incident)*float64(seen)/float64(k), 1/math.Sqrt(float64(k)))
}
