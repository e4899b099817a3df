package graphstreams

import (
	"context"
	"math/bits"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// forestSampleError is the per-sample failure probability of the L0
// samplers inside a forest sketch. The contraction query retries failed
// components on later rounds, so the overall forest is correct with
// probability 1 - 1/poly(n).
const forestSampleError = 0.01

// A ForestSketch compresses an edge stream into O(n polylog n) space, from
// which a spanning forest of the net graph can be reconstructed. Each
// vertex holds one L0 sampler per contraction round over the edge-slot
// space, fed with signed coordinates: an update for edge (u,v) with u < v
// adds +1 to u's samplers and -1 to v's. Summing the samplers of a vertex
// set therefore cancels internal edges and leaves exactly the cut, which is
// what lets the query contract components round by round.
//
// All vertex samplers of one round share one seed; that is what makes the
// per-component sums valid sketches, and what Merge checks before
// combining two instances.
type ForestSketch struct {
	n      uint32
	rounds int
	seed   uint64

	// sketches[round][vertex]
	sketches [][]*L0Sampler
}

// A Forest is a reconstructed spanning forest: one edge set spanning every
// connected component of the net graph, plus the component count (isolated
// vertices included).
type Forest struct {
	VertexCount uint32
	Edges       []Edge
	Components  int
}

// NewForestSketch returns a spanning-forest sketch over a universe of n
// vertices, seeded with the given randomness.
func NewForestSketch(n uint32, seed uint64) (*ForestSketch, error) {
	f := &ForestSketch{n: n, seed: seed}

	if n < 2 {
		// No edge fits in a universe this small; queries answer trivially.
		return f, nil
	}

	// One round of contraction at least halves the number of components,
	// plus slack to absorb occasional sample failures.
	f.rounds = bits.Len32(n) + 2

	domain := MaxSlot(n)

	f.sketches = make([][]*L0Sampler, f.rounds)
	for round := range f.sketches {
		roundSeed := deriveSeed(seed, uint64(round))

		vertexSketches := make([]*L0Sampler, n)
		for v := range vertexSketches {
			sampler, err := NewL0Sampler(domain, forestSampleError, roundSeed)
			if err != nil {
				return nil, err
			}

			vertexSketches[v] = sampler
		}

		f.sketches[round] = vertexSketches
	}

	return f, nil
}

// VertexCount returns the size of the vertex universe.
func (f *ForestSketch) VertexCount() uint32 {
	return f.n
}

// Update applies one edge update. Updates must already be valid for the
// sketch's universe; feed sketches through an EdgeStream to enforce that.
func (f *ForestSketch) Update(upd Update) {
	slot := upd.Edge.Slot()

	for _, vertexSketches := range f.sketches {
		vertexSketches[upd.Edge.U].Feed(slot, upd.Sign)
		vertexSketches[upd.Edge.V].Feed(slot, upd.Sign.Flip())
	}
}

// Consume feeds every update produced by prod into the sketch, in stream
// order. It returns the cause of the stream's cancelation, if any.
func (f *ForestSketch) Consume(ctx context.Context, prod ProducerFunc[Update]) error {
	return Each(ctx, prod, func(_ context.Context, _ context.CancelCauseFunc, upd Update, _ uint64) {
		f.Update(upd)
	})
}

// Query reconstructs a spanning forest by repeated contraction: each round
// sums the samplers of every current component, recovers one surviving cut
// edge per component, and unions the endpoints. Rounds consume independent
// sketch copies, so adaptivity does not bias the samplers. The forest is
// complete with probability 1 - 1/poly(n) over the sketch seed.
//
// Query does not consume the sketch and may be repeated.
func (f *ForestSketch) Query() *Forest {
	uf := newUnionFind(int(f.n))
	edges := []Edge{}

	for round := 0; round < f.rounds && uf.components() > 1; round++ {
		vertexSketches := f.sketches[round]

		// Sum vertex samplers per current component.
		components := map[int32]*L0Sampler{}
		for v := uint32(0); v < f.n; v++ {
			root := uf.find(int32(v))

			sum, ok := components[root]
			if !ok {
				components[root] = vertexSketches[v].clone()
				continue
			}

			// Same round, same seed: merging cannot fail.
			_ = sum.Merge(vertexSketches[v])
		}

		// Deterministic component order keeps repeated queries identical.
		roots := maps.Keys(components)
		slices.Sort(roots)

		progress := false

		for _, root := range roots {
			slot, _, ok := components[root].Sample()
			if !ok {
				continue
			}

			edge := EdgeFromSlot(slot)
			if uint32(edge.V) >= f.n {
				// A misrecovered coordinate; skip it rather than corrupt the forest.
				continue
			}

			if uf.union(int32(edge.U), int32(edge.V)) {
				edges = append(edges, edge)
				progress = true
			}
		}

		if !progress {
			break
		}
	}

	return &Forest{
		VertexCount: f.n,
		Edges:       edges,
		Components:  uf.components(),
	}
}

// clone returns a deep copy sharing no state with f.
func (f *ForestSketch) clone() *ForestSketch {
	c := &ForestSketch{n: f.n, rounds: f.rounds, seed: f.seed}

	if f.sketches == nil {
		return c
	}

	c.sketches = make([][]*L0Sampler, len(f.sketches))
	for round := range f.sketches {
		c.sketches[round] = make([]*L0Sampler, len(f.sketches[round]))
		for v := range f.sketches[round] {
			c.sketches[round][v] = f.sketches[round][v].clone()
		}
	}

	return c
}

// Merge adds other into f. Both sketches must have been built over the same
// universe with the same seed; otherwise the merge is rejected with
// ErrIncompatibleMerge.
func (f *ForestSketch) Merge(other *ForestSketch) error {
	if f.seed != other.seed || f.n != other.n || f.rounds != other.rounds {
		return incompatible("forest sketches differ in seed or universe")
	}

	for round := range f.sketches {
		for v := range f.sketches[round] {
			if err := f.sketches[round][v].Merge(other.sketches[round][v]); err != nil {
				return err
			}
		}
	}

	return nil
}

// Result wraps the forest as a structure result.
func (f *Forest) Result() Result {
	return StructureResult(f.Edges)
}

// SpanningForest processes the stream in a single pass and reconstructs a
// spanning forest of its net graph.
func SpanningForest(ctx context.Context, stream EdgeStream, seed uint64) (*Forest, error) {
	sketch, err := NewForestSketch(stream.VertexCount(), seed)
	if err != nil {
		return nil, err
	}

	if err := sketch.Consume(ctx, stream.Producer()); err != nil {
		return nil, err
	}

	return sketch.Query(), nil
}

// ConnectedComponents processes the stream in a single pass and returns the
// number of connected components of its net graph, isolated vertices
// included.
func ConnectedComponents(ctx context.Context, stream EdgeStream, seed uint64) (int, error) {
	forest, err := SpanningForest(ctx, stream, seed)
	if err != nil {
		return 0, err
	}

	return forest.Components, nil
}
