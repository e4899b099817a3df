package graphstreams

import "context"

// A BipartitenessSketch decides whether the net graph of a stream is
// bipartite. It maintains two forest sketches: one over the graph itself
// and one over its bipartite double cover, where every vertex v splits
// into 2v and 2v+1 and every edge (u,v) becomes (2u,2v+1) and (2u+1,2v).
// The graph is bipartite exactly when the cover has twice as many
// connected components as the graph, because the two copies of an odd
// cycle's component fuse in the cover.
type BipartitenessSketch struct {
	base  *ForestSketch
	cover *ForestSketch
}

// NewBipartitenessSketch returns a bipartiteness sketch over a universe of
// n vertices.
func NewBipartitenessSketch(n uint32, seed uint64) (*BipartitenessSketch, error) {
	base, err := NewForestSketch(n, deriveSeed(seed, 0))
	if err != nil {
		return nil, err
	}

	cover, err := NewForestSketch(2*n, deriveSeed(seed, 1))
	if err != nil {
		return nil, err
	}

	return &BipartitenessSketch{base: base, cover: cover}, nil
}

// VertexCount returns the size of the vertex universe.
func (b *BipartitenessSketch) VertexCount() uint32 {
	return b.base.n
}

// Update applies one edge update to the graph sketch and its two images in
// the double cover.
func (b *BipartitenessSketch) Update(upd Update) {
	b.base.Update(upd)

	for _, cov := range coverUpdates(upd) {
		b.cover.Update(cov)
	}
}

// Consume feeds every update produced by prod into the sketch, in stream
// order.
func (b *BipartitenessSketch) Consume(ctx context.Context, prod ProducerFunc[Update]) error {
	return Each(ctx, prod, func(_ context.Context, _ context.CancelCauseFunc, upd Update, _ uint64) {
		b.Update(upd)
	})
}

// Query reports whether the net graph is bipartite. The answer is correct
// with probability 1 - 1/poly(n) over the sketch seed, and querying does
// not consume the sketch.
func (b *BipartitenessSketch) Query() bool {
	graph, cover := b.Components()
	return cover == 2*graph
}

// Components returns the component counts of the graph and of its double
// cover, the witness behind Query: the graph is bipartite exactly when
// cover == 2*graph.
func (b *BipartitenessSketch) Components() (graph, cover int) {
	return b.base.Query().Components, b.cover.Query().Components
}

// Merge adds other into b. Both sketches must share universe and seed.
func (b *BipartitenessSketch) Merge(other *BipartitenessSketch) error {
	if err := b.base.Merge(other.base); err != nil {
		return err
	}

	return b.cover.Merge(other.cover)
}

// coverUpdates maps an edge update to its two images in the double cover.
func coverUpdates(upd Update) [2]Update {
	u, v := uint32(upd.Edge.U), uint32(upd.Edge.V)

	return [2]Update{
		{Edge: NewEdge(Vertex(2*u), Vertex(2*v+1)), Sign: upd.Sign},
		{Edge: NewEdge(Vertex(2*u+1), Vertex(2*v)), Sign: upd.Sign},
	}
}

// DoubleCover lifts an edge stream to its bipartite double cover, doubling
// the vertex universe and emitting two cover updates per input update.
func DoubleCover(stream EdgeStream) EdgeStream {
	prod := Expand(stream.Producer(), func(_ context.Context, _ context.CancelCauseFunc, upd Update, _ uint64) []Update {
		cov := coverUpdates(upd)
		return cov[:]
	})

	return EdgeStream{vertexCount: 2 * stream.VertexCount(), prod: prod}
}

// IsBipartite processes the stream in a single pass and reports whether its
// net graph is bipartite.
func IsBipartite(ctx context.Context, stream EdgeStream, seed uint64) (bool, error) {
	sketch, err := NewBipartitenessSketch(stream.VertexCount(), seed)
	if err != nil {
		return false, err
	}

	if err := sketch.Consume(ctx, stream.Producer()); err != nil {
		return false, err
	}

	return sketch.Query(), nil
}
