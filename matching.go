package graphstreams

import (
	"context"
	"fmt"
)

// A MatchingSketch maintains a maximal matching of an insert-only edge
// stream under a fixed space budget. An arriving edge is matched greedily
// when both endpoints are still free, which makes the final matching
// maximal, so its size is at least half the maximum matching size.
//
// The sketch is insert-only and not mergeable: a greedy matching depends on
// arrival order, so two partial matchings cannot be combined without the
// underlying edges.
type MatchingSketch struct {
	n        uint32
	capacity int

	partner map[Vertex]Vertex
	edges   []Edge

	failed error
}

// NewMatchingSketch returns a matching sketch over a universe of n
// vertices that retains at most capacity matched edges. Exceeding the
// capacity poisons the sketch with ErrCapacity.
func NewMatchingSketch(n uint32, capacity int) (*MatchingSketch, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity %d is not positive", capacity)
	}

	return &MatchingSketch{
		n:        n,
		capacity: capacity,
		partner:  map[Vertex]Vertex{},
	}, nil
}

// VertexCount returns the size of the vertex universe.
func (m *MatchingSketch) VertexCount() uint32 {
	return m.n
}

// Update applies one insertion. Deletions are rejected with an
// *InputError. Once the capacity has been exceeded, the sketch stays
// poisoned and every further update reports ErrCapacity.
func (m *MatchingSketch) Update(upd Update) error {
	if m.failed != nil {
		return m.failed
	}

	if upd.Sign == Delete {
		return &InputError{Update: upd, Reason: "matching requires an insert-only stream"}
	}

	if _, ok := m.partner[upd.Edge.U]; ok {
		return nil
	}
	if _, ok := m.partner[upd.Edge.V]; ok {
		return nil
	}

	if len(m.edges) == m.capacity {
		m.failed = ErrCapacity
		return m.failed
	}

	m.partner[upd.Edge.U] = upd.Edge.V
	m.partner[upd.Edge.V] = upd.Edge.U
	m.edges = append(m.edges, upd.Edge)

	return nil
}

// Consume feeds every update produced by prod into the sketch, in stream
// order, stopping at the first rejected update.
func (m *MatchingSketch) Consume(ctx context.Context, prod ProducerFunc[Update]) error {
	return Each(ctx, prod, func(_ context.Context, cancel context.CancelCauseFunc, upd Update, _ uint64) {
		if err := m.Update(upd); err != nil {
			cancel(err)
		}
	})
}

// Size returns the number of matched edges.
func (m *MatchingSketch) Size() int {
	return len(m.edges)
}

// Edges returns the matched edges in matching order.
func (m *MatchingSketch) Edges() []Edge {
	return m.edges
}

// Matched returns the matching partner of v, if any.
func (m *MatchingSketch) Matched(v Vertex) (Vertex, bool) {
	partner, ok := m.partner[v]
	return partner, ok
}

// Result returns the matching size as an estimate of the maximum matching
// size. The true maximum lies between Size and twice Size, so the estimate
// carries a relative error bound of one.
func (m *MatchingSketch) Result() Result {
	return EstimateResult(float64(len(m.edges)), 1)
}

// MatchingSize processes an insert-only stream in a single pass and
// returns the size of a maximal matching, a 2-approximation of the maximum
// matching size. The capacity bounds retained matching size as in
// NewMatchingSketch.
func MatchingSize(ctx context.Context, stream EdgeStream, capacity int) (int, error) {
	sketch, err := NewMatchingSketch(stream.VertexCount(), capacity)
	if err != nil {
		return 0, err
	}

	if err := sketch.Consume(ctx, stream.Producer()); err != nil {
		return 0, err
	}

	return sketch.Size(), nil
}
