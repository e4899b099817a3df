package graphstreams

import (
	"context"
)

// An EdgeStream is a producer of edge updates over a declared vertex
// universe. Every update passing through the stream is validated against
// the universe: self-loops and out-of-range vertex identifiers cancel the
// stream with an *InputError instead of being dropped silently.
//
// The stream is lazy and forward-only. Whether it supports more than one
// traversal depends on the underlying producer: slice-backed producers
// (Produce) replay, channel-backed producers (ProduceChannel) are
// single-pass and panic on re-traversal.
type EdgeStream struct {
	vertexCount uint32
	prod        ProducerFunc[Update]
}

// NewEdgeStream returns an edge stream over a universe of vertexCount
// vertices, drawing updates from prod.
func NewEdgeStream(vertexCount uint32, prod ProducerFunc[Update]) EdgeStream {
	return EdgeStream{
		vertexCount: vertexCount,
		prod:        ValidateUpdates(prod, vertexCount),
	}
}

// StreamOf returns an edge stream over the given updates. The stream
// replays from the beginning on every traversal.
func StreamOf(vertexCount uint32, updates ...Update) EdgeStream {
	return NewEdgeStream(vertexCount, Produce(updates))
}

// VertexCount returns the size of the vertex universe, fixed at stream
// construction.
func (s EdgeStream) VertexCount() uint32 {
	return s.vertexCount
}

// Producer returns the validated update producer.
func (s EdgeStream) Producer() ProducerFunc[Update] {
	return s.prod
}

// Inserts returns a view of the stream restricted to insert updates. The
// view shares the receiver's universe and traversal semantics; it is the
// usual way to feed a turnstile stream into insert-only accumulators.
func (s EdgeStream) Inserts() EdgeStream {
	return EdgeStream{
		vertexCount: s.vertexCount,
		prod: Filter(s.prod, FuncPredicate(func(upd Update) bool {
			return upd.Sign == Insert
		})),
	}
}

// Incident returns a view of the stream restricted to updates touching v.
func (s EdgeStream) Incident(v Vertex) EdgeStream {
	return EdgeStream{
		vertexCount: s.vertexCount,
		prod: Filter(s.prod, FuncPredicate(func(upd Update) bool {
			return upd.Edge.Incident(v)
		})),
	}
}

// Prefix returns a view of the first max updates of the stream, which is
// how time-bounded queries replay the history up to a cutoff.
func (s EdgeStream) Prefix(max uint64) EdgeStream {
	return EdgeStream{
		vertexCount: s.vertexCount,
		prod:        Limit(s.prod, max),
	}
}

// InsertOnly reports whether the stream carries no deletions. It traverses
// the stream and stops at the first deletion found.
func (s EdgeStream) InsertOnly(ctx context.Context) (bool, error) {
	return AllMatch(ctx, s.prod, FuncPredicate(func(upd Update) bool {
		return upd.Sign == Insert
	}))
}

// Concat returns a stream producing the updates of the given streams one
// after another, over the union of their universes.
func Concat(streams ...EdgeStream) EdgeStream {
	var n uint32
	producers := make([]ProducerFunc[Update], len(streams))
	for i, s := range streams {
		if s.vertexCount > n {
			n = s.vertexCount
		}

		producers[i] = s.prod
	}

	return EdgeStream{vertexCount: n, prod: Join(producers...)}
}

// ValidateUpdates returns a producer that produces the same updates as prod,
// canceling the stream with an *InputError on the first malformed update.
// The malformed update itself is not produced downstream.
func ValidateUpdates(prod ProducerFunc[Update], vertexCount uint32) ProducerFunc[Update] {
	return Peek(prod, func(_ context.Context, cancel context.CancelCauseFunc, upd Update, _ uint64) {
		switch {
		case upd.Edge.U == upd.Edge.V:
			cancel(&InputError{Update: upd, Reason: "self-loop"})

		case uint32(upd.Edge.U) >= vertexCount || uint32(upd.Edge.V) >= vertexCount:
			cancel(&InputError{Update: upd, Reason: "vertex out of range"})
		}
	})
}
