package graphstreams

import (
	"fmt"
	"math"
)

// A Vertex is an identifier drawn from the bounded universe [0, n), where n
// is fixed before the stream begins.
type Vertex uint32

// A Sign tags an edge update as an insertion or a deletion.
type Sign int8

const (
	// Insert adds one copy of an edge.
	Insert Sign = 1

	// Delete removes one copy of an edge.
	Delete Sign = -1
)

// Flip returns the opposite sign.
func (s Sign) Flip() Sign {
	return -s
}

// An Edge is an unordered pair of distinct vertices, stored normalized with
// U < V.
type Edge struct {
	U Vertex
	V Vertex
}

// NewEdge returns the normalized edge between a and b.
func NewEdge(a, b Vertex) Edge {
	if a > b {
		a, b = b, a
	}

	return Edge{U: a, V: b}
}

// Incident returns true if v is an endpoint of e.
func (e Edge) Incident(v Vertex) bool {
	return e.U == v || e.V == v
}

// Slot maps e to its index in the triangular enumeration of unordered
// vertex pairs: slot(u,v) = v(v-1)/2 + u for u < v. Slots give edges a
// one-dimensional coordinate space for sketches over edge sets.
func (e Edge) Slot() uint64 {
	u, v := uint64(e.U), uint64(e.V)
	if e.U > e.V {
		u, v = v, u
	}

	return v*(v-1)/2 + u
}

// EdgeFromSlot inverts Slot.
func EdgeFromSlot(slot uint64) Edge {
	v := uint64(math.Sqrt(2*float64(slot)) + 1)

	for v > 1 && v*(v-1)/2 > slot {
		v--
	}
	for (v+1)*v/2 <= slot {
		v++
	}

	return Edge{U: Vertex(slot - v*(v-1)/2), V: Vertex(v)}
}

// MaxSlot returns the size of the edge-slot space for an n-vertex universe,
// n(n-1)/2.
func MaxSlot(n uint32) uint64 {
	return uint64(n) * uint64(n-1) / 2
}

// String implements fmt.Stringer.
func (e Edge) String() string {
	return fmt.Sprintf("(%d,%d)", e.U, e.V)
}

// An Update is a single edge-stream event: an edge together with an
// insert/delete sign. In insertion-only streams the sign is always Insert.
type Update struct {
	Edge Edge
	Sign Sign
}

// InsertEdge returns an insert update for the edge between a and b.
func InsertEdge(a, b Vertex) Update {
	return Update{Edge: NewEdge(a, b), Sign: Insert}
}

// DeleteEdge returns a delete update for the edge between a and b.
func DeleteEdge(a, b Vertex) Update {
	return Update{Edge: NewEdge(a, b), Sign: Delete}
}

// String implements fmt.Stringer.
func (u Update) String() string {
	op := "+"
	if u.Sign == Delete {
		op = "-"
	}

	return op + u.Edge.String()
}

// A WeightedEdge is an edge with an associated weight, used by the cut
// sparsifier and the weighted samplers.
type WeightedEdge struct {
	Edge   Edge
	Weight float64
}

// LiveEdges returns the set of edges with positive net multiplicity after
// applying all updates, in unspecified order.
func LiveEdges(updates []Update) []Edge {
	mult := map[Edge]int{}
	for _, upd := range updates {
		mult[upd.Edge] += int(upd.Sign)
	}

	live := make([]Edge, 0, len(mult))
	for edge, m := range mult {
		if m > 0 {
			live = append(live, edge)
		}
	}

	return live
}
