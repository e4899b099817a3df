package graphstreams

import (
	"testing"

	"github.com/matryer/is"
	"golang.org/x/exp/slices"
)

func TestNewEdge_Normalizes(t *testing.T) {
	is := is.New(t)

	is.Equal(NewEdge(3, 1), Edge{U: 1, V: 3})
	is.Equal(NewEdge(1, 3), Edge{U: 1, V: 3})
}

func TestEdgeSlot_RoundTrip(t *testing.T) {
	is := is.New(t)

	const n = 50

	slot := uint64(0)
	for v := Vertex(1); v < n; v++ {
		for u := Vertex(0); u < v; u++ {
			edge := Edge{U: u, V: v}

			is.Equal(edge.Slot(), slot)
			is.Equal(EdgeFromSlot(slot), edge)

			slot++
		}
	}

	is.Equal(slot, MaxSlot(n))
}

func TestSignFlip(t *testing.T) {
	is := is.New(t)

	is.Equal(Insert.Flip(), Delete)
	is.Equal(Delete.Flip(), Insert)
}

func TestIncident(t *testing.T) {
	is := is.New(t)

	edge := NewEdge(2, 7)

	is.True(edge.Incident(2))
	is.True(edge.Incident(7))
	is.True(!edge.Incident(3))
}

func TestLiveEdges(t *testing.T) {
	is := is.New(t)

	live := LiveEdges([]Update{
		InsertEdge(0, 1),
		InsertEdge(1, 2),
		DeleteEdge(0, 1),
		InsertEdge(2, 3),
		InsertEdge(1, 2), // doubled multiplicity stays live
		DeleteEdge(2, 3),
	})

	slices.SortFunc(live, func(a, b Edge) bool {
		return a.Slot() < b.Slot()
	})

	is.Equal(live, []Edge{NewEdge(1, 2)})
}

func TestUpdateString(t *testing.T) {
	is := is.New(t)

	is.Equal(InsertEdge(0, 1).String(), "+(0,1)")
	is.Equal(DeleteEdge(0, 1).String(), "-(0,1)")
}
