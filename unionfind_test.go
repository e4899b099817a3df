package graphstreams

import (
	"testing"

	"github.com/matryer/is"
)

func TestUnionFind(t *testing.T) {
	is := is.New(t)

	uf := newUnionFind(6)

	is.Equal(uf.components(), 6)

	is.True(uf.union(0, 1))
	is.True(uf.union(1, 2))
	is.True(!uf.union(0, 2)) // already joined

	is.True(uf.union(3, 4))

	is.Equal(uf.components(), 3)
	is.Equal(uf.find(0), uf.find(2))
	is.True(uf.find(0) != uf.find(3))
	is.True(uf.find(5) != uf.find(0))
	is.True(uf.find(5) != uf.find(3))
}

func TestUnionFind_Empty(t *testing.T) {
	is := is.New(t)

	uf := newUnionFind(0)

	is.Equal(uf.components(), 0)
}
