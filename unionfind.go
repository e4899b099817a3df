package graphstreams

// unionFind is an arena-indexed disjoint-set forest over the vertex range
// [0, n), backed by flat integer slices. It drives the contraction step of
// the spanning-forest query.
type unionFind struct {
	parent []int32
	rank   []int8
	count  int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int32, n)
	for i := range parent {
		parent[i] = int32(i)
	}

	return &unionFind{
		parent: parent,
		rank:   make([]int8, n),
		count:  n,
	}
}

func (u *unionFind) find(x int32) int32 {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}

	return x
}

// union joins the sets containing a and b, returning false if they were
// already joined.
func (u *unionFind) union(a, b int32) bool {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return false
	}

	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}

	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}

	u.count--

	return true
}

// components returns the number of disjoint sets.
func (u *unionFind) components() int {
	return u.count
}
