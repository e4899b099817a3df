package graphstreams

import (
	"math/rand"

	"golang.org/x/exp/slices"
)

// BernoulliGraphUpdates returns the insert updates of a G(n, p) random
// graph: each of the n(n-1)/2 possible edges is present independently with
// probability p. Updates are ordered by slot.
func BernoulliGraphUpdates(n uint32, p float64, seed uint64) []Update {
	rng := rand.New(rand.NewSource(int64(seed)))

	var updates []Update
	for v := Vertex(1); v < Vertex(n); v++ {
		for u := Vertex(0); u < v; u++ {
			if rng.Float64() < p {
				updates = append(updates, InsertEdge(u, v))
			}
		}
	}

	return updates
}

// BernoulliGraphStream returns an edge stream over a fresh G(n, p) sample.
func BernoulliGraphStream(n uint32, p float64, seed uint64) EdgeStream {
	return StreamOf(n, BernoulliGraphUpdates(n, p, seed)...)
}

// UniformGraphUpdates returns the insert updates of a uniform random graph
// with min(m, n(n-1)/2) distinct edges.
func UniformGraphUpdates(n uint32, m int, seed uint64) []Update {
	rng := rand.New(rand.NewSource(int64(seed)))

	total := MaxSlot(n)
	if uint64(m) > total {
		m = int(total)
	}

	chosen := map[uint64]bool{}
	updates := make([]Update, 0, m)
	for len(updates) < m {
		slot := uint64(rng.Int63n(int64(total)))
		if chosen[slot] {
			continue
		}

		chosen[slot] = true
		updates = append(updates, Update{Edge: EdgeFromSlot(slot), Sign: Insert})
	}

	return updates
}

// UniformGraphStream returns an edge stream over a fresh uniform random
// graph with m edges.
func UniformGraphStream(n uint32, m int, seed uint64) EdgeStream {
	return StreamOf(n, UniformGraphUpdates(n, m, seed)...)
}

// WithNoise splices churn insert/delete pairs of random edges outside the
// live edge set into a copy of updates, each pair inserting before it
// deletes. The net graph is unchanged, which makes noisy streams useful
// for exercising turnstile cancellation.
func WithNoise(n uint32, updates []Update, churn int, seed uint64) []Update {
	rng := rand.New(rand.NewSource(int64(seed)))

	live := map[Edge]bool{}
	for _, edge := range LiveEdges(updates) {
		live[edge] = true
	}

	total := MaxSlot(n)
	if total == 0 {
		return slices.Clone(updates)
	}

	noisy := slices.Clone(updates)
	for i := 0; i < churn && uint64(len(live)) < total; i++ {
		var edge Edge
		for {
			edge = EdgeFromSlot(uint64(rng.Int63n(int64(total))))
			if !live[edge] {
				break
			}
		}

		at := rng.Intn(len(noisy) + 1)
		noisy = slices.Insert(noisy, at, InsertEdge(edge.U, edge.V))

		after := at + 1 + rng.Intn(len(noisy)-at)
		noisy = slices.Insert(noisy, after, DeleteEdge(edge.U, edge.V))
	}

	return noisy
}

// WithCopies returns a copy of updates with every update repeated the
// given number of times, turning the stream into a multigraph stream with
// uniform multiplicities.
func WithCopies(updates []Update, copies int) []Update {
	if copies < 1 {
		copies = 1
	}

	repeated := make([]Update, 0, copies*len(updates))
	for _, upd := range updates {
		for i := 0; i < copies; i++ {
			repeated = append(repeated, upd)
		}
	}

	return repeated
}

// ShuffleUpdates returns a randomly reordered copy of updates.
func ShuffleUpdates(updates []Update, seed uint64) []Update {
	rng := rand.New(rand.NewSource(int64(seed)))

	shuffled := slices.Clone(updates)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled
}
