package graphstreams

import (
	"context"
	"fmt"
	"math"
	"math/bits"

	"golang.org/x/exp/slices"
)

// SparsifierConfig parameterizes a cut sparsifier.
type SparsifierConfig struct {
	// VertexCount fixes the vertex universe [0, VertexCount).
	VertexCount uint32

	// Epsilon is the target relative error of cut estimates, in (0, 1].
	Epsilon float64

	// Seed drives all sketch randomness. Sparsifiers merge only when
	// built from identical configs.
	Seed uint64
}

// A CutSparsifier approximates the value of every cut of the net graph
// within a (1±ε) factor, with high probability, in O(n polylog n / ε²)
// space. Edges are subsampled at geometrically decreasing rates by a hash
// on their slot, and each sampling level maintains bundle+1 independently
// seeded forest sketches. Querying peels the forests of a level one by one,
// which yields a connectivity certificate of the level's subgraph: the
// union of the first k peeled forests contains every edge of every cut of
// value at most k. Cuts of value up to the bundle size are therefore read
// exactly off level zero, and larger ones off the first level where the
// sampled cut fits the certificate, scaled back up by the sampling rate.
type CutSparsifier struct {
	n       uint32
	epsilon float64
	seed    uint64
	levels  int
	bundle  int

	levelHash HashFamily

	// forests[level][i], level i holding edges sampled at rate 2^-i.
	forests [][]*ForestSketch

	// skeletons caches the peeled certificates; updates invalidate it.
	skeletons [][]Edge
}

// NewCutSparsifier returns a cut sparsifier for the given config.
func NewCutSparsifier(cfg SparsifierConfig) (*CutSparsifier, error) {
	if cfg.Epsilon <= 0 || cfg.Epsilon > 1 {
		return nil, fmt.Errorf("epsilon %g outside (0, 1]", cfg.Epsilon)
	}

	c := &CutSparsifier{
		n:       cfg.VertexCount,
		epsilon: cfg.Epsilon,
		seed:    cfg.Seed,
	}

	if cfg.VertexCount < 2 {
		return c, nil
	}

	domain := MaxSlot(cfg.VertexCount)

	c.levels = bits.Len64(domain)
	c.bundle = int(math.Ceil(float64(bits.Len32(cfg.VertexCount)+1) / (cfg.Epsilon * cfg.Epsilon)))

	levelHash, err := NewHashFamily(deriveSeed(cfg.Seed, 0), 2, domain)
	if err != nil {
		return nil, err
	}
	c.levelHash = levelHash

	// One forest beyond the bundle size, so that a measured crossing count
	// of exactly bundle is still distinguishable from a clipped larger cut.
	c.forests = make([][]*ForestSketch, c.levels)
	for level := range c.forests {
		c.forests[level] = make([]*ForestSketch, c.bundle+1)
		for i := range c.forests[level] {
			forestSeed := deriveSeed(cfg.Seed, uint64(1+level*(c.bundle+1)+i))

			forest, err := NewForestSketch(cfg.VertexCount, forestSeed)
			if err != nil {
				return nil, err
			}

			c.forests[level][i] = forest
		}
	}

	return c, nil
}

// VertexCount returns the size of the vertex universe.
func (c *CutSparsifier) VertexCount() uint32 {
	return c.n
}

// edgeLevel returns the deepest sampling level that keeps the given slot.
// Level zero keeps everything; each further level keeps half.
func (c *CutSparsifier) edgeLevel(slot uint64) int {
	level := int(c.levelHash.Level(slot))
	if level >= c.levels {
		return c.levels - 1
	}

	return level
}

// Update applies one edge update to every level that samples its edge.
func (c *CutSparsifier) Update(upd Update) {
	if c.levels == 0 {
		return
	}

	c.skeletons = nil

	top := c.edgeLevel(upd.Edge.Slot())
	for level := 0; level <= top; level++ {
		for _, forest := range c.forests[level] {
			forest.Update(upd)
		}
	}
}

// Consume feeds every update produced by prod into the sparsifier, in
// stream order.
func (c *CutSparsifier) Consume(ctx context.Context, prod ProducerFunc[Update]) error {
	return Each(ctx, prod, func(_ context.Context, _ context.CancelCauseFunc, upd Update, _ uint64) {
		c.Update(upd)
	})
}

// certificates peels each level's forest bundle into a connectivity
// certificate of the level's subgraph. Peeling clones the sketches, so the
// sparsifier remains queryable and updatable afterwards.
func (c *CutSparsifier) certificates() [][]Edge {
	if c.skeletons != nil {
		return c.skeletons
	}

	c.skeletons = make([][]Edge, c.levels)
	for level := range c.forests {
		var peeled []Edge
		var deletions []Update

		for _, forest := range c.forests[level] {
			work := forest.clone()
			for _, del := range deletions {
				work.Update(del)
			}

			recovered := work.Query()
			if len(recovered.Edges) == 0 {
				break
			}

			for _, edge := range recovered.Edges {
				peeled = append(peeled, edge)
				deletions = append(deletions, Update{Edge: edge, Sign: Delete})
			}
		}

		c.skeletons[level] = peeled
	}

	return c.skeletons
}

// ApproxCut estimates the number of net edges with exactly one endpoint in
// side. The answer is exact whenever the cut fits entirely inside the
// level-zero certificate, which holds for every cut of value at most the
// bundle size; larger cuts are estimated within (1±ε) with high
// probability from the first sampling level whose sampled cut fits.
func (c *CutSparsifier) ApproxCut(side map[Vertex]bool) Result {
	certs := c.certificates()

	crossing := func(edges []Edge) int {
		count := 0
		for _, edge := range edges {
			if side[edge.U] != side[edge.V] {
				count++
			}
		}

		return count
	}

	for level, cert := range certs {
		count := crossing(cert)
		if count > c.bundle {
			continue
		}

		value := float64(count) * float64(uint64(1)<<level)
		if level == 0 {
			return ExactResult(value)
		}

		return EstimateResult(value, c.epsilon)
	}

	if len(certs) == 0 {
		return ExactResult(0)
	}

	last := len(certs) - 1

	return EstimateResult(float64(crossing(certs[last]))*float64(uint64(1)<<last), c.epsilon)
}

// Sparsify returns a weighted edge set approximating every cut of the net
// graph within (1±ε) with high probability. Each certificate edge appears
// once, weighted by the sampling rate of the shallowest level that
// certified it, so edges dropped from dense regions by subsampling are
// compensated by the survivors' weights.
func (c *CutSparsifier) Sparsify() []WeightedEdge {
	weights := map[Edge]float64{}
	for level, cert := range c.certificates() {
		for _, edge := range cert {
			if _, ok := weights[edge]; !ok {
				weights[edge] = float64(uint64(1) << level)
			}
		}
	}

	sparsified := make([]WeightedEdge, 0, len(weights))
	for edge, weight := range weights {
		sparsified = append(sparsified, WeightedEdge{Edge: edge, Weight: weight})
	}

	slices.SortFunc(sparsified, func(a, b WeightedEdge) bool {
		return a.Edge.Slot() < b.Edge.Slot()
	})

	return sparsified
}

// Merge adds other into c. Both sparsifiers must share config.
func (c *CutSparsifier) Merge(other *CutSparsifier) error {
	if c.seed != other.seed || c.n != other.n || c.epsilon != other.epsilon {
		return incompatible("sparsifiers differ in seed or config")
	}

	c.skeletons = nil

	for level := range c.forests {
		for i := range c.forests[level] {
			if err := c.forests[level][i].Merge(other.forests[level][i]); err != nil {
				return err
			}
		}
	}

	return nil
}
