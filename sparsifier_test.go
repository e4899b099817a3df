package graphstreams

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slices"
)

func TestNewCutSparsifier_Validation(t *testing.T) {
	is := is.New(t)

	_, err := NewCutSparsifier(SparsifierConfig{VertexCount: 6, Epsilon: 0})
	is.True(err != nil)

	_, err = NewCutSparsifier(SparsifierConfig{VertexCount: 6, Epsilon: 1.5})
	is.True(err != nil)
}

func TestCutSparsifier_SmallCutsExact(t *testing.T) {
	ctx := context.Background()

	cuts := []struct {
		side map[Vertex]bool
		want float64
	}{
		{side: map[Vertex]bool{0: true, 1: true, 2: true}, want: 0},
		{side: map[Vertex]bool{0: true}, want: 2},
		{side: map[Vertex]bool{0: true, 3: true}, want: 4},
	}

	successes := 0
	const trials = 100

	for seed := uint64(0); seed < trials; seed++ {
		sparsifier, err := NewCutSparsifier(SparsifierConfig{VertexCount: 6, Epsilon: 1, Seed: seed})
		assert.NoError(t, err)

		err = sparsifier.Consume(ctx, StreamOf(6, twoTriangles()...).Producer())
		assert.NoError(t, err)

		good := true
		for _, cut := range cuts {
			result := sparsifier.ApproxCut(cut.side)
			if result.Kind() != ResultExact || result.Value() != cut.want {
				good = false
			}
		}

		if good {
			successes++
		}
	}

	assert.GreaterOrEqual(t, successes, 85)
}

func TestCutSparsifier_CutAtBundleSize(t *testing.T) {
	ctx := context.Background()

	successes := 0
	const trials = 100

	for seed := uint64(0); seed < trials; seed++ {
		sparsifier, err := NewCutSparsifier(SparsifierConfig{VertexCount: 6, Epsilon: 1, Seed: seed})
		assert.NoError(t, err)

		err = sparsifier.Consume(ctx, StreamOf(6, twoTriangles()...).Producer())
		assert.NoError(t, err)

		// the cut around {0,3} severs two edges per triangle, a value of
		// exactly the bundle size; the extra peeled forest keeps it exact
		assert.Equal(t, 4, sparsifier.bundle)

		result := sparsifier.ApproxCut(map[Vertex]bool{0: true, 3: true})
		if result.Kind() == ResultExact && result.Value() == 4.0 {
			successes++
		}
	}

	assert.GreaterOrEqual(t, successes, 85)
}

func TestCutSparsifier_SparsifySparseGraph(t *testing.T) {
	ctx := context.Background()

	want := make([]WeightedEdge, 0, 6)
	for _, edge := range LiveEdges(twoTriangles()) {
		want = append(want, WeightedEdge{Edge: edge, Weight: 1})
	}

	successes := 0
	const trials = 100

	for seed := uint64(0); seed < trials; seed++ {
		sparsifier, err := NewCutSparsifier(SparsifierConfig{VertexCount: 6, Epsilon: 1, Seed: seed})
		assert.NoError(t, err)

		err = sparsifier.Consume(ctx, StreamOf(6, twoTriangles()...).Producer())
		assert.NoError(t, err)

		// a graph this sparse fits the level-zero certificate entirely
		sparsified := sparsifier.Sparsify()
		if assert.ObjectsAreEqual(sortWeighted(want), sparsified) {
			successes++
		}
	}

	assert.GreaterOrEqual(t, successes, 85)
}

func sortWeighted(edges []WeightedEdge) []WeightedEdge {
	sorted := slices.Clone(edges)
	slices.SortFunc(sorted, func(a, b WeightedEdge) bool {
		return a.Edge.Slot() < b.Edge.Slot()
	})

	return sorted
}

func TestCutSparsifier_MergeEqualsSequential(t *testing.T) {
	is := is.New(t)

	cfg := SparsifierConfig{VertexCount: 6, Epsilon: 1, Seed: 42}

	full, err := NewCutSparsifier(cfg)
	is.NoErr(err)

	left, err := NewCutSparsifier(cfg)
	is.NoErr(err)

	right, err := NewCutSparsifier(cfg)
	is.NoErr(err)

	updates := twoTriangles()
	for i, upd := range updates {
		full.Update(upd)

		if i%2 == 0 {
			left.Update(upd)
		} else {
			right.Update(upd)
		}
	}

	is.NoErr(left.Merge(right))

	opts := cmp.Options{
		cmp.AllowUnexported(CutSparsifier{}, ForestSketch{}, L0Sampler{}, l0rep{}, OneSparse{}, PrimeField{}, HashFamily{}),
	}

	is.Equal(cmp.Diff(full, left, opts), "")
}

func TestCutSparsifier_MergeIncompatible(t *testing.T) {
	is := is.New(t)

	a, err := NewCutSparsifier(SparsifierConfig{VertexCount: 6, Epsilon: 1, Seed: 1})
	is.NoErr(err)

	b, err := NewCutSparsifier(SparsifierConfig{VertexCount: 6, Epsilon: 1, Seed: 2})
	is.NoErr(err)

	is.True(errors.Is(a.Merge(b), ErrIncompatibleMerge))
}

func TestCutSparsifier_EmptyStream(t *testing.T) {
	is := is.New(t)

	sparsifier, err := NewCutSparsifier(SparsifierConfig{VertexCount: 6, Epsilon: 1, Seed: 1})
	is.NoErr(err)

	result := sparsifier.ApproxCut(map[Vertex]bool{0: true})

	is.Equal(result.Kind(), ResultExact)
	is.Equal(result.Value(), 0.0)
	is.Equal(len(sparsifier.Sparsify()), 0)
}
