package graphstreams

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
)

func TestNewSparseRecovery_Validation(t *testing.T) {
	is := is.New(t)

	_, err := NewSparseRecovery(0, 4, 0.1, 1)
	is.True(err != nil)

	_, err = NewSparseRecovery(100, 0, 0.1, 1)
	is.True(err != nil)

	_, err = NewSparseRecovery(100, 4, 1.5, 1)
	is.True(err != nil)
}

func TestSparseRecovery_Empty(t *testing.T) {
	is := is.New(t)

	sketch, err := NewSparseRecovery(1000, 8, 0.05, 1)
	is.NoErr(err)

	support, ok := sketch.Query()

	is.True(ok)
	is.Equal(len(support), 0)
}

func TestSparseRecovery_AllCanceled(t *testing.T) {
	is := is.New(t)

	sketch, err := NewSparseRecovery(1000, 8, 0.05, 1)
	is.NoErr(err)

	for i := uint64(0); i < 100; i++ {
		sketch.Feed(i, Insert)
	}
	for i := uint64(0); i < 100; i++ {
		sketch.Feed(i, Delete)
	}

	support, ok := sketch.Query()

	is.True(ok)
	is.Equal(len(support), 0)
}

func TestSparseRecovery_RecoversSupport(t *testing.T) {
	want := map[uint64]int64{3: 1, 250: 2, 999: -1}

	recovered := 0
	const trials = 100

	for seed := uint64(0); seed < trials; seed++ {
		sketch, err := NewSparseRecovery(1000, 8, 0.05, seed)
		assert.NoError(t, err)

		sketch.Feed(3, Insert)
		sketch.Feed(250, Insert)
		sketch.Feed(250, Insert)
		sketch.Feed(999, Delete)

		support, ok := sketch.Query()
		if ok && assert.ObjectsAreEqual(want, support) {
			recovered++
		}
	}

	// delta = 0.05 per coordinate; allow generous slack
	assert.GreaterOrEqual(t, recovered, 80)
}

func TestSparseRecovery_TooDense(t *testing.T) {
	rejected := 0
	const trials = 100

	for seed := uint64(0); seed < trials; seed++ {
		sketch, err := NewSparseRecovery(100000, 4, 0.05, seed)
		assert.NoError(t, err)

		// far more survivors than the sketch's sparsity budget
		for i := uint64(0); i < 1000; i++ {
			sketch.Feed(i*97, Insert)
		}

		if _, ok := sketch.Query(); !ok {
			rejected++
		}
	}

	assert.GreaterOrEqual(t, rejected, 90)
}

func TestSparseRecovery_Support_InsufficientData(t *testing.T) {
	is := is.New(t)

	sketch, err := NewSparseRecovery(100000, 4, 0.05, 3)
	is.NoErr(err)

	for i := uint64(0); i < 1000; i++ {
		sketch.Feed(i*97, Insert)
	}

	_, err = sketch.Support()
	if err == nil {
		t.Skip("unlucky seed recovered a dense stream")
	}

	is.True(errors.Is(err, ErrInsufficientData))

	// thinning the stream out makes the query succeed
	for i := uint64(1); i < 1000; i++ {
		sketch.Feed(i*97, Delete)
	}

	support, err := sketch.Support()

	is.NoErr(err)
	is.Equal(support, map[uint64]int64{0: 1})
}

func TestSparseRecovery_Merge(t *testing.T) {
	is := is.New(t)

	full, err := NewSparseRecovery(1000, 8, 0.05, 7)
	is.NoErr(err)

	left, err := NewSparseRecovery(1000, 8, 0.05, 7)
	is.NoErr(err)

	right, err := NewSparseRecovery(1000, 8, 0.05, 7)
	is.NoErr(err)

	updates := []struct {
		index uint64
		sign  Sign
	}{
		{5, Insert}, {17, Insert}, {5, Delete}, {800, Insert}, {17, Insert},
	}

	for i, upd := range updates {
		full.Feed(upd.index, upd.sign)

		if i%2 == 0 {
			left.Feed(upd.index, upd.sign)
		} else {
			right.Feed(upd.index, upd.sign)
		}
	}

	is.NoErr(left.Merge(right))

	wantSupport, wantOK := full.Query()
	gotSupport, gotOK := left.Query()

	is.Equal(gotOK, wantOK)
	is.Equal(gotSupport, wantSupport)
}

func TestSparseRecovery_MergeIncompatible(t *testing.T) {
	is := is.New(t)

	a, err := NewSparseRecovery(1000, 8, 0.05, 1)
	is.NoErr(err)

	b, err := NewSparseRecovery(1000, 8, 0.05, 2)
	is.NoErr(err)

	is.True(errors.Is(a.Merge(b), ErrIncompatibleMerge))
}
