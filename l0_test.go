package graphstreams

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
)

func TestNewL0Sampler_Validation(t *testing.T) {
	is := is.New(t)

	_, err := NewL0Sampler(0, 0.05, 1)
	is.True(err != nil)

	_, err = NewL0Sampler(100, 0, 1)
	is.True(err != nil)
}

func TestL0Sampler_Empty(t *testing.T) {
	is := is.New(t)

	sampler, err := NewL0Sampler(1000, 0.05, 1)
	is.NoErr(err)

	_, _, ok := sampler.Sample()
	is.True(!ok)

	_, _, err = sampler.Recover()
	is.True(errors.Is(err, ErrInsufficientData))
}

func TestL0Sampler_SingleSurvivor(t *testing.T) {
	is := is.New(t)

	sampler, err := NewL0Sampler(1000, 0.05, 1)
	is.NoErr(err)

	sampler.Feed(123, Insert)

	index, weight, ok := sampler.Sample()

	is.True(ok)
	is.Equal(index, uint64(123))
	is.Equal(weight, int64(1))
}

func TestL0Sampler_SurvivorAmongNoise(t *testing.T) {
	sampled := 0
	const trials = 100

	for seed := uint64(0); seed < trials; seed++ {
		sampler, err := NewL0Sampler(1000, 0.05, seed)
		assert.NoError(t, err)

		// insert plenty of noise, then cancel everything but one coordinate
		for i := uint64(0); i < 500; i++ {
			sampler.Feed(i, Insert)
		}
		for i := uint64(0); i < 500; i++ {
			if i != 77 {
				sampler.Feed(i, Delete)
			}
		}

		index, weight, ok := sampler.Sample()
		if ok && index == 77 && weight == 1 {
			sampled++
		}
	}

	// per-seed failure probability is at most delta = 0.05
	assert.GreaterOrEqual(t, sampled, 85)
}

func TestL0Sampler_SamplesAcrossSupport(t *testing.T) {
	// with many survivors the sampler must still return some member of the
	// support, and across seeds it should not fixate on a single one
	seen := map[uint64]bool{}
	answered := 0
	const trials = 100

	for seed := uint64(0); seed < trials; seed++ {
		sampler, err := NewL0Sampler(1000, 0.05, seed)
		assert.NoError(t, err)

		for i := uint64(0); i < 64; i++ {
			sampler.Feed(i*3, Insert)
		}

		index, weight, ok := sampler.Sample()
		if !ok {
			continue
		}

		answered++

		assert.Equal(t, uint64(0), index%3)
		assert.Less(t, index, uint64(192))
		assert.Equal(t, int64(1), weight)

		seen[index] = true
	}

	assert.GreaterOrEqual(t, answered, 75)
	assert.GreaterOrEqual(t, len(seen), 8)
}

func TestL0Sampler_Merge(t *testing.T) {
	is := is.New(t)

	full, err := NewL0Sampler(1000, 0.05, 5)
	is.NoErr(err)

	left, err := NewL0Sampler(1000, 0.05, 5)
	is.NoErr(err)

	right, err := NewL0Sampler(1000, 0.05, 5)
	is.NoErr(err)

	for i := uint64(0); i < 100; i++ {
		full.Feed(i, Insert)

		if i < 50 {
			left.Feed(i, Insert)
		} else {
			right.Feed(i, Insert)
		}
	}

	is.NoErr(left.Merge(right))
	is.Equal(*left, *full)
}

func TestL0Sampler_MergeIncompatible(t *testing.T) {
	is := is.New(t)

	a, err := NewL0Sampler(1000, 0.05, 1)
	is.NoErr(err)

	b, err := NewL0Sampler(1000, 0.05, 2)
	is.NoErr(err)

	is.True(errors.Is(a.Merge(b), ErrIncompatibleMerge))
}
