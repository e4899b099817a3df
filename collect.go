package graphstreams

import "context"

// CollectSlice returns an accumulator that appends every element to a
// slice, preserving stream order. Materializing an update stream this way
// is the starting point for multi-pass algorithms over single-pass
// sources.
func CollectSlice[T any]() AccumulatorFunc[T, []T] {
	return func(_ context.Context, _ context.CancelCauseFunc, elem T, _ uint64, acc []T) []T {
		return append(acc, elem)
	}
}

// CollectGroup returns an accumulator that groups elements into a map of
// slices, keyed by key and holding the value projections. Grouping updates
// by endpoint, for instance, yields incidence lists.
func CollectGroup[T any, K comparable, V any](key MapperFunc[T, K], value MapperFunc[T, V]) AccumulatorFunc[T, map[K][]V] {
	return func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64, acc map[K][]V) map[K][]V {
		key := key(ctx, cancel, elem, index)
		acc[key] = append(acc[key], value(ctx, cancel, elem, index))

		return acc
	}
}
