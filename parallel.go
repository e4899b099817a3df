package graphstreams

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Mergeable constrains sketch types that combine by merging in place.
type Mergeable[S any] interface {
	Merge(other S) error
}

// BuildPartitioned consumes prod with the given number of workers, each
// building its own sketch over whichever elements it happens to receive,
// then merges the partial sketches left to right. Workers are not
// guaranteed to receive elements evenly or in any particular order, so the
// pattern is only sound for sketches whose merge is order-invariant; for
// linear sketches built with equal seeds the merged result equals the one
// built sequentially. build receives the partition index, which samplers
// can fold into their seeds to keep partitions independent.
//
// Each sketch is owned by exactly one worker until the workers have
// drained the stream; merging happens strictly after that.
func BuildPartitioned[T any, S Mergeable[S]](ctx context.Context, prod ProducerFunc[T], workers int, build func(part int) (S, error), feed func(sketch S, elem T)) (S, error) {
	var zero S

	if workers <= 0 {
		return zero, fmt.Errorf("worker count %d is not positive", workers)
	}

	sketches := make([]S, workers)
	for part := range sketches {
		sketch, err := build(part)
		if err != nil {
			return zero, err
		}

		sketches[part] = sketch
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	ch := prod(ctx, cancel)

	group := errgroup.Group{}

	for part := 0; part < workers; part++ {
		part := part

		group.Go(func() error {
			for elem := range ch {
				feed(sketches[part], elem)
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return zero, err
	}

	if err := context.Cause(ctx); err != nil && !errors.Is(err, ErrShortCircuit) {
		return zero, err
	}

	merged := sketches[0]
	for _, sketch := range sketches[1:] {
		if err := merged.Merge(sketch); err != nil {
			return zero, err
		}
	}

	return merged, nil
}
