package graphstreams

import (
	"context"
	"sync"
	"sync/atomic"
)

// ProducerFunc starts one traversal of a stream and returns the channel
// its elements arrive on. Producers receive the traversal's context and
// its cancel function, so any stage can stop the stream with a cause.
type ProducerFunc[T any] func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T

// Produce returns a producer backed by the given slices, produced in
// order. Every call replays the slices from the beginning, so slice-backed
// streams support explicit multi-pass algorithms.
func Produce[T any](slices ...[]T) ProducerFunc[T] {
	return func(ctx context.Context, _ context.CancelCauseFunc) <-chan T {
		outCh := make(chan T)

		go func() {
			defer close(outCh)

			for _, slice := range slices {
				for _, elem := range slice {
					select {
					case outCh <- elem:

					case <-ctx.Done():
						return
					}
				}
			}
		}()

		return outCh
	}
}

// ProduceFunc returns a producer that draws elements by calling next until
// it returns false. next is called anew on every traversal; whether the
// source actually supports replay is the caller's contract.
func ProduceFunc[T any](next func() (T, bool)) ProducerFunc[T] {
	return func(ctx context.Context, _ context.CancelCauseFunc) <-chan T {
		outCh := make(chan T)

		go func() {
			defer close(outCh)

			for {
				elem, ok := next()
				if !ok {
					return
				}

				select {
				case outCh <- elem:

				case <-ctx.Done():
					return
				}
			}
		}()

		return outCh
	}
}

// ProduceChannel returns a producer backed by the given channels, drained
// in order. Channel-backed producers are single-pass: calling the producer
// more than once panics.
func ProduceChannel[T any](channels ...<-chan T) ProducerFunc[T] {
	prod, _ := produceChannel(channels...)
	return prod
}

// produceChannel is ProduceChannel plus a signal channel that closes once
// the producer has drained its inputs; Split waits on it before returning
// control of the source.
func produceChannel[T any](channels ...<-chan T) (ProducerFunc[T], <-chan struct{}) {
	finished := make(chan struct{})

	started := atomic.Bool{}

	return func(ctx context.Context, _ context.CancelCauseFunc) <-chan T {
		if started.Swap(true) {
			panic("producer called multiple times")
		}

		outCh := make(chan T)

		go func() {
			defer close(finished)

			defer close(outCh)

			for _, ch := range channels {
				for elem := range ch {
					select {
					case outCh <- elem:

					case <-ctx.Done():
						return
					}
				}
			}
		}()

		return outCh
	}, finished
}

// ProduceChannelConcurrent returns a producer backed by the given
// channels, drained concurrently and produced in undefined order.
func ProduceChannelConcurrent[T any](channels ...<-chan T) ProducerFunc[T] {
	return func(ctx context.Context, _ context.CancelCauseFunc) <-chan T {
		outCh := make(chan T)

		grp := sync.WaitGroup{}
		grp.Add(len(channels))

		for _, ch := range channels {
			go func(ch <-chan T) {
				defer grp.Done()

				for elem := range ch {
					select {
					case outCh <- elem:

					case <-ctx.Done():
						return
					}
				}
			}(ch)
		}

		go func() {
			defer close(outCh)

			grp.Wait()
		}()

		return outCh
	}
}

// Split divides the elements of prod between two new producers. The
// division is demand-driven and not guaranteed to be even, which suits
// work-sharing consumers whose sketches merge afterwards.
func Split[T any](ctx context.Context, prod ProducerFunc[T]) (ProducerFunc[T], ProducerFunc[T], context.Context) {
	outCh1 := make(chan T)
	outCh2 := make(chan T)

	prod1, finished1 := produceChannel(outCh1)
	prod2, finished2 := produceChannel(outCh2)

	go func() {
		ctx, cancel := context.WithCancelCause(ctx)
		defer cancel(nil)

		defer func() {
			<-finished1
			<-finished2
		}()

		defer close(outCh1)
		defer close(outCh2)

		for elem := range prod(ctx, cancel) {
			select {
			case outCh1 <- elem:
			case outCh2 <- elem:

			case <-ctx.Done():
				return
			}
		}
	}()

	return prod1, prod2, ctx
}

// Join returns a producer that produces the elements of the given
// producers one after another, in order. Concatenating edge streams is a
// join of their producers.
func Join[T any](producers ...ProducerFunc[T]) ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		channels := make([]<-chan T, len(producers))
		for i, prod := range producers {
			channels[i] = prod(ctx, cancel)
		}

		return ProduceChannel(channels...)(ctx, cancel)
	}
}

// JoinConcurrent returns a producer that interleaves the elements of the
// given producers, consumed concurrently, in undefined order.
func JoinConcurrent[T any](producers ...ProducerFunc[T]) ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		channels := make([]<-chan T, len(producers))
		for i, prod := range producers {
			channels[i] = prod(ctx, cancel)
		}

		return ProduceChannelConcurrent(channels...)(ctx, cancel)
	}
}
