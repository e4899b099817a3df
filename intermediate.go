package graphstreams

import (
	"context"
	"errors"
)

// Function applies a plain transformation to one element, without access
// to the stream's context.
type Function[T any, U any] func(elem T) U

// MapperFunc transforms one stream element into a value of type U. The
// index is the element's 0-based position in the traversal.
type MapperFunc[T any, U any] func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64) U

// PredicateFunc decides whether one stream element matches. The index is
// the element's 0-based position in the traversal.
type PredicateFunc[T any] func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64) bool

// ErrLimitReached is the cancelation cause Limit uses to stop its upstream
// producer once enough elements have passed through. It never escapes to
// the caller.
var ErrLimitReached = errors.New("limit reached")

// FuncMapper lifts a plain function into a mapper.
func FuncMapper[T any, U any](mapp Function[T, U]) MapperFunc[T, U] {
	return func(_ context.Context, _ context.CancelCauseFunc, elem T, _ uint64) U {
		return mapp(elem)
	}
}

// FuncPredicate lifts a plain boolean function into a predicate.
func FuncPredicate[T any](pred func(elem T) bool) PredicateFunc[T] {
	return func(_ context.Context, _ context.CancelCauseFunc, elem T, _ uint64) bool {
		return pred(elem)
	}
}

// Map returns a producer applying mapp to every element of prod, in
// stream order.
func Map[T any, U any](prod ProducerFunc[T], mapp MapperFunc[T, U]) ProducerFunc[U] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan U {
		ch := prod(ctx, cancel)

		outCh := make(chan U)

		go func() {
			defer close(outCh)

			index := uint64(0)

			for elem := range ch {
				outElem := mapp(ctx, cancel, elem, index)

				if contextDone(ctx) {
					return
				}

				select {
				case outCh <- outElem:
					index++

				case <-ctx.Done():
					return
				}
			}
		}()

		return outCh
	}
}

// Expand returns a producer that maps every element of prod to zero or
// more elements of type U, produced in order. Constructions that derive
// several updates from one, such as the bipartite double cover, are
// expansions.
func Expand[T any, U any](prod ProducerFunc[T], mapp MapperFunc[T, []U]) ProducerFunc[U] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan U {
		ch := prod(ctx, cancel)

		outCh := make(chan U)

		go func() {
			defer close(outCh)

			index := uint64(0)

			for elem := range ch {
				outElems := mapp(ctx, cancel, elem, index)

				if contextDone(ctx) {
					return
				}

				index++

				for _, outElem := range outElems {
					select {
					case outCh <- outElem:

					case <-ctx.Done():
						return
					}
				}
			}
		}()

		return outCh
	}
}

// Filter returns a producer passing through only the elements of prod for
// which filter returns true. Element indices seen by the predicate count
// the upstream elements, matching or not.
func Filter[T any](prod ProducerFunc[T], filter PredicateFunc[T]) ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		ch := prod(ctx, cancel)

		outCh := make(chan T)

		go func() {
			defer close(outCh)

			index := uint64(0)

			for elem := range ch {
				filterResult := filter(ctx, cancel, elem, index)

				if contextDone(ctx) {
					return
				}

				index++

				if !filterResult {
					continue
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

// Peek returns a producer passing every element of prod through unchanged
// after calling peek on it. Stream validation hangs off Peek: the consumer
// may cancel with a cause, and the offending element is then not produced
// downstream.
func Peek[T any](prod ProducerFunc[T], peek ConsumerFunc[T]) ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		ch := prod(ctx, cancel)

		outCh := make(chan T)

		go func() {
			defer close(outCh)

			index := uint64(0)

			for elem := range ch {
				peek(ctx, cancel, elem, index)

				if contextDone(ctx) {
					return
				}

				select {
				case outCh <- elem:
					index++

				case <-ctx.Done():
					return
				}
			}
		}()

		return outCh
	}
}

// Limit returns a producer passing through at most max elements of prod,
// in order. The upstream producer is stopped through a nested context once
// the limit is reached, so prefix views do not drain their source.
func Limit[T any](prod ProducerFunc[T], max uint64) ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		prodCtx, cancelProd := context.WithCancelCause(ctx)

		ch := prod(prodCtx, cancel)

		outCh := make(chan T)

		go func() {
			defer cancelProd(nil)

			defer close(outCh)

			if max == 0 {
				cancelProd(ErrLimitReached)
				return
			}

			done := uint64(0)

			for elem := range ch {
				select {
				case outCh <- elem:
					done++
					if done == max {
						cancelProd(ErrLimitReached)
						return
					}

				case <-ctx.Done():
					return
				}
			}
		}()

		return outCh
	}
}

// Identity returns a mapper that passes elements through unchanged.
func Identity[T any]() MapperFunc[T, T] {
	return func(_ context.Context, _ context.CancelCauseFunc, elem T, _ uint64) T {
		return elem
	}
}
