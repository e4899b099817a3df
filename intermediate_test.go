package graphstreams

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/matryer/is"
)

func TestMap(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Produce([]int{1, 2, 3, 4, 5})

	ints = Map(ints, func(_ context.Context, _ context.CancelCauseFunc, elem int, index uint64) int {
		is.Equal(index, uint64(elem-1))

		return elem * 2
	})

	result, _ := Reduce(ctx, ints, nil, CollectSlice[int]())

	is.Equal(result, []int{2, 4, 6, 8, 10})
}

func TestMap_Cancel(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Produce([]int{1, 2, 3, 4, 5})

	ints = Map(ints, func(_ context.Context, cancel context.CancelCauseFunc, elem int, index uint64) int {
		is.True(elem <= 3)
		is.Equal(index, uint64(elem-1))

		if elem == 3 {
			cancel(nil)
			return 0
		}

		return elem * 2
	})

	result, err := Reduce(ctx, ints, nil, CollectSlice[int]())

	is.Equal(result, []int{2, 4})
	is.True(errors.Is(err, context.Canceled))
}

func TestFuncMapper(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	updates := Produce([]Update{InsertEdge(0, 1), InsertEdge(1, 2)})

	slots := Map(updates, FuncMapper(func(upd Update) uint64 {
		return upd.Edge.Slot()
	}))

	result, _ := Reduce(ctx, slots, nil, CollectSlice[uint64]())

	is.Equal(result, []uint64{0, 2})
}

func TestFilter(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	updates := Produce([]Update{InsertEdge(0, 1), DeleteEdge(0, 1), InsertEdge(1, 2)})

	inserts := Filter(updates, FuncPredicate(func(upd Update) bool {
		return upd.Sign == Insert
	}))

	result, _ := Reduce(ctx, inserts, nil, CollectSlice[Update]())

	is.Equal(result, []Update{InsertEdge(0, 1), InsertEdge(1, 2)})
}

func TestFilter_Cancel(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Produce([]int{1, 2, 3, 4, 5})

	evenCancel := func(_ context.Context, cancel context.CancelCauseFunc, elem int, index uint64) bool {
		is.True(elem <= 3)
		is.Equal(index, uint64(elem-1))

		if elem == 3 {
			cancel(nil)
			return false
		}

		return elem%2 == 0
	}

	ints = Filter(ints, evenCancel)

	result, err := Reduce(ctx, ints, nil, CollectSlice[int]())

	is.Equal(result, []int{2})
	is.True(errors.Is(err, context.Canceled))
}

func TestPeek(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Produce([]int{1, 2, 3, 4, 5})

	sum := 0

	ints = Peek(ints, func(_ context.Context, _ context.CancelCauseFunc, elem int, index uint64) {
		is.Equal(index, uint64(elem-1))

		sum += elem
	})

	_, _ = Reduce(ctx, ints, nil, CollectSlice[int]())

	is.Equal(sum, 15)
}

func TestPeek_Cancel(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Produce([]int{1, 2, 3, 4, 5})

	sum := 0

	ints = Peek(ints, func(_ context.Context, cancel context.CancelCauseFunc, elem int, index uint64) {
		is.True(elem <= 3)
		is.Equal(index, uint64(elem-1))

		if elem == 3 {
			cancel(nil)
			return
		}

		sum += elem
	})

	_, err := Reduce(ctx, ints, nil, CollectSlice[int]())

	is.Equal(sum, 3)
	is.True(errors.Is(err, context.Canceled))
}

func TestExpand(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	updates := Produce([]Update{InsertEdge(0, 1), DeleteEdge(1, 2)})

	cover := Expand(updates, func(_ context.Context, _ context.CancelCauseFunc, upd Update, index uint64) []Update {
		is.True(index <= 1)

		cov := coverUpdates(upd)
		return cov[:]
	})

	result, _ := Reduce(ctx, cover, nil, CollectSlice[Update]())

	is.Equal(result, []Update{
		InsertEdge(0, 3),
		InsertEdge(1, 2),
		DeleteEdge(2, 5),
		DeleteEdge(3, 4),
	})
}

func TestLimit(t *testing.T) { //nolint:gocognit // it's a bit more involved
	tests := []struct {
		givenLimit              uint64
		want                    []int
		wantProducerCancelCause error
	}{
		{
			givenLimit:              3,
			want:                    []int{1, 2, 2, 3, 3, 3},
			wantProducerCancelCause: ErrLimitReached,
		},
		{
			givenLimit:              0,
			want:                    nil,
			wantProducerCancelCause: ErrLimitReached,
		},
		{
			givenLimit: 100,
			want:       []int{1, 2, 2, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 5, 1, 2, 2, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 5, 1, 2, 2, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 5},
		},
	}

	for idx, test := range tests {
		t.Run(strconv.Itoa(idx), func(t *testing.T) {
			is := is.New(t)

			ctx := context.Background()

			producerCancelCause := make(chan error)

			ints := func(ctx context.Context, _ context.CancelCauseFunc) <-chan int {
				outCh := make(chan int)

				go func() {
					var cancelCause error

					defer func() {
						producerCancelCause <- cancelCause
					}()

					defer close(outCh)

					for _, i := range []int{1, 2, 3, 4, 5, 1, 2, 3, 4, 5, 1, 2, 3, 4, 5} {
						select {
						case outCh <- i:

						case <-ctx.Done():
							cancelCause = context.Cause(ctx)
							return
						}
					}
				}()

				return outCh
			}

			ints = Limit(ints, test.givenLimit)

			expectedIndex := uint64(0)

			ints = Expand(ints, func(_ context.Context, _ context.CancelCauseFunc, elem int, index uint64) []int {
				is.Equal(index, expectedIndex)
				expectedIndex++

				elems := make([]int, elem)
				for i := 0; i < elem; i++ {
					elems[i] = elem
				}

				return elems
			})

			result, _ := Reduce(ctx, ints, nil, CollectSlice[int]())

			is.Equal(result, test.want)
			is.Equal(<-producerCancelCause, test.wantProducerCancelCause)
		})
	}
}
