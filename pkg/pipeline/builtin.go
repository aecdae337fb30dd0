package pipeline

import (
	"context"
	"iter"

	"github.com/pkg/errors"
)

// Indexed pairs an element with its position.
type Indexed[T any] struct {
	Value T
	Index int
}

// ToSlice collects every element, in order. An empty upstream gives an empty, non nil slice.
func ToSlice[T any]() *DrainStage[T, []T] {
	return MakeDrain("to_slice", func(_ context.Context, upstream iter.Seq2[T, error], _ struct{}) ([]T, error) {
		res := []T{}
		for elem, err := range upstream {
			if err != nil {
				return res, err
			}
			res = append(res, elem)
		}

		return res, nil
	})(struct{}{})
}

// Count counts the elements.
func Count[T any]() *DrainStage[T, int] {
	return MakeDrain("count", func(_ context.Context, upstream iter.Seq2[T, error], _ struct{}) (int, error) {
		count := 0
		for _, err := range upstream {
			if err != nil {
				return count, err
			}
			count++
		}

		return count, nil
	})(struct{}{})
}

// ForEach calls fn on every element and returns how many elements were handled.
// The first error returned by fn stops the drain.
func ForEach[T any](fn func(ctx context.Context, elem T) error) *DrainStage[T, int] {
	var drainFn DrainFunc[T, int, struct{}]
	if fn != nil {
		drainFn = func(ctx context.Context, upstream iter.Seq2[T, error], _ struct{}) (int, error) {
			count := 0
			for elem, err := range upstream {
				if err != nil {
					return count, err
				}
				err = fn(ctx, elem)
				if err != nil {
					return count, err
				}
				count++
			}

			return count, nil
		}
	}

	return MakeDrain("for_each", drainFn)(struct{}{})
}

// Enumerate pairs every element with its position, starting at start.
func Enumerate[T any](start int) *PipeStage[T, Indexed[T]] {
	return MakePipe("enumerate", func(upstream iter.Seq2[T, error], start int) iter.Seq2[Indexed[T], error] {
		return func(yield func(Indexed[T], error) bool) {
			idx := start
			for elem, err := range upstream {
				if err != nil {
					yield(Indexed[T]{}, err)

					return
				}
				if !yield(Indexed[T]{Index: idx, Value: elem}, nil) {
					return
				}
				idx++
			}
		}
	}, StageLength(Inherited()))(start)
}

// Take yields at most n elements. The upstream is not pulled past the n-th element.
func Take[T any](n int) *PipeStage[T, T] {
	return MakePipe("take", func(upstream iter.Seq2[T, error], n int) iter.Seq2[T, error] {
		return func(yield func(T, error) bool) {
			if n <= 0 {
				return
			}
			taken := 0
			for elem, err := range upstream {
				if !yield(elem, err) || err != nil {
					return
				}
				taken++
				if taken >= n {
					return
				}
			}
		}
	}, StageLength(Unknown()))(n)
}

// Filter yields the elements for which keep returns true.
func Filter[T any](keep func(T) bool) *PipeStage[T, T] {
	var pipeFn PipeFunc[T, T, struct{}]
	if keep != nil {
		pipeFn = func(upstream iter.Seq2[T, error], _ struct{}) iter.Seq2[T, error] {
			return func(yield func(T, error) bool) {
				for elem, err := range upstream {
					if err != nil {
						yield(elem, err)

						return
					}
					if keep(elem) && !yield(elem, nil) {
						return
					}
				}
			}
		}
	}

	return MakePipe("filter", pipeFn, StageLength(Unknown()))(struct{}{})
}

// FlatMap yields, in order, every element of the slice fn returns for each upstream
// element. The first error of fn ends the stream.
func FlatMap[I, O any](fn func(I) ([]O, error)) *PipeStage[I, O] {
	var pipeFn PipeFunc[I, O, struct{}]
	if fn != nil {
		pipeFn = func(upstream iter.Seq2[I, error], _ struct{}) iter.Seq2[O, error] {
			return func(yield func(O, error) bool) {
				var zero O
				for elem, err := range upstream {
					if err != nil {
						yield(zero, err)

						return
					}
					outs, err := fn(elem)
					if err != nil {
						yield(zero, errors.Wrap(err, "unable to flat map element"))

						return
					}
					for _, out := range outs {
						if !yield(out, nil) {
							return
						}
					}
				}
			}
		}
	}

	return MakePipe("flat_map", pipeFn, StageLength(Unknown()))(struct{}{})
}
