package pipeline

import (
	"iter"
)

// Lift turns a per element function into a pipe stage yielding fn(x) for every
// upstream element x, in order. The stage inherits the upstream length.
func Lift[I, O any](fn func(I) O) *PipeStage[I, O] {
	if fn == nil {
		return LiftErr[I, O](nil)
	}

	return LiftErr(func(elem I) (O, error) {
		return fn(elem), nil
	})
}

// LiftErr is Lift for functions that can fail. The first error is yielded and ends
// the stream.
func LiftErr[I, O any](fn func(I) (O, error)) *PipeStage[I, O] {
	var pipeFn PipeFunc[I, O, struct{}]
	if fn != nil {
		pipeFn = func(upstream iter.Seq2[I, error], _ struct{}) iter.Seq2[O, error] {
			return mapSeq(upstream, fn)
		}
	}

	return MakePipe("lift", pipeFn, StageLength(Inherited()))(struct{}{})
}

// Bind lifts a function taking extra arguments. The returned factory captures the
// arguments, the stage then calls fn(x, args) for every upstream element x.
func Bind[I, B, O any](fn func(elem I, args B) O) func(args B) *PipeStage[I, O] {
	var pipeFn PipeFunc[I, O, B]
	if fn != nil {
		pipeFn = func(upstream iter.Seq2[I, error], args B) iter.Seq2[O, error] {
			return mapSeq(upstream, func(elem I) (O, error) {
				return fn(elem, args), nil
			})
		}
	}

	return MakePipe("bind", pipeFn, StageLength(Inherited()))
}

func mapSeq[I, O any](upstream iter.Seq2[I, error], fn func(I) (O, error)) iter.Seq2[O, error] {
	return func(yield func(O, error) bool) {
		for elem, err := range upstream {
			if err != nil {
				var zero O
				yield(zero, err)

				return
			}
			out, err := fn(elem)
			if !yield(out, err) || err != nil {
				return
			}
		}
	}
}
