package pipeline

import (
	"iter"
	"reflect"

	"github.com/pkg/errors"

	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

// Attacher is the right operand of the composition: something that, given an
// upstream, builds the next stream. PipeStage, ElementFunc and SeqFunc implement it.
type Attacher[I, O any] interface {
	Attach(up *Stream[I]) (*Stream[O], error)
}

// ElementFunc is a plain function applied to every element. Attaching it lifts it
// into a pipe stage, see Lift.
type ElementFunc[I, O any] func(I) O

// Attach lifts f and attaches it to up.
func (f ElementFunc[I, O]) Attach(up *Stream[I]) (*Stream[O], error) {
	if f == nil {
		return nil, errors.Wrap(ErrTypeMismatch, "nil element function")
	}

	return Lift[I, O](f).Attach(up)
}

// SeqFunc is a plain function transforming a whole sequence at once.
type SeqFunc[I, O any] func(iter.Seq[I]) iter.Seq[O]

// Attach applies f to the elements of up. The length is unknown since f may yield any
// number of elements. An upstream error ends the sequence given to f and is returned
// after the elements f produced.
func (f SeqFunc[I, O]) Attach(up *Stream[I]) (*Stream[O], error) {
	if f == nil {
		return nil, errors.Wrap(ErrTypeMismatch, "nil sequence function")
	}
	if up == nil {
		return nil, ErrMissingUpstream
	}

	return derive(up, model.StageInfo{Role: model.PipeRole, Name: "seq"}, Unknown(), func(_ iter.Seq2[I, error]) iter.Seq2[O, error] {
		return func(yield func(O, error) bool) {
			var upErr error
			for elem := range f(up.values(&upErr)) {
				if !yield(elem, nil) {
					return
				}
			}
			if upErr != nil {
				var zero O
				yield(zero, upErr)
			}
		}
	})
}

// seq2Func is a whole sequence transform aware of errors.
type seq2Func[I, O any] func(iter.Seq2[I, error]) iter.Seq2[O, error]

func (f seq2Func[I, O]) Attach(up *Stream[I]) (*Stream[O], error) {
	if f == nil {
		return nil, errors.Wrap(ErrTypeMismatch, "nil sequence function")
	}
	if up == nil {
		return nil, ErrMissingUpstream
	}

	return derive(up, model.StageInfo{Role: model.PipeRole, Name: "seq"}, Unknown(), f)
}

// Then attaches right to src and returns the resulting stream. Raw collections on
// the left are wrapped first. The variant of the right operand (declared stage,
// whole sequence function, element function) is given by its type.
func Then[I, O any](src Streamer[I], right Attacher[I, O]) (*Stream[O], error) {
	if right == nil {
		return nil, errors.Wrap(ErrTypeMismatch, "nil right operand")
	}
	up, err := streamOf(src)
	if err != nil {
		return nil, err
	}

	return right.Attach(up)
}

// Compose is the dynamic form of Then for right operands only known at run time.
// They are resolved in order: a declared stage (Attacher), a whole sequence function
// (func(iter.Seq[I]) iter.Seq[O] or func(iter.Seq2[I, error]) iter.Seq2[O, error]),
// then an element function (func(I) O or func(I) (O, error)) which is lifted.
// Anything else fails with ErrTypeMismatch.
func Compose[I, O any](src Streamer[I], right any) (*Stream[O], error) {
	switch fn := right.(type) {
	case Attacher[I, O]:
		return Then(src, fn)
	case func(iter.Seq[I]) iter.Seq[O]:
		return Then[I, O](src, SeqFunc[I, O](fn))
	case func(iter.Seq2[I, error]) iter.Seq2[O, error]:
		return Then[I, O](src, seq2Func[I, O](fn))
	case func(I) O:
		return Then[I, O](src, ElementFunc[I, O](fn))
	case func(I) (O, error):
		if fn == nil {
			return nil, errors.Wrap(ErrTypeMismatch, "nil element function")
		}

		return Then[I, O](src, LiftErr(fn))
	default:
		return nil, errors.Wrapf(ErrTypeMismatch, "cannot attach %T to a stream of %s producing %s",
			right, typeName[I](), typeName[O]())
	}
}

// Pipe attaches same typed stages one after the other.
func (s *Stream[T]) Pipe(stages ...Attacher[T, T]) (*Stream[T], error) {
	current := s
	for _, stage := range stages {
		next, err := Then(current, stage)
		if err != nil {
			return nil, err
		}
		current = next
	}

	return current, nil
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
