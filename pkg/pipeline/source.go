package pipeline

import (
	"iter"

	"github.com/pkg/errors"

	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

// SourceFunc produces the elements of a source from its arguments. The iterator body
// runs on the first pull, so resources it opens are acquired lazily and must be
// released with defer: the body is unwound when the stream is exhausted or closed.
type SourceFunc[A, T any] func(args A) iter.Seq2[T, error]

// MakeSource turns fn into a source factory. Each call of the factory builds a new,
// zero input stream.
func MakeSource[A, T any](name string, fn SourceFunc[A, T], opts ...StageOption) func(args A) *Stream[T] {
	cfg := stageConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	lengthFunc, configErr := sourceLengthFunc[A](name, cfg.lengthFunc)

	return func(args A) *Stream[T] {
		stream := &Stream[T]{
			info:   &model.StageInfo{Role: model.SourceRole, Name: name},
			length: cfg.length,
		}
		switch {
		case configErr != nil:
			stream.length = failedLength(configErr)
		case lengthFunc != nil:
			stream.length = sourceLength(lengthFunc, args)
		}
		stream.setSeq(func(yield func(T, error) bool) {
			var zero T
			if configErr != nil {
				yield(zero, configErr)

				return
			}
			if fn == nil {
				yield(zero, ErrNilStageFunc)

				return
			}
			for elem, err := range fn(args) {
				if !yield(elem, err) {
					return
				}
			}
		})

		return stream
	}
}

// sourceLengthFunc checks the SourceLengthFunc option takes the source arguments.
func sourceLengthFunc[A any](name string, lengthFunc any) (func(A) (int, error), error) {
	if lengthFunc == nil {
		return nil, nil
	}
	fn, ok := lengthFunc.(func(A) (int, error))
	if ok && fn == nil {
		return nil, nil
	}
	if !ok {
		return nil, errors.Wrapf(ErrConfiguration, "source %s: length function %T does not take %s",
			name, lengthFunc, typeName[A]())
	}

	return fn, nil
}

func sourceLength[A any](fn func(A) (int, error), args A) LengthPolicy {
	n, err := fn(args)
	if err != nil {
		return failedLength(err)
	}

	return Fixed(n)
}

func failedLength(err error) LengthPolicy {
	return Updated(func() (int, error) {
		return 0, err
	})
}
