package pipeline

import (
	"iter"

	"github.com/pkg/errors"

	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

// PipeFunc transforms a whole upstream sequence. Batching, filtering or windowing are
// up to the function; it is called lazily, on the first pull of the resulting stream.
type PipeFunc[I, O, A any] func(upstream iter.Seq2[I, error], args A) iter.Seq2[O, error]

// PipeStage is a configured one input stage. It can be attached to any number of
// upstreams; each attachment builds a new stream.
type PipeStage[I, O any] struct {
	fn        func(upstream iter.Seq2[I, error]) iter.Seq2[O, error]
	configErr error
	info      model.StageInfo
	length    LengthPolicy
}

// MakePipe turns fn into a pipe factory. Calling the factory captures the stage
// arguments; attaching the returned stage to an upstream happens later, with Then
// or PipeStage.Call.
func MakePipe[I, O, A any](name string, fn PipeFunc[I, O, A], opts ...StageOption) func(args A) *PipeStage[I, O] {
	cfg := stageConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(args A) *PipeStage[I, O] {
		stage := &PipeStage[I, O]{
			info:   model.StageInfo{Role: model.PipeRole, Name: name},
			length: cfg.length,
		}
		if cfg.lengthFunc != nil {
			stage.configErr = errors.Wrapf(ErrConfiguration, "pipe %s: a length function only applies to sources", name)
		}
		if fn != nil {
			stage.fn = func(upstream iter.Seq2[I, error]) iter.Seq2[O, error] {
				return fn(upstream, args)
			}
		}

		return stage
	}
}

// Info describes the stage.
func (s *PipeStage[I, O]) Info() model.StageInfo {
	return s.info
}

// Attach builds the stream applying the stage to up.
func (s *PipeStage[I, O]) Attach(up *Stream[I]) (*Stream[O], error) {
	if s == nil {
		return nil, errors.Wrap(ErrTypeMismatch, "nil pipe stage")
	}
	if s.fn == nil {
		return nil, errors.Wrapf(ErrNilStageFunc, "pipe %s", s.info.Name)
	}
	if s.configErr != nil {
		return nil, s.configErr
	}
	if up == nil {
		return nil, errors.Wrapf(ErrMissingUpstream, "pipe %s", s.info.Name)
	}

	return derive(up, s.info, s.length, s.fn)
}

// Call applies the stage to an explicit source, with the same result as Then(src, s).
func (s *PipeStage[I, O]) Call(src Streamer[I]) (*Stream[O], error) {
	if s == nil {
		return nil, errors.Wrap(ErrTypeMismatch, "nil pipe stage")
	}
	up, err := streamOf(src)
	if err != nil {
		return nil, errors.Wrapf(err, "pipe %s", s.info.Name)
	}

	return s.Attach(up)
}

// derive builds the stream produced by fn over up and registers it in up's pipeline.
func derive[I, O any](up *Stream[I], info model.StageInfo, length LengthPolicy,
	fn func(upstream iter.Seq2[I, error]) iter.Seq2[O, error],
) (*Stream[O], error) {
	err := up.claim()
	if err != nil {
		return nil, errors.Wrapf(err, "unable to attach %s", info.Name)
	}

	stream := &Stream[O]{
		upstream: up,
		pipe:     up.pipe,
		info:     up.pipe.register(info),
		length:   length,
	}
	stream.setSeq(func(yield func(O, error) bool) {
		for elem, err := range fn(up.seq2()) {
			if !yield(elem, err) {
				return
			}
		}
	})

	err = up.pipe.prepareStage(up.info, stream.info)
	if err != nil {
		return nil, err
	}

	return stream, nil
}
