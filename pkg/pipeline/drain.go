package pipeline

import (
	"context"
	"iter"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

// DrainFunc consumes a whole upstream sequence and returns a plain value.
type DrainFunc[I, R, A any] func(ctx context.Context, upstream iter.Seq2[I, error], args A) (R, error)

// DrainStage is a configured terminal stage.
type DrainStage[I, R any] struct {
	fn   func(ctx context.Context, upstream iter.Seq2[I, error]) (R, error)
	info model.StageInfo
}

// MakeDrain turns fn into a drain factory. Calling the factory captures the drain
// arguments; the upstream is given later, with Drain or DrainStage.Call.
func MakeDrain[I, R, A any](name string, fn DrainFunc[I, R, A]) func(args A) *DrainStage[I, R] {
	return func(args A) *DrainStage[I, R] {
		stage := &DrainStage[I, R]{
			info: model.StageInfo{Role: model.DrainRole, Name: name},
		}
		if fn != nil {
			stage.fn = func(ctx context.Context, upstream iter.Seq2[I, error]) (R, error) {
				return fn(ctx, upstream, args)
			}
		}

		return stage
	}
}

// Info describes the stage.
func (d *DrainStage[I, R]) Info() model.StageInfo {
	return d.info
}

// Call consumes src, with the same result as Drain(ctx, src, d).
func (d *DrainStage[I, R]) Call(ctx context.Context, src Streamer[I]) (R, error) {
	return Drain(ctx, src, d)
}

// Drain terminates a chain: the drain consumes the whole upstream and its result is
// returned. The upstream is closed before Drain returns, whatever happened. The context
// is checked before every pull.
func Drain[I, R any](ctx context.Context, src Streamer[I], drain *DrainStage[I, R]) (R, error) {
	var zero R
	if drain == nil {
		return zero, errors.Wrap(ErrTypeMismatch, "nil drain stage")
	}
	if drain.fn == nil {
		return zero, errors.Wrapf(ErrNilStageFunc, "drain %s", drain.info.Name)
	}
	up, err := streamOf(src)
	if err != nil {
		return zero, errors.Wrapf(err, "drain %s", drain.info.Name)
	}
	err = up.claim()
	if err != nil {
		return zero, errors.Wrapf(err, "unable to attach %s", drain.info.Name)
	}
	defer func() {
		_ = up.Close()
	}()
	info := up.pipe.register(drain.info)
	err = up.pipe.prepareDrain(up.info, info)
	if err != nil {
		return zero, err
	}

	var consumed int64
	start := time.Now()
	upstream := func(yield func(I, error) bool) {
		for {
			if ctxErr := ctx.Err(); ctxErr != nil {
				var elem I
				yield(elem, ctxErr)

				return
			}
			elem, err := up.Next()
			if isEnd(err) {
				return
			}
			if err == nil {
				consumed++
			}
			if !yield(elem, err) || err != nil {
				return
			}
		}
	}

	res, err := drain.fn(ctx, upstream)
	if err != nil {
		return res, err
	}
	err = up.Close()
	if err != nil {
		return res, errors.Wrapf(err, "unable to close upstream of %s", drain.info.Name)
	}
	err = up.pipe.afterDrain(info, consumed, time.Since(start))
	if err != nil {
		return res, err
	}

	return res, nil
}
