package pipeline

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

type concatProducer[T any] struct {
	parts  []*Stream[T]
	active int
}

func (c *concatProducer[T]) Next() (T, error) {
	for c.active < len(c.parts) {
		elem, err := c.parts[c.active].Next()
		if isEnd(err) {
			c.active++

			continue
		}

		return elem, err
	}
	var zero T

	return zero, ErrEndOfStream
}

func (c *concatProducer[T]) close() error {
	var firstErr error
	for _, part := range c.parts {
		err := part.Close()
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (c *concatProducer[T]) length() (int, error) {
	total := 0
	for _, part := range c.parts {
		n, err := part.Len()
		if err != nil {
			return 0, errors.Wrapf(err, "unable to get the length of %s", part.info.Label())
		}
		total += n
	}

	return total, nil
}

// Concat yields every element of the first part, then every element of the next one,
// and so on. Parts are not touched before the concatenation is pulled, and each part is
// released once exhausted. The length is the sum of the lengths of the parts, computed
// on every query.
//
// Concatenating an untracked concatenation flattens it, so chaining Concat calls does
// not nest producers. Untracked parts join the pipeline of the tracked parts; parts
// tracked by different pipelines cannot be concatenated. Parts are only claimed once
// the concatenation is built, a failure leaves them untouched.
func Concat[T any](parts ...Streamer[T]) (*Stream[T], error) {
	if len(parts) == 0 {
		return nil, ErrEmptyConcat
	}

	streams := make([]*Stream[T], 0, len(parts))
	seen := make(map[*Stream[T]]struct{}, len(parts))
	for idx, part := range parts {
		stream, err := streamOf(part)
		if err != nil {
			return nil, errors.Wrapf(err, "part %d", idx)
		}
		if _, ok := seen[stream]; ok || stream.consumed {
			return nil, errors.Wrapf(ErrAlreadyConsumed, "unable to concatenate part %d", idx)
		}
		seen[stream] = struct{}{}
		streams = append(streams, stream)
	}

	flat := make([]*Stream[T], 0, len(streams))
	flattened := make([]*Stream[T], 0)
	for _, part := range streams {
		if inner, ok := flattenable(part); ok {
			flattened = append(flattened, part)
			flat = append(flat, inner.parts...)

			continue
		}
		flat = append(flat, part)
	}

	var pipe *Pipeline
	for idx, part := range flat {
		switch {
		case part.pipe == nil:
		case pipe == nil:
			pipe = part.pipe
		case part.pipe != pipe:
			return nil, errors.Wrapf(ErrConfiguration, "part %d belongs to another pipeline", idx)
		}
	}

	// untracked parts join the pipeline, they are registered once every hook succeeded
	infos := make([]*model.StageInfo, len(flat))
	for idx, part := range flat {
		infos[idx] = part.info
		if part.pipe == nil && pipe != nil {
			infos[idx] = pipe.register(*part.info)
			err := pipe.prepareSource(infos[idx])
			if err != nil {
				return nil, err
			}
		}
	}

	producer := &concatProducer[T]{parts: flat}
	stream := &Stream[T]{
		producer: producer,
		release:  producer.close,
		pipe:     pipe,
		info:     pipe.register(model.StageInfo{Role: model.ConcatRole, Name: "concat"}),
		length:   Updated(producer.length),
	}
	err := pipe.prepareConcat(infos, stream.info)
	if err != nil {
		return nil, err
	}

	for idx, part := range flat {
		part.pipe, part.info = pipe, infos[idx]
		_ = part.claim()
	}
	for _, part := range flattened {
		// the inner parts are already claimed by the flattened concatenation
		part.consumed, part.closed, part.done = true, true, true
	}

	return stream, nil
}

// flattenable returns the producer of an untracked concatenation nobody pulled or closed.
func flattenable[T any](part *Stream[T]) (*concatProducer[T], bool) {
	inner, ok := part.producer.(*concatProducer[T])
	if !ok || part.pipe != nil || part.pulled != 0 || part.closed {
		return nil, false
	}

	return inner, true
}

// Concat appends others to s, see Concat.
func (s *Stream[T]) Concat(others ...Streamer[T]) (*Stream[T], error) {
	return Concat(append([]Streamer[T]{s}, others...)...)
}
