package pipeline

import (
	"iter"
	"time"

	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

// Producer pulls elements one at a time. Next returns ErrEndOfStream once it has nothing left.
type Producer[T any] interface {
	Next() (T, error)
}

// ProducerFunc adapts a function to a Producer.
type ProducerFunc[T any] func() (T, error)

// Next calls f.
func (f ProducerFunc[T]) Next() (T, error) {
	return f()
}

// Streamer is implemented by everything that can sit on the left of a stage:
// streams themselves and raw collections such as Slice and Seq.
type Streamer[T any] interface {
	Stream() *Stream[T]
}

// node is the part of a stream that does not depend on its element type.
type node interface {
	Len() (int, error)
	Close() error
	stage() *model.StageInfo
}

// Stream is a lazy, single pass sequence of elements.
// Nothing is computed until Next is called, and an exhausted stream stays exhausted.
// A Stream is not safe for concurrent use.
type Stream[T any] struct {
	producer Producer[T]
	release  func() error
	upstream node
	info     *model.StageInfo
	pipe     *Pipeline
	length   LengthPolicy
	pulled   int64
	done     bool
	closed   bool
	consumed bool
}

// FromProducer wraps a producer into a stream.
func FromProducer[T any](producer Producer[T], opts ...StreamOption) *Stream[T] {
	cfg := newStreamConfig("stream", opts...)

	return &Stream[T]{
		producer: producer,
		info:     &model.StageInfo{Role: model.SourceRole, Name: cfg.name},
		length:   cfg.length,
	}
}

// FromSlice wraps a slice. Its length is fixed to len(items) unless overridden.
func FromSlice[T any](items []T, opts ...StreamOption) *Stream[T] {
	idx := 0
	producer := ProducerFunc[T](func() (T, error) {
		if idx >= len(items) {
			var zero T

			return zero, ErrEndOfStream
		}
		elem := items[idx]
		idx++

		return elem, nil
	})

	return FromProducer[T](producer, append([]StreamOption{WithName("slice"), WithLength(Fixed(len(items)))}, opts...)...)
}

// Of wraps the given elements.
func Of[T any](items ...T) *Stream[T] {
	return FromSlice(items)
}

// FromSeq wraps a standard iterator. The iterator body starts on the first pull
// and is stopped when the stream is closed.
func FromSeq[T any](seq iter.Seq[T], opts ...StreamOption) *Stream[T] {
	var seq2 iter.Seq2[T, error]
	if seq != nil {
		seq2 = func(yield func(T, error) bool) {
			for elem := range seq {
				if !yield(elem, nil) {
					return
				}
			}
		}
	}

	return FromSeq2(seq2, append([]StreamOption{WithName("seq")}, opts...)...)
}

// FromSeq2 wraps an iterator of elements and errors. An error is returned by Next
// as is; the iterator decides whether more elements follow.
func FromSeq2[T any](seq iter.Seq2[T, error], opts ...StreamOption) *Stream[T] {
	cfg := newStreamConfig("seq", opts...)
	stream := &Stream[T]{
		info:   &model.StageInfo{Role: model.SourceRole, Name: cfg.name},
		length: cfg.length,
	}
	stream.setSeq(seq)

	return stream
}

// FromFunc wraps a function called on every pull.
func FromFunc[T any](fn func() (T, error), opts ...StreamOption) *Stream[T] {
	return FromProducer[T](ProducerFunc[T](fn), append([]StreamOption{WithName("func")}, opts...)...)
}

func (s *Stream[T]) setSeq(seq iter.Seq2[T, error]) {
	if seq == nil {
		s.producer = ProducerFunc[T](func() (T, error) {
			var zero T

			return zero, ErrEndOfStream
		})

		return
	}
	next, stop := iter.Pull2(seq)
	s.producer = ProducerFunc[T](func() (T, error) {
		elem, err, ok := next()
		if !ok {
			var zero T

			return zero, ErrEndOfStream
		}

		return elem, err
	})
	s.release = func() error {
		stop()

		return nil
	}
}

// Stream returns s, so that a stream can be used wherever a Streamer is expected.
func (s *Stream[T]) Stream() *Stream[T] {
	return s
}

// Next pulls the next element. It returns ErrEndOfStream when the stream is exhausted,
// and keeps returning it afterwards. Reaching the end releases the stream resources.
func (s *Stream[T]) Next() (T, error) {
	var zero T
	if s.done || s.producer == nil {
		return zero, ErrEndOfStream
	}

	start := time.Now()
	elem, err := s.producer.Next()
	if err != nil {
		if !isEnd(err) {
			return zero, err
		}
		s.done = true
		closeErr := s.Close()
		if closeErr != nil {
			return zero, closeErr
		}

		return zero, ErrEndOfStream
	}

	s.pulled++
	s.pipe.onStageOutput(s.info, time.Since(start))

	return elem, nil
}

// All returns an iterator over the remaining elements. The first error other than
// ErrEndOfStream is yielded and ends the iteration. The stream is closed when the
// iteration ends, including when the caller breaks out of the loop.
func (s *Stream[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		defer func() {
			_ = s.Close()
		}()
		for {
			elem, err := s.Next()
			if isEnd(err) {
				return
			}
			if !yield(elem, err) || err != nil {
				return
			}
		}
	}
}

// Len reports the advisory length of the stream according to its policy.
// It never pulls elements.
func (s *Stream[T]) Len() (int, error) {
	return s.length.resolve(s.upstream)
}

// Policy returns the declared length policy.
func (s *Stream[T]) Policy() LengthPolicy {
	return s.length
}

// Info describes the stage which produced the stream.
func (s *Stream[T]) Info() model.StageInfo {
	return *s.info
}

// Pulled returns how many elements were pulled so far.
func (s *Stream[T]) Pulled() int64 {
	return s.pulled
}

// Close releases the stream resources and the ones of its upstreams. It is safe to call
// more than once. A closed stream behaves as an exhausted one.
func (s *Stream[T]) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.done = true

	var err error
	if s.release != nil {
		err = s.release()
	}
	if s.upstream != nil {
		upErr := s.upstream.Close()
		if err == nil {
			err = upErr
		}
	}

	return err
}

func (s *Stream[T]) stage() *model.StageInfo {
	return s.info
}

// claim marks the stream as the upstream of a single consumer.
func (s *Stream[T]) claim() error {
	if s.consumed {
		return ErrAlreadyConsumed
	}
	s.consumed = true

	return nil
}

// values turns the stream into an iterator of elements for consumers that only deal
// with values. The first error stops the iteration and is stored in errp.
func (s *Stream[T]) values(errp *error) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			elem, err := s.Next()
			if err != nil {
				if !isEnd(err) {
					*errp = err
				}

				return
			}
			if !yield(elem) {
				return
			}
		}
	}
}

// seq2 turns the stream into an iterator of elements and errors without closing it.
func (s *Stream[T]) seq2() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			elem, err := s.Next()
			if isEnd(err) {
				return
			}
			if !yield(elem, err) || err != nil {
				return
			}
		}
	}
}

// Slice is a raw collection usable on the left of a stage.
type Slice[T any] []T

// Stream wraps the slice.
func (s Slice[T]) Stream() *Stream[T] {
	return FromSlice([]T(s))
}

// Seq is a standard iterator usable on the left of a stage.
type Seq[T any] iter.Seq[T]

// Stream wraps the iterator.
func (s Seq[T]) Stream() *Stream[T] {
	return FromSeq(iter.Seq[T](s))
}

// Seq2 is an iterator of elements and errors usable on the left of a stage.
type Seq2[T any] iter.Seq2[T, error]

// Stream wraps the iterator.
func (s Seq2[T]) Stream() *Stream[T] {
	return FromSeq2(iter.Seq2[T, error](s))
}

func streamOf[T any](src Streamer[T]) (*Stream[T], error) {
	if src == nil {
		return nil, ErrMissingUpstream
	}
	stream := src.Stream()
	if stream == nil {
		return nil, ErrMissingUpstream
	}

	return stream, nil
}
