package pipeline

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func concatParts[T any](t *testing.T, stream *Stream[T]) []*Stream[T] {
	t.Helper()
	producer, ok := stream.producer.(*concatProducer[T])
	require.True(t, ok)

	return producer.parts
}

func TestConcatFlattensUntrackedConcat(t *testing.T) {
	t.Parallel()

	a, b, c := Of(1), Of(2), Of(3)
	ab, err := Concat[int](a, b)
	require.NoError(t, err)
	abc, err := Concat[int](ab, c)
	require.NoError(t, err)
	assert.Equal(t, []*Stream[int]{a, b, c}, concatParts(t, abc))

	_, err = ab.Next()
	require.ErrorIs(t, err, ErrEndOfStream, "a flattened concatenation is spent")
}

func TestConcatKeepsStartedConcat(t *testing.T) {
	t.Parallel()

	ab, err := Concat[int](Of(1, 2), Of(3))
	require.NoError(t, err)
	_, err = ab.Next()
	require.NoError(t, err)

	c := Of(4)
	abc, err := Concat[int](ab, c)
	require.NoError(t, err)
	assert.Equal(t, []*Stream[int]{ab, c}, concatParts(t, abc))
}

func TestConcatKeepsTrackedConcat(t *testing.T) {
	t.Parallel()

	pipe, err := New()
	require.NoError(t, err)
	a, err := Track[int](pipe, Of(1))
	require.NoError(t, err)
	ab, err := Concat[int](a, Of(2))
	require.NoError(t, err)
	c := Of(3)
	abc, err := Concat[int](ab, c)
	require.NoError(t, err)
	assert.Equal(t, []*Stream[int]{ab, c}, concatParts(t, abc))
	assert.Same(t, pipe, c.pipe)
}

func TestIsEnd(t *testing.T) {
	t.Parallel()

	assert.True(t, isEnd(ErrEndOfStream))
	assert.True(t, isEnd(errors.Wrap(ErrEndOfStream, "wrapped")))
	assert.False(t, isEnd(nil))
	assert.False(t, isEnd(ErrConfiguration))
}

func TestErrorTaxonomy(t *testing.T) {
	t.Parallel()

	for _, err := range []error{ErrMissingUpstream, ErrEmptyConcat, ErrNilStageFunc, ErrAlreadyConsumed, ErrPipelineMustBeSet} {
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.NotErrorIs(t, err, ErrTypeMismatch)
	}
}

func TestRegisterUniqueIDs(t *testing.T) {
	t.Parallel()

	pipe, err := New()
	require.NoError(t, err)
	ids := make([]string, 0, 3)
	for range 3 {
		ids = append(ids, pipe.register(Lift(square).info).ID)
	}
	assert.Equal(t, []string{"lift", "lift#2", "lift#3"}, ids)

	var nilPipe *Pipeline
	assert.Empty(t, nilPipe.register(Lift(square).info).ID)
}

func square(x int) int {
	return x * x
}
