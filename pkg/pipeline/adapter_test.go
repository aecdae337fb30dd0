package pipeline_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-lazypipe/pkg/pipeline"
)

type replacement struct {
	old, new string
}

func TestBind(t *testing.T) {
	t.Parallel()

	replace := pipeline.Bind(func(s string, r replacement) string {
		return strings.ReplaceAll(s, r.old, r.new)
	})

	stream, err := pipeline.Then[string, string](pipeline.Slice[string]{"abc", "bab", "ccc"}, replace(replacement{old: "a", new: "X"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Xbc", "bXb", "ccc"}, collect[string](t, stream))

	stream, err = pipeline.Then[string, string](pipeline.Slice[string]{"abc"}, replace(replacement{old: "c", new: ""}))
	require.NoError(t, err)
	assert.Equal(t, []string{"ab"}, collect[string](t, stream))
}

func TestBindInheritsLength(t *testing.T) {
	t.Parallel()

	pad := pipeline.Bind(func(x int, width int) string {
		s := strconv.Itoa(x)

		return strings.Repeat(" ", max(0, width-len(s))) + s
	})
	stream, err := pipeline.Then[int, string](pipeline.Slice[int]{1, 22, 333}, pad(3))
	require.NoError(t, err)
	n, err := stream.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"  1", " 22", "333"}, collect[string](t, stream))
}

func TestLiftErr(t *testing.T) {
	t.Parallel()

	stream, err := pipeline.Then[string, int](pipeline.Slice[string]{"1", "2", "x", "4"}, pipeline.LiftErr(strconv.Atoi))
	require.NoError(t, err)

	var got []int
	var gotErr error
	for elem, err := range stream.All() {
		if err != nil {
			gotErr = err

			break
		}
		got = append(got, elem)
	}
	assert.Equal(t, []int{1, 2}, got)
	var numErr *strconv.NumError
	require.ErrorAs(t, gotErr, &numErr)
}

func TestLiftNil(t *testing.T) {
	t.Parallel()

	_, err := pipeline.Then[int, int](pipeline.Slice[int]{1}, pipeline.Lift[int, int](nil))
	require.ErrorIs(t, err, pipeline.ErrNilStageFunc)

	_, err = pipeline.Then[int, int](pipeline.Slice[int]{1}, pipeline.Bind[int, int, int](nil)(1))
	require.ErrorIs(t, err, pipeline.ErrNilStageFunc)
}

func TestLiftStageIsReusable(t *testing.T) {
	t.Parallel()

	stage := pipeline.Lift(square)
	for _, input := range [][]int{{1, 2}, {3}, {}} {
		stream, err := stage.Call(pipeline.Slice[int](input))
		require.NoError(t, err)
		assert.Len(t, collect[int](t, stream), len(input))
	}
	assert.Equal(t, "lift", stage.Info().Name)
}
