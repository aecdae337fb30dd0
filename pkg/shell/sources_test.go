package shell_test

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-lazypipe/pkg/pipeline"
	"github.com/askiada/go-lazypipe/pkg/shell"
)

func TestCat(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		content  string
		expected []string
	}{
		"lines with an empty one": {content: "a\nb\ncde\nbde\n\n", expected: []string{"a", "b", "cde", "bde", ""}},
		"no trailing newline":     {content: "a\nb", expected: []string{"a", "b"}},
		"empty file":              {content: "", expected: []string{}},
		"windows line endings":    {content: "a\r\nb\r\n", expected: []string{"a", "b"}},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			session, fs := newSession(t, map[string]string{"/work/input.txt": tc.content})
			src := session.Cat("input.txt")
			assert.Equal(t, int32(0), fs.opened.Load())

			got, err := collect[string](t, src)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, int32(1), fs.opened.Load())
			assert.Equal(t, int32(1), fs.closed.Load())
		})
	}
}

func TestCatMissingFile(t *testing.T) {
	t.Parallel()

	session, _ := newSession(t, nil)
	src := session.Cat("missing.txt")

	_, err := src.Next()
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "missing.txt")

	_, err = src.Next()
	require.ErrorIs(t, err, pipeline.ErrEndOfStream)
}

func TestCatClosesOnAbandon(t *testing.T) {
	t.Parallel()

	session, fs := newSession(t, map[string]string{"/work/input.txt": "a\nb\nc\nd\n"})
	taken, err := pipeline.Then[string, string](session.Cat("input.txt"), pipeline.Take[string](2))
	require.NoError(t, err)

	got, err := collect[string](t, taken)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, int32(1), fs.opened.Load())
	assert.Equal(t, int32(1), fs.closed.Load())
}

func TestCatCloseBeforePull(t *testing.T) {
	t.Parallel()

	session, fs := newSession(t, map[string]string{"/work/input.txt": "a\n"})
	src := session.Cat("input.txt")
	require.NoError(t, src.Close())

	assert.Equal(t, int32(0), fs.opened.Load())
	_, err := src.Next()
	require.ErrorIs(t, err, pipeline.ErrEndOfStream)
}

func TestCatWithLen(t *testing.T) {
	t.Parallel()

	session, fs := newSession(t, map[string]string{"/work/input.txt": "a\nb\nc\n"})
	src := session.CatWithLen("input.txt")

	length, err := src.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, length)

	require.NoError(t, afero.WriteFile(fs, "/work/input.txt", []byte("a\n"), 0o644))
	length, err = src.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, length)

	got, err := collect[string](t, src)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)
}

func TestCatWithLenMissingFile(t *testing.T) {
	t.Parallel()

	session, _ := newSession(t, nil)
	_, err := session.CatWithLen("missing.txt").Len()
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCatWithoutLen(t *testing.T) {
	t.Parallel()

	session, _ := newSession(t, map[string]string{"/work/input.txt": "a\n"})
	_, err := session.Cat("input.txt").Len()
	require.ErrorIs(t, err, pipeline.ErrNotSupported)
}

func TestCatList(t *testing.T) {
	t.Parallel()

	src := shell.CatList([]int{1, 2, 3})
	length, err := src.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, length)

	got, err := collect[int](t, src)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)

	got, err = collect[int](t, shell.CatList[int](nil))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCatConcat(t *testing.T) {
	t.Parallel()

	session, fs := newSession(t, map[string]string{
		"/work/a.txt":     "a1\na2\n",
		"/work/sub/b.txt": "b1\n",
	})

	lines, err := pipeline.Concat[string](session.CatWithLen("a.txt"), session.CatWithLen("sub/b.txt"))
	require.NoError(t, err)
	length, err := lines.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, length)

	got, err := collect[string](t, lines)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2", "b1"}, got)
	assert.Equal(t, int32(4), fs.opened.Load())
	assert.Equal(t, fs.opened.Load(), fs.closed.Load())
}
