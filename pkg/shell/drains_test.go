package shell_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-lazypipe/pkg/pipeline"
	"github.com/askiada/go-lazypipe/pkg/shell"
)

func TestEcho(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	written, err := pipeline.Drain(context.Background(), pipeline.Of(1, 2, 3), shell.Echo[int](buf))
	require.NoError(t, err)
	assert.Equal(t, 3, written)
	assert.Equal(t, "1\n2\n3\n", buf.String())
}

func TestEchoUpstreamError(t *testing.T) {
	t.Parallel()

	session, _ := newSession(t, nil)
	buf := &bytes.Buffer{}
	written, err := pipeline.Drain(context.Background(), session.Cat("missing.txt"), shell.Echo[string](buf))
	require.Error(t, err)
	assert.Equal(t, 0, written)
	assert.Empty(t, buf.String())
}

func TestToFile(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		mode     shell.WriteMode
		expected string
	}{
		"truncate": {mode: shell.Truncate, expected: "b\nc\n"},
		"append":   {mode: shell.Append, expected: "old\nb\nc\n"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			session, fs := newSession(t, map[string]string{"/work/sub/out.txt": "old\n"})
			require.NoError(t, session.Cd("sub"))

			written, err := pipeline.Drain(context.Background(), pipeline.Of("b", "c"), session.ToFile("out.txt", tc.mode))
			require.NoError(t, err)
			assert.Equal(t, 2, written)

			content, err := afero.ReadFile(fs, "/work/sub/out.txt")
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(content))
		})
	}
}

func TestToFileCreates(t *testing.T) {
	t.Parallel()

	session, fs := newSession(t, map[string]string{"/work/in.txt": "x\ny\n"})
	sink := session.ToFile("out.txt", shell.Append)

	exists, err := afero.Exists(fs, "/work/out.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	written, err := pipeline.Drain(context.Background(), session.Cat("in.txt"), sink)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	content, err := afero.ReadFile(fs, "/work/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "x\ny\n", string(content))
}

func TestToFileReadOnly(t *testing.T) {
	t.Parallel()

	base := afero.NewMemMapFs()
	require.NoError(t, base.MkdirAll("/work", 0o755))
	session, err := shell.NewSession(afero.NewReadOnlyFs(base), "/work")
	require.NoError(t, err)

	_, err = pipeline.Drain(context.Background(), pipeline.Of("a"), session.ToFile("out.txt", shell.Truncate))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to open /work/out.txt")
}
