package shell_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-lazypipe/pkg/pipeline"
	"github.com/askiada/go-lazypipe/pkg/shell"
)

// trackingFs counts the files opened and closed through it.
type trackingFs struct {
	afero.Fs
	opened atomic.Int32
	closed atomic.Int32
}

func (t *trackingFs) Open(name string) (afero.File, error) {
	file, err := t.Fs.Open(name)
	if err != nil {
		return nil, err
	}
	t.opened.Add(1)

	return &trackingFile{File: file, fs: t}, nil
}

type trackingFile struct {
	afero.File
	fs *trackingFs
}

func (f *trackingFile) Close() error {
	f.fs.closed.Add(1)

	return f.File.Close()
}

func newSession(t *testing.T, files map[string]string) (*shell.Session, *trackingFs) {
	t.Helper()

	fs := &trackingFs{Fs: afero.NewMemMapFs()}
	require.NoError(t, fs.MkdirAll("/work/sub", 0o755))
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	session, err := shell.NewSession(fs, "/work")
	require.NoError(t, err)

	return session, fs
}

func collect[T any](t *testing.T, src pipeline.Streamer[T]) ([]T, error) {
	t.Helper()

	return pipeline.Drain(context.Background(), src, pipeline.ToSlice[T]())
}
