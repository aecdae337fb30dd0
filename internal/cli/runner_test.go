package cli_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-lazypipe/internal/cli"
	"github.com/askiada/go-lazypipe/pkg/shell"
)

type runResult struct {
	fs     afero.Fs
	stdout string
	logs   string
}

func runWith(t *testing.T, cfg *cli.Config) (runResult, error) {
	t.Helper()

	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/work/a.txt":     "a1\na2\n",
		"/work/b.txt":     "b1\n",
		"/work/empty.txt": "",
	}
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	cfg.ApplyDefaults()
	session, err := shell.NewSession(fs, "/work")
	require.NoError(t, err)

	stdout, logs := &bytes.Buffer{}, &bytes.Buffer{}
	err = cli.NewRunner(cfg, session, stdout, zerolog.New(zerolog.SyncWriter(logs))).Run(context.Background())

	return runResult{fs: fs, stdout: stdout.String(), logs: logs.String()}, err
}

func TestRunCat(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		cfg      cli.Config
		expected string
	}{
		"single file": {
			cfg:      cli.Config{Files: []string{"a.txt"}},
			expected: "a1\na2\n",
		},
		"concatenated": {
			cfg:      cli.Config{Files: []string{"a.txt", "empty.txt", "b.txt"}},
			expected: "a1\na2\nb1\n",
		},
		"numbered": {
			cfg:      cli.Config{Files: []string{"a.txt", "b.txt"}, Number: true},
			expected: "     1\ta1\n     2\ta2\n     3\tb1\n",
		},
		"with length": {
			cfg:      cli.Config{Files: []string{"b.txt", "a.txt"}, WithLen: true},
			expected: "b1\na1\na2\n",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res, err := runWith(t, &tc.cfg)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, res.stdout)
		})
	}
}

func TestRunCatWithLenLogs(t *testing.T) {
	t.Parallel()

	res, err := runWith(t, &cli.Config{Files: []string{"a.txt", "b.txt"}, WithLen: true})
	require.NoError(t, err)
	assert.Contains(t, res.logs, `"lines":3`)
	assert.Contains(t, res.logs, `"message":"lines to read"`)
}

func TestRunCatOutput(t *testing.T) {
	t.Parallel()

	res, err := runWith(t, &cli.Config{Files: []string{"b.txt"}, Output: "out.txt"})
	require.NoError(t, err)
	assert.Empty(t, res.stdout)

	content, err := afero.ReadFile(res.fs, "/work/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "b1\n", string(content))
}

func TestRunCatGraph(t *testing.T) {
	t.Parallel()

	res, err := runWith(t, &cli.Config{Files: []string{"a.txt", "b.txt"}, Number: true, Graph: "pipe.dot", Measure: true})
	require.NoError(t, err)

	content, err := afero.ReadFile(res.fs, "/work/pipe.dot")
	require.NoError(t, err)
	graph := string(content)
	assert.Contains(t, graph, "strict digraph")
	assert.Contains(t, graph, `rankdir="LR"`)
	assert.Regexp(t, `"start" -> "cat" \[[^]]*label="2"`, graph)
	assert.Regexp(t, `"start" -> "cat#2" \[[^]]*label="1"`, graph)
	assert.Regexp(t, `"concat" -> "enumerate" \[[^]]*label="3"`, graph)
	assert.Regexp(t, `"echo" -> "end"`, graph)

	assert.Contains(t, res.logs, `"message":"stage measure"`)
	assert.Contains(t, res.logs, `"stage":"concat"`)
}

func TestRunCatMissingFile(t *testing.T) {
	t.Parallel()

	res, err := runWith(t, &cli.Config{Files: []string{"a.txt", "missing.txt"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to write lines")
	assert.Equal(t, "a1\na2\n", res.stdout)
}

func TestRunCount(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		cfg      cli.Config
		expected string
	}{
		"single file": {
			cfg:      cli.Config{Files: []string{"a.txt"}, Count: true},
			expected: "       2 a.txt\n",
		},
		"several files": {
			cfg:      cli.Config{Files: []string{"a.txt", "empty.txt", "b.txt"}, Count: true, Jobs: 2},
			expected: "       2 a.txt\n       0 empty.txt\n       1 b.txt\n       3 total\n",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res, err := runWith(t, &tc.cfg)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, res.stdout)
		})
	}
}

func TestRunCountMissingFile(t *testing.T) {
	t.Parallel()

	res, err := runWith(t, &cli.Config{Files: []string{"a.txt", "missing.txt"}, Count: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.txt")
	assert.Empty(t, res.stdout)
}

func TestRunCountMeasure(t *testing.T) {
	t.Parallel()

	res, err := runWith(t, &cli.Config{Files: []string{"a.txt", "b.txt"}, Count: true, Measure: true})
	require.NoError(t, err)
	assert.Equal(t, "       2 a.txt\n       1 b.txt\n       3 total\n", res.stdout)
	assert.Regexp(t, `"file":"a.txt","stage":"cat","elements":2[^\n]*"message":"stage measure"`, res.logs)
	assert.Regexp(t, `"file":"b.txt","stage":"cat","elements":1[^\n]*"message":"stage measure"`, res.logs)
}
