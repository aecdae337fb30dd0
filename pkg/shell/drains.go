package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/pkg/errors"

	"github.com/askiada/go-lazypipe/pkg/pipeline"
)

// WriteMode tells ToFile what to do with an existing file.
type WriteMode int

const (
	Truncate WriteMode = iota
	Append
)

func (m WriteMode) flags() int {
	if m == Append {
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}

	return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
}

// Echo writes every element on its own line to w and returns the number of lines written.
func Echo[T any](w io.Writer) *pipeline.DrainStage[T, int] {
	return pipeline.MakeDrain("echo", func(_ context.Context, upstream iter.Seq2[T, error], w io.Writer) (int, error) {
		return writeLines(w, upstream)
	})(w)
}

type toFileArgs struct {
	fileArgs
	mode WriteMode
}

var toFile = pipeline.MakeDrain("to_file", func(_ context.Context, upstream iter.Seq2[string, error], args toFileArgs) (int, error) {
	file, err := args.fs.OpenFile(args.path, args.mode.flags(), 0o644)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to open %s", args.path)
	}
	defer file.Close()

	buf := bufio.NewWriter(file)
	count, err := writeLines(buf, upstream)
	if err != nil {
		return count, err
	}
	err = buf.Flush()
	if err != nil {
		return count, errors.Wrapf(err, "unable to flush %s", args.path)
	}
	err = file.Close()
	if err != nil {
		return count, errors.Wrapf(err, "unable to close %s", args.path)
	}

	return count, nil
})

// ToFile writes every line to the file at path and returns the number of lines written.
// The file is only opened once the drain runs.
func (s *Session) ToFile(path string, mode WriteMode) *pipeline.DrainStage[string, int] {
	return toFile(toFileArgs{fileArgs: fileArgs{fs: s.fs, path: s.Abs(path)}, mode: mode})
}

func writeLines[T any](w io.Writer, upstream iter.Seq2[T, error]) (int, error) {
	count := 0
	for elem, err := range upstream {
		if err != nil {
			return count, err
		}
		_, err = fmt.Fprintln(w, elem)
		if err != nil {
			return count, errors.Wrap(err, "unable to write line")
		}
		count++
	}

	return count, nil
}
