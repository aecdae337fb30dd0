package shell

import (
	"bufio"
	"iter"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/askiada/go-lazypipe/pkg/pipeline"
)

const maxLineSize = 1024 * 1024

type fileArgs struct {
	fs   afero.Fs
	path string
}

func readLines(args fileArgs) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		file, err := args.fs.Open(args.path)
		if err != nil {
			yield("", err)

			return
		}
		defer file.Close()

		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)
		for scanner.Scan() {
			if !yield(scanner.Text(), nil) {
				return
			}
		}
		err = scanner.Err()
		if err != nil {
			yield("", errors.Wrapf(err, "unable to read %s", args.path))
		}
	}
}

func countLines(args fileArgs) (int, error) {
	count := 0
	for _, err := range readLines(args) {
		if err != nil {
			return 0, err
		}
		count++
	}

	return count, nil
}

var (
	cat        = pipeline.MakeSource("cat", readLines)
	catWithLen = pipeline.MakeSource("cat", readLines, pipeline.SourceLengthFunc(countLines))
)

// Cat yields the lines of the file at path, without their line terminator. The file is
// opened on the first pull, and closed once exhausted or when the stream is closed.
// An open failure is yielded as the first error.
func (s *Session) Cat(path string) *pipeline.Stream[string] {
	return cat(fileArgs{fs: s.fs, path: s.Abs(path)})
}

// CatWithLen is Cat with a length: the lines are counted once, when CatWithLen is
// called, and the count is pinned whatever happens to the file afterwards.
func (s *Session) CatWithLen(path string) *pipeline.Stream[string] {
	return catWithLen(fileArgs{fs: s.fs, path: s.Abs(path)})
}

// CatList yields the elements of items. Its length is len(items).
func CatList[T any](items []T) *pipeline.Stream[T] {
	return pipeline.MakeSource("cat_list", func(items []T) iter.Seq2[T, error] {
		return func(yield func(T, error) bool) {
			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
		}
	}, pipeline.SourceLengthFunc(func(items []T) (int, error) {
		return len(items), nil
	}))(items)
}
