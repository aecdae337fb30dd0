package shell

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

var (
	ErrNoSuchDirectory = errors.New("no such directory")
	ErrNotDirectory    = errors.New("not a directory")
)

// PreviousDir is the Cd argument going back to the previous working directory.
const PreviousDir = "-"

// Session resolves relative paths against its own working directory.
// Independent sessions do not share any state.
type Session struct {
	fs   afero.Fs
	wd   string
	prev string
	mu   sync.RWMutex
}

// NewSession creates a session working in dir, which must exist on fs.
func NewSession(fs afero.Fs, dir string) (*Session, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to resolve %s", dir)
	}
	err = checkDir(fs, abs)
	if err != nil {
		return nil, err
	}

	return &Session{fs: fs, wd: abs, prev: abs}, nil
}

// NewOsSession creates a session on the operating system filesystem, in the process
// working directory.
func NewOsSession() (*Session, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get working directory")
	}

	return NewSession(afero.NewOsFs(), wd)
}

// Fs returns the filesystem of the session.
func (s *Session) Fs() afero.Fs {
	return s.fs
}

// Pwd returns the working directory.
func (s *Session) Pwd() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wd
}

// Abs resolves path against the working directory.
func (s *Session) Abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(s.Pwd(), path)
}

// Cd changes the working directory. PreviousDir swaps it with the previous one.
// On error the working directory is left unchanged.
func (s *Session) Cd(dir string) error {
	if dir == PreviousDir {
		s.mu.Lock()
		s.wd, s.prev = s.prev, s.wd
		s.mu.Unlock()

		return nil
	}

	target := s.Abs(dir)
	err := checkDir(s.fs, target)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prev, s.wd = s.wd, target

	return nil
}

// Enter changes the working directory until restore is called. restore puts back both
// the working and the previous directories.
func (s *Session) Enter(dir string) (func(), error) {
	s.mu.RLock()
	wd, prev := s.wd, s.prev
	s.mu.RUnlock()

	err := s.Cd(dir)
	if err != nil {
		return nil, err
	}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.wd, s.prev = wd, prev
	}, nil
}

func checkDir(fs afero.Fs, dir string) error {
	info, err := fs.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(ErrNoSuchDirectory, dir)
		}

		return errors.Wrapf(err, "unable to stat %s", dir)
	}
	if !info.IsDir() {
		return errors.Wrap(ErrNotDirectory, dir)
	}

	return nil
}
