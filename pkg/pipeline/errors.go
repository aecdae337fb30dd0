package pipeline

import (
	"github.com/pkg/errors"
)

var (
	// ErrEndOfStream is returned by Next once a stream has no more elements.
	// Drains and All treat it as normal termination.
	ErrEndOfStream = errors.New("end of stream")

	ErrConfiguration = errors.New("configuration error")
	ErrNotSupported  = errors.New("not supported")
	ErrTypeMismatch  = errors.New("type mismatch")
)

var (
	ErrMissingUpstream   = errors.Wrap(ErrConfiguration, "upstream must be set")
	ErrEmptyConcat       = errors.Wrap(ErrConfiguration, "concatenation needs at least one stream")
	ErrNilStageFunc      = errors.Wrap(ErrConfiguration, "stage function must be set")
	ErrAlreadyConsumed   = errors.Wrap(ErrConfiguration, "stream is already consumed by another stage")
	ErrPipelineMustBeSet = errors.Wrap(ErrConfiguration, "p must be set")
)

// isEnd reports whether err is the end of stream signal.
func isEnd(err error) bool {
	return errors.Is(err, ErrEndOfStream)
}
