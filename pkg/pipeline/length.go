package pipeline

import (
	"fmt"

	"github.com/pkg/errors"
)

type lengthKind int

const (
	lengthNone lengthKind = iota
	lengthUnknown
	lengthFixed
	lengthInherited
	lengthUpdated
)

// LengthPolicy describes how a stream answers a length query without consuming elements.
// The zero value means no policy was declared. Lengths are advisory only: nothing checks
// that a stream yields as many elements as it reported.
type LengthPolicy struct {
	recompute func() (int, error)
	kind      lengthKind
	n         int
}

// Unknown declares that the length cannot be known.
func Unknown() LengthPolicy {
	return LengthPolicy{kind: lengthUnknown}
}

// Fixed pins the length to n. Negative values are treated as Unknown.
func Fixed(n int) LengthPolicy {
	if n < 0 {
		return Unknown()
	}

	return LengthPolicy{kind: lengthFixed, n: n}
}

// Inherited forwards the query to the upstream stream.
func Inherited() LengthPolicy {
	return LengthPolicy{kind: lengthInherited}
}

// Updated recomputes the length with fn on every query.
func Updated(fn func() (int, error)) LengthPolicy {
	if fn == nil {
		return Unknown()
	}

	return LengthPolicy{kind: lengthUpdated, recompute: fn}
}

// Declared reports whether a policy other than the zero value was set.
func (l LengthPolicy) Declared() bool {
	return l.kind != lengthNone
}

func (l LengthPolicy) String() string {
	switch l.kind {
	case lengthUnknown:
		return "unknown"
	case lengthFixed:
		return fmt.Sprintf("fixed(%d)", l.n)
	case lengthInherited:
		return "inherited"
	case lengthUpdated:
		return "updated"
	default:
		return "none"
	}
}

func (l LengthPolicy) resolve(upstream node) (int, error) {
	switch l.kind {
	case lengthFixed:
		return l.n, nil
	case lengthInherited:
		if upstream == nil {
			return 0, errors.Wrap(ErrNotSupported, "no upstream to inherit the length from")
		}

		return upstream.Len()
	case lengthUpdated:
		n, err := l.recompute()
		if err != nil {
			return 0, errors.Wrap(err, "unable to recompute length")
		}

		return n, nil
	case lengthUnknown:
		return 0, errors.Wrap(ErrNotSupported, "length is unknown")
	default:
		return 0, errors.Wrap(ErrNotSupported, "no length policy declared")
	}
}
