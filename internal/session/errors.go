package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danmuck/tagcard/internal/codec"
)

var (
	ErrUnsupported   = errors.New("session: transceiver not supported")
	ErrBusy          = errors.New("session: transceiver busy")
	ErrEmptyProfile  = errors.New("session: profile is empty")
	ErrIO            = errors.New("session: transceiver io error")
	ErrWriteFailed   = errors.New("session: every write candidate rejected")
	ErrRead          = errors.New("session: read error")
	ErrCanceled      = errors.New("session: canceled")
	ErrInvalidConfig = errors.New("session: invalid config")
)

// Attempt is one candidate handed to the transceiver and its rejection, if any.
type Attempt struct {
	Candidate codec.CandidateKind
	Err       error
}

// WriteError reports that every candidate was rejected. Last is the final
// candidate's error.
type WriteError struct {
	Last     error
	Attempts []Attempt
}

func (e *WriteError) Error() string {
	if e.Last == nil {
		return ErrWriteFailed.Error()
	}
	return ErrWriteFailed.Error() + ": " + e.Last.Error()
}

func (e *WriteError) Unwrap() []error {
	if e.Last == nil {
		return []error{ErrWriteFailed}
	}
	return []error{ErrWriteFailed, e.Last}
}

// Summary lists each candidate with its rejection.
func (e *WriteError) Summary() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Candidate, a.Err))
	}
	return strings.Join(parts, "; ")
}

// Retryable reports whether err clears on its own if the caller tries again.
func Retryable(err error) bool {
	return errors.Is(err, ErrBusy)
}
