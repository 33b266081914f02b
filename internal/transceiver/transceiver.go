// Package transceiver declares the capability surface a host exposes for
// the physical tag radio.
//
// Ownership boundary:
// - support check
// - write session (open, write one message, stop)
// - scan session (open, reading event stream, stop)
//
// Record framing below the record list is the implementation's concern.
package transceiver

import (
	"context"
	"errors"

	"github.com/danmuck/tagcard/internal/ndef"
)

var (
	ErrNotSupported = errors.New("transceiver: not supported")
	ErrStopped      = errors.New("transceiver: session stopped")
	ErrReading      = errors.New("transceiver: cannot read tag")
)

// Transceiver is the host's tag radio.
type Transceiver interface {
	Supported() bool
	// OpenWriter prepares a write session. An error here is a transceiver fault.
	OpenWriter(ctx context.Context) (Writer, error)
	// Scan starts delivering readings until the scanner is stopped or ctx ends.
	Scan(ctx context.Context) (Scanner, error)
}

// Handle is any open session that can be stopped.
type Handle interface {
	Stop() error
}

// Writer writes one message per call. It blocks until a tag accepts or
// rejects the message, or ctx ends.
type Writer interface {
	Handle
	Write(ctx context.Context, records []ndef.Record) error
}

// Scanner delivers one Reading per tag brought into range. The channel is
// closed once the scanner stops.
type Scanner interface {
	Handle
	Readings() <-chan Reading
}

// Reading is one scan event: either the records of a detected tag or an error
// reported on the transceiver's error channel.
type Reading struct {
	Serial  string
	Records []ndef.Record
	Err     error
}
