package session

import (
	"context"
	"fmt"

	"github.com/danmuck/tagcard/internal/codec"
	"github.com/danmuck/tagcard/internal/transceiver"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReadResult is the decoded content of the first tag detected.
type ReadResult struct {
	Serial string
	codec.Result
}

// ReadOperation resolves once: on the first detection, a reading error, or
// cancellation.
type ReadOperation struct {
	ID uuid.UUID

	cancel context.CancelFunc
	done   chan struct{}
	result ReadResult
	err    error
}

// Done is closed once the operation has resolved and the lock is free.
func (o *ReadOperation) Done() <-chan struct{} {
	return o.done
}

// Wait blocks until the operation resolves or ctx ends. Ending ctx does not
// cancel the operation.
func (o *ReadOperation) Wait(ctx context.Context) (ReadResult, error) {
	select {
	case <-o.done:
		return o.result, o.err
	case <-ctx.Done():
		return ReadResult{}, ctx.Err()
	}
}

// Result returns the decoded tag. ok is false until Done is closed.
func (o *ReadOperation) Result() (ReadResult, bool) {
	select {
	case <-o.done:
		return o.result, true
	default:
		return ReadResult{}, false
	}
}

// Err returns the failure, if any, once Done is closed.
func (o *ReadOperation) Err() error {
	select {
	case <-o.done:
		return o.err
	default:
		return nil
	}
}

// Cancel stops the scan. It is safe to call at any time, including after the
// operation resolved.
func (o *ReadOperation) Cancel() {
	o.cancel()
}

// StartRead opens a scan session and returns immediately. The operation
// resolves on the first tag brought into range.
func (m *Manager) StartRead(ctx context.Context) (*ReadOperation, error) {
	if !m.dev.Supported() {
		m.status(StatusUnsupported)
		return nil, ErrUnsupported
	}
	if !m.lock.TryAcquire() {
		m.status(StatusBusy)
		return nil, ErrBusy
	}

	ctx, cancel := withTimeout(ctx, m.cfg.ScanTimeout)
	h := newHandle(KindRead, m.clock.Now(), cancel)
	m.stopQuietly(m.lock.Install(h))
	logger := m.log.With().Str("session_id", h.ID.String()).Str("kind", string(KindRead)).Logger()

	sc, err := m.dev.Scan(ctx)
	if err != nil {
		cancel()
		m.lock.Clear(h)
		m.lock.Release()
		m.recorder.Session(string(KindRead), "io_error", m.clock.Since(h.Started))
		logger.Error().Err(err).Msg("scan start failed")
		m.status(statusScanFailed + err.Error())
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	h.attach(sc)
	m.status(StatusReadyToScan)

	op := &ReadOperation{ID: h.ID, cancel: cancel, done: make(chan struct{})}
	go m.awaitReading(ctx, h, sc, op, logger)
	return op, nil
}

func (m *Manager) awaitReading(ctx context.Context, h *Handle, sc transceiver.Scanner, op *ReadOperation, logger zerolog.Logger) {
	defer close(op.done)

	var (
		reading transceiver.Reading
		got     bool
	)
	select {
	case reading, got = <-sc.Readings():
	case <-ctx.Done():
	}

	// The lock is released before decoding so a new session can start
	// while the result is reported.
	m.lock.Clear(h)
	m.lock.Release()
	m.stopQuietly(h)
	elapsed := m.clock.Since(h.Started)

	switch {
	case !got:
		cause := ctx.Err()
		if cause == nil {
			cause = transceiver.ErrStopped
		}
		op.err = fmt.Errorf("%w: %w", ErrCanceled, cause)
		m.recorder.Session(string(KindRead), "canceled", elapsed)
		logger.Info().Err(cause).Msg("scan canceled")
		m.status(StatusScanCanceled)

	case reading.Err != nil:
		op.err = fmt.Errorf("%w: %w", ErrRead, reading.Err)
		m.recorder.Session(string(KindRead), "read_error", elapsed)
		logger.Warn().Err(reading.Err).Msg("tag reading failed")
		m.status(StatusReadError)

	default:
		m.status(StatusDetected)
		res := m.codec.Decode(reading.Records)
		op.result = ReadResult{Serial: reading.Serial, Result: res}
		m.recorder.Decode(res.Status.String())
		m.recorder.Session(string(KindRead), res.Status.String(), elapsed)
		logger.Info().
			Str("serial", reading.Serial).
			Int("records", len(reading.Records)).
			Str("result", res.Status.String()).
			Msg("tag decoded")
		if res.Status == codec.Found {
			m.observer.OnProfileLoaded(res.Profile)
		}
		m.status(readStatus(res))
	}
}
