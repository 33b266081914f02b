package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danmuck/tagcard/internal/codec"
	"github.com/danmuck/tagcard/internal/observability"
	"github.com/danmuck/tagcard/internal/profile"
	"github.com/danmuck/tagcard/internal/transceiver"
	"github.com/filecoin-project/go-clock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Manager serializes access to one transceiver. It is safe for concurrent use.
type Manager struct {
	dev      transceiver.Transceiver
	cfg      Config
	codec    codec.Codec
	lock     *Lock
	observer Observer
	clock    clock.Clock
	recorder observability.Recorder
	log      zerolog.Logger
}

type Option func(*Manager)

func WithObserver(o Observer) Option {
	return func(m *Manager) {
		if o != nil {
			m.observer = o
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

func WithRecorder(r observability.Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

func NewManager(dev transceiver.Transceiver, cfg Config, opts ...Option) *Manager {
	cfg = cfg.WithDefaults()
	m := &Manager{
		dev:      dev,
		cfg:      cfg,
		codec:    cfg.codec(),
		lock:     NewLock(),
		observer: noopObserver{},
		clock:    clock.New(),
		recorder: observability.Discard,
		log:      log.Logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With().Str("component", "session").Logger()
	return m
}

// CheckSupport reports transceiver availability to the observer.
func (m *Manager) CheckSupport() bool {
	ok := m.dev.Supported()
	if ok {
		m.status(StatusAvailable)
	} else {
		m.status(StatusNotAvailable)
	}
	return ok
}

// Busy reports whether a write or read currently holds the transceiver.
func (m *Manager) Busy() bool {
	return m.lock.Busy()
}

// State returns the lock's current view.
func (m *Manager) State() State {
	return m.lock.Snapshot()
}

// Cancel stops whatever session is active. Bookkeeping is updated by the
// session itself as it unwinds.
func (m *Manager) Cancel() {
	st := m.lock.Snapshot()
	m.stopQuietly(st.Write)
	m.stopQuietly(st.Scan)
}

// WriteResult describes a completed write.
type WriteResult struct {
	ID        uuid.UUID
	Candidate codec.CandidateKind
	Profile   profile.Record
	Attempts  []Attempt
}

// StartWrite writes p to the next tag presented, trying each encoding
// candidate in order until the transceiver accepts one. It blocks until the
// attempt ends.
func (m *Manager) StartWrite(ctx context.Context, p profile.Record) (WriteResult, error) {
	if !m.dev.Supported() {
		m.status(StatusUnsupported)
		return WriteResult{}, ErrUnsupported
	}
	if !m.lock.TryAcquire() {
		m.status(StatusBusy)
		return WriteResult{}, ErrBusy
	}
	p = p.Normalize()
	if p.IsEmpty() {
		m.lock.Release()
		m.status(StatusEmpty)
		return WriteResult{}, ErrEmptyProfile
	}

	ctx, cancel := withTimeout(ctx, m.cfg.WriteTimeout)
	h := newHandle(KindWrite, m.clock.Now(), cancel)
	m.stopQuietly(m.lock.Install(h))
	logger := m.log.With().Str("session_id", h.ID.String()).Str("kind", string(KindWrite)).Logger()

	outcome := "io_error"
	defer func() {
		m.stopQuietly(h)
		m.lock.Clear(h)
		m.lock.Release()
		m.recorder.Session(string(KindWrite), outcome, m.clock.Since(h.Started))
	}()

	w, err := m.dev.OpenWriter(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("open writer failed")
		m.status(statusIOError + err.Error())
		return WriteResult{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	h.attach(w)
	m.status(StatusTouchToWrite)

	res := WriteResult{ID: h.ID, Profile: p.Stamp(m.clock)}
	var last error
	for cand, buildErr := range m.codec.Candidates(res.Profile) {
		if buildErr != nil {
			res.Attempts = append(res.Attempts, Attempt{Candidate: cand.Kind, Err: buildErr})
			last = buildErr
			continue
		}
		err := w.Write(ctx, cand.Records())
		m.recorder.WriteAttempt(cand.Kind.String(), err == nil)
		if err == nil {
			res.Candidate = cand.Kind
			res.Attempts = append(res.Attempts, Attempt{Candidate: cand.Kind})
			outcome = "ok"
			logger.Info().Str("candidate", cand.Kind.String()).Msg("profile written")
			m.status(writtenStatus(cand.Kind))
			return res, nil
		}
		if aborted(ctx, err) {
			logger.Warn().Str("candidate", cand.Kind.String()).Err(err).Msg("write aborted")
			m.status(statusIOError + err.Error())
			return res, fmt.Errorf("%w: %w", ErrIO, err)
		}
		logger.Debug().Str("candidate", cand.Kind.String()).Err(err).Msg("candidate rejected")
		res.Attempts = append(res.Attempts, Attempt{Candidate: cand.Kind, Err: err})
		last = err
	}

	outcome = "rejected"
	werr := &WriteError{Last: last, Attempts: res.Attempts}
	logger.Error().Str("attempts", werr.Summary()).Msg("write failed")
	m.status(statusWriteFailed + errorText(last))
	return res, werr
}

// aborted reports whether a write error ends the whole attempt instead of
// moving on to the next candidate.
func aborted(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, transceiver.ErrStopped)
}

func (m *Manager) status(message string) {
	m.observer.OnStatus(message)
}

func (m *Manager) stopQuietly(h *Handle) {
	if h == nil {
		return
	}
	if err := h.Stop(); err != nil {
		m.log.Debug().
			Str("session_id", h.ID.String()).
			Str("kind", string(h.Kind)).
			Err(err).
			Msg("stop failed, ignored")
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
