package session

import (
	"context"
	"sync"
	"time"

	"github.com/danmuck/tagcard/internal/transceiver"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Kind is the session kind holding the lock.
type Kind string

const (
	KindWrite Kind = "write"
	KindRead  Kind = "read"
)

// Handle is one active write or scan session.
type Handle struct {
	ID      uuid.UUID
	Kind    Kind
	Started time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	session transceiver.Handle
}

func newHandle(kind Kind, started time.Time, cancel context.CancelFunc) *Handle {
	return &Handle{ID: uuid.New(), Kind: kind, Started: started, cancel: cancel}
}

func (h *Handle) attach(s transceiver.Handle) {
	h.mu.Lock()
	h.session = s
	h.mu.Unlock()
}

// Stop cancels the handle's context and stops its transceiver session.
func (h *Handle) Stop() error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	cancel, s := h.cancel, h.session
	h.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if s == nil {
		return nil
	}
	return s.Stop()
}

// State is a point-in-time view of the lock.
type State struct {
	Busy  bool
	Write *Handle
	Scan  *Handle
}

// Lock is the busy flag plus the active session pointers. The busy
// check-and-set is a single non-blocking semaphore acquire; held mirrors the
// semaphore and only changes under mu while the permit is owned.
type Lock struct {
	sem *semaphore.Weighted

	mu    sync.Mutex
	held  bool
	write *Handle
	scan  *Handle
}

func NewLock() *Lock {
	return &Lock{sem: semaphore.NewWeighted(1)}
}

// TryAcquire sets busy if it was clear. It never blocks.
func (l *Lock) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.mu.Lock()
	l.held = true
	l.mu.Unlock()
	return true
}

// Release clears busy. It must pair with a successful TryAcquire.
func (l *Lock) Release() {
	l.mu.Lock()
	l.held = false
	l.mu.Unlock()
	l.sem.Release(1)
}

func (l *Lock) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

// Install records h as the active session of its kind and detaches any
// session of the opposite kind, which is returned for the caller to stop.
// Both slots are never set at once.
func (l *Lock) Install(h *Handle) (opposite *Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch h.Kind {
	case KindWrite:
		opposite, l.scan = l.scan, nil
		l.write = h
	default:
		opposite, l.write = l.write, nil
		l.scan = h
	}
	return opposite
}

// Clear empties h's slot if h still occupies it.
func (l *Lock) Clear(h *Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.write == h {
		l.write = nil
	}
	if l.scan == h {
		l.scan = nil
	}
}

func (l *Lock) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return State{Busy: l.held, Write: l.write, Scan: l.scan}
}
