// Package memtag is an in-memory transceiver with a single emulated tag slot.
//
// Writes frame records as an NDEF message inside a type 2 tag TLV area and
// enforce the tag's byte capacity. Scans deliver one reading each time a tag
// enters range. Faults and record-kind rejections can be injected.
package memtag

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/danmuck/tagcard/internal/ndef"
	"github.com/danmuck/tagcard/internal/transceiver"
	"github.com/dustin/go-humanize"
)

var (
	ErrCapacity = errors.New("memtag: message exceeds tag capacity")
	ErrReadOnly = errors.New("memtag: tag is read-only")
	ErrRejected = errors.New("memtag: record type rejected")
)

const readingBuffer = 8

// Tag is one emulated tag. Capacity is the size of the NDEF TLV area in
// bytes; zero means unlimited.
type Tag struct {
	Serial   string
	Capacity int
	ReadOnly bool

	mu   sync.Mutex
	data []byte
}

// NewTag returns a blank writable tag.
func NewTag(serial string, capacity int) *Tag {
	return &Tag{Serial: serial, Capacity: capacity}
}

// Load formats the tag with records, bypassing read-only protection.
func (t *Tag) Load(records []ndef.Record) error {
	area, err := t.frame(records)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.data = area
	t.mu.Unlock()
	return nil
}

// LoadRaw replaces the TLV area verbatim.
func (t *Tag) LoadRaw(area []byte) {
	t.mu.Lock()
	t.data = append([]byte(nil), area...)
	t.mu.Unlock()
}

// Bytes returns a copy of the TLV area.
func (t *Tag) Bytes() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]byte(nil), t.data...)
}

// Records parses the stored message. A blank tag has no records.
func (t *Tag) Records() ([]ndef.Record, error) {
	area := t.Bytes()
	if len(area) == 0 {
		return []ndef.Record{}, nil
	}
	msg, err := ndef.UnwrapTLV(area)
	if errors.Is(err, ndef.ErrNoNDEF) {
		return []ndef.Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(msg) == 0 {
		return []ndef.Record{}, nil
	}
	return ndef.Unmarshal(msg)
}

func (t *Tag) frame(records []ndef.Record) ([]byte, error) {
	size, err := ndef.EncodedSize(records)
	if err != nil {
		return nil, err
	}
	if t.Capacity > 0 && size > t.Capacity {
		return nil, fmt.Errorf("%w: needs %s, tag holds %s",
			ErrCapacity, humanize.Bytes(uint64(size)), humanize.Bytes(uint64(t.Capacity)))
	}
	msg, err := ndef.Marshal(records)
	if err != nil {
		return nil, err
	}
	return ndef.WrapTLV(msg)
}

func (t *Tag) write(records []ndef.Record) error {
	if t.ReadOnly {
		return ErrReadOnly
	}
	area, err := t.frame(records)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.data = area
	t.mu.Unlock()
	return nil
}

// RejectFunc decides whether the transceiver refuses a message outright.
type RejectFunc func(records []ndef.Record) error

// RejectKinds refuses any message containing one of kinds.
func RejectKinds(kinds ...ndef.Kind) RejectFunc {
	return func(records []ndef.Record) error {
		for _, rec := range records {
			if slices.Contains(kinds, rec.Kind()) {
				return fmt.Errorf("%w: %s", ErrRejected, rec.Kind())
			}
		}
		return nil
	}
}

// WriteAttempt is one message handed to the write primitive.
type WriteAttempt struct {
	Records []ndef.Record
	Err     error
}

// Device is the emulated transceiver.
type Device struct {
	mu        sync.Mutex
	supported bool
	tag       *Tag
	inRange   chan struct{}
	openErr   error
	stopErr   error
	reject    RejectFunc
	scanners  map[*scanner]struct{}
	writes    []WriteAttempt
	stopCalls int
}

var _ transceiver.Transceiver = (*Device)(nil)

// New returns a supported device with no tag in range.
func New() *Device {
	return &Device{
		supported: true,
		inRange:   make(chan struct{}),
		scanners:  make(map[*scanner]struct{}),
	}
}

// Unsupported returns a device whose host lacks the capability.
func Unsupported() *Device {
	d := New()
	d.supported = false
	return d
}

func (d *Device) Supported() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.supported
}

// SetOpenError makes OpenWriter and Scan fail with err.
func (d *Device) SetOpenError(err error) {
	d.mu.Lock()
	d.openErr = err
	d.mu.Unlock()
}

// SetStopError makes every Stop call report err.
func (d *Device) SetStopError(err error) {
	d.mu.Lock()
	d.stopErr = err
	d.mu.Unlock()
}

// Reject installs a message filter applied before the tag is touched.
func (d *Device) Reject(fn RejectFunc) {
	d.mu.Lock()
	d.reject = fn
	d.mu.Unlock()
}

// Present brings t into range and delivers a reading to every open scanner.
func (d *Device) Present(t *Tag) {
	d.mu.Lock()
	if d.tag == nil {
		close(d.inRange)
	}
	d.tag = t
	targets := d.scannerList()
	d.mu.Unlock()

	reading := readingFor(t)
	for _, s := range targets {
		s.deliver(reading)
	}
}

// Remove takes the current tag out of range.
func (d *Device) Remove() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tag != nil {
		d.tag = nil
		d.inRange = make(chan struct{})
	}
}

// FailReading reports err on every open scanner's error channel.
func (d *Device) FailReading(err error) {
	if err == nil {
		err = transceiver.ErrReading
	}
	d.mu.Lock()
	targets := d.scannerList()
	d.mu.Unlock()
	for _, s := range targets {
		s.deliver(transceiver.Reading{Err: err})
	}
}

// Writes returns every message handed to a writer, in order.
func (d *Device) Writes() []WriteAttempt {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.writes)
}

// Scanners is the number of scanners still open.
func (d *Device) Scanners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.scanners)
}

// StopCalls counts Stop invocations on writers and scanners.
func (d *Device) StopCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopCalls
}

func (d *Device) OpenWriter(ctx context.Context) (transceiver.Writer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.supported {
		return nil, transceiver.ErrNotSupported
	}
	if d.openErr != nil {
		return nil, d.openErr
	}
	return &writer{dev: d, done: make(chan struct{})}, nil
}

func (d *Device) Scan(ctx context.Context) (transceiver.Scanner, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	if !d.supported {
		d.mu.Unlock()
		return nil, transceiver.ErrNotSupported
	}
	if d.openErr != nil {
		err := d.openErr
		d.mu.Unlock()
		return nil, err
	}
	s := &scanner{
		dev:  d,
		ch:   make(chan transceiver.Reading, readingBuffer),
		done: make(chan struct{}),
	}
	d.scanners[s] = struct{}{}
	current := d.tag
	d.mu.Unlock()

	if current != nil {
		s.deliver(readingFor(current))
	}
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Stop()
		case <-s.done:
		}
	}()
	return s, nil
}

func (d *Device) scannerList() []*scanner {
	out := make([]*scanner, 0, len(d.scanners))
	for s := range d.scanners {
		out = append(out, s)
	}
	return out
}

func (d *Device) waitForTag(ctx context.Context, stopped <-chan struct{}) (*Tag, error) {
	for {
		d.mu.Lock()
		tag, wait := d.tag, d.inRange
		d.mu.Unlock()
		if tag != nil {
			return tag, nil
		}
		select {
		case <-wait:
		case <-stopped:
			return nil, transceiver.ErrStopped
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (d *Device) write(tag *Tag, records []ndef.Record) error {
	d.mu.Lock()
	reject := d.reject
	d.mu.Unlock()

	var err error
	if reject != nil {
		err = reject(records)
	}
	if err == nil {
		err = tag.write(records)
	}

	d.mu.Lock()
	d.writes = append(d.writes, WriteAttempt{Records: slices.Clone(records), Err: err})
	d.mu.Unlock()
	return err
}

func (d *Device) stopped() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopCalls++
	return d.stopErr
}

func readingFor(t *Tag) transceiver.Reading {
	records, err := t.Records()
	if err != nil {
		return transceiver.Reading{Serial: t.Serial, Err: fmt.Errorf("%w: %v", transceiver.ErrReading, err)}
	}
	return transceiver.Reading{Serial: t.Serial, Records: records}
}

type writer struct {
	dev  *Device
	once sync.Once
	done chan struct{}
}

func (w *writer) Write(ctx context.Context, records []ndef.Record) error {
	select {
	case <-w.done:
		return transceiver.ErrStopped
	default:
	}
	tag, err := w.dev.waitForTag(ctx, w.done)
	if err != nil {
		return err
	}
	return w.dev.write(tag, records)
}

func (w *writer) Stop() error {
	w.once.Do(func() { close(w.done) })
	return w.dev.stopped()
}

type scanner struct {
	dev *Device

	mu     sync.Mutex
	closed bool
	ch     chan transceiver.Reading
	done   chan struct{}
}

func (s *scanner) Readings() <-chan transceiver.Reading {
	return s.ch
}

func (s *scanner) deliver(r transceiver.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- r:
	default:
	}
}

func (s *scanner) Stop() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.ch)
		close(s.done)
	}
	s.mu.Unlock()

	s.dev.mu.Lock()
	delete(s.dev.scanners, s)
	s.dev.mu.Unlock()
	return s.dev.stopped()
}
