// Package testing holds in-memory fakes for the device and handler
// interfaces so sessions can be exercised without hardware.
package testing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/holoplot/go-evdev"

	"github.com/ouka-input/ouka/device"
	"github.com/ouka-input/ouka/hotmap"
	"github.com/ouka-input/ouka/keys"
	"github.com/ouka-input/ouka/session"
)

// ErrClosed is returned by a FakeSource read after Close.
var ErrClosed = errors.New("fake source closed")

var (
	_ device.Source  = (*FakeSource)(nil)
	_ device.Sink    = (*FakeSink)(nil)
	_ hotmap.Handler = (*RecordingHandler)(nil)
)

// Step is one scripted read: the kernel's held keys at that moment and the
// batch returned, or an error.
type Step struct {
	Held  []keys.Code
	Batch []evdev.InputEvent
	Err   error
}

// FakeSource replays scripted steps. Once the steps run out ReadBatch
// blocks until Close.
type FakeSource struct {
	name string
	caps map[evdev.EvType][]evdev.EvCode

	mu       sync.Mutex
	steps    []Step
	held     []keys.Code
	closed   chan struct{}
	once     sync.Once
	GrabErr  error
	grabs    int
	ungrabs  int
	isClosed atomic.Bool
}

// NewFakeSource returns a source named name that plays steps in order.
func NewFakeSource(name string, steps ...Step) *FakeSource {
	return &FakeSource{
		name: name,
		caps: map[evdev.EvType][]evdev.EvCode{
			evdev.EV_SYN: {evdev.SYN_REPORT},
			evdev.EV_KEY: {evdev.KEY_A, evdev.KEY_B, evdev.KEY_LEFTCTRL, evdev.BTN_LEFT},
			evdev.EV_REL: {evdev.REL_X, evdev.REL_Y},
			evdev.EV_MSC: {evdev.MSC_SCAN},
			evdev.EV_REP: {evdev.REP_DELAY, evdev.REP_PERIOD},
		},
		steps:  steps,
		closed: make(chan struct{}),
	}
}

func (f *FakeSource) Name() string { return f.name }

func (f *FakeSource) ReadBatch() ([]evdev.InputEvent, error) {
	f.mu.Lock()
	if len(f.steps) > 0 {
		st := f.steps[0]
		f.steps = f.steps[1:]
		f.held = st.Held
		f.mu.Unlock()
		if st.Err != nil {
			return nil, st.Err
		}
		return st.Batch, nil
	}
	f.mu.Unlock()
	<-f.closed
	return nil, ErrClosed
}

// HeldKeys returns the held keys of the step most recently read.
func (f *FakeSource) HeldKeys() ([]keys.Code, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.held), nil
}

// Capabilities reports a keyboard with an integrated pointer.
func (f *FakeSource) Capabilities() map[evdev.EvType][]evdev.EvCode { return f.caps }

func (f *FakeSource) Grab() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GrabErr != nil {
		return f.GrabErr
	}
	f.grabs++
	return nil
}

func (f *FakeSource) Ungrab() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ungrabs++
	return nil
}

func (f *FakeSource) Close() error {
	f.once.Do(func() {
		f.isClosed.Store(true)
		close(f.closed)
	})
	return nil
}

// Grabs returns how many Grab and Ungrab calls succeeded.
func (f *FakeSource) Grabs() (grabs, ungrabs int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.grabs, f.ungrabs
}

// Closed reports whether Close was called.
func (f *FakeSource) Closed() bool { return f.isClosed.Load() }

// FakeSink records every batch written to it.
type FakeSink struct {
	mu       sync.Mutex
	batches  [][]evdev.InputEvent
	Err      error
	isClosed bool
}

func (s *FakeSink) WriteBatch(events []evdev.InputEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.batches = append(s.batches, slices.Clone(events))
	return nil
}

func (s *FakeSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isClosed = true
	return nil
}

// Batches returns a copy of the recorded batches.
func (s *FakeSink) Batches() [][]evdev.InputEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.batches)
}

// Closed reports whether Close was called.
func (s *FakeSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isClosed
}

// RecordingHandler counts invocations and signals each one on Calls.
type RecordingHandler struct {
	Name  string
	Err   error
	Calls chan string
	n     atomic.Int32
}

// NewRecordingHandler returns a handler with a buffered Calls channel.
func NewRecordingHandler(t *testing.T, name string) *RecordingHandler {
	t.Helper()
	return &RecordingHandler{Name: name, Calls: make(chan string, 16)}
}

func (h *RecordingHandler) Invoke(context.Context) error {
	h.n.Add(1)
	select {
	case h.Calls <- h.Name:
	default:
	}
	return h.Err
}

// Count returns the number of invocations.
func (h *RecordingHandler) Count() int { return int(h.n.Load()) }

// KeyBatch builds a batch of key events terminated by SYN_REPORT.
func KeyBatch(events ...keys.Event) []evdev.InputEvent {
	out := make([]evdev.InputEvent, 0, len(events)+1)
	for _, ev := range events {
		v, _ := ev.State.Value()
		out = append(out, evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.EvCode(ev.Code), Value: v})
	}
	return append(out, evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT})
}

// FakeOpener hands out FakeSources by query or path and pairs each with a
// FakeSink backed virtual device.
type FakeOpener struct {
	Sources    map[string][]*FakeSource
	VirtualErr error

	mu    sync.Mutex
	sinks []*FakeSink
}

func (o *FakeOpener) Find(query string) ([]device.Source, error) {
	srcs, ok := o.Sources[query]
	if !ok {
		return nil, &device.SelectError{Query: query, Err: device.ErrNoDevice}
	}
	out := make([]device.Source, len(srcs))
	for i, s := range srcs {
		out[i] = s
	}
	return out, nil
}

func (o *FakeOpener) Open(path string) (device.Source, error) {
	srcs, ok := o.Sources[path]
	if !ok || len(srcs) != 1 {
		return nil, fmt.Errorf("open %s: %w", path, device.ErrOpenFailed)
	}
	return srcs[0], nil
}

func (o *FakeOpener) Virtual(src device.Source) (session.Output, error) {
	if o.VirtualErr != nil {
		return nil, o.VirtualErr
	}
	sink := &FakeSink{}
	o.mu.Lock()
	o.sinks = append(o.sinks, sink)
	o.mu.Unlock()
	return device.NewVirtualWithSink(device.VirtualPrefix+src.Name(), sink), nil
}

// Sinks returns the sinks created so far, in creation order.
func (o *FakeOpener) Sinks() []*FakeSink {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.sinks)
}
