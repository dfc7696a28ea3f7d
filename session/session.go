// Package session runs one physical input device: it reads raw batches,
// matches them against the device's hotkey table and decides whether to
// dispatch a handler, forward the batch to the virtual device, or drop it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/holoplot/go-evdev"

	"github.com/ouka-input/ouka/device"
	"github.com/ouka-input/ouka/hotmap"
	"github.com/ouka-input/ouka/keys"
)

// Phase is the lifecycle position of a session.
type Phase int32

const (
	Uninitialized Phase = iota
	Configured
	Listening
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Configured:
		return "configured"
	case Listening:
		return "listening"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// Action is what a session does with one batch.
type Action int

const (
	// None drops the batch. The device is not grabbed so the system
	// already saw it.
	None Action = iota
	// Dispatch hands the matched handler to the dispatcher.
	Dispatch
	// Forward re-emits the batch through the virtual device.
	Forward
	// Suppress drops a grabbed batch whose keys belong to some hotkey.
	Suppress
)

func (a Action) String() string {
	switch a {
	case None:
		return "none"
	case Dispatch:
		return "dispatch"
	case Forward:
		return "forward"
	case Suppress:
		return "suppress"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Submitter queues handlers for execution off the polling goroutine.
type Submitter interface {
	// Submit queues h and reports whether it was accepted. It never blocks.
	Submit(h hotmap.Handler) bool
}

// Tracer records raw batches read from and written to devices.
type Tracer interface {
	Trace(in bool, device string, events []evdev.InputEvent)
}

type nopTracer struct{}

func (nopTracer) Trace(bool, string, []evdev.InputEvent) {}

// Output is the virtual side of a session.
type Output interface {
	Name() string
	Emit(events []evdev.InputEvent) error
	Tap(combo keys.Combo) error
	Close() error
}

var _ Output = (*device.Virtual)(nil)

// Option configures a Session.
type Option func(*Session)

// WithTracer traces every batch read and forwarded.
func WithTracer(t Tracer) Option {
	return func(s *Session) {
		if t != nil {
			s.tracer = t
		}
	}
}

// Session owns one physical source, its match table and its virtual
// output device.
type Session struct {
	src      device.Source
	out      Output
	table    *hotmap.HotMap
	dispatch Submitter
	logger   *slog.Logger
	tracer   Tracer

	grabMu  sync.Mutex
	grabbed atomic.Bool
	phase   atomic.Int32
}

// New returns a configured session. The session owns src and out and
// closes both when Listen returns.
func New(src device.Source, out Output, dispatch Submitter, logger *slog.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		src:      src,
		out:      out,
		table:    hotmap.New(),
		dispatch: dispatch,
		logger:   logger.With("device", src.Name()),
		tracer:   nopTracer{},
	}
	for _, o := range opts {
		o(s)
	}
	s.phase.Store(int32(Configured))
	return s
}

// Name returns the source device name.
func (s *Session) Name() string { return s.src.Name() }

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase { return Phase(s.phase.Load()) }

// Table returns the session's match table.
func (s *Session) Table() *hotmap.HotMap { return s.table }

// Map binds combo to h. Calls made while listening affect later batches.
func (s *Session) Map(combo keys.Combo, h hotmap.Handler) {
	s.table.Insert(combo, h)
	s.logger.Debug("hotkey mapped", "combo", combo.String())
}

// Grabbed reports whether the source is exclusively held.
func (s *Session) Grabbed() bool { return s.grabbed.Load() }

// Grab takes exclusive control of the source.
func (s *Session) Grab() error {
	s.grabMu.Lock()
	defer s.grabMu.Unlock()
	if err := s.src.Grab(); err != nil {
		if device.IsBusy(err) {
			return fmt.Errorf("%w (another process holds the device)", err)
		}
		return err
	}
	s.grabbed.Store(true)
	s.logger.Info("device grabbed")
	return nil
}

// Ungrab releases exclusive control of the source.
func (s *Session) Ungrab() error {
	s.grabMu.Lock()
	defer s.grabMu.Unlock()
	if err := s.src.Ungrab(); err != nil {
		return err
	}
	s.grabbed.Store(false)
	s.logger.Info("device released")
	return nil
}

// Send taps combo on the virtual device.
func (s *Session) Send(combo keys.Combo) error {
	if err := s.out.Tap(combo); err != nil {
		return err
	}
	s.logger.Debug("combo sent", "combo", combo.String())
	return nil
}

// Decide picks the action for an observed combo.
func (s *Session) Decide(combo keys.Combo) (Action, hotmap.Handler) {
	if h, ok := s.table.Lookup(combo); ok {
		return Dispatch, h
	}
	if !s.grabbed.Load() {
		return None, nil
	}
	if s.table.IsCodeSetRegistered(combo) {
		return Suppress, nil
	}
	return Forward, nil
}

// Step processes exactly one batch. Any returned error ends the session.
func (s *Session) Step() error {
	batch, err := s.src.ReadBatch()
	if err != nil {
		return err
	}
	s.tracer.Trace(true, s.src.Name(), batch)

	held, err := s.src.HeldKeys()
	if err != nil {
		return err
	}
	combo := keys.Observe(batch, held)

	action, h := s.Decide(combo)
	switch action {
	case Dispatch:
		if !s.dispatch.Submit(h) {
			s.logger.Warn("dispatch queue full, hotkey dropped", "combo", combo.String())
		}
	case Forward:
		if err := s.out.Emit(batch); err != nil {
			return err
		}
		s.tracer.Trace(false, s.out.Name(), batch)
	}
	return nil
}

// Listen reads and handles batches until ctx is cancelled or the device
// fails. Cancellation closes the source to unblock the pending read and
// yields a nil error. The source and virtual device are released on return.
func (s *Session) Listen(ctx context.Context) error {
	if !s.phase.CompareAndSwap(int32(Configured), int32(Listening)) {
		return fmt.Errorf("session %q: cannot listen while %s", s.src.Name(), s.Phase())
	}
	stop := context.AfterFunc(ctx, func() { _ = s.src.Close() })
	defer stop()

	s.logger.Info("listening", "hotkeys", s.table.Len(), "grabbed", s.Grabbed())
	var err error
	for err == nil {
		err = s.Step()
	}
	s.release()

	if ctx.Err() != nil {
		s.logger.Info("session stopped")
		return nil
	}
	s.logger.Error("session stopped", "error", err)
	return fmt.Errorf("session %q: %w", s.src.Name(), err)
}

// Close releases a session that never started listening. It does nothing
// once Listen has been called.
func (s *Session) Close() {
	if s.phase.CompareAndSwap(int32(Configured), int32(Stopped)) {
		s.release()
	}
}

func (s *Session) release() {
	s.phase.Store(int32(Stopped))
	var errs []error
	if s.grabbed.Load() {
		if err := s.src.Ungrab(); err != nil && !device.IsGone(err) {
			errs = append(errs, err)
		}
		s.grabbed.Store(false)
	}
	if err := s.src.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		errs = append(errs, err)
	}
	if err := s.out.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Debug("releasing session", "error", err)
	}
}
