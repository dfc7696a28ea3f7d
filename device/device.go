// Package device wraps kernel input devices: the physical source a session
// reads from and the virtual device it writes synthetic input to.
package device

import (
	"errors"
	"fmt"

	"github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"

	"github.com/ouka-input/ouka/keys"
)

// Source is a physical input device.
type Source interface {
	// Name returns a human readable device name.
	Name() string
	// ReadBatch blocks until a full batch of events, terminated by
	// SYN_REPORT, has been read. The terminator is part of the batch.
	ReadBatch() ([]evdev.InputEvent, error)
	// HeldKeys returns the keys the kernel currently reports as down.
	HeldKeys() ([]keys.Code, error)
	// Capabilities returns every event type the device can emit with
	// the codes of each type.
	Capabilities() map[evdev.EvType][]evdev.EvCode
	Grab() error
	Ungrab() error
	Close() error
}

// Sink receives synthetic events. Each call is one batch.
type Sink interface {
	WriteBatch(events []evdev.InputEvent) error
	Close() error
}

// Device error kinds. Match them with errors.Is.
var (
	ErrOpenFailed = errors.New("open failed")
	ErrGrabDenied = errors.New("grab denied")
	ErrReadFailed = errors.New("read failed")
	ErrEmitFailed = errors.New("emit failed")
)

// Error is a device failure. Kind is one of the Err* kinds above.
type Error struct {
	Kind   error
	Device string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("device %q: %v: %v", e.Device, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error { return []error{e.Kind, e.Err} }

func newError(kind error, dev string, err error) *Error {
	return &Error{Kind: kind, Device: dev, Err: err}
}

// IsGone reports whether err means the device node disappeared.
func IsGone(err error) bool {
	return errors.Is(err, unix.ENODEV) || errors.Is(err, unix.ENOENT)
}

// IsBusy reports whether err means another process holds the device.
func IsBusy(err error) bool {
	return errors.Is(err, unix.EBUSY)
}
