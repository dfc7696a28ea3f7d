package device

import (
	"slices"

	"github.com/holoplot/go-evdev"

	"github.com/ouka-input/ouka/keys"
)

// Input is an evdev backed Source.
type Input struct {
	dev  *evdev.InputDevice
	name string
}

// Open opens the event node at path.
func Open(path string) (*Input, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, newError(ErrOpenFailed, path, err)
	}
	name, err := dev.Name()
	if err != nil || name == "" {
		name = path
	}
	return &Input{dev: dev, name: name}, nil
}

func (in *Input) Name() string { return in.name }

func (in *Input) ReadBatch() ([]evdev.InputEvent, error) {
	var batch []evdev.InputEvent
	for {
		ev, err := in.dev.ReadOne()
		if err != nil {
			return nil, newError(ErrReadFailed, in.name, err)
		}
		batch = append(batch, *ev)
		if ev.Type == evdev.EV_SYN && ev.Code == evdev.SYN_REPORT {
			return batch, nil
		}
	}
}

func (in *Input) HeldKeys() ([]keys.Code, error) {
	state, err := in.dev.State(evdev.EV_KEY)
	if err != nil {
		return nil, newError(ErrReadFailed, in.name, err)
	}
	held := make([]keys.Code, 0, 8)
	for code, down := range state {
		if down {
			held = append(held, keys.Code(code))
		}
	}
	slices.Sort(held)
	return held, nil
}

func (in *Input) Capabilities() map[evdev.EvType][]evdev.EvCode {
	caps := make(map[evdev.EvType][]evdev.EvCode)
	for _, t := range in.dev.CapableTypes() {
		caps[t] = in.dev.CapableEvents(t)
	}
	return caps
}

func (in *Input) Grab() error {
	if err := in.dev.Grab(); err != nil {
		return newError(ErrGrabDenied, in.name, err)
	}
	return nil
}

func (in *Input) Ungrab() error {
	if err := in.dev.Ungrab(); err != nil {
		return newError(ErrGrabDenied, in.name, err)
	}
	return nil
}

func (in *Input) Close() error {
	return in.dev.Close()
}
