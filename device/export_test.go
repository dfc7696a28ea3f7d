package device

import "github.com/holoplot/go-evdev"

// SetSinkFactory replaces the uinput sink factory until the returned
// function is called.
func SetSinkFactory(f func(name string, src Source, caps map[evdev.EvType][]evdev.EvCode) (Sink, error)) (restore func()) {
	prev := newSink
	newSink = f
	return func() { newSink = prev }
}
