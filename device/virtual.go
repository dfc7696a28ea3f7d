package device

import (
	"slices"
	"sync"

	"github.com/holoplot/go-evdev"

	"github.com/ouka-input/ouka/keys"
)

// VirtualPrefix starts the name of every virtual device this package
// creates. Discovery skips such devices so output is never read back.
const VirtualPrefix = "ouka-"

var virtualID = evdev.InputID{
	BusType: 0x06, // BUS_VIRTUAL
	Vendor:  0x4f75,
	Product: 0x6b61,
	Version: 1,
}

// Virtual is the synthetic output device of a session.
//
// Tap does not preserve hold duration: it always emits one press batch
// immediately followed by one release batch. There is no synthetic
// sustained hold.
type Virtual struct {
	mu   sync.Mutex
	name string
	sink Sink
}

// NewVirtual creates a uinput device able to emit everything src emits:
// keys, relative and absolute axes, scan codes and LEDs. Forwarded batches
// carry event types other than EV_KEY, and the kernel drops any type the
// virtual device did not declare.
func NewVirtual(src Source) (*Virtual, error) {
	name := VirtualPrefix + src.Name()
	sink, err := newSink(name, src, outputCapabilities(src))
	if err != nil {
		return nil, newError(ErrOpenFailed, name, err)
	}
	return NewVirtualWithSink(name, sink), nil
}

// outputCapabilities is the capability set declared on the virtual device.
// EV_SYN is always present on a uinput device and EV_REP would make the
// kernel repeat keys the source already repeats.
func outputCapabilities(src Source) map[evdev.EvType][]evdev.EvCode {
	caps := make(map[evdev.EvType][]evdev.EvCode)
	for t, codes := range src.Capabilities() {
		if t == evdev.EV_SYN || t == evdev.EV_REP || len(codes) == 0 {
			continue
		}
		caps[t] = slices.Clone(codes)
	}
	return caps
}

// NewVirtualWithSink wraps an existing sink.
func NewVirtualWithSink(name string, sink Sink) *Virtual {
	return &Virtual{name: name, sink: sink}
}

// Name returns the name of the virtual device.
func (v *Virtual) Name() string { return v.name }

// Emit forwards events unmodified and in order, as one batch.
func (v *Virtual) Emit(events []evdev.InputEvent) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.sink.WriteBatch(events); err != nil {
		return newError(ErrEmitFailed, v.name, err)
	}
	return nil
}

// Tap presses every key of combo in one batch and releases them all in a
// second batch.
func (v *Virtual) Tap(combo keys.Combo) error {
	codes := combo.Codes()
	if len(codes) == 0 {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, value := range []int32{keys.ValueDown, keys.ValueUp} {
		if err := v.sink.WriteBatch(keyBatch(codes, value)); err != nil {
			return newError(ErrEmitFailed, v.name, err)
		}
	}
	return nil
}

func (v *Virtual) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sink.Close()
}

func keyBatch(codes []keys.Code, value int32) []evdev.InputEvent {
	batch := make([]evdev.InputEvent, 0, len(codes)+1)
	for _, c := range codes {
		batch = append(batch, evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.EvCode(c), Value: value})
	}
	return append(batch, evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT})
}

// uinputSink writes to a uinput device created through evdev.
type uinputSink struct {
	dev *evdev.InputDevice
}

// newSink creates the kernel side of a virtual device. Evdev sources are
// cloned so absolute axis ranges carry over; other sources get a device
// declaring caps.
var newSink = func(name string, src Source, caps map[evdev.EvType][]evdev.EvCode) (Sink, error) {
	if in, ok := src.(*Input); ok {
		dev, err := evdev.CloneDevice(name, in.dev)
		if err != nil {
			return nil, err
		}
		return &uinputSink{dev: dev}, nil
	}
	dev, err := evdev.CreateDevice(name, virtualID, caps)
	if err != nil {
		return nil, err
	}
	return &uinputSink{dev: dev}, nil
}

func (s *uinputSink) WriteBatch(events []evdev.InputEvent) error {
	for i := range events {
		if err := s.dev.WriteOne(&events[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *uinputSink) Close() error { return s.dev.Close() }
