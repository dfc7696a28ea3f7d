package keys

import (
	"strings"

	"github.com/holoplot/go-evdev"
)

// ModMask is a bitmask over the eight canonical modifier keys.
type ModMask uint8

// Modifier key bitmasks.
const (
	ModLeftCtrl ModMask = 1 << iota
	ModLeftShift
	ModLeftAlt
	ModLeftMeta
	ModRightCtrl
	ModRightShift
	ModRightAlt
	ModRightMeta
)

var modifierKeys = [...]struct {
	mask ModMask
	code Code
	name string
}{
	{ModLeftCtrl, Code(evdev.KEY_LEFTCTRL), "LCtrl"},
	{ModLeftShift, Code(evdev.KEY_LEFTSHIFT), "LShift"},
	{ModLeftAlt, Code(evdev.KEY_LEFTALT), "LAlt"},
	{ModLeftMeta, Code(evdev.KEY_LEFTMETA), "LMeta"},
	{ModRightCtrl, Code(evdev.KEY_RIGHTCTRL), "RCtrl"},
	{ModRightShift, Code(evdev.KEY_RIGHTSHIFT), "RShift"},
	{ModRightAlt, Code(evdev.KEY_RIGHTALT), "RAlt"},
	{ModRightMeta, Code(evdev.KEY_RIGHTMETA), "RMeta"},
}

// ModifierFor returns the mask bit for code, if code is a canonical modifier.
func ModifierFor(code Code) (ModMask, bool) {
	for _, m := range modifierKeys {
		if m.code == code {
			return m.mask, true
		}
	}
	return 0, false
}

// Codes returns the key codes of the set bits, in mask order.
func (m ModMask) Codes() []Code {
	var out []Code
	for _, mk := range modifierKeys {
		if m&mk.mask != 0 {
			out = append(out, mk.code)
		}
	}
	return out
}

func (m ModMask) String() string {
	if m == 0 {
		return "none"
	}
	var names []string
	for _, mk := range modifierKeys {
		if m&mk.mask != 0 {
			names = append(names, mk.name)
		}
	}
	return strings.Join(names, "|")
}
