// Package hotkey compiles human-readable hotkey patterns into canonical
// combos.
//
// A pattern is an optional state prefix, an optional modifier run whose
// names each end in '-', and one or more key names joined by '+':
//
//	a            a pressed
//	ctrl-shift-a a pressed while ctrl and shift are held
//	^ctrl-a      a released while ctrl is held
//	_a           a auto-repeating (held)
//	(250)a       a with a 250ms timeout (reserved, never fires)
//	ctrl-a+s     a and s pressed together while ctrl is held
//	ctrl--       the minus key while ctrl is held
package hotkey

import "github.com/ouka-input/ouka/keys"

// Hotkey is a parsed pattern.
type Hotkey struct {
	// State is the qualifier given by the prefix.
	State keys.State
	// Mods holds the canonical modifiers of the modifier run.
	Mods keys.ModMask
	// Held holds non-modifier keys named in the modifier run.
	Held []keys.Code
	// Primary holds the key names, each with its own state. A key only
	// differs from State when a value rule assigned it one.
	Primary []keys.Event
}

// Combo compiles the hotkey into its canonical combo: every modifier and
// held key as Held, every primary key with its own state.
func (h Hotkey) Combo() keys.Combo {
	mods := h.Mods.Codes()
	events := make([]keys.Event, 0, len(mods)+len(h.Held)+len(h.Primary))
	for _, code := range mods {
		events = append(events, keys.Event{Code: code, State: keys.Held})
	}
	for _, code := range h.Held {
		events = append(events, keys.Event{Code: code, State: keys.Held})
	}
	events = append(events, h.Primary...)
	return keys.NewCombo(events...)
}
