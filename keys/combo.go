package keys

import (
	"encoding/binary"
	"slices"
	"strconv"
	"strings"
)

// Event is a single key together with its state.
type Event struct {
	Code  Code
	State State
}

func (e Event) String() string {
	return strconv.FormatUint(uint64(e.Code), 10) + ":" + e.State.String()
}

// Combo is an unordered set of key events with at most one event per code.
//
// Events are kept sorted by code, so two combos built from the same events
// in any order are Equal and share the same Key.
type Combo struct {
	events []Event
}

// NewCombo builds a combo. When a code appears more than once the last
// event for it wins.
func NewCombo(events ...Event) Combo {
	if len(events) == 0 {
		return Combo{}
	}
	byCode := make(map[Code]State, len(events))
	for _, ev := range events {
		byCode[ev.Code] = ev.State
	}
	out := make([]Event, 0, len(byCode))
	for code, st := range byCode {
		out = append(out, Event{Code: code, State: st})
	}
	slices.SortFunc(out, func(a, b Event) int { return int(a.Code) - int(b.Code) })
	return Combo{events: out}
}

// Len returns the number of events in the combo.
func (c Combo) Len() int { return len(c.events) }

// Events returns a copy of the events, sorted by code.
func (c Combo) Events() []Event { return slices.Clone(c.events) }

// State returns the state recorded for code.
func (c Combo) State(code Code) (State, bool) {
	i, ok := slices.BinarySearchFunc(c.events, code, func(ev Event, code Code) int {
		return int(ev.Code) - int(code)
	})
	if !ok {
		return State{}, false
	}
	return c.events[i].State, true
}

// Codes returns the distinct codes of the combo in ascending order.
func (c Combo) Codes() []Code {
	out := make([]Code, len(c.events))
	for i, ev := range c.events {
		out[i] = ev.Code
	}
	return out
}

// Equal reports whether both combos hold the same events.
func (c Combo) Equal(o Combo) bool {
	return slices.Equal(c.events, o.events)
}

// Key returns the canonical encoding of the combo, suitable as a map key.
func (c Combo) Key() string {
	b := make([]byte, 0, len(c.events)*11)
	for _, ev := range c.events {
		b = binary.BigEndian.AppendUint16(b, uint16(ev.Code))
		b = append(b, byte(ev.State.kind))
		b = binary.BigEndian.AppendUint64(b, ev.State.millis)
	}
	return string(b)
}

// CodeSetKey returns the canonical encoding of the combo's code set,
// ignoring states.
func (c Combo) CodeSetKey() string {
	b := make([]byte, 0, len(c.events)*2)
	for _, ev := range c.events {
		b = binary.BigEndian.AppendUint16(b, uint16(ev.Code))
	}
	return string(b)
}

func (c Combo) String() string {
	parts := make([]string, len(c.events))
	for i, ev := range c.events {
		parts[i] = ev.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}
