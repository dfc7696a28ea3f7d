// Package keys models keyboard state at one instant: the state of a single
// key, and the canonical set of simultaneous key states called a combo.
package keys

import (
	"fmt"
	"strconv"
)

// Code identifies a physical key. Values come from the kernel input
// subsystem and are only compared, never interpreted.
type Code uint16

// Kernel key event values.
const (
	ValueUp   int32 = 0
	ValueDown int32 = 1
	ValueHeld int32 = 2
)

type stateKind uint8

const (
	kindUp stateKind = iota
	kindDown
	kindHeld
	kindTimeout
)

// State is the state of one key inside a combo.
//
// Timeout only ever appears in compiled patterns. Observed input never
// carries it, so a combo containing a Timeout state cannot match a batch.
type State struct {
	kind   stateKind
	millis uint64
}

var (
	Up   = State{kind: kindUp}
	Down = State{kind: kindDown}
	Held = State{kind: kindHeld}
)

// Timeout returns the reserved deferred-match state.
func Timeout(millis uint64) State {
	return State{kind: kindTimeout, millis: millis}
}

// StateFromValue maps a kernel key event value to a State.
func StateFromValue(v int32) (State, bool) {
	switch v {
	case ValueUp:
		return Up, true
	case ValueDown:
		return Down, true
	case ValueHeld:
		return Held, true
	default:
		return State{}, false
	}
}

// Value returns the kernel event value for s. Timeout has no value.
func (s State) Value() (int32, bool) {
	switch s.kind {
	case kindUp:
		return ValueUp, true
	case kindDown:
		return ValueDown, true
	case kindHeld:
		return ValueHeld, true
	default:
		return 0, false
	}
}

// IsTimeout reports whether s is a Timeout state.
func (s State) IsTimeout() bool { return s.kind == kindTimeout }

// TimeoutMillis returns the delay of a Timeout state, 0 otherwise.
func (s State) TimeoutMillis() uint64 { return s.millis }

func (s State) String() string {
	switch s.kind {
	case kindUp:
		return "up"
	case kindDown:
		return "down"
	case kindHeld:
		return "held"
	case kindTimeout:
		return "timeout(" + strconv.FormatUint(s.millis, 10) + ")"
	default:
		return fmt.Sprintf("state(%d)", s.kind)
	}
}
