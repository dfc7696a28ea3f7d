package keys

import "github.com/holoplot/go-evdev"

// Observe builds the combo for one batch of raw events.
//
// Every code in held becomes a Held event unless the batch carries a key
// event for it; key events in the batch then contribute their own value.
// Non-key events do not take part in the combo.
func Observe(batch []evdev.InputEvent, held []Code) Combo {
	inBatch := make(map[Code]struct{}, len(batch))
	for _, ev := range batch {
		if ev.Type == evdev.EV_KEY {
			inBatch[Code(ev.Code)] = struct{}{}
		}
	}

	events := make([]Event, 0, len(held)+len(inBatch))
	for _, code := range held {
		if _, changed := inBatch[code]; changed {
			continue
		}
		events = append(events, Event{Code: code, State: Held})
	}
	for _, ev := range batch {
		if ev.Type != evdev.EV_KEY {
			continue
		}
		st, ok := StateFromValue(ev.Value)
		if !ok {
			continue
		}
		events = append(events, Event{Code: Code(ev.Code), State: st})
	}
	return NewCombo(events...)
}
