package log

import (
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/holoplot/go-evdev"
)

// EventTracer writes one line per raw event batch read from or written to
// a device.
type EventTracer interface {
	Trace(in bool, device string, events []evdev.InputEvent)
}

type eventTracer struct {
	w   io.Writer
	mu  sync.Mutex
	now func() time.Time
}

// NewEventTracer returns a tracer writing to w. A nil w discards
// everything.
func NewEventTracer(w io.Writer) EventTracer {
	return &eventTracer{w: w, now: time.Now}
}

// Trace writes a line such as
//
//	2026/01/02 15:04:05.000 IN  Acme Keyboard 4:4:458756 1:30:1 0:0:0
//
// where each event is type:code:value. in is true for batches read from
// the physical device.
func (t *eventTracer) Trace(in bool, device string, events []evdev.InputEvent) {
	if t.w == nil || len(events) == 0 {
		return
	}
	dir := "OUT"
	if in {
		dir = "IN "
	}

	buf := make([]byte, 0, 64+len(events)*12)
	buf = t.now().AppendFormat(buf, "2006/01/02 15:04:05.000")
	buf = append(buf, ' ')
	buf = append(buf, dir...)
	buf = append(buf, ' ')
	buf = append(buf, device...)
	for _, ev := range events {
		buf = append(buf, ' ')
		buf = strconv.AppendUint(buf, uint64(ev.Type), 10)
		buf = append(buf, ':')
		buf = strconv.AppendUint(buf, uint64(ev.Code), 10)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(ev.Value), 10)
	}
	buf = append(buf, '\n')

	t.mu.Lock()
	_, _ = t.w.Write(buf)
	t.mu.Unlock()
}
