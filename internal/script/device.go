package script

import (
	"log/slog"

	lua "github.com/yuin/gopher-lua"

	"github.com/ouka-input/ouka/device"
	"github.com/ouka-input/ouka/hotkey"
	"github.com/ouka-input/ouka/internal/keytable"
	"github.com/ouka-input/ouka/keys"
	"github.com/ouka-input/ouka/session"
)

const deviceTypeName = "ouka.device"

// Device is what getDeviceByName returns to Lua: one piece of hardware with
// a session per key node, sharing a name table and value rules.
type Device struct {
	name     string
	rt       *Runtime
	compiler *hotkey.Compiler
	sessions []*session.Session
	logger   *slog.Logger
}

// Name returns the query the device was opened with.
func (d *Device) Name() string { return d.name }

// Sessions returns one session per opened node.
func (d *Device) Sessions() []*session.Session { return d.sessions }

func registerDeviceType(r *Runtime) {
	mt := r.L.NewTypeMetatable(deviceTypeName)
	r.L.SetField(mt, "__index", r.L.SetFuncs(r.L.NewTable(), map[string]lua.LGFunction{
		"setKeycodes":  deviceSetKeycodes,
		"setKeyValues": deviceSetKeyValues,
		"map":          deviceMap,
		"send":         deviceSend,
		"grab":         deviceGrab,
		"ungrab":       deviceUngrab,
		"listen":       deviceListen,
		"name":         deviceName,
	}))
}

func (r *Runtime) newDevice(name string, sessions []*session.Session) *lua.LUserData {
	c := hotkey.NewCompiler()
	c.SetKeycodes(keytable.Default())
	d := &Device{
		name:     name,
		rt:       r,
		compiler: c,
		sessions: sessions,
		logger:   r.logger.With("device", name),
	}
	r.devices = append(r.devices, d)
	r.stats.Devices++

	ud := r.L.NewUserData()
	ud.Value = d
	r.L.SetMetatable(ud, r.L.GetTypeMetatable(deviceTypeName))
	return ud
}

// openDevice pairs every source with a virtual device and wraps both in a
// session. On failure everything opened so far is released and the error
// is raised to the script.
func (r *Runtime) openDevice(name string, srcs []device.Source) *lua.LUserData {
	sessions := make([]*session.Session, 0, len(srcs))
	for i, src := range srcs {
		out, err := r.opts.Opener.Virtual(src)
		if err != nil {
			for _, s := range sessions {
				s.Close()
			}
			for _, rest := range srcs[i:] {
				_ = rest.Close()
			}
			r.L.RaiseError("%s: %v", name, err)
			return nil
		}
		sessions = append(sessions, session.New(src, out, r.opts.Dispatcher, r.logger, session.WithTracer(r.opts.Tracer)))
	}
	for _, s := range sessions {
		r.logger.Info("device opened", "query", name, "node", s.Name())
	}
	return r.newDevice(name, sessions)
}

func checkDevice(L *lua.LState) *Device {
	ud := L.CheckUserData(1)
	if d, ok := ud.Value.(*Device); ok {
		return d
	}
	L.ArgError(1, "device expected")
	return nil
}

func deviceName(L *lua.LState) int {
	L.Push(lua.LString(checkDevice(L).name))
	return 1
}

func deviceSetKeycodes(L *lua.LState) int {
	d := checkDevice(L)
	tables := make([]hotkey.Codes, 0, L.GetTop()-1)
	for i := 2; i <= L.GetTop(); i++ {
		codes, err := keytable.FromMap(tableToMap(L.CheckTable(i)))
		if err != nil {
			L.ArgError(i, err.Error())
			return 0
		}
		tables = append(tables, codes)
	}
	d.compiler.SetKeycodes(tables...)
	return 0
}

func deviceSetKeyValues(L *lua.LState) int {
	d := checkDevice(L)
	tables := make([]map[string]string, 0, L.GetTop()-1)
	for i := 2; i <= L.GetTop(); i++ {
		tables = append(tables, tableToStrings(L.CheckTable(i)))
	}
	if err := d.compiler.SetKeyValues(tables...); err != nil {
		L.RaiseError("setKeyValues: %v", err)
	}
	return 0
}

func deviceMap(L *lua.LState) int {
	d := checkDevice(L)
	pattern := L.CheckString(2)
	fn := L.CheckFunction(3)

	combo, err := d.compiler.Compile(pattern)
	if err != nil {
		d.rt.stats.Rejected++
		d.logger.Warn("hotkey rejected", "error", err)
		return failure(L, err)
	}
	h := &luaHandler{L: d.rt.L, fn: fn, pattern: pattern, logger: d.logger}
	for _, s := range d.sessions {
		s.Map(combo, h)
	}
	d.rt.stats.Mapped++
	d.logger.Info("hotkey mapped", "pattern", pattern, "combo", combo.String())
	if ms, ok := timeoutOf(combo); ok {
		d.rt.stats.Inert++
		d.logger.Warn("hotkey with a timeout never fires; its keys are still suppressed while grabbed",
			"pattern", pattern, "timeout_ms", ms)
	}
	L.Push(lua.LTrue)
	return 1
}

func timeoutOf(combo keys.Combo) (uint64, bool) {
	for _, ev := range combo.Events() {
		if ev.State.IsTimeout() {
			return ev.State.TimeoutMillis(), true
		}
	}
	return 0, false
}

func deviceSend(L *lua.LState) int {
	d := checkDevice(L)
	pattern := L.CheckString(2)

	combo, err := d.compiler.Compile(pattern)
	if err != nil {
		d.logger.Warn("send rejected", "error", err)
		return failure(L, err)
	}
	if len(d.sessions) > 0 {
		if err := d.sessions[0].Send(combo); err != nil {
			d.logger.Warn("send failed", "pattern", pattern, "error", err)
			return failure(L, err)
		}
	}
	L.Push(lua.LTrue)
	return 1
}

func deviceGrab(L *lua.LState) int {
	d := checkDevice(L)
	for _, s := range d.sessions {
		if err := s.Grab(); err != nil {
			L.RaiseError("grab %s: %v", d.name, err)
			return 0
		}
	}
	return 0
}

func deviceUngrab(L *lua.LState) int {
	d := checkDevice(L)
	for _, s := range d.sessions {
		if err := s.Ungrab(); err != nil {
			L.RaiseError("ungrab %s: %v", d.name, err)
			return 0
		}
	}
	return 0
}

// deviceListen schedules the device's sessions and returns immediately.
// They start reading once the manager runs.
func deviceListen(L *lua.LState) int {
	d := checkDevice(L)
	if d.rt.opts.Manager == nil {
		return 0
	}
	for _, s := range d.sessions {
		d.rt.opts.Manager.Add(s)
	}
	return 0
}

func failure(L *lua.LState, err error) int {
	L.Push(lua.LNil)
	L.Push(lua.LString(err.Error()))
	return 2
}
