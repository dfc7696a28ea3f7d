// Package script runs the Lua configuration script. The script opens
// devices through the global "ouka" table, binds hotkeys to Lua functions
// and starts listening.
//
// The Lua state is not goroutine-safe. Scripts are loaded before the
// dispatcher starts, and afterwards every Lua call happens on the
// dispatcher goroutine.
package script

import (
	"errors"
	"fmt"
	"log/slog"

	lua "github.com/yuin/gopher-lua"

	"github.com/ouka-input/ouka/device"
	"github.com/ouka-input/ouka/internal/keytable"
	"github.com/ouka-input/ouka/session"
)

// ErrNoOpener is raised when a script opens a device and the runtime was
// built without an Opener.
var ErrNoOpener = errors.New("no device opener configured")

// Options configures a Runtime.
type Options struct {
	// Opener opens devices. Required unless DryRun is set.
	Opener Opener
	// Manager receives the sessions of devices that call listen.
	Manager *session.Manager
	// Dispatcher runs matched handlers.
	Dispatcher session.Submitter
	Logger     *slog.Logger
	Tracer     session.Tracer
	// DryRun compiles patterns without opening any device. listen, grab
	// and ungrab do nothing.
	DryRun bool
	// Stop is called by ouka.kill.
	Stop func()
}

// Stats summarises what a script configured.
type Stats struct {
	Devices  int
	Mapped   int
	Rejected int
	// Inert counts mapped hotkeys carrying a timeout state. They never
	// fire but still suppress their keys on a grabbed device.
	Inert int
}

// Runtime owns the Lua state and every device the script opened.
type Runtime struct {
	L       *lua.LState
	opts    Options
	logger  *slog.Logger
	devices []*Device
	stats   Stats
}

// New returns a runtime with the ouka API installed.
func New(opts Options) *Runtime {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Stop == nil {
		opts.Stop = func() {}
	}
	r := &Runtime{
		L:      lua.NewState(),
		opts:   opts,
		logger: opts.Logger,
	}
	registerDeviceType(r)
	r.L.SetGlobal("ouka", r.api())
	return r
}

// Load runs the script at path.
func (r *Runtime) Load(path string) error {
	r.logger.Debug("loading script", "path", path)
	if err := r.L.DoFile(path); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	return nil
}

// LoadString runs src as a script.
func (r *Runtime) LoadString(src string) error {
	if err := r.L.DoString(src); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

// Stats returns counters for everything configured so far.
func (r *Runtime) Stats() Stats { return r.stats }

// Devices returns the devices the script opened.
func (r *Runtime) Devices() []*Device { return r.devices }

// Close releases devices that never listened and closes the Lua state.
// The dispatcher must no longer be running.
func (r *Runtime) Close() {
	for _, d := range r.devices {
		for _, s := range d.sessions {
			s.Close()
		}
	}
	r.L.Close()
}

func (r *Runtime) api() *lua.LTable {
	return r.L.SetFuncs(r.L.NewTable(), map[string]lua.LGFunction{
		"getDeviceByName": r.getDeviceByName,
		"getDeviceByPath": r.getDeviceByPath,
		"defaultKeycodes": r.defaultKeycodes,
		"loadKeycodes":    r.loadKeycodes,
		"kill":            r.kill,
	})
}

func (r *Runtime) getDeviceByName(L *lua.LState) int {
	query := L.CheckString(1)
	if r.opts.DryRun {
		L.Push(r.newDevice(query, nil))
		return 1
	}
	if r.opts.Opener == nil {
		L.RaiseError("getDeviceByName: %v", ErrNoOpener)
		return 0
	}
	srcs, err := r.opts.Opener.Find(query)
	if err != nil {
		L.RaiseError("getDeviceByName: %v", err)
		return 0
	}
	L.Push(r.openDevice(query, srcs))
	return 1
}

func (r *Runtime) getDeviceByPath(L *lua.LState) int {
	path := L.CheckString(1)
	if r.opts.DryRun {
		L.Push(r.newDevice(path, nil))
		return 1
	}
	if r.opts.Opener == nil {
		L.RaiseError("getDeviceByPath: %v", ErrNoOpener)
		return 0
	}
	src, err := r.opts.Opener.Open(path)
	if err != nil {
		L.RaiseError("getDeviceByPath: %v", err)
		return 0
	}
	L.Push(r.openDevice(path, []device.Source{src}))
	return 1
}

func (r *Runtime) defaultKeycodes(L *lua.LState) int {
	L.Push(codesToTable(L, keytable.Default()))
	return 1
}

func (r *Runtime) loadKeycodes(L *lua.LState) int {
	codes, err := keytable.Load(L.CheckString(1))
	if err != nil {
		L.RaiseError("loadKeycodes: %v", err)
		return 0
	}
	L.Push(codesToTable(L, codes))
	return 1
}

func (r *Runtime) kill(*lua.LState) int {
	r.logger.Info("shutdown requested by script")
	r.opts.Stop()
	return 0
}
