package script

import (
	"context"
	"fmt"
	"log/slog"

	lua "github.com/yuin/gopher-lua"

	"github.com/ouka-input/ouka/hotmap"
)

// luaHandler calls a Lua function with no arguments and ignores its
// results. It must only be invoked from the dispatcher goroutine.
type luaHandler struct {
	L       *lua.LState
	fn      *lua.LFunction
	pattern string
	logger  *slog.Logger
}

var _ hotmap.Handler = (*luaHandler)(nil)

func (h *luaHandler) Invoke(ctx context.Context) error {
	h.L.SetContext(ctx)
	defer h.L.RemoveContext()

	h.logger.Debug("hotkey fired", "pattern", h.pattern)
	if err := h.L.CallByParam(lua.P{Fn: h.fn, NRet: 0, Protect: true}); err != nil {
		return fmt.Errorf("hotkey %q: %w", h.pattern, err)
	}
	return nil
}
