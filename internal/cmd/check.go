package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ouka-input/ouka/internal/configpaths"
	"github.com/ouka-input/ouka/internal/script"
)

type Check struct {
	Script string `help:"Lua script to check" type:"path" env:"OUKA_SCRIPT"`
}

// Run is called by Kong when the check command is executed.
func (c *Check) Run(logger *slog.Logger) error {
	path, err := configpaths.ScriptPath(c.Script)
	if err != nil {
		return err
	}
	rt := script.New(script.Options{DryRun: true, Logger: logger})
	defer rt.Close()

	if err := rt.Load(path); err != nil {
		return err
	}
	st := rt.Stats()
	logger.Info("Script checked", "script", path, "devices", st.Devices, "hotkeys", st.Mapped, "rejected", st.Rejected)
	if st.Inert > 0 {
		logger.Warn("Hotkeys with a timeout never fire", "script", path, "count", st.Inert)
	}
	if st.Rejected > 0 {
		return fmt.Errorf("%s: %d hotkey pattern(s) rejected", path, st.Rejected)
	}
	return nil
}
