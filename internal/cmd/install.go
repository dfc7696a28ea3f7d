package cmd

import "log/slog"

type Install struct {
	Script string `help:"Lua script the service runs" type:"path" env:"OUKA_SCRIPT"`
}

// Run is called by Kong when the install command is executed.
func (i *Install) Run(logger *slog.Logger) error {
	return install(logger, i.Script)
}

type Uninstall struct{}

// Run is called by Kong when the uninstall command is executed.
func (u *Uninstall) Run(logger *slog.Logger) error {
	return uninstall(logger)
}
