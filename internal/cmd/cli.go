// Package cmd holds the kong commands of the ouka binary.
package cmd

// CLI is the kong root.
type CLI struct {
	Config string    `help:"Configuration file (json, yaml or toml)" type:"path" env:"OUKA_CONFIG"`
	Log    LogConfig `embed:"" prefix:"log."`

	Run       Run           `cmd:"" default:"withargs" help:"Run the Lua script and remap input (default)"`
	Check     Check         `cmd:"" help:"Compile every hotkey of the script without opening devices"`
	Devices   Devices       `cmd:"" help:"List input devices grouped per hardware"`
	ConfigCmd ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
	Install   Install       `cmd:"" help:"Install and start the systemd service"`
	Uninstall Uninstall     `cmd:"" help:"Stop and remove the systemd service"`
}

// LogConfig configures logging for every command.
type LogConfig struct {
	Level     string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"OUKA_LOG_LEVEL"`
	File      string `help:"Write logs to this file as well" type:"path" env:"OUKA_LOG_FILE"`
	EventFile string `help:"Write every raw event batch to this file" type:"path" env:"OUKA_LOG_EVENT_FILE"`
}
