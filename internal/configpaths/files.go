// Package configpaths locates configuration files and the Lua script.
package configpaths

import (
	"errors"
	"os"
	"path/filepath"
)

// AppName names the configuration directories.
const AppName = "ouka"

// ScriptName is the script looked up when none is given.
const ScriptName = "init.lua"

// SystemDir holds the system-wide configuration.
var SystemDir = filepath.Join("/etc", AppName)

// DefaultConfigDir returns $XDG_CONFIG_HOME/ouka, falling back to
// ~/.config/ouka.
func DefaultConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", AppName), nil
	}
	return "", errors.New("HOME not set")
}

// DefaultNamedConfigPath returns the per-user config file path for the
// given format and base name.
func DefaultNamedConfigPath(baseName, format string) (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, baseName+"."+Ext(format)), nil
}

// Ext returns the file extension used for a format name.
func Ext(format string) string {
	switch format {
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return "json"
	}
}

// EnsureDir ensures the directory for a given file path exists.
func EnsureDir(filePath string) error {
	return os.MkdirAll(filepath.Dir(filePath), 0o755)
}

// SearchDirs lists the directories searched for configuration, most
// specific first: the working directory, the user config dir and
// SystemDir.
func SearchDirs() []string {
	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if dir, err := DefaultConfigDir(); err == nil {
		dirs = append(dirs, dir)
	}
	return append(dirs, SystemDir)
}

// ConfigCandidatePaths builds candidate paths for config files per format.
// If userPath is provided, it is prioritized and routed to the matching
// loader by extension.
func ConfigCandidatePaths(userPath string) (jsonPaths, yamlPaths, tomlPaths []string) {
	add := func(slice *[]string, p string) { *slice = append(*slice, p) }

	if userPath != "" {
		switch filepath.Ext(userPath) {
		case ".yaml", ".yml":
			add(&yamlPaths, userPath)
		case ".toml":
			add(&tomlPaths, userPath)
		default:
			add(&jsonPaths, userPath)
		}
	}

	for _, dir := range SearchDirs() {
		for _, base := range []string{AppName, "config"} {
			add(&jsonPaths, filepath.Join(dir, base+".json"))
			add(&yamlPaths, filepath.Join(dir, base+".yaml"))
			add(&yamlPaths, filepath.Join(dir, base+".yml"))
			add(&tomlPaths, filepath.Join(dir, base+".toml"))
		}
	}
	return
}

// ScriptPath returns userPath when set, otherwise the first existing
// init.lua in SearchDirs.
func ScriptPath(userPath string) (string, error) {
	if userPath != "" {
		if _, err := os.Stat(userPath); err != nil {
			return "", err
		}
		return userPath, nil
	}
	for _, dir := range SearchDirs() {
		p := filepath.Join(dir, ScriptName)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", errors.New("no " + ScriptName + " found in the working directory, the user config dir or " + SystemDir)
}
