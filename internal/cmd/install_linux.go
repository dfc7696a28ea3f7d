//go:build linux

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ouka-input/ouka/internal/configpaths"
)

const (
	serviceName = "ouka.service"
	servicePath = "/etc/systemd/system/ouka.service"
)

func install(logger *slog.Logger, scriptPath string) error {
	exePath, err := currentExecutable()
	if err != nil {
		return err
	}
	scriptPath, err = configpaths.ScriptPath(scriptPath)
	if err != nil {
		return err
	}
	if scriptPath, err = filepath.Abs(scriptPath); err != nil {
		return err
	}

	unit := systemdUnitContent(exePath, scriptPath)
	if err := os.WriteFile(servicePath, []byte(unit), 0o644); err != nil {
		return err
	}

	steps := [][]string{
		{"daemon-reload"},
		{"enable", serviceName},
		{"restart", serviceName},
	}
	for _, args := range steps {
		if err := runSystemctl(args...); err != nil {
			return err
		}
	}

	logger.Info("ouka systemd service installed", "path", servicePath, "exe", exePath, "script", scriptPath)
	return nil
}

func uninstall(logger *slog.Logger) error {
	var errs []error

	if err := runSystemctl("stop", serviceName); err != nil {
		errs = append(errs, err)
	}
	if err := runSystemctl("disable", serviceName); err != nil {
		errs = append(errs, err)
	}
	if err := os.Remove(servicePath); err != nil && !os.IsNotExist(err) {
		errs = append(errs, err)
	}
	if err := runSystemctl("daemon-reload"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	logger.Info("ouka systemd service removed", "path", servicePath)
	return nil
}

func currentExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolving executable: %w", err)
	}
	return filepath.EvalSymlinks(exe)
}

func systemdUnitContent(exePath, scriptPath string) string {
	return fmt.Sprintf(`[Unit]
Description=ouka keyboard remapper
After=systemd-udev-settle.service

[Service]
Type=simple
ExecStart=%q run --script %q
WorkingDirectory=%s
Restart=on-failure

[Install]
WantedBy=multi-user.target
`, exePath, scriptPath, filepath.Dir(scriptPath))
}

func runSystemctl(args ...string) error {
	cmd := exec.Command("systemctl", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return nil
}
