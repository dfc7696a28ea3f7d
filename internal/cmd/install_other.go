//go:build !linux

package cmd

import (
	"errors"
	"log/slog"
)

var errUnsupported = errors.New("service installation is only supported on linux")

func install(*slog.Logger, string) error { return errUnsupported }

func uninstall(*slog.Logger) error { return errUnsupported }
