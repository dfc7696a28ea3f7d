package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ouka-input/ouka/internal/configpaths"
	"github.com/ouka-input/ouka/internal/log"
	"github.com/ouka-input/ouka/internal/script"
	"github.com/ouka-input/ouka/session"
)

type Run struct {
	Script    string `help:"Lua script to run. Defaults to init.lua in the working directory, the user config dir or /etc/ouka" type:"path" env:"OUKA_SCRIPT"`
	QueueSize int    `help:"Matched hotkeys waiting for their handler before new matches are dropped" default:"64" env:"OUKA_QUEUE_SIZE"`
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, tracer log.EventTracer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.Start(ctx, logger, tracer, script.EvdevOpener{})
}

// Start loads the script and blocks until every session has stopped.
func (r *Run) Start(ctx context.Context, logger *slog.Logger, tracer log.EventTracer, opener script.Opener) error {
	path, err := configpaths.ScriptPath(r.Script)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dispatcher := session.NewDispatcher(r.QueueSize, logger)
	manager := session.NewManager(logger)
	rt := script.New(script.Options{
		Opener:     opener,
		Manager:    manager,
		Dispatcher: dispatcher,
		Logger:     logger,
		Tracer:     tracer,
		Stop:       cancel,
	})

	logger.Info("Starting ouka", "script", path)
	if err := rt.Load(path); err != nil {
		rt.Close()
		return err
	}
	st := rt.Stats()
	logger.Info("Script loaded", "devices", st.Devices, "hotkeys", st.Mapped, "rejected", st.Rejected)

	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		dispatcher.Run(ctx)
	}()

	err = manager.Run(ctx)
	cancel()
	<-dispatchDone
	rt.Close()

	if dropped := dispatcher.Dropped(); dropped > 0 {
		logger.Warn("Hotkeys dropped while the dispatcher was busy", "count", dropped)
	}
	if errors.Is(err, session.ErrNoSessions) {
		return fmt.Errorf("%s: %w (call listen() on a device)", path, err)
	}
	if err != nil {
		return err
	}
	logger.Info("Shut down")
	return nil
}
