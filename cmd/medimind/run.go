package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/notexe/medimind/internal/repl"
	"github.com/notexe/medimind/internal/scheduler"
	"github.com/notexe/medimind/internal/window"
	"github.com/urfave/cli"
)

var (
	headless bool

	runFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "headless",
			Usage:       "run the reminder loop without the interactive shell",
			Destination: &headless,
		},
	}
)

func run(_ *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	comp, err := openComponents(os.Stderr)
	if err != nil {
		return err
	}
	defer comp.Close()

	pidFile := comp.cfg.Runtime.PidFile
	if err := window.WritePidFile(pidFile); err != nil {
		comp.log.Warning("failed to write pid file: %v", err)
	}
	defer func() {
		if err := window.RemovePidFile(pidFile); err != nil {
			comp.log.Warning("failed to remove pid file: %v", err)
		}
	}()

	if headless {
		sched := comp.scheduler(comp.dispatcher(ctx, os.Stdout))
		scheduler.WatchFocus(ctx, sched)
		return sched.Run(ctx)
	}

	shell, err := repl.NewREPL(comp.store, comp.formatter)
	if err != nil {
		return err
	}
	// Alerts and logs are printed above the prompt while the shell is open.
	comp.log.SetOutput(shell.Stderr())

	d := comp.dispatcher(ctx, shell.Stdout())
	sched := comp.scheduler(d)
	scheduler.WatchFocus(ctx, sched)

	shell.SetChecker(sched)
	shell.SetExtractor(comp.extractor())
	shell.SetSurface(d.Surface().Name())

	loopDone := make(chan error, 1)
	go func() { loopDone <- sched.Run(ctx) }()

	go func() {
		<-ctx.Done()
		shell.Stop()
	}()

	err = shell.Start(ctx)
	stop()
	if loopErr := <-loopDone; loopErr != nil && err == nil {
		err = loopErr
	}
	if err != nil {
		return fmt.Errorf("shell failed: %w", err)
	}
	return nil
}
