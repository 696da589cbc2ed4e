package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/notexe/medimind/internal/notify"
	"github.com/notexe/medimind/internal/responder"
	"github.com/notexe/medimind/internal/window"
	"github.com/urfave/cli"
)

func respond(_ *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	comp, err := openComponents(os.Stderr)
	if err != nil {
		return err
	}
	defer comp.Close()

	tg := comp.telegram()
	if tg == nil {
		return errors.New("the responder needs an alert surface with buttons; set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
	}
	if _, err := tg.RequestPermission(ctx); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		exe = "medimind"
	}
	win := &window.Process{
		PidFile: comp.cfg.Runtime.PidFile,
		Command: []string{exe, "--config", configPath, "run", "--headless"},
		Log:     comp.log.Named("window"),
	}

	var r *responder.Responder
	timer := responder.NewDeferred(ctx, func(a notify.Alert) {
		r.Show(ctx, a)
	})
	r = responder.New(tg, timer, win, comp.log.Named("responder"))

	return r.Run(ctx, tg)
}
