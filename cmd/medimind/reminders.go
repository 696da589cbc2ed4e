package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/notexe/medimind/internal/reminder"
	"github.com/notexe/medimind/internal/scheduler"
	"github.com/notexe/medimind/internal/ui"
	"github.com/urfave/cli"
)

var (
	addTime  string
	addDays  string
	addImage string

	addFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "time, t",
			Usage:       "time of day as HH:MM",
			Destination: &addTime,
		},
		cli.StringFlag{
			Name:        "days",
			Usage:       "comma separated weekdays, \"daily\" or \"none\"",
			Value:       "daily",
			Destination: &addDays,
		},
		cli.StringFlag{
			Name:        "image",
			Usage:       "URL of a photo of the packaging",
			Destination: &addImage,
		},
	}
)

func check(_ *cli.Context) error {
	ctx := context.Background()
	comp, err := openComponents(os.Stderr)
	if err != nil {
		return err
	}
	defer comp.Close()

	sched := comp.scheduler(comp.dispatcher(ctx, os.Stdout))
	n, err := sched.Check(ctx, scheduler.SourceManual)
	if err != nil {
		return err
	}
	fmt.Println(comp.formatter.FormatInfo(fmt.Sprintf("%d reminder(s) due.", n)))
	return nil
}

func add(ctx *cli.Context) error {
	name := strings.TrimSpace(strings.Join(ctx.Args(), " "))
	if name == "" || addTime == "" {
		return errors.New("usage: medimind add --time HH:MM [--days mon,wed] <medicine name>")
	}
	days, err := reminder.ParseDays(addDays)
	if err != nil {
		return err
	}

	comp, err := openComponents(os.Stderr)
	if err != nil {
		return err
	}
	defer comp.Close()

	added, err := comp.store.Add(reminder.Reminder{
		MedicineName: name,
		Time:         addTime,
		Days:         days,
		ImageURL:     addImage,
	})
	if err != nil {
		return err
	}
	fmt.Println(comp.formatter.FormatSuccess(fmt.Sprintf("Added %s at %s (%s)", added.MedicineName, added.Time, added.ID)))
	return nil
}

func list(_ *cli.Context) error {
	comp, err := openComponents(os.Stderr)
	if err != nil {
		return err
	}
	defer comp.Close()

	fmt.Println(comp.formatter.RenderReminders(comp.store.GetAll()))
	return nil
}

func del(ctx *cli.Context) error {
	comp, err := openComponents(os.Stderr)
	if err != nil {
		return err
	}
	defer comp.Close()

	id := ctx.Args().First()
	if id == "" {
		if id, err = pickReminder(comp); err != nil {
			return err
		}
	}

	if err := comp.store.Delete(id); err != nil {
		return err
	}
	fmt.Println(comp.formatter.FormatSuccess("Deleted " + id))
	return nil
}

// pickReminder asks the user to choose a reminder interactively.
func pickReminder(comp *components) (string, error) {
	all := comp.store.GetAll()
	if len(all) == 0 {
		return "", errors.New("no reminders to delete")
	}

	options := make([]ui.PickerOption, 0, len(all))
	for _, r := range all {
		days := make([]string, 0, len(r.Days))
		for _, d := range r.Days {
			days = append(days, string(d))
		}
		options = append(options, ui.PickerOption{
			Label:       r.Time + " " + r.MedicineName,
			Description: strings.Join(days, " "),
		})
	}

	idx, err := ui.NewPicker("Delete which reminder?", options, comp.formatter.Colored()).Run()
	if err != nil {
		return "", err
	}
	return all[idx].ID, nil
}

func extractName(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return errors.New("usage: medimind extract <image file>")
	}
	image, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	comp, err := openComponents(os.Stderr)
	if err != nil {
		return err
	}
	defer comp.Close()

	spinner := ui.NewSpinner(os.Stdout, comp.formatter.Colored())
	spinner.Start("Reading " + path + "...")
	name := comp.extractor().Extract(context.Background(), image, http.DetectContentType(image))
	spinner.Stop()

	fmt.Println(comp.formatter.FormatInfo(name))
	return nil
}

func permission(_ *cli.Context) error {
	ctx := context.Background()
	comp, err := openComponents(os.Stderr)
	if err != nil {
		return err
	}
	defer comp.Close()

	tg := comp.telegram()
	if tg == nil {
		fmt.Println(comp.formatter.FormatInfo("console: granted (Telegram not configured)"))
		return nil
	}
	perm, err := tg.RequestPermission(ctx)
	fmt.Println(comp.formatter.FormatInfo(fmt.Sprintf("telegram: %s", perm)))
	return err
}
