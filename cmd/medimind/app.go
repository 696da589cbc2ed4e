package main

import (
	"github.com/notexe/medimind/internal/config"
	"github.com/urfave/cli"
)

var (
	configPath string
	noColor    bool

	globalFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "config, c",
			Usage:       "path to the configuration file",
			Value:       config.GetDefaultConfigPath(),
			Destination: &configPath,
		},
		cli.BoolFlag{
			Name:        "no-color",
			Usage:       "disable colored output",
			Destination: &noColor,
		},
	}
)

// Execute runs the medimind command line with args.
func Execute(args []string) error {
	app := cli.App{
		Name:      "medimind",
		HelpName:  "medimind",
		Usage:     "medication reminders that never ring twice",
		Version:   version,
		UsageText: "medimind [global options] <command> [arguments...]",
		Flags:     globalFlags,
		Commands: []cli.Command{
			{
				Name:   "run",
				Usage:  "run the reminder loop with an interactive shell",
				Action: run,
				Flags:  runFlags,
			},
			{
				Name:   "responder",
				Usage:  "handle alert buttons (snooze, dismiss, open)",
				Action: respond,
			},
			{
				Name:   "check",
				Usage:  "evaluate reminders once and deliver anything due",
				Action: check,
			},
			{
				Name:      "add",
				Aliases:   []string{"a"},
				Usage:     "add a reminder",
				ArgsUsage: "<medicine name>",
				Action:    add,
				Flags:     addFlags,
			},
			{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "list reminders",
				Action:  list,
			},
			{
				Name:      "delete",
				Aliases:   []string{"d"},
				Usage:     "delete a reminder",
				ArgsUsage: "[id]",
				Action:    del,
			},
			{
				Name:      "extract",
				Usage:     "read a medicine name from a photo of its packaging",
				ArgsUsage: "<image file>",
				Action:    extractName,
			},
			{
				Name:   "permission",
				Usage:  "request permission to show alerts",
				Action: permission,
			},
		},
	}
	return app.Run(args)
}
