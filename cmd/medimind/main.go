// Command medimind evaluates recurring medication reminders and delivers
// them as alerts.
//
// Usage:
//
//	medimind run                 # reminder loop with an interactive shell
//	medimind run --headless      # reminder loop only
//	medimind responder           # handle snooze/dismiss buttons on alerts
//	medimind add --time 08:00 --days mon,wed,fri Aspirin 81mg
//	medimind list | check | delete <id> | extract <image> | permission
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	if err := Execute(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "medimind: %s\n", err)
		os.Exit(1)
	}
}
