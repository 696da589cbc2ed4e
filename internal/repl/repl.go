package repl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/notexe/medimind/internal/reminder"
	"github.com/notexe/medimind/internal/scheduler"
	"github.com/notexe/medimind/internal/ui"
)

// Checker runs one evaluation pass.
type Checker interface {
	Check(ctx context.Context, source string) (int, error)
}

// Extractor reads a medicine name from an image.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) string
}

type REPL struct {
	store     *reminder.Store
	checker   Checker
	extractor Extractor
	rl        *readline.Instance
	out       io.Writer
	formatter *ui.Formatter
	surface   string
}

func NewREPL(store *reminder.Store, formatter *ui.Formatter) (*REPL, error) {
	rl, err := setupReadline()
	if err != nil {
		return nil, fmt.Errorf("failed to setup readline: %w", err)
	}

	return &REPL{
		store:     store,
		rl:        rl,
		out:       rl.Stdout(),
		formatter: formatter,
	}, nil
}

// Stdout returns a writer that prints above the prompt without corrupting
// the line being edited. Alerts shown while the shell is open go here.
func (r *REPL) Stdout() io.Writer {
	return r.out
}

// Stderr is the log destination while the shell is open.
func (r *REPL) Stderr() io.Writer {
	if r.rl == nil {
		return r.out
	}
	return r.rl.Stderr()
}

func (r *REPL) SetChecker(c Checker) {
	r.checker = c
}

func (r *REPL) SetExtractor(e Extractor) {
	r.extractor = e
}

// SetSurface names the alert surface in the welcome banner.
func (r *REPL) SetSurface(name string) {
	r.surface = name
}

func (r *REPL) Start(ctx context.Context) error {
	defer r.rl.Close()

	r.displayWelcome()

	for {
		input, err := r.readInput()
		if err != nil {
			if isEOF(err) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if input == "" {
			continue
		}

		isCommand, command, args := r.parseCommand(input)
		if !isCommand {
			r.displayError(fmt.Errorf("unknown input (type /help for available commands)"))
			continue
		}

		if err := r.handleCommand(ctx, command, args); err != nil {
			r.displayError(err)
		}

		if command == "/quit" || command == "/exit" || command == "/q" {
			return nil
		}
	}
}

func (r *REPL) Stop() {
	r.rl.Close()
}

func (r *REPL) handleCommand(ctx context.Context, command, args string) error {
	switch command {
	case "/help", "/h":
		r.displayHelp()
		return nil

	case "/list", "/l":
		fmt.Fprintln(r.out, r.formatter.RenderReminders(r.store.GetAll()))
		return nil

	case "/add", "/a":
		return r.handleAdd(args)

	case "/delete", "/d":
		return r.handleDelete(args)

	case "/check", "/c":
		return r.handleCheck(ctx)

	case "/extract", "/x":
		return r.handleExtract(ctx, args)

	case "/quit", "/exit", "/q":
		fmt.Fprintln(r.out, "\nGoodbye!")
		return nil

	default:
		return fmt.Errorf("unknown command: %s (type /help for available commands)", command)
	}
}

// handleAdd parses "HH:MM days name...", where days is a comma separated
// weekday list, "daily" or "none".
func (r *REPL) handleAdd(args string) error {
	parts := strings.Fields(args)
	if len(parts) < 3 {
		return fmt.Errorf("usage: /add HH:MM <days|daily> <medicine name>")
	}

	days, err := reminder.ParseDays(parts[1])
	if err != nil {
		return err
	}

	added, err := r.store.Add(reminder.Reminder{
		MedicineName: strings.Join(parts[2:], " "),
		Time:         parts[0],
		Days:         days,
	})
	if err != nil {
		return err
	}

	r.displaySuccess(fmt.Sprintf("Added %s at %s (%s)", added.MedicineName, added.Time, added.ID))
	return nil
}

// handleDelete accepts a full id or an unambiguous prefix of one.
func (r *REPL) handleDelete(args string) error {
	if args == "" {
		return fmt.Errorf("usage: /delete <id>")
	}

	var matches []reminder.Reminder
	for _, rem := range r.store.GetAll() {
		if rem.ID == args {
			matches = []reminder.Reminder{rem}
			break
		}
		if strings.HasPrefix(rem.ID, args) {
			matches = append(matches, rem)
		}
	}

	switch len(matches) {
	case 0:
		return fmt.Errorf("%w: %s", reminder.ErrNotFound, args)
	case 1:
	default:
		return fmt.Errorf("id prefix %q matches %d reminders", args, len(matches))
	}

	if err := r.store.Delete(matches[0].ID); err != nil {
		return err
	}
	r.displaySuccess(fmt.Sprintf("Deleted %s", matches[0].MedicineName))
	return nil
}

func (r *REPL) handleCheck(ctx context.Context) error {
	if r.checker == nil {
		return fmt.Errorf("reminder checks are not available")
	}
	n, err := r.checker.Check(ctx, scheduler.SourceManual)
	if err != nil {
		return err
	}
	r.displayInfo(fmt.Sprintf("%d reminder(s) due.", n))
	return nil
}

func (r *REPL) handleExtract(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("usage: /extract <image file>")
	}
	if r.extractor == nil {
		return fmt.Errorf("text extraction is not available")
	}

	image, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	r.displaySystem("Reading " + path + "...")
	r.displayInfo(r.extractor.Extract(ctx, image, http.DetectContentType(image)))
	return nil
}
