package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user backs out of a picker.
var ErrCancelled = errors.New("cancelled")

// PickerOption is a single line in a picker.
type PickerOption struct {
	Label       string
	Description string
}

// Picker is an arrow-key navigable single-choice menu. Without a terminal it
// falls back to a numbered prompt.
type Picker struct {
	question string
	options  []PickerOption
	selected int
	colored  bool

	in  io.Reader
	out io.Writer

	cursorStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	optionStyle   lipgloss.Style
	questionStyle lipgloss.Style
	hintStyle     lipgloss.Style
}

// NewPicker creates a picker on stdin and stdout.
func NewPicker(question string, options []PickerOption, colored bool) *Picker {
	return &Picker{
		question: question,
		options:  options,
		colored:  colored,
		in:       os.Stdin,
		out:      os.Stdout,

		cursorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
		selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true),
		optionStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		questionStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
		hintStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
	}
}

// Run displays the picker and returns the index of the chosen option.
func (p *Picker) Run() (int, error) {
	if len(p.options) == 0 {
		return -1, errors.New("nothing to choose from")
	}

	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.runSimple()
	}
	fd := int(f.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return p.runSimple()
	}
	defer func() {
		term.Restore(fd, oldState)
		fmt.Fprint(p.out, "\033[?25h") // Show cursor
	}()

	fmt.Fprint(p.out, "\033[?25l") // Hide cursor

	totalLines := len(p.options) + 3
	p.printMenu()

	reader := bufio.NewReader(p.in)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return -1, err
		}

		switch b {
		case 13, 10, ' ': // Enter, Space
			p.clearMenu(totalLines)
			return p.selected, nil
		case 3, 'q': // Ctrl+C
			p.clearMenu(totalLines)
			return -1, ErrCancelled
		case 'j':
			p.moveDown()
		case 'k':
			p.moveUp()
		case 27: // Escape sequence
			b2, _ := reader.ReadByte()
			if b2 == '[' {
				b3, _ := reader.ReadByte()
				switch b3 {
				case 'A':
					p.moveUp()
				case 'B':
					p.moveDown()
				}
			}
		default:
			if b >= '1' && b <= '9' {
				if idx := int(b - '1'); idx < len(p.options) {
					p.clearMenu(totalLines)
					return idx, nil
				}
			}
		}

		p.clearMenu(totalLines)
		p.printMenu()
	}
}

func (p *Picker) label(i int) string {
	opt := p.options[i]
	if opt.Description != "" {
		return opt.Label + " - " + opt.Description
	}
	return opt.Label
}

func (p *Picker) printMenu() {
	var sb strings.Builder

	hint := "[j/k or arrows] move  [enter] select  [q] cancel"
	if p.colored {
		sb.WriteString(p.questionStyle.Render(p.question) + "\r\n")
		sb.WriteString(p.hintStyle.Render(hint) + "\r\n\r\n")
	} else {
		sb.WriteString(p.question + "\r\n" + hint + "\r\n\r\n")
	}

	for i := range p.options {
		cursor := "  "
		if i == p.selected {
			cursor = "> "
		}
		switch {
		case !p.colored:
			sb.WriteString(cursor + p.label(i))
		case i == p.selected:
			sb.WriteString(p.cursorStyle.Render(cursor) + p.selectedStyle.Render(p.label(i)))
		default:
			sb.WriteString(cursor + p.optionStyle.Render(p.label(i)))
		}
		sb.WriteString("\r\n")
	}

	fmt.Fprint(p.out, sb.String())
}

func (p *Picker) clearMenu(lines int) {
	for i := 0; i < lines; i++ {
		fmt.Fprint(p.out, "\033[A\033[2K\r")
	}
}

// runSimple reads a 1-based option number from a line of input. An empty
// or invalid answer cancels.
func (p *Picker) runSimple() (int, error) {
	fmt.Fprintln(p.out, p.question)
	for i := range p.options {
		fmt.Fprintf(p.out, "  [%d] %s\n", i+1, p.label(i))
	}
	fmt.Fprint(p.out, "Enter number: ")

	input, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && input == "" {
		return -1, ErrCancelled
	}
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > len(p.options) {
		return -1, ErrCancelled
	}
	return n - 1, nil
}

func (p *Picker) moveUp() {
	if p.selected > 0 {
		p.selected--
	} else {
		p.selected = len(p.options) - 1
	}
}

func (p *Picker) moveDown() {
	if p.selected < len(p.options)-1 {
		p.selected++
	} else {
		p.selected = 0
	}
}
