package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/notexe/medimind/internal/reminder"
)

var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	SystemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("183")). // Soft purple
			Italic(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")). // Green
			Bold(true)

	AlertBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("215")). // Orange
			Padding(0, 1)
)

// Formatter renders engine output for a terminal.
type Formatter struct {
	colored bool
}

func NewFormatter(colored bool) *Formatter {
	return &Formatter{colored: colored}
}

// Colored reports whether output is styled.
func (f *Formatter) Colored() bool {
	return f.colored
}

// AlertView is the terminal rendering of an alert.
type AlertView struct {
	Title    string
	Body     string
	ImageRef string
	Actions  []string
	Replaced bool
}

// FormatAlert renders an alert as a box.
func (f *Formatter) FormatAlert(a AlertView) string {
	title := "🔔 " + a.Title
	if a.Replaced {
		title += " (again)"
	}

	lines := []string{a.Body}
	if a.ImageRef != "" && !strings.HasPrefix(a.ImageRef, "data:") {
		lines = append(lines, "Image: "+a.ImageRef)
	}
	if len(a.Actions) > 0 {
		lines = append(lines, "["+strings.Join(a.Actions, "] [")+"]")
	}

	if !f.colored {
		return title + "\n" + strings.Join(lines, "\n")
	}
	lines[0] = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Render(lines[0])
	for i := 1; i < len(lines); i++ {
		lines[i] = DimStyle.Render(lines[i])
	}
	return AlertBoxStyle.Render(HeaderStyle.Render(title) + "\n" + strings.Join(lines, "\n"))
}

func (f *Formatter) FormatError(err error) string {
	prefix := "Error: "
	if f.colored {
		prefix = ErrorStyle.Render("Error: ")
	}
	return prefix + err.Error()
}

func (f *Formatter) FormatInfo(info string) string {
	if f.colored {
		return InfoStyle.Render(info)
	}
	return info
}

func (f *Formatter) FormatSystem(msg string) string {
	if f.colored {
		return SystemStyle.Render(msg)
	}
	return msg
}

func (f *Formatter) FormatSuccess(msg string) string {
	if f.colored {
		return SuccessStyle.Render(msg)
	}
	return msg
}

// RemindersMarkdown lays reminders out as a markdown table.
func RemindersMarkdown(reminders []reminder.Reminder) string {
	if len(reminders) == 0 {
		return "_No reminders yet. Add one with `/add`._\n"
	}

	var sb strings.Builder
	sb.WriteString("| Time | Medicine | Slot | Days | ID |\n")
	sb.WriteString("|------|----------|------|------|----|\n")
	for _, r := range reminders {
		days := make([]string, 0, len(r.Days))
		for _, d := range r.Days {
			days = append(days, string(d))
		}
		dayText := strings.Join(days, " ")
		if dayText == "" {
			dayText = "_inactive_"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | `%s` |\n",
			r.Time, escapeCell(r.MedicineName), r.TimeSlot, dayText, r.ID)
	}
	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// RenderReminders renders the reminder table for the terminal. Plain output
// is the markdown itself.
func (f *Formatter) RenderReminders(reminders []reminder.Reminder) string {
	md := RemindersMarkdown(reminders)
	if !f.colored {
		return md
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(rendered, "\n")
}

func (f *Formatter) FormatWelcome(reminderCount int, surface string) string {
	title := "MediMind • medication reminders"
	status := fmt.Sprintf("%d reminder(s), alerts via %s", reminderCount, surface)
	help := "Type /help for commands"

	if !f.colored {
		return strings.Join([]string{"", title, status, help, ""}, "\n")
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Render(HeaderStyle.Render(title) + "\n" + DimStyle.Render(status) + "\n\n" + DimStyle.Render(help))
	return "\n" + box + "\n"
}

func (f *Formatter) FormatHelp() string {
	commands := [][2]string{
		{"/list", "Show all reminders"},
		{"/add HH:MM days name", "Add a reminder, e.g. /add 08:00 mon,wed,fri Aspirin 81mg"},
		{"/delete <id>", "Delete a reminder"},
		{"/check", "Evaluate reminders now"},
		{"/extract <image>", "Read a medicine name from a photo"},
		{"/help", "Show this help"},
		{"/quit", "Exit"},
	}

	var sb strings.Builder
	if f.colored {
		sb.WriteString(HeaderStyle.Render("Commands") + "\n")
	} else {
		sb.WriteString("Commands\n")
	}
	for _, c := range commands {
		name := fmt.Sprintf("  %-24s", c[0])
		if f.colored {
			name = InfoStyle.Render(name)
		}
		sb.WriteString(name + c[1] + "\n")
	}
	return sb.String()
}
