package reminder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Day is a weekday tag as persisted in the reminder list.
type Day string

const (
	Mon Day = "Mon"
	Tue Day = "Tue"
	Wed Day = "Wed"
	Thu Day = "Thu"
	Fri Day = "Fri"
	Sat Day = "Sat"
	Sun Day = "Sun"
)

// DaysOfWeek is indexed by time.Weekday (Sunday first).
var DaysOfWeek = [7]Day{Sun, Mon, Tue, Wed, Thu, Fri, Sat}

// DayOf returns the tag for a weekday.
func DayOf(w time.Weekday) Day {
	return DaysOfWeek[w]
}

// ParseDay accepts a tag or a full weekday name in any case ("mon", "Mon",
// "MONDAY").
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	for i, d := range DaysOfWeek {
		if strings.EqualFold(s, string(d)) || strings.EqualFold(s, time.Weekday(i).String()) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown day %q", s)
}

// TimeSlot is the coarse part of day shown next to a reminder. It is advisory
// only and never consulted when deciding whether a reminder fires.
type TimeSlot string

const (
	Morning   TimeSlot = "Morning"
	Afternoon TimeSlot = "Afternoon"
	Evening   TimeSlot = "Evening"
)

// SlotFor picks the slot matching an hour of the day.
func SlotFor(hour int) TimeSlot {
	switch {
	case hour < 12:
		return Morning
	case hour < 17:
		return Afternoon
	default:
		return Evening
	}
}

// Reminder is a recurring time-of-day medication reminder.
// JSON names match the list persisted by the original web app.
type Reminder struct {
	ID           string   `json:"id"`
	MedicineName string   `json:"medicineName"`
	TimeSlot     TimeSlot `json:"timeSlot"`
	Time         string   `json:"time"` // HH:MM, 24h
	Days         []Day    `json:"days"`
	ImageURL     string   `json:"imageUrl,omitempty"`
}

var (
	// ErrNotFound is returned when no reminder has the requested id.
	ErrNotFound = errors.New("reminder not found")

	// ErrInvalidReminder wraps every validation failure.
	ErrInvalidReminder = errors.New("invalid reminder")
)

// ParseClock parses "HH:MM" into hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q (expected HH:MM)", s)
	}
	hour, errH := strconv.Atoi(parts[0])
	minute, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q (expected HH:MM)", s)
	}
	return hour, minute, nil
}

// Clock returns the reminder's hour and minute.
func (r Reminder) Clock() (hour, minute int, err error) {
	return ParseClock(r.Time)
}

// HasDay reports whether the reminder is scheduled on d.
func (r Reminder) HasDay(d Day) bool {
	for _, day := range r.Days {
		if day == d {
			return true
		}
	}
	return false
}

// Validate checks the fields the engine depends on. An empty day set is
// allowed: such a reminder is stored but never fires.
func (r Reminder) Validate() error {
	if strings.TrimSpace(r.MedicineName) == "" {
		return fmt.Errorf("%w: medicine name is required", ErrInvalidReminder)
	}
	if _, _, err := r.Clock(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReminder, err)
	}
	for _, d := range r.Days {
		if _, err := ParseDay(string(d)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidReminder, err)
		}
	}
	return nil
}

// Normalize canonicalises the time to zero-padded HH:MM, day tags to their
// canonical spelling and fills in a missing time slot.
func (r Reminder) Normalize() Reminder {
	if h, m, err := r.Clock(); err == nil {
		r.Time = fmt.Sprintf("%02d:%02d", h, m)
		if r.TimeSlot == "" {
			r.TimeSlot = SlotFor(h)
		}
	}
	days := make([]Day, 0, len(r.Days))
	seen := make(map[Day]bool, len(r.Days))
	for _, d := range r.Days {
		canon, err := ParseDay(string(d))
		if err != nil {
			canon = d
		}
		if seen[canon] {
			continue
		}
		seen[canon] = true
		days = append(days, canon)
	}
	r.Days = days
	r.MedicineName = strings.TrimSpace(r.MedicineName)
	return r
}

// ParseDays parses a comma or space separated day list. "daily" and
// "every" expand to the whole week.
func ParseDays(s string) ([]Day, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none":
		return nil, nil
	case "daily", "every", "everyday", "all":
		return []Day{Mon, Tue, Wed, Thu, Fri, Sat, Sun}, nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	days := make([]Day, 0, len(fields))
	for _, f := range fields {
		d, err := ParseDay(f)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, nil
}
