package trigger

import (
	"testing"
	"time"

	"github.com/notexe/medimind/internal/reminder"
)

// 2024-01-01 is a Monday.
func monday(hour, minute, sec int) time.Time {
	return time.Date(2024, time.January, 1, hour, minute, sec, 0, time.Local)
}

func daily(id, at string) reminder.Reminder {
	return reminder.Reminder{
		ID:           id,
		MedicineName: "Aspirin 81mg",
		Time:         at,
		Days:         []reminder.Day{reminder.Mon, reminder.Tue, reminder.Wed, reminder.Thu, reminder.Fri, reminder.Sat, reminder.Sun},
	}
}

func TestEvaluate_Boundary(t *testing.T) {
	r := reminder.Reminder{ID: "r1", MedicineName: "Aspirin", Time: "08:00", Days: []reminder.Day{reminder.Mon}}

	due, next := Evaluate(monday(8, 0, 30), monday(7, 59, 0), []reminder.Reminder{r})
	if len(due) != 1 {
		t.Fatalf("expected 1 due event, got %d", len(due))
	}
	if !due[0].At.Equal(monday(8, 0, 0)) {
		t.Errorf("due at %v, want %v", due[0].At, monday(8, 0, 0))
	}
	if !next.Equal(monday(8, 0, 30)) {
		t.Errorf("checkpoint %v, want now", next)
	}

	due, _ = Evaluate(monday(8, 0, 0), monday(8, 0, 0), []reminder.Reminder{r})
	if len(due) != 0 {
		t.Fatalf("expected no due event when window is empty, got %d", len(due))
	}
}

func TestEvaluate_WindowStartIsExclusive(t *testing.T) {
	r := daily("r1", "08:00")
	// Checkpoint exactly at the fire instant: already delivered.
	due, _ := Evaluate(monday(8, 1, 0), monday(8, 0, 0), []reminder.Reminder{r})
	if len(due) != 0 {
		t.Fatalf("expected no due event, got %+v", due)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	reminders := []reminder.Reminder{daily("a", "09:00"), daily("b", "09:30")}
	last := monday(8, 0, 0)
	now := monday(10, 0, 0)

	first, _ := Evaluate(now, last, reminders)
	second, _ := Evaluate(now, last, reminders)

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 events twice, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Reminder.ID != second[i].Reminder.ID || !first[i].At.Equal(second[i].At) {
			t.Errorf("event %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestEvaluate_NoDuplicateAcrossPasses(t *testing.T) {
	reminders := []reminder.Reminder{daily("a", "09:00")}
	checkpoint := monday(8, 58, 0)

	total := 0
	for now := monday(8, 59, 0); !now.After(monday(9, 5, 0)); now = now.Add(time.Minute) {
		due, next := Evaluate(now, checkpoint, reminders)
		total += len(due)
		checkpoint = next
	}
	if total != 1 {
		t.Fatalf("expected exactly one delivery, got %d", total)
	}
}

func TestEvaluate_LookbackClamp(t *testing.T) {
	reminders := []reminder.Reminder{daily("a", "09:00")}
	now := monday(10, 0, 0)
	last := now.Add(-72 * time.Hour)

	due, _ := Evaluate(now, last, reminders)
	if len(due) != 1 {
		t.Fatalf("expected only today's dose, got %d events", len(due))
	}
	if now.Sub(due[0].At) > DefaultLookback {
		t.Errorf("event at %v is older than the lookback window", due[0].At)
	}
}

func TestEvaluate_LookbackDropsOlderMisses(t *testing.T) {
	reminders := []reminder.Reminder{daily("early", "06:00"), daily("late", "17:00")}
	now := monday(20, 0, 0)
	last := now.Add(-20 * time.Hour)

	due, _ := Evaluate(now, last, reminders)
	if len(due) != 1 || due[0].Reminder.ID != "late" {
		t.Fatalf("expected only the 17:00 reminder, got %+v", due)
	}
}

func TestEvaluate_Debounce(t *testing.T) {
	reminders := []reminder.Reminder{daily("a", "09:00")}
	last := monday(8, 0, 0)

	_, cp := Evaluate(monday(9, 0, 0), last, reminders)
	due, cp2 := Evaluate(monday(9, 0, 2), cp, reminders)
	if len(due) != 0 {
		t.Fatalf("expected debounced pass to be empty, got %d", len(due))
	}
	if !cp2.Equal(cp) {
		t.Errorf("debounced pass moved checkpoint from %v to %v", cp, cp2)
	}
}

func TestEvaluate_ClockWentBackwards(t *testing.T) {
	reminders := []reminder.Reminder{daily("a", "09:00")}
	last := monday(10, 0, 0)

	due, cp := Evaluate(monday(9, 30, 0), last, reminders)
	if len(due) != 0 || !cp.Equal(last) {
		t.Fatalf("expected no events and unchanged checkpoint, got %d events, cp %v", len(due), cp)
	}
}

func TestEvaluate_WeekdayGating(t *testing.T) {
	r := reminder.Reminder{ID: "r1", MedicineName: "Aspirin", Time: "08:00", Days: []reminder.Day{reminder.Mon}}
	tuesday := monday(8, 0, 0).AddDate(0, 0, 1)

	due, _ := Evaluate(tuesday, tuesday.Add(-time.Minute), []reminder.Reminder{r})
	if len(due) != 0 {
		t.Fatalf("expected Monday-only reminder not to fire on Tuesday, got %d", len(due))
	}
}

func TestEvaluate_EmptyDaysNeverFires(t *testing.T) {
	r := reminder.Reminder{ID: "r1", MedicineName: "Aspirin", Time: "08:00"}
	due, _ := Evaluate(monday(8, 0, 30), monday(7, 0, 0), []reminder.Reminder{r})
	if len(due) != 0 {
		t.Fatalf("expected no events, got %d", len(due))
	}
}

func TestEvaluate_InvalidTimeIsInert(t *testing.T) {
	bad := daily("bad", "25:99")
	good := daily("good", "08:00")
	due, _ := Evaluate(monday(8, 0, 30), monday(7, 0, 0), []reminder.Reminder{bad, good})
	if len(due) != 1 || due[0].Reminder.ID != "good" {
		t.Fatalf("expected only the valid reminder, got %+v", due)
	}
}

func TestEvaluate_SameMinuteNotCoalesced(t *testing.T) {
	reminders := []reminder.Reminder{daily("a", "08:00"), daily("b", "08:00"), daily("c", "08:00")}
	due, _ := Evaluate(monday(8, 0, 10), monday(7, 59, 0), reminders)
	if len(due) != 3 {
		t.Fatalf("expected 3 independent events, got %d", len(due))
	}
}

func TestEvaluate_MidnightCrossingForfeitsMatch(t *testing.T) {
	r := reminder.Reminder{ID: "late", MedicineName: "Melatonin", Time: "23:50", Days: []reminder.Day{reminder.Mon}}
	tuesdayEarly := monday(0, 5, 0).AddDate(0, 0, 1)

	due, _ := Evaluate(tuesdayEarly, monday(23, 0, 0), []reminder.Reminder{r})
	if len(due) != 0 {
		t.Fatalf("expected Monday 23:50 reminder not to fire on Tuesday 00:05, got %d", len(due))
	}
}

func TestEvaluate_EditedReminderMayFireAgain(t *testing.T) {
	r := daily("a", "08:00")
	_, cp := Evaluate(monday(8, 1, 0), monday(7, 59, 0), []reminder.Reminder{r})

	r.Time = "09:00"
	due, _ := Evaluate(monday(9, 1, 0), cp, []reminder.Reminder{r})
	if len(due) != 1 {
		t.Fatalf("expected edited reminder to fire at its new time, got %d", len(due))
	}
}

func TestEvaluator_CustomPolicy(t *testing.T) {
	e := Evaluator{Debounce: time.Minute, Lookback: time.Hour}
	reminders := []reminder.Reminder{daily("a", "07:30"), daily("b", "09:30")}

	due, _ := e.Evaluate(monday(10, 0, 0), monday(6, 0, 0), reminders)
	if len(due) != 1 || due[0].Reminder.ID != "b" {
		t.Fatalf("expected only the reminder inside the 1h lookback, got %+v", due)
	}

	due, cp := e.Evaluate(monday(10, 0, 30), monday(10, 0, 0), reminders)
	if len(due) != 0 || !cp.Equal(monday(10, 0, 0)) {
		t.Fatalf("expected 1m debounce to skip the pass")
	}
}
