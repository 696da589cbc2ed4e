package reminder

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/notexe/medimind/internal/logger"
	"github.com/spf13/afero"
)

func newMemKV(t *testing.T) *FileKV {
	t.Helper()
	kv, err := NewFileKV(afero.NewMemMapFs(), "/medimind/store.json")
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}
	return kv
}

func TestStore_AddPutDelete(t *testing.T) {
	s := NewStore(newMemKV(t), nil)

	evening, err := s.Add(Reminder{MedicineName: " Ibuprofen ", Time: "20:00", Days: []Day{"mon", "Tue"}})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	morning, err := s.Add(Reminder{MedicineName: "Aspirin", Time: "8:05", Days: []Day{Mon}})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if evening.ID == "" || evening.ID == morning.ID {
		t.Fatalf("expected distinct generated ids, got %q and %q", evening.ID, morning.ID)
	}

	all := s.GetAll()
	if len(all) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(all))
	}
	if all[0].ID != morning.ID || all[0].Time != "08:05" {
		t.Errorf("expected list ordered by time with normalised clock, got %+v", all)
	}
	if all[1].MedicineName != "Ibuprofen" || all[1].Days[0] != Mon || all[1].TimeSlot != Evening {
		t.Errorf("expected normalised evening reminder, got %+v", all[1])
	}

	edited := all[1]
	edited.Time = "07:00"
	if err := s.Put(edited); err != nil {
		t.Fatalf("Put: %v", err)
	}
	all = s.GetAll()
	if len(all) != 2 || all[0].ID != evening.ID {
		t.Fatalf("expected edit to replace in place and reorder, got %+v", all)
	}

	if err := s.Delete(morning.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(morning.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Get(evening.ID); err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestStore_PutValidates(t *testing.T) {
	s := NewStore(newMemKV(t), nil)

	cases := []Reminder{
		{ID: "1", MedicineName: "", Time: "08:00"},
		{ID: "2", MedicineName: "X", Time: "24:00"},
		{ID: "3", MedicineName: "X", Time: "08:00", Days: []Day{"Funday"}},
		{ID: "", MedicineName: "X", Time: "08:00"},
	}
	for _, r := range cases {
		if err := s.Put(r); !errors.Is(err, ErrInvalidReminder) {
			t.Errorf("Put(%+v): expected ErrInvalidReminder, got %v", r, err)
		}
	}
	if got := len(s.GetAll()); got != 0 {
		t.Fatalf("expected nothing stored, got %d", got)
	}
}

func TestStore_CorruptListReadsEmpty(t *testing.T) {
	kv := newMemKV(t)
	if err := kv.Set(KeyReminders, "{not json"); err != nil {
		t.Fatal(err)
	}
	log := logger.NewMockLogger()
	s := NewStore(kv, log)

	if got := s.GetAll(); len(got) != 0 {
		t.Fatalf("expected empty list, got %+v", got)
	}
	if len(log.Warnings()) == 0 {
		t.Error("expected a warning for the corrupt list")
	}

	// The store recovers on the next write.
	if _, err := s.Add(Reminder{MedicineName: "Aspirin", Time: "08:00"}); err != nil {
		t.Fatalf("Add after corruption: %v", err)
	}
	if got := len(s.GetAll()); got != 1 {
		t.Fatalf("expected 1 reminder, got %d", got)
	}
}

func TestStore_ReadsOriginalFormat(t *testing.T) {
	kv := newMemKV(t)
	raw := `[{"id":"2024-01-01T08:00:00.000Z0.42","medicineName":"Aspirin 81mg","timeSlot":"Morning","time":"08:00","days":["Mon","Wed"]}]`
	if err := kv.Set(KeyReminders, raw); err != nil {
		t.Fatal(err)
	}

	all := NewStore(kv, nil).GetAll()
	if len(all) != 1 || all[0].MedicineName != "Aspirin 81mg" || !all[0].HasDay(Wed) {
		t.Fatalf("unexpected decode: %+v", all)
	}
}

func TestCheckpoint_InitialisesToNowAndPersists(t *testing.T) {
	kv := newMemKV(t)
	cp := NewCheckpoint(kv, nil)
	fixed := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	cp.SetClock(func() time.Time { return fixed })

	if got := cp.Get(); !got.Equal(fixed) {
		t.Fatalf("expected now, got %v", got)
	}

	cp.SetClock(func() time.Time { return fixed.Add(time.Hour) })
	if got := cp.Get(); !got.Equal(fixed) {
		t.Fatalf("expected persisted initial value %v, got %v", fixed, got)
	}
}

func TestCheckpoint_CorruptFallsBackToNow(t *testing.T) {
	kv := newMemKV(t)
	if err := kv.Set(KeyLastCheck, "yesterday-ish"); err != nil {
		t.Fatal(err)
	}
	log := logger.NewMockLogger()
	cp := NewCheckpoint(kv, log)
	fixed := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	cp.SetClock(func() time.Time { return fixed })

	if got := cp.Get(); !got.Equal(fixed) {
		t.Fatalf("expected now, got %v", got)
	}
	if len(log.Warnings()) == 0 {
		t.Error("expected a warning for the corrupt checkpoint")
	}
}

func TestCheckpoint_Monotonic(t *testing.T) {
	cp := NewCheckpoint(newMemKV(t), nil)
	t1 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	if err := cp.Set(t1); err != nil {
		t.Fatal(err)
	}
	if err := cp.Set(t1.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	if got := cp.Get(); !got.Equal(t1) {
		t.Fatalf("checkpoint moved backwards to %v", got)
	}
	if err := cp.Set(t1.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	if got := cp.Get(); !got.Equal(t1.Add(time.Minute)) {
		t.Fatalf("checkpoint did not advance, got %v", got)
	}
}

func TestSQLiteKV_RoundTrip(t *testing.T) {
	kv, err := NewSQLiteKV(filepath.Join(t.TempDir(), "nested", "medimind.db"))
	if err != nil {
		t.Fatalf("NewSQLiteKV: %v", err)
	}
	defer kv.Close()

	if _, ok, err := kv.Get("missing"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := kv.Set("k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := kv.Set("k", "v2"); err != nil {
		t.Fatal(err)
	}
	if v, ok, err := kv.Get("k"); err != nil || !ok || v != "v2" {
		t.Fatalf("got %q ok=%v err=%v", v, ok, err)
	}
	if err := kv.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := kv.Get("k"); ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestFileKV_CorruptFileReadsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/s.json", []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	kv, err := NewFileKV(fs, "/s.json")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, err := kv.Get(KeyReminders); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}
	if err := kv.Set("a", "b"); err != nil {
		t.Fatal(err)
	}
	if v, _, _ := kv.Get("a"); v != "b" {
		t.Fatalf("got %q", v)
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"daily", 7, false},
		{"mon,wed fri", 3, false},
		{"", 0, false},
		{"mon,xyz", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDays(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDays(%q) err = %v", tt.in, err)
			continue
		}
		if len(got) != tt.want {
			t.Errorf("ParseDays(%q) = %v, want %d days", tt.in, got, tt.want)
		}
	}
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		in      string
		want    Day
		wantErr bool
	}{
		{"mon", Mon, false},
		{" WED ", Wed, false},
		{"Sunday", Sun, false},
		{"thursday", Thu, false},
		{"Monkey", "", true},
		{"sunshine", "", true},
		{"Wednesdayyy", "", true},
		{"Tu", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDay(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDay(%q) = %q, %v", tt.in, got, err)
		}
	}

	r := Reminder{ID: "1", MedicineName: "X", Time: "08:00", Days: []Day{"monkey"}}
	if err := r.Validate(); !errors.Is(err, ErrInvalidReminder) {
		t.Errorf("Validate accepted %v: %v", r.Days, err)
	}
}

func TestOpenKV(t *testing.T) {
	dir := t.TempDir()
	for _, driver := range []string{DriverSQLite, DriverFile} {
		kv, err := OpenKV(driver, filepath.Join(dir, driver, "store"))
		if err != nil {
			t.Fatalf("%s: %v", driver, err)
		}
		if err := kv.Set("k", "v"); err != nil {
			t.Fatalf("%s: Set: %v", driver, err)
		}
		if v, ok, err := kv.Get("k"); err != nil || !ok || v != "v" {
			t.Fatalf("%s: Get = %q %v %v", driver, v, ok, err)
		}
		if err := kv.Close(); err != nil {
			t.Fatalf("%s: Close: %v", driver, err)
		}
	}
	if _, err := OpenKV("postgres", filepath.Join(dir, "x")); err == nil {
		t.Fatal("expected an error for an unknown driver")
	}
}
