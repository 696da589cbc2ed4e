package reminder

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/notexe/medimind/internal/logger"
)

// Store is the schedule store: the reminder list persisted as one JSON array
// under KeyReminders, kept sorted by time of day.
type Store struct {
	kv  KV
	log logger.Logger
	mu  sync.Mutex
}

// NewStore creates a schedule store on top of kv.
func NewStore(kv KV, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Store{kv: kv, log: log}
}

// GetAll returns every stored reminder. A missing, unreadable or corrupt
// list reads as empty; it never fails the caller.
func (s *Store) GetAll() []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() []Reminder {
	raw, ok, err := s.kv.Get(KeyReminders)
	if err != nil {
		s.log.Warning("failed to read reminders, using empty list: %v", err)
		return []Reminder{}
	}
	if !ok || raw == "" {
		return []Reminder{}
	}

	var reminders []Reminder
	if err := json.Unmarshal([]byte(raw), &reminders); err != nil {
		s.log.Warning("failed to parse reminders, using empty list: %v", err)
		return []Reminder{}
	}
	if reminders == nil {
		reminders = []Reminder{}
	}
	return reminders
}

func (s *Store) save(reminders []Reminder) error {
	sort.SliceStable(reminders, func(i, j int) bool {
		return reminders[i].Time < reminders[j].Time
	})
	data, err := json.Marshal(reminders)
	if err != nil {
		return fmt.Errorf("failed to encode reminders: %w", err)
	}
	if err := s.kv.Set(KeyReminders, string(data)); err != nil {
		return fmt.Errorf("failed to save reminders: %w", err)
	}
	return nil
}

// Get returns a single reminder by id.
func (s *Store) Get(id string) (Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.load() {
		if r.ID == id {
			return r, nil
		}
	}
	return Reminder{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Add assigns a fresh id to r and stores it.
func (s *Store) Add(r Reminder) (Reminder, error) {
	r.ID = uuid.NewString()
	if err := s.Put(r); err != nil {
		return Reminder{}, err
	}
	return r.Normalize(), nil
}

// Put inserts r, or replaces the stored reminder with the same id.
func (s *Store) Put(r Reminder) error {
	if r.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidReminder)
	}
	r = r.Normalize()
	if err := r.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reminders := s.load()
	replaced := false
	for i := range reminders {
		if reminders[i].ID == r.ID {
			reminders[i] = r
			replaced = true
			break
		}
	}
	if !replaced {
		reminders = append(reminders, r)
	}
	return s.save(reminders)
}

// Delete removes the reminder with the given id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reminders := s.load()
	kept := reminders[:0]
	found := false
	for _, r := range reminders {
		if r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.save(kept)
}
