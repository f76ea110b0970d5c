package tracker

import (
	"sort"
	"time"

	"lootledger/internal/core"
)

// Store gives date-keyed access to one user's snapshots. It operates on an
// explicit UserRecord so several sessions can coexist; there is no ambient
// current-user state. The store does no validation, that is the save
// policy's job.
type Store struct {
	rec *core.UserRecord
	now func() time.Time
}

func NewStore(rec *core.UserRecord) *Store {
	return &Store{rec: rec, now: time.Now}
}

// WithClock overrides the store's clock.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Record returns the underlying user record.
func (s *Store) Record() *core.UserRecord {
	return s.rec
}

// Get returns the snapshot for a day, if one exists.
func (s *Store) Get(day core.Day) (*core.Snapshot, bool) {
	snap, ok := s.rec.Records[day]
	return snap, ok
}

// Has reports whether a snapshot exists for the day.
func (s *Store) Has(day core.Day) bool {
	_, ok := s.rec.Records[day]
	return ok
}

// Put inserts or overwrites the snapshot for a day. An overwrite keeps the
// original createdAt; updatedAt and the record's lastUpdated always move to
// now. At most one snapshot ever exists per day.
func (s *Store) Put(day core.Day, snap core.Snapshot) *core.Snapshot {
	now := s.now()
	snap.UpdatedAt = now
	if prev, ok := s.rec.Records[day]; ok && !prev.CreatedAt.IsZero() {
		snap.CreatedAt = prev.CreatedAt
	} else {
		snap.CreatedAt = now
	}
	stored := snap
	s.rec.Records[day] = &stored
	s.rec.LastUpdated = now
	return &stored
}

// Days returns every recorded day in ascending order.
func (s *Store) Days() []core.Day {
	days := make([]core.Day, 0, len(s.rec.Records))
	for day := range s.rec.Records {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// NoteEntry is one dated free-text note.
type NoteEntry struct {
	Day       core.Day  `json:"day"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}

// NoteHistory returns all non-empty notes, most recent day first.
func (s *Store) NoteHistory() []NoteEntry {
	var notes []NoteEntry
	for day, snap := range s.rec.Records {
		if snap.Note != "" {
			notes = append(notes, NoteEntry{Day: day, Note: snap.Note, CreatedAt: snap.CreatedAt})
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].Day > notes[j].Day })
	return notes
}
