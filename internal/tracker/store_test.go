package tracker

import (
	"testing"
	"time"

	"lootledger/internal/core"
)

func testClock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func newTestStore() *Store {
	rec := core.NewUserRecord("player_1", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	return NewStore(rec)
}

func TestStore_PutAndGet(t *testing.T) {
	s := newTestStore()

	if s.Has("2024-05-01") {
		t.Fatal("empty store should not report a snapshot")
	}
	if _, ok := s.Get("2024-05-01"); ok {
		t.Fatal("Get on empty store should report absent")
	}

	s.Put("2024-05-01", core.Snapshot{Resources: core.Resources{Gold: 100}, Note: "opening"})

	snap, ok := s.Get("2024-05-01")
	if !ok {
		t.Fatal("snapshot should exist after Put")
	}
	if snap.Gold != 100 || snap.Note != "opening" {
		t.Errorf("stored snapshot = %+v, want gold 100 and note", snap)
	}
}

func TestStore_OverwritePreservesCreatedAt(t *testing.T) {
	first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	second := time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC)

	s := newTestStore()
	s.WithClock(testClock(first, second))

	s.Put("2024-05-01", core.Snapshot{Resources: core.Resources{Gold: 100}})
	snap := s.Put("2024-05-01", core.Snapshot{Resources: core.Resources{Gold: 150}})

	if !snap.CreatedAt.Equal(first) {
		t.Errorf("createdAt = %v, want original %v", snap.CreatedAt, first)
	}
	if !snap.UpdatedAt.Equal(second) {
		t.Errorf("updatedAt = %v, want %v", snap.UpdatedAt, second)
	}
	if snap.Gold != 150 {
		t.Errorf("gold = %d, want overwritten value 150", snap.Gold)
	}
	if len(s.Record().Records) != 1 {
		t.Error("overwrite must not create a second snapshot for the same day")
	}
}

func TestStore_PutBumpsLastUpdated(t *testing.T) {
	at := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	s := newTestStore()
	s.WithClock(testClock(at))

	s.Put("2024-05-02", core.Snapshot{})

	if !s.Record().LastUpdated.Equal(at) {
		t.Errorf("record lastUpdated = %v, want %v", s.Record().LastUpdated, at)
	}
}

func TestStore_NoteHistory(t *testing.T) {
	s := newTestStore()
	s.Put("2024-05-01", core.Snapshot{Note: "first"})
	s.Put("2024-05-03", core.Snapshot{Note: "third"})
	s.Put("2024-05-02", core.Snapshot{})

	notes := s.NoteHistory()
	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2 (empty notes excluded)", len(notes))
	}
	if notes[0].Day != "2024-05-03" || notes[1].Day != "2024-05-01" {
		t.Errorf("notes should be most recent first, got %v then %v", notes[0].Day, notes[1].Day)
	}
}

func TestStore_Days(t *testing.T) {
	s := newTestStore()
	for _, d := range []core.Day{"2024-05-03", "2024-04-30", "2024-05-01"} {
		s.Put(d, core.Snapshot{})
	}

	days := s.Days()
	want := []core.Day{"2024-04-30", "2024-05-01", "2024-05-03"}
	for i, d := range want {
		if days[i] != d {
			t.Fatalf("Days() = %v, want %v", days, want)
		}
	}
}
