package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lootledger/internal/core"
	"lootledger/internal/log"
	"lootledger/internal/storage"
)

var (
	ErrDayNotFound = errors.New("no snapshot for that day")
	// ErrUsernameMismatch means an imported backup belongs to a different
	// username and the caller did not force the import.
	ErrUsernameMismatch = errors.New("backup belongs to a different username")
)

// Service runs record operations for one request at a time: load the user's
// record, apply the operation through a Store, persist if anything changed.
type Service struct {
	repo   *storage.Repository
	logger *log.Logger
	now    func() time.Time
}

func NewService(repo *storage.Repository, logger *log.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentTracker),
		now:    time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) store(ctx context.Context, username string) (*Store, error) {
	_, rec, err := s.repo.GetUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return NewStore(rec).WithClock(s.now), nil
}

// GetRecord returns the user's full record.
func (s *Service) GetRecord(ctx context.Context, username string) (*core.UserRecord, error) {
	_, rec, err := s.repo.GetUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return rec, nil
}

// GetDay returns one day's snapshot, or ErrDayNotFound.
func (s *Service) GetDay(ctx context.Context, username string, day core.Day) (*core.Snapshot, error) {
	st, err := s.store(ctx, username)
	if err != nil {
		return nil, err
	}
	snap, ok := st.Get(day)
	if !ok {
		return nil, ErrDayNotFound
	}
	return snap, nil
}

// SaveOutcome reports what a save attempt did. When Warnings is non-empty
// and Saved is false, the caller must resubmit with confirmed set.
type SaveOutcome struct {
	Saved    bool           `json:"saved"`
	Warnings []Warning      `json:"warnings,omitempty"`
	Snapshot *core.Snapshot `json:"snapshot,omitempty"`
}

// SaveDay writes a snapshot for the given day. Shrinking resource totals
// produce warnings; the save only proceeds when there are none or the caller
// has confirmed.
func (s *Service) SaveDay(ctx context.Context, username string, day core.Day, res core.Resources, note string, confirmed bool) (SaveOutcome, error) {
	if err := day.Validate(); err != nil {
		return SaveOutcome{}, err
	}

	st, err := s.store(ctx, username)
	if err != nil {
		return SaveOutcome{}, err
	}

	proposed := core.Snapshot{Resources: res, Note: note}
	warnings := st.PrepareSave(day, proposed)
	if len(warnings) > 0 && !confirmed {
		return SaveOutcome{Saved: false, Warnings: warnings}, nil
	}

	snap := st.Put(day, proposed)
	if err := s.repo.SaveRecord(ctx, username, st.Record()); err != nil {
		return SaveOutcome{}, fmt.Errorf("persist record: %w", err)
	}

	s.logger.InfoContext(ctx, "day saved",
		log.FieldUsername, username,
		log.FieldDay, string(day),
		log.FieldOperation, log.OpSave,
		"warnings", len(warnings),
	)
	return SaveOutcome{Saved: true, Warnings: warnings, Snapshot: snap}, nil
}

// CopyPrevious seeds a day with the previous day's totals. The note is not
// carried over. Fails with ErrDayNotFound when the previous day is empty.
func (s *Service) CopyPrevious(ctx context.Context, username string, day core.Day) (*core.Snapshot, error) {
	if err := day.Validate(); err != nil {
		return nil, err
	}

	st, err := s.store(ctx, username)
	if err != nil {
		return nil, err
	}

	prev, ok := st.Get(day.Prev())
	if !ok {
		return nil, ErrDayNotFound
	}

	snap := st.Put(day, core.Snapshot{Resources: prev.Resources})
	if err := s.repo.SaveRecord(ctx, username, st.Record()); err != nil {
		return nil, fmt.Errorf("persist record: %w", err)
	}
	return snap, nil
}

// Delta returns the day-over-day change for a day, or ErrDayNotFound when
// the day itself has no snapshot.
func (s *Service) Delta(ctx context.Context, username string, day core.Day) (core.DailyDelta, error) {
	st, err := s.store(ctx, username)
	if err != nil {
		return core.DailyDelta{}, err
	}
	delta, ok := st.Delta(day)
	if !ok {
		return core.DailyDelta{}, ErrDayNotFound
	}
	return delta, nil
}

// Summary folds one month's daily deltas.
func (s *Service) Summary(ctx context.Context, username string, year, month int) (core.MonthlySummary, error) {
	if month < 1 || month > 12 {
		return core.MonthlySummary{}, fmt.Errorf("invalid month: %d", month)
	}
	st, err := s.store(ctx, username)
	if err != nil {
		return core.MonthlySummary{}, err
	}
	return st.Summarize(year, month), nil
}

// Notes returns the user's note history, newest day first.
func (s *Service) Notes(ctx context.Context, username string) ([]NoteEntry, error) {
	st, err := s.store(ctx, username)
	if err != nil {
		return nil, err
	}
	return st.NoteHistory(), nil
}

// ExportRecord serializes the user's record for download.
func (s *Service) ExportRecord(ctx context.Context, username string) ([]byte, error) {
	_, rec, err := s.repo.GetUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return Export(rec)
}

// ImportRecord replaces the user's snapshot set with one from a backup file.
// The local identity is kept: username, PIN, creation and login times all
// stay as they are, only the day data is adopted. A backup exported under a
// different username needs force.
func (s *Service) ImportRecord(ctx context.Context, username string, data []byte, force bool) (*core.UserRecord, error) {
	imported, err := Import(data)
	if err != nil {
		return nil, err
	}
	if imported.Username != username && !force {
		return nil, ErrUsernameMismatch
	}

	_, rec, err := s.repo.GetUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	rec.Records = imported.Records
	if rec.Records == nil {
		rec.Records = make(map[core.Day]*core.Snapshot)
	}
	rec.LastUpdated = s.now()

	if err := s.repo.SaveRecord(ctx, username, rec); err != nil {
		return nil, fmt.Errorf("persist record: %w", err)
	}

	s.logger.InfoContext(ctx, "backup imported",
		log.FieldUsername, username,
		log.FieldOperation, log.OpImport,
		"days", len(rec.Records),
		"forced", imported.Username != username,
	)
	return rec, nil
}
