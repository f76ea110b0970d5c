package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lootledger/internal/core"
	"lootledger/internal/log"
	"lootledger/internal/remote"
	"lootledger/internal/storage"
)

var (
	// ErrRemoteDisabled is returned when no remote backend is configured.
	ErrRemoteDisabled = errors.New("no remote store configured")
	// ErrNoRemoteRecord means a pull found nothing under this username.
	ErrNoRemoteRecord = errors.New("no remote record for this user")
)

// Publisher enqueues an asynchronous push request. Satisfied by amqp.Client.
type Publisher interface {
	PublishPushRecord(ctx context.Context, username string) error
}

// Service runs push and pull for one user at a time: quota check first, then
// network, then persist the updated sync state. When a publisher is set,
// pushes are queued for the worker instead of hitting the remote inline.
type Service struct {
	repo      *storage.Repository
	remote    remote.Store
	coord     *Coordinator
	publisher Publisher
	logger    *log.Logger
	now       func() time.Time
}

func NewService(repo *storage.Repository, remoteStore remote.Store, coord *Coordinator, publisher Publisher, logger *log.Logger) *Service {
	return &Service{
		repo:      repo,
		remote:    remoteStore,
		coord:     coord,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentSync),
		now:       time.Now,
	}
}

// WithClock overrides the service's clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// PushOutcome reports how a push went. Queued means the record was handed to
// the worker and will reach the remote store shortly.
type PushOutcome struct {
	Queued         bool          `json:"queued"`
	TotalUserCount int           `json:"totalUserCount,omitempty"`
	SyncInfo       core.SyncInfo `json:"syncInfo"`
}

// Push uploads the user's record to the remote store. The daily quota is
// checked and consumed before any network traffic.
func (s *Service) Push(ctx context.Context, username string) (PushOutcome, error) {
	if s.remote == nil && s.publisher == nil {
		return PushOutcome{}, ErrRemoteDisabled
	}

	_, rec, err := s.repo.GetUser(ctx, username)
	if err != nil {
		return PushOutcome{}, fmt.Errorf("load user: %w", err)
	}

	if !s.coord.CanSyncToday(rec.SyncInfo.Push) {
		return PushOutcome{}, ErrQuotaExceeded
	}

	outcome := PushOutcome{}
	if s.publisher != nil {
		if err := s.publisher.PublishPushRecord(ctx, username); err != nil {
			return PushOutcome{}, fmt.Errorf("queue push: %w", err)
		}
		outcome.Queued = true
	} else {
		result, err := s.remote.PushUserRecord(ctx, rec)
		if err != nil {
			return PushOutcome{}, fmt.Errorf("push record: %w", err)
		}
		outcome.TotalUserCount = result.TotalUserCount
	}

	rec.SyncInfo.Push = s.coord.RecordAttempt(rec.SyncInfo.Push)
	rec.SyncInfo.LastPushTime = s.now()
	rec.SyncInfo.StorageMode = core.StorageModeCloud
	if err := s.repo.SaveRecord(ctx, username, rec); err != nil {
		return PushOutcome{}, fmt.Errorf("save sync state: %w", err)
	}
	outcome.SyncInfo = rec.SyncInfo

	s.logger.InfoContext(ctx, "push completed",
		log.FieldUsername, username,
		log.FieldOperation, log.OpPush,
		"queued", outcome.Queued,
	)
	return outcome, nil
}

// PullOutcome carries the record as it stands after reconciliation.
type PullOutcome struct {
	Record   *core.UserRecord `json:"record"`
	BackedUp bool             `json:"backedUp"`
}

// Pull fetches the remote record and reconciles it into the local one with
// last-write-wins. The local record is backed up first so a bad pull can be
// recovered from.
func (s *Service) Pull(ctx context.Context, username string) (PullOutcome, error) {
	if s.remote == nil {
		return PullOutcome{}, ErrRemoteDisabled
	}

	_, local, err := s.repo.GetUser(ctx, username)
	if err != nil {
		return PullOutcome{}, fmt.Errorf("load user: %w", err)
	}

	if !s.coord.CanSyncToday(local.SyncInfo.Pull) {
		return PullOutcome{}, ErrQuotaExceeded
	}

	remoteRec, err := s.remote.FetchUserRecord(ctx, username)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			return PullOutcome{}, ErrNoRemoteRecord
		}
		return PullOutcome{}, fmt.Errorf("fetch remote record: %w", err)
	}

	backedUp := true
	if err := s.repo.BackupRecord(ctx, username, local); err != nil {
		s.logger.WarnContext(ctx, "could not back up record before pull",
			log.FieldUsername, username,
			log.FieldError, err,
		)
		backedUp = false
	}

	merged := Reconcile(local, remoteRec)
	merged.SyncInfo.Pull = s.coord.RecordAttempt(merged.SyncInfo.Pull)
	merged.SyncInfo.LastPullTime = s.now()
	merged.SyncInfo.StorageMode = core.StorageModeCloud

	if err := s.repo.SaveRecord(ctx, username, merged); err != nil {
		return PullOutcome{}, fmt.Errorf("save pulled record: %w", err)
	}

	s.logger.InfoContext(ctx, "pull completed",
		log.FieldUsername, username,
		log.FieldOperation, log.OpPull,
		"backed_up", backedUp,
	)
	return PullOutcome{Record: merged, BackedUp: backedUp}, nil
}

// Status reports the user's sync state and what the quota still allows today.
type Status struct {
	SyncInfo     core.SyncInfo `json:"syncInfo"`
	CanPushToday bool          `json:"canPushToday"`
	CanPullToday bool          `json:"canPullToday"`
}

func (s *Service) Status(ctx context.Context, username string) (Status, error) {
	_, rec, err := s.repo.GetUser(ctx, username)
	if err != nil {
		return Status{}, fmt.Errorf("load user: %w", err)
	}
	return Status{
		SyncInfo:     rec.SyncInfo,
		CanPushToday: s.coord.CanSyncToday(rec.SyncInfo.Push),
		CanPullToday: s.coord.CanSyncToday(rec.SyncInfo.Pull),
	}, nil
}
