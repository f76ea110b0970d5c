// Package worker uploads user records to the remote store in response to
// queued push requests.
package worker

import (
	"context"
	"fmt"

	"lootledger/internal/amqp"
	"lootledger/internal/log"
	"lootledger/internal/remote"
	"lootledger/internal/storage"
)

// PushWorker consumes push-record messages and uploads the current record
// for each. The quota was already consumed when the message was enqueued,
// so the worker never checks it.
type PushWorker struct {
	repo   *storage.Repository
	remote remote.Store
	logger *log.Logger
}

func NewPushWorker(repo *storage.Repository, remoteStore remote.Store, logger *log.Logger) *PushWorker {
	return &PushWorker{
		repo:   repo,
		remote: remoteStore,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandlePushMessage loads the user's record fresh from storage and uploads
// it. Loading fresh means a message delayed in the queue still pushes the
// latest data, not what was current at enqueue time.
func (w *PushWorker) HandlePushMessage(ctx context.Context, msg *amqp.PushRecordMessage) error {
	_, rec, err := w.repo.GetUser(ctx, msg.Username)
	if err != nil {
		return fmt.Errorf("load record for %s: %w", msg.Username, err)
	}

	result, err := w.remote.PushUserRecord(ctx, rec)
	if err != nil {
		return fmt.Errorf("push record for %s: %w", msg.Username, err)
	}

	w.logger.InfoContext(ctx, "record pushed",
		log.FieldUsername, msg.Username,
		log.FieldOperation, log.OpPush,
		log.FieldUserCount, result.TotalUserCount,
	)
	return nil
}
