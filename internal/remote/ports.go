// Package remote defines the cloud store that records sync against, plus the
// adapters that implement it.
package remote

import (
	"context"
	"errors"

	"lootledger/internal/core"
)

var ErrNotFound = errors.New("record not found on remote store")

// PushResult reports what the remote store knows after accepting a record.
type PushResult struct {
	TotalUserCount int
}

// Store is the remote side of a sync. Implementations: HTTPStore, SheetsStore.
type Store interface {
	// FetchUserRecord returns the remote copy of a user's record, or
	// ErrNotFound when the user has never pushed.
	FetchUserRecord(ctx context.Context, username string) (*core.UserRecord, error)

	// PushUserRecord uploads the full record, replacing any remote copy.
	PushUserRecord(ctx context.Context, rec *core.UserRecord) (PushResult, error)

	// CheckUsernameAvailable reports whether no remote record exists under
	// the given username.
	CheckUsernameAvailable(ctx context.Context, username string) (bool, error)

	Ping(ctx context.Context) error
}
