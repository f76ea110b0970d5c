// Package sync decides whether a cloud push or pull may happen today and
// reconciles local and remote record sets with last-write-wins.
package sync

import (
	"errors"
	"time"

	"lootledger/internal/core"
)

const DefaultDailyLimit = 1

// ErrQuotaExceeded is returned before any network call when the daily sync
// allowance for a direction is used up.
var ErrQuotaExceeded = errors.New("daily sync limit reached")

// Coordinator enforces the per-day sync quota. Push and pull have separate
// buckets; neither consumes the other's allowance.
type Coordinator struct {
	dailyLimit int
	now        func() time.Time
}

func NewCoordinator(dailyLimit int) *Coordinator {
	if dailyLimit < 1 {
		dailyLimit = DefaultDailyLimit
	}
	return &Coordinator{dailyLimit: dailyLimit, now: time.Now}
}

// WithClock overrides the coordinator's clock.
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	return c
}

// CanSyncToday reports whether the bucket still has allowance for the
// current calendar day. A bucket whose lastSyncDate is not today carries a
// stale count and always has full allowance.
func (c *Coordinator) CanSyncToday(bucket core.SyncBucket) bool {
	today := core.DayOf(c.now())
	return !(bucket.LastSyncDate == today && bucket.CountToday >= c.dailyLimit)
}

// RecordAttempt consumes one unit of today's allowance. The first sync on a
// new calendar day resets the count to 1, not 0.
func (c *Coordinator) RecordAttempt(bucket core.SyncBucket) core.SyncBucket {
	today := core.DayOf(c.now())
	if bucket.LastSyncDate != today {
		bucket.CountToday = 1
	} else {
		bucket.CountToday++
	}
	bucket.LastSyncDate = today
	return bucket
}

// Reconcile merges a fetched remote record into the local one with
// last-write-wins at whole-record granularity: whichever side has the newer
// lastUpdated contributes its entire snapshot set, there is no per-date
// merge. Local identity fields (username, createdAt, sync state) are always
// kept. Edits made on the losing side since its last sync are lost; that is
// the documented trade-off, not a bug to paper over.
func Reconcile(local, remote *core.UserRecord) *core.UserRecord {
	merged := local.Clone()
	if remote == nil {
		return merged
	}
	if remote.LastUpdated.After(local.LastUpdated) {
		merged.Records = make(map[core.Day]*core.Snapshot, len(remote.Records))
		for day, snap := range remote.Records {
			s := *snap
			merged.Records[day] = &s
		}
		merged.LastUpdated = remote.LastUpdated
	}
	return merged
}
