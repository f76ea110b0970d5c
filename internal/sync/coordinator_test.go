package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lootledger/internal/core"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCoordinator_QuotaExhaustion(t *testing.T) {
	day1 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	c := NewCoordinator(5).WithClock(fixedClock(day1))

	var bucket core.SyncBucket
	for i := 0; i < 5; i++ {
		require.True(t, c.CanSyncToday(bucket), "attempt %d should be allowed", i+1)
		bucket = c.RecordAttempt(bucket)
	}

	assert.False(t, c.CanSyncToday(bucket), "sixth attempt on the same day must be denied")
	assert.Equal(t, 5, bucket.CountToday)
	assert.Equal(t, core.Day("2024-05-01"), bucket.LastSyncDate)
}

func TestCoordinator_NewDayResetsToOne(t *testing.T) {
	day1 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 5, 2, 0, 5, 0, 0, time.UTC)

	c := NewCoordinator(5).WithClock(fixedClock(day1))
	var bucket core.SyncBucket
	for i := 0; i < 5; i++ {
		bucket = c.RecordAttempt(bucket)
	}
	require.False(t, c.CanSyncToday(bucket))

	c.WithClock(fixedClock(day2))
	assert.True(t, c.CanSyncToday(bucket), "a stale bucket from yesterday means zero syncs used today")

	bucket = c.RecordAttempt(bucket)
	assert.Equal(t, 1, bucket.CountToday, "first sync of a new day resets the count to 1, not 0")
	assert.Equal(t, core.Day("2024-05-02"), bucket.LastSyncDate)
	assert.True(t, c.CanSyncToday(bucket))
}

func TestCoordinator_StaleCountIsNotAuthoritative(t *testing.T) {
	// CountToday above the limit must be ignored when lastSyncDate is old.
	c := NewCoordinator(1).WithClock(fixedClock(time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)))
	bucket := core.SyncBucket{LastSyncDate: "2024-05-01", CountToday: 7}

	assert.True(t, c.CanSyncToday(bucket))
}

func TestReconcile_RemoteNewerWins(t *testing.T) {
	t1 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	local := core.NewUserRecord("player_1", t1)
	local.LastUpdated = t1
	local.Records["2024-05-01"] = &core.Snapshot{Resources: core.Resources{Gold: 100}}
	local.Records["2024-05-02"] = &core.Snapshot{Resources: core.Resources{Gold: 120}}

	remote := core.NewUserRecord("player_1", t1)
	remote.LastUpdated = t2
	remote.Records["2024-05-01"] = &core.Snapshot{Resources: core.Resources{Gold: 999}}

	merged := Reconcile(local, remote)

	// Whole-record replacement: the local 2024-05-02 edit is lost, by design.
	require.Len(t, merged.Records, 1)
	assert.Equal(t, int64(999), merged.Records["2024-05-01"].Gold)
	assert.True(t, merged.LastUpdated.Equal(t2))
	assert.Equal(t, "player_1", merged.Username)
}

func TestReconcile_LocalNewerKept(t *testing.T) {
	t1 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	local := core.NewUserRecord("player_1", t1)
	local.LastUpdated = t2
	local.Records["2024-05-02"] = &core.Snapshot{Resources: core.Resources{Gold: 120}}

	remote := core.NewUserRecord("player_1", t1)
	remote.LastUpdated = t1
	remote.Records["2024-05-01"] = &core.Snapshot{Resources: core.Resources{Gold: 999}}

	merged := Reconcile(local, remote)

	require.Len(t, merged.Records, 1)
	assert.Equal(t, int64(120), merged.Records["2024-05-02"].Gold)
}

func TestReconcile_NilRemote(t *testing.T) {
	local := core.NewUserRecord("player_1", time.Now())
	local.Records["2024-05-01"] = &core.Snapshot{}

	merged := Reconcile(local, nil)
	assert.Len(t, merged.Records, 1)
}

func TestReconcile_DoesNotAliasInputs(t *testing.T) {
	t1 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	local := core.NewUserRecord("player_1", t1)
	remote := core.NewUserRecord("player_1", t1)
	remote.LastUpdated = t1.Add(time.Hour)
	remote.Records["2024-05-01"] = &core.Snapshot{Resources: core.Resources{Gold: 10}}

	merged := Reconcile(local, remote)
	merged.Records["2024-05-01"].Gold = 77

	assert.Equal(t, int64(10), remote.Records["2024-05-01"].Gold, "reconcile must deep-copy the winning side")
}
