package core

import (
	"errors"
	"regexp"
	"time"
)

const (
	// StorageModeLocal keeps records on this instance only.
	StorageModeLocal StorageMode = "local"
	// StorageModeCloud enables push/pull against the remote store.
	StorageModeCloud StorageMode = "cloud"
)

const DayLayout = "2006-01-02"

type (
	StorageMode string

	// Day is an opaque calendar-day string in YYYY-MM-DD form. No timezone
	// normalization is applied; the caller decides what "today" means.
	Day string

	// Resources holds the cumulative totals a player reports for one day.
	// Totals are expected to be non-decreasing in normal play, but negative
	// or shrinking values are never rejected, only flagged by the save policy.
	Resources struct {
		Gold             int64 `json:"gold"`
		HeartPoints      int64 `json:"heart_points"`
		HighlightCoupons int64 `json:"highlight_coupons"`
		NewHighlight     int64 `json:"new_highlight"`
		ReturnHighlight  int64 `json:"return_highlight"`
		ExitHighlight    int64 `json:"exit_highlight"`
		HighlightCoins   int64 `json:"highlight_coins"`
	}

	// Snapshot is one user's reported totals as of a calendar date.
	Snapshot struct {
		Resources
		Note      string    `json:"note"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// DailyDelta is the signed day-over-day change of every resource,
	// derived from two consecutive snapshots. Never persisted.
	DailyDelta struct {
		Day    Day       `json:"day"`
		Change Resources `json:"change"`
	}

	// MonthlySummary folds daily deltas over one calendar month.
	MonthlySummary struct {
		Year          int       `json:"year"`
		Month         int       `json:"month"`
		Totals        Resources `json:"totals"`
		DaysWithData  int       `json:"days_with_data"`
		DaysWithNotes int       `json:"days_with_notes"`
	}

	// SyncBucket tracks quota consumption for one sync direction.
	// CountToday is only meaningful when LastSyncDate equals the current
	// calendar day; a stale bucket means zero syncs used today.
	SyncBucket struct {
		LastSyncDate Day `json:"lastSyncDate"`
		CountToday   int `json:"syncCountToday"`
	}

	// SyncInfo is the per-user sync state. Push and pull consume separate
	// quota buckets.
	SyncInfo struct {
		StorageMode  StorageMode `json:"storageMode"`
		Push         SyncBucket  `json:"push"`
		Pull         SyncBucket  `json:"pull"`
		LastPushTime time.Time   `json:"lastUploadTime"`
		LastPullTime time.Time   `json:"lastDownloadTime"`
	}

	// UserRecord owns the full snapshot set for one identity. The username
	// is the immutable identity key; a record is never deleted by the core.
	UserRecord struct {
		Username    string            `json:"username"`
		CreatedAt   time.Time         `json:"createdAt"`
		LastLogin   time.Time         `json:"lastLogin"`
		LastUpdated time.Time         `json:"lastUpdated"`
		SyncInfo    SyncInfo          `json:"syncInfo"`
		Records     map[Day]*Snapshot `json:"records"`
	}
)

var (
	ErrInvalidDay      = errors.New("invalid calendar day, expected YYYY-MM-DD")
	ErrInvalidUsername = errors.New("username must be 3-15 characters of letters, digits and underscore")
	ErrInvalidPIN      = errors.New("pin must be exactly 6 digits")
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,15}$`)
	pinRe      = regexp.MustCompile(`^[0-9]{6}$`)
)

// NewUserRecord creates an empty record for a freshly registered identity.
func NewUserRecord(username string, now time.Time) *UserRecord {
	return &UserRecord{
		Username:    username,
		CreatedAt:   now,
		LastLogin:   now,
		LastUpdated: now,
		SyncInfo:    SyncInfo{StorageMode: StorageModeLocal},
		Records:     make(map[Day]*Snapshot),
	}
}

// ValidateUsername checks the identity-key format.
func ValidateUsername(username string) error {
	if !usernameRe.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// ValidatePIN checks the 6-digit login PIN format.
func ValidatePIN(pin string) error {
	if !pinRe.MatchString(pin) {
		return ErrInvalidPIN
	}
	return nil
}

// ParseDay validates a calendar-day string.
func ParseDay(s string) (Day, error) {
	if _, err := time.Parse(DayLayout, s); err != nil {
		return "", ErrInvalidDay
	}
	return Day(s), nil
}

// DayOf truncates a timestamp to its calendar day.
func DayOf(t time.Time) Day {
	return Day(t.Format(DayLayout))
}

// Prev returns the previous calendar day, or the empty Day if d is malformed.
func (d Day) Prev() Day {
	t, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return ""
	}
	return DayOf(t.AddDate(0, 0, -1))
}

// InMonth reports whether d falls in the given calendar year and month.
func (d Day) InMonth(year, month int) bool {
	t, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return false
	}
	return t.Year() == year && int(t.Month()) == month
}

func (d Day) Validate() error {
	_, err := ParseDay(string(d))
	return err
}

// Sub returns the exact per-resource difference r - other. No clamping.
func (r Resources) Sub(other Resources) Resources {
	return Resources{
		Gold:             r.Gold - other.Gold,
		HeartPoints:      r.HeartPoints - other.HeartPoints,
		HighlightCoupons: r.HighlightCoupons - other.HighlightCoupons,
		NewHighlight:     r.NewHighlight - other.NewHighlight,
		ReturnHighlight:  r.ReturnHighlight - other.ReturnHighlight,
		ExitHighlight:    r.ExitHighlight - other.ExitHighlight,
		HighlightCoins:   r.HighlightCoins - other.HighlightCoins,
	}
}

// Add returns the per-resource sum r + other.
func (r Resources) Add(other Resources) Resources {
	return Resources{
		Gold:             r.Gold + other.Gold,
		HeartPoints:      r.HeartPoints + other.HeartPoints,
		HighlightCoupons: r.HighlightCoupons + other.HighlightCoupons,
		NewHighlight:     r.NewHighlight + other.NewHighlight,
		ReturnHighlight:  r.ReturnHighlight + other.ReturnHighlight,
		ExitHighlight:    r.ExitHighlight + other.ExitHighlight,
		HighlightCoins:   r.HighlightCoins + other.HighlightCoins,
	}
}

// Clone returns a deep copy of the record, including every snapshot.
func (u *UserRecord) Clone() *UserRecord {
	cp := *u
	cp.Records = make(map[Day]*Snapshot, len(u.Records))
	for day, snap := range u.Records {
		s := *snap
		cp.Records[day] = &s
	}
	return &cp
}
