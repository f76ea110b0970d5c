package tracker

import (
	"encoding/json"
	"errors"
	"fmt"

	"lootledger/internal/core"
)

// ErrInvalidBackup marks an import payload that is not a user backup.
var ErrInvalidBackup = errors.New("not a valid backup: missing username or records")

// Export serializes a full user record as an indented JSON backup.
func Export(rec *core.UserRecord) ([]byte, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal user record: %w", err)
	}
	return data, nil
}

// Import parses a backup produced by Export. Payloads without a username or
// a records map are rejected; everything else round-trips, including notes
// and per-snapshot timestamps.
func Import(data []byte) (*core.UserRecord, error) {
	var probe struct {
		Username *string                             `json:"username"`
		Records  map[core.Day]json.RawMessage        `json:"records"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse backup: %w", err)
	}
	if probe.Username == nil || *probe.Username == "" || probe.Records == nil {
		return nil, ErrInvalidBackup
	}

	var rec core.UserRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse backup: %w", err)
	}
	if rec.Records == nil {
		rec.Records = make(map[core.Day]*core.Snapshot)
	}
	return &rec, nil
}
