package tracker

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"lootledger/internal/core"
)

func TestExportImport_RoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := core.NewUserRecord("player_1", now)
	s := NewStore(rec).WithClock(func() time.Time { return now })
	s.Put("2024-05-01", core.Snapshot{Resources: core.Resources{Gold: 100, HighlightCoins: 3}, Note: "opening day"})
	s.Put("2024-05-02", core.Snapshot{Resources: core.Resources{Gold: 130}})

	data, err := Export(rec)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	got, err := Import(data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if got.Username != rec.Username {
		t.Errorf("username = %q, want %q", got.Username, rec.Username)
	}
	if len(got.Records) != len(rec.Records) {
		t.Fatalf("record count = %d, want %d", len(got.Records), len(rec.Records))
	}
	for day, want := range rec.Records {
		gotSnap, ok := got.Records[day]
		if !ok {
			t.Fatalf("day %s missing after round trip", day)
		}
		if !reflect.DeepEqual(gotSnap.Resources, want.Resources) || gotSnap.Note != want.Note {
			t.Errorf("day %s = %+v, want %+v", day, gotSnap, want)
		}
	}
}

func TestImport_RejectsMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "missing username", payload: `{"records":{}}`},
		{name: "empty username", payload: `{"username":"","records":{}}`},
		{name: "missing records", payload: `{"username":"player_1"}`},
		{name: "records null", payload: `{"username":"player_1","records":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import([]byte(tt.payload))
			if !errors.Is(err, ErrInvalidBackup) {
				t.Errorf("Import(%s) error = %v, want ErrInvalidBackup", tt.payload, err)
			}
		})
	}
}

func TestImport_RejectsMalformedJSON(t *testing.T) {
	if _, err := Import([]byte(`{"username":`)); err == nil {
		t.Error("malformed JSON should fail to import")
	}
}

func TestImport_EmptyRecordsMapIsValid(t *testing.T) {
	got, err := Import([]byte(`{"username":"player_1","records":{}}`))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got.Username != "player_1" || len(got.Records) != 0 {
		t.Errorf("got %+v, want empty record set for player_1", got)
	}
}
