package amqp

import (
	"testing"
	"time"
)

func TestNewPushRecordMessage(t *testing.T) {
	msg := NewPushRecordMessage("player_1")

	if msg.Username != "player_1" {
		t.Errorf("Username = %q, want player_1", msg.Username)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestPushRecordMessage_JSON(t *testing.T) {
	timestamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg := &PushRecordMessage{
		Username:  "player_1",
		Timestamp: timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := PushRecordMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("PushRecordMessageFromJSON() error = %v", err)
	}

	if parsed.Username != msg.Username {
		t.Errorf("Parsed Username = %q, want %q", parsed.Username, msg.Username)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestPushRecordMessage_InvalidJSON(t *testing.T) {
	if _, err := PushRecordMessageFromJSON([]byte(`{"username": 42`)); err == nil {
		t.Error("PushRecordMessageFromJSON() should fail with invalid JSON")
	}
}
