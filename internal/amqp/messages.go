package amqp

import (
	"encoding/json"
	"time"
)

// PushRecordMessage asks the worker to upload one user's record to the
// remote store. It carries only the username; the worker loads the current
// record from the database so stale copies are never pushed.
type PushRecordMessage struct {
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

func NewPushRecordMessage(username string) *PushRecordMessage {
	return &PushRecordMessage{
		Username:  username,
		Timestamp: time.Now(),
	}
}

func (m *PushRecordMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PushRecordMessageFromJSON(data []byte) (*PushRecordMessage, error) {
	var msg PushRecordMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
