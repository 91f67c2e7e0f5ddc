package amqp

import (
	"encoding/json"
	"time"
)

// Record operations carried in change events.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// RecordChangedMessage announces that a tracked record changed. It is
// deliberately lightweight: consumers refetch whatever month the record
// belongs to rather than trusting a stale payload.
type RecordChangedMessage struct {
	Kind      string    `json:"kind"` // expense, workout, drink, todo
	ID        string    `json:"id"`
	MonthKey  string    `json:"monthKey"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordChangedMessage creates a change event stamped with the current time
func NewRecordChangedMessage(kind, id, monthKey, op string) *RecordChangedMessage {
	return &RecordChangedMessage{
		Kind:      kind,
		ID:        id,
		MonthKey:  monthKey,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangedMessageFromJSON creates a message from JSON bytes
func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
