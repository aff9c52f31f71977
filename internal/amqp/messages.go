package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// MonthProcessedMessage announces the outcome of one month of a run.
type MonthProcessedMessage struct {
	MessageID string    `json:"message_id"`
	RunID     string    `json:"run_id"`
	Month     string    `json:"month"`
	Status    string    `json:"status"`
	Rows      int       `json:"rows"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMonthProcessedMessage creates a message with a fresh ID.
func NewMonthProcessedMessage(runID, month, status string, rows int, err error) *MonthProcessedMessage {
	msg := &MonthProcessedMessage{
		MessageID: uuid.NewString(),
		RunID:     runID,
		Month:     month,
		Status:    status,
		Rows:      rows,
		Timestamp: time.Now(),
	}
	if err != nil {
		msg.Error = err.Error()
	}
	return msg
}

// Validate checks the fields a consumer relies on.
func (m *MonthProcessedMessage) Validate() error {
	if m.MessageID == "" {
		return errors.New("message id is required")
	}
	if _, err := uuid.Parse(m.MessageID); err != nil {
		return errors.New("message id must be a uuid")
	}
	if m.Month == "" {
		return errors.New("month is required")
	}
	if m.Status == "" {
		return errors.New("status is required")
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *MonthProcessedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MonthProcessedMessageFromJSON decodes and validates a message.
func MonthProcessedMessageFromJSON(data []byte) (*MonthProcessedMessage, error) {
	var msg MonthProcessedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
