package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"tourreport/internal/core"
	"tourreport/internal/ports"
)

// EntryEventMessage tells the report worker which month changed. It carries
// only the month and entry id; the worker reloads the tour from storage.
type EntryEventMessage struct {
	Kind      ports.EventKind `json:"kind"`
	EntryID   string          `json:"entry_id"`
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewEntryEventMessage(ev ports.EntryEvent) *EntryEventMessage {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return &EntryEventMessage{
		Kind:      ev.Kind,
		EntryID:   ev.EntryID,
		Year:      ev.Year,
		Month:     ev.Month,
		Timestamp: ts,
	}
}

// Event converts the message back into the port type.
func (m *EntryEventMessage) Event() ports.EntryEvent {
	return ports.EntryEvent{
		Kind:      m.Kind,
		EntryID:   m.EntryID,
		Year:      m.Year,
		Month:     m.Month,
		Timestamp: m.Timestamp,
	}
}

func (m *EntryEventMessage) Validate() error {
	switch m.Kind {
	case ports.EntrySaved, ports.EntryDeleted:
	default:
		return fmt.Errorf("unknown event kind %q", m.Kind)
	}
	if !core.ValidMonth(m.Month) || m.Year < 1 {
		return fmt.Errorf("%w: %d-%d", core.ErrInvalidMonth, m.Year, m.Month)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *EntryEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryEventMessageFromJSON decodes and validates a message body.
func EntryEventMessageFromJSON(data []byte) (*EntryEventMessage, error) {
	var msg EntryEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
