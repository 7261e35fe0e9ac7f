package events

import (
	"encoding/json"
	"time"
)

const (
	TypePing               = "ping"
	TypePostingParsed      = "posting_parsed"
	TypeApplicationDeleted = "application_deleted"
)

// Event is the envelope written to SSE subscribers.
type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			raw = b
		}
	}
	b, _ := json.Marshal(Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	})
	return string(b)
}
