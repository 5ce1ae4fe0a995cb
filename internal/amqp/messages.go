package amqp

import (
	"encoding/json"
	"time"
)

// RefreshRequestMessage asks a worker to refresh the cached records from the
// selected remote source.
type RefreshRequestMessage struct {
	UseFallbackSource bool      `json:"use_fallback_source"`
	Reason            string    `json:"reason,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// NewRefreshRequestMessage creates a new refresh request stamped with the current time
func NewRefreshRequestMessage(useFallbackSource bool, reason string) *RefreshRequestMessage {
	return &RefreshRequestMessage{
		UseFallbackSource: useFallbackSource,
		Reason:            reason,
		Timestamp:         time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RefreshRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshRequestMessageFromJSON creates a message from JSON bytes
func RefreshRequestMessageFromJSON(data []byte) (*RefreshRequestMessage, error) {
	var msg RefreshRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
