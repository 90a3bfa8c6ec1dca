package entities

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// PositionEventType represents the type of position event
type PositionEventType string

const (
	PositionEventTypeReported PositionEventType = "position_reported"
	PositionEventTypeDenied   PositionEventType = "position_denied"
)

// PositionEvent carries a client's device position over the event bus.
type PositionEvent struct {
	ID        string            `json:"id"`
	ClientID  string            `json:"client_id"`
	EventType PositionEventType `json:"event_type"`
	Timestamp time.Time         `json:"timestamp"`
	Report    PositionReport    `json:"report"`
	Reason    string            `json:"reason,omitempty"`
}

// NewPositionReportedEvent wraps a device report.
func NewPositionReportedEvent(report PositionReport) *PositionEvent {
	return &PositionEvent{
		ID:        generateEventID(),
		ClientID:  report.ClientID,
		EventType: PositionEventTypeReported,
		Timestamp: time.Now(),
		Report:    report,
	}
}

// NewPositionDeniedEvent records that a client refused or failed to share its position.
func NewPositionDeniedEvent(clientID, reason string) *PositionEvent {
	return &PositionEvent{
		ID:        generateEventID(),
		ClientID:  clientID,
		EventType: PositionEventTypeDenied,
		Timestamp: time.Now(),
		Reason:    reason,
	}
}

func generateEventID() string {
	return time.Now().Format("20060102150405") + "-" + randomString(8)
}

func randomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		return time.Now().Format("150405.000")
	}
	return hex.EncodeToString(bytes)[:length]
}
