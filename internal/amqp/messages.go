package amqp

import (
	"encoding/json"
	"time"
)

// BalanceRecomputeMessage asks the worker to rebuild the balance snapshot
// for one trip. It carries only the trip ID, the worker reads the trip's
// expenses and payments from the database.
type BalanceRecomputeMessage struct {
	TripID    string    `json:"trip_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBalanceRecomputeMessage creates a recompute message for a trip
func NewBalanceRecomputeMessage(tripID string) *BalanceRecomputeMessage {
	return &BalanceRecomputeMessage{
		TripID:    tripID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BalanceRecomputeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BalanceRecomputeMessageFromJSON creates a message from JSON bytes
func BalanceRecomputeMessageFromJSON(data []byte) (*BalanceRecomputeMessage, error) {
	var msg BalanceRecomputeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.TripID == "" {
		return nil, errEmptyTripID
	}
	return &msg, nil
}
