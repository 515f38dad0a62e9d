package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Service change actions.
const (
	ActionCreated      = "created"
	ActionUpdated      = "updated"
	ActionAvailability = "availability"
	ActionDeleted      = "deleted"
)

var errUnknownAction = errors.New("unknown action")

// ServiceChangedMessage announces a mutation of the service catalog. It
// carries only the document ID; consumers re-read the catalog.
type ServiceChangedMessage struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewServiceChangedMessage(id, action string) *ServiceChangedMessage {
	return &ServiceChangedMessage{
		ID:        id,
		Action:    action,
		Timestamp: time.Now().UTC(),
	}
}

func (m *ServiceChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ServiceChangedMessageFromJSON decodes and validates a message body.
func ServiceChangedMessageFromJSON(data []byte) (*ServiceChangedMessage, error) {
	var msg ServiceChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, errors.New("missing id")
	}
	switch msg.Action {
	case ActionCreated, ActionUpdated, ActionAvailability, ActionDeleted:
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownAction, msg.Action)
	}
	return &msg, nil
}
