package synchronizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mcoot/wordsession/internal/model"
)

// ErrUnknownEvent is returned when decoding an event type this build does not know
var ErrUnknownEvent = errors.New("unknown event type")

// Envelope is the wire form of an event on a shared bus
type Envelope struct {
	Type      model.EventType `json:"type"`
	SessionID model.SessionID `json:"sessionId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// EncodeEvent serializes an event into an Envelope
func EncodeEvent(event model.Event) ([]byte, error) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		Type:      event.Type,
		SessionID: event.SessionID,
		Timestamp: event.Timestamp,
		Payload:   payload,
	})
}

// DecodeEvent parses an Envelope back into an event with a typed payload
func DecodeEvent(data []byte) (model.Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return model.Event{}, err
	}
	payload, err := DecodePayload(env.Type, env.Payload)
	if err != nil {
		return model.Event{}, err
	}
	return model.Event{
		Type:      env.Type,
		SessionID: env.SessionID,
		Timestamp: env.Timestamp,
		Payload:   payload,
	}, nil
}

// DecodePayload parses the JSON payload of an event of the given type
func DecodePayload(eventType model.EventType, data []byte) (any, error) {
	switch eventType {
	case model.EventPlayerJoined:
		var p model.Player
		err := json.Unmarshal(data, &p)
		return p, err
	case model.EventMoveMade:
		var p model.MoveMadePayload
		err := json.Unmarshal(data, &p)
		return p, err
	case model.EventSessionEnded:
		var p model.SessionEndedPayload
		err := json.Unmarshal(data, &p)
		return p, err
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, eventType)
	}
}
