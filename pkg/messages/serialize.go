package messages

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SerializeMessage encodes an envelope for the wire.
func SerializeMessage(m *Message) ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message: %v", err)
	}
	return b, nil
}

// DeserializeMessage decodes an envelope from the wire. The payload is left
// raw; DecodePayload validates it against the type's payload struct.
func DeserializeMessage(data []byte) (*Message, error) {
	if len(data) > MessageBufferSize {
		return nil, fmt.Errorf("message exceeds %d bytes", MessageBufferSize)
	}
	m := &Message{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %v", err)
	}
	if m.Type == "" {
		return nil, fmt.Errorf("message without a type")
	}
	return m, nil
}

// NewServerMessage builds an envelope from a server payload struct.
func NewServerMessage(messageType string, payload interface{}) (*Message, error) {
	m := &Message{Type: messageType}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %v", messageType, err)
		}
		m.Payload = b
	}
	return m, nil
}

// DecodePayload unmarshals a message payload into the closed payload struct
// for its type. Unknown fields are rejected so malformed shapes are caught
// at the boundary.
func DecodePayload(m *Message, out interface{}) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("%s message without a payload", m.Type)
	}
	decoder := json.NewDecoder(bytes.NewReader(m.Payload))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s payload: %v", m.Type, err)
	}
	return nil
}
