package messages

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeDeserializeMessage(t *testing.T) {
	m, err := NewServerMessage(MessageTypeServerError, &ServerError{
		Code:    "NO_ROOM",
		Message: "no room code",
	})
	require.NoError(t, err)

	b, err := SerializeMessage(m)
	require.NoError(t, err)

	decoded, err := DeserializeMessage(b)
	require.NoError(t, err)
	assert.Equal(t, MessageTypeServerError, decoded.Type)

	payload := &ServerError{}
	require.NoError(t, DecodePayload(decoded, payload))
	assert.Equal(t, "NO_ROOM", payload.Code)
	assert.Equal(t, "no room code", payload.Message)
}

func TestDeserializeMessageRejectsBadFrames(t *testing.T) {
	_, err := DeserializeMessage([]byte("{not json"))
	assert.Error(t, err)

	_, err = DeserializeMessage([]byte(`{"payload":{}}`))
	assert.Error(t, err, "a frame without a type is rejected")

	oversized := append([]byte(`{"type":"join","payload":"`), bytes.Repeat([]byte("x"), MessageBufferSize)...)
	oversized = append(oversized, []byte(`"}`)...)
	_, err = DeserializeMessage(oversized)
	assert.Error(t, err)
}

func TestDecodePayloadStrictness(t *testing.T) {
	m := &Message{
		Type:    MessageTypeClientJoin,
		Payload: []byte(`{"room":"GAME","name":"alice","asHost":true,"sessionToken":"tok"}`),
	}
	join := &ClientJoin{}
	require.NoError(t, DecodePayload(m, join))
	assert.Equal(t, "GAME", join.Room)
	assert.True(t, join.AsHost)

	// unknown fields are rejected at the boundary
	m.Payload = []byte(`{"room":"GAME","bogus":1}`)
	assert.Error(t, DecodePayload(m, &ClientJoin{}))

	// so is an absent payload
	m.Payload = nil
	assert.Error(t, DecodePayload(m, &ClientJoin{}))
}

func TestNewServerMessageWithoutPayload(t *testing.T) {
	m, err := NewServerMessage(MessageTypeServerPong, nil)
	require.NoError(t, err)
	assert.Empty(t, m.Payload)

	b, err := SerializeMessage(m)
	require.NoError(t, err)

	decoded, err := DeserializeMessage(b)
	require.NoError(t, err)
	assert.Equal(t, MessageTypeServerPong, decoded.Type)
	assert.Empty(t, decoded.Payload)
}
