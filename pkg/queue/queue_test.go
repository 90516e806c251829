package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type retrainPayload struct {
	InstrumentID string `json:"instrument_id"`
}

func TestParsePayload_Struct(t *testing.T) {
	got, err := ParsePayload[retrainPayload](retrainPayload{InstrumentID: "bitcoin"})
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", got.InstrumentID)
}

func TestParsePayload_Pointer(t *testing.T) {
	got, err := ParsePayload[retrainPayload](&retrainPayload{InstrumentID: "ethereum"})
	require.NoError(t, err)
	assert.Equal(t, "ethereum", got.InstrumentID)
}

func TestParsePayload_RawJSON(t *testing.T) {
	raw := json.RawMessage(`{"instrument_id":"solana"}`)
	got, err := ParsePayload[retrainPayload](raw)
	require.NoError(t, err)
	assert.Equal(t, "solana", got.InstrumentID)
}

func TestParsePayload_Map(t *testing.T) {
	m := map[string]interface{}{"instrument_id": "bitcoin"}
	got, err := ParsePayload[retrainPayload](m)
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", got.InstrumentID)
}

func TestParsePayload_InvalidType(t *testing.T) {
	_, err := ParsePayload[retrainPayload](42)
	assert.Error(t, err)
}

func TestParsePayload_MalformedJSON(t *testing.T) {
	_, err := ParsePayload[retrainPayload](json.RawMessage(`{`))
	assert.Error(t, err)
}
