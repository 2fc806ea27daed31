package dataservice

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

func TestParseEnvelopeShapes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		success bool
		message string
	}{
		{"flat", `{"success":true,"data":{"id":"1"},"message":"ok"}`, true, "ok"},
		{"nested result", `{"result":{"success":false,"message":"nope"}}`, false, "nope"},
		{"error string", `{"success":false,"error":"boom"}`, false, "boom"},
		{"error object", `{"success":false,"error":{"message":"bad input"}}`, false, "bad input"},
		{"bare data", `{"data":[]}`, true, ""},
		{"nothing useful", `{"status":"up"}`, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := parseEnvelope([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.success, env.Success)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestParseEnvelopeRejectsEmptyAndInvalid(t *testing.T) {
	_, err := parseEnvelope([]byte("  "))
	assert.ErrorIs(t, err, resource.ErrNoResponse)

	_, err = parseEnvelope([]byte("<html>"))
	assert.Error(t, err)
}

func TestEnvelopeRecordsUnwrapsRows(t *testing.T) {
	env, err := parseEnvelope([]byte(`{"success":true,"data":{"rows":[{"id":7,"name":"Go","level":3}, "junk"],"count":1}}`))
	require.NoError(t, err)

	records, err := env.records()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "7", records[0]["id"], "numeric ids become strings")
	assert.Equal(t, json.Number("3"), records[0]["level"])
}

func TestEnvelopeRecordNullData(t *testing.T) {
	env, err := parseEnvelope([]byte(`{"success":true,"data":null}`))
	require.NoError(t, err)

	rec, err := env.record()
	require.NoError(t, err)
	assert.Nil(t, rec)

	list, err := env.records()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEnvelopeRecordWrongShape(t *testing.T) {
	env, err := parseEnvelope([]byte(`{"success":true,"data":"text"}`))
	require.NoError(t, err)

	_, err = env.record()
	assert.Error(t, err)
	_, err = env.records()
	assert.Error(t, err)
}
