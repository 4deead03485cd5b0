package transport_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glatasks/backend/api/transport"
	"github.com/glatasks/backend/domain"
	"github.com/glatasks/backend/pkg/obfuscate"
)

func TestTaskPatchRequest_CompletedTriState(t *testing.T) {
	var absent transport.TaskPatchRequest
	require.NoError(t, json.Unmarshal([]byte(`{"status":"completed"}`), &absent))
	assert.False(t, absent.Completed.Set)

	var null transport.TaskPatchRequest
	require.NoError(t, json.Unmarshal([]byte(`{"completed":null}`), &null))
	assert.True(t, null.Completed.Set)
	assert.Nil(t, null.Completed.Value)

	var value transport.TaskPatchRequest
	require.NoError(t, json.Unmarshal([]byte(`{"completed":"2026-08-30T03:00:00Z"}`), &value))
	assert.True(t, value.Completed.Set)
	require.NotNil(t, value.Completed.Value)
	assert.Equal(t, "2026-08-30T03:00:00Z", *value.Completed.Value)
}

func TestDecodeBody_Plain(t *testing.T) {
	codec, err := obfuscate.NewRandom()
	require.NoError(t, err)

	var req transport.ListTitleRequest
	require.NoError(t, transport.DecodeBody(codec, []byte(`{"title":"groceries"}`), &req))
	assert.Equal(t, "groceries", req.Title)
}

func TestDecodeBody_Obfuscated(t *testing.T) {
	codec, err := obfuscate.NewRandom()
	require.NoError(t, err)

	inner := codec.EncodeString(`{"title":"groceries"}`)
	body, err := json.Marshal(map[string]string{"data": inner})
	require.NoError(t, err)

	var req transport.ListTitleRequest
	require.NoError(t, transport.DecodeBody(codec, body, &req))
	assert.Equal(t, "groceries", req.Title)
}

func TestDecodeBody_BadCiphertext(t *testing.T) {
	codec, err := obfuscate.NewRandom()
	require.NoError(t, err)

	var req transport.ListTitleRequest
	err = transport.DecodeBody(codec, []byte(`{"data":"%%%"}`), &req)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestDecodeBody_NotJSON(t *testing.T) {
	codec, err := obfuscate.NewRandom()
	require.NoError(t, err)

	var req transport.ListTitleRequest
	err = transport.DecodeBody(codec, []byte("title=groceries"), &req)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}
