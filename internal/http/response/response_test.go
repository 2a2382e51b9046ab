package response

import (
	"encoding/json/v2"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/munajatapp/munajat-server/internal/errors"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]string{"id": "dua-kumayl"}, nil)

	assert.Equal(t, 200, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Empty(t, env.Error)
}

func TestHandleErrorMapsCodedErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        apperrors.NotFound("prayer missing"),
			wantStatus: 404,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "validation",
			err:        apperrors.Validation("bad index"),
			wantStatus: 400,
			wantCode:   "VALIDATION",
		},
		{
			name:       "audio not ready",
			err:        apperrors.AudioNotReady("no prayer loaded"),
			wantStatus: 412,
			wantCode:   "AUDIO_NOT_READY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantCode, env.Code)
		})
	}
}

func TestHandleErrorSyncPointMissingIsInformational(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, apperrors.SyncPointNotFoundf("no sync point for section %d", 3), nil)

	assert.Equal(t, 404, rec.Code)
	env := decodeEnvelope(t, rec)
	// The condition is reported as a message, not a failure.
	assert.True(t, env.Success)
	assert.Empty(t, env.Error)
	assert.Contains(t, env.Message, "section 3")
}

func TestHandleErrorUnknownBecomes500(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, assert.AnError, nil)

	assert.Equal(t, 500, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
}
