package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrivacySettings(t *testing.T) {
	e := newAPIEnv(t)
	_, token := e.register(t, "alice@example.com")

	w := e.do(t, http.MethodGet, "/user/privacy", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	settings := decode(t, w)["settings"].(map[string]any)
	assert.Equal(t, true, settings["data_sharing_consent"])
	assert.Equal(t, true, settings["analytics_consent"])
	assert.Equal(t, false, settings["marketing_consent"])

	w = e.do(t, http.MethodPut, "/user/privacy", token, map[string]any{
		"data_sharing": false, "analytics": true, "marketing": true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Privacy settings updated successfully", body["message"])
	settings = body["settings"].(map[string]any)
	assert.Equal(t, false, settings["data_sharing_consent"])
	assert.Equal(t, true, settings["marketing_consent"])
	assert.NotNil(t, settings["last_updated"])

	for _, bad := range []map[string]any{
		{"data_sharing": "no", "analytics": true, "marketing": true},
		{"data_sharing": true, "analytics": true},
		{"data_sharing": 1, "analytics": true, "marketing": false},
	} {
		w = e.do(t, http.MethodPut, "/user/privacy", token, bad)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid privacy settings format", errorOf(t, w))
	}

	w = e.do(t, http.MethodGet, "/user/privacy", token, nil)
	settings = decode(t, w)["settings"].(map[string]any)
	assert.Equal(t, false, settings["data_sharing_consent"])
}

func TestScheduledDeletionAndCancel(t *testing.T) {
	e := newAPIEnv(t)
	_, token := e.register(t, "alice@example.com")

	w := e.do(t, http.MethodDelete, "/user/delete", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Account deletion scheduled", body["message"])
	assert.EqualValues(t, 30, body["grace_period_days"])
	scheduled, err := time.Parse(time.RFC3339Nano, body["scheduled_date"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), scheduled, time.Minute)

	w = e.do(t, http.MethodPost, "/user/delete", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Account deletion cancelled successfully", decode(t, w)["message"])
	assert.Equal(t, 1, e.repos.UserCount())
}

func TestImmediateDeletion(t *testing.T) {
	e := newAPIEnv(t)
	_, token := e.register(t, "alice@example.com")
	w := e.upload(t, token, map[string]string{"title": "t", "timestamp": "2025-03-01T09:00:00Z", "duration": "1"}, []byte("x"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodDelete, "/user/delete?immediate=true", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Account deleted successfully", body["message"])
	assert.Equal(t, true, body["immediate"])

	assert.Equal(t, 0, e.repos.UserCount())
	assert.Equal(t, 0, e.repos.ClipCount())
	assert.Equal(t, 0, e.blobs.Len())

	w = e.do(t, http.MethodGet, "/clips", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", errorOf(t, w))
}

func TestExport(t *testing.T) {
	e := newAPIEnv(t)
	e.handler.now = func() time.Time { return time.UnixMilli(1740819600000) }
	id, token := e.register(t, "alice@example.com")
	w := e.upload(t, token, map[string]string{"title": "t", "timestamp": "2025-03-01T09:00:00Z", "duration": "1500"}, []byte("abcd"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodGet, "/user/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="save-that-again-data-`+id+`-1740819600000.json"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/json"))
	assert.Contains(t, w.Body.String(), "\n  \"export_version\": \"1.0\"")

	var exp struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
		Clips      []map[string]any `json:"clips"`
		Statistics struct {
			TotalClips         int   `json:"total_clips"`
			TotalDurationMs    int64 `json:"total_duration_ms"`
			TotalFileSizeBytes int64 `json:"total_file_size_bytes"`
		} `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exp))
	assert.Equal(t, "alice@example.com", exp.User.Email)
	assert.Len(t, exp.Clips, 1)
	assert.Equal(t, 1, exp.Statistics.TotalClips)
	assert.Equal(t, int64(1500), exp.Statistics.TotalDurationMs)
	assert.Equal(t, int64(4), exp.Statistics.TotalFileSizeBytes)
	assert.NotContains(t, w.Body.String(), "password")
}
