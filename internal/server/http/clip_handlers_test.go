package http

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndToEndClipLifecycle(t *testing.T) {
	e := newAPIEnv(t)

	_, token := e.register(t, "alice@example.com")

	w := e.do(t, http.MethodGet, "/clips", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, []any{}, body["clips"])
	assert.EqualValues(t, 0, body["total"])
	assert.EqualValues(t, 50, body["limit"])
	assert.EqualValues(t, 0, body["offset"])

	w = e.upload(t, token, map[string]string{
		"title":     "Morning idea",
		"timestamp": "2025-03-01T09:00:00Z",
		"duration":  "5000",
	}, []byte("fake-audio"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	clip := decode(t, w)["clip"].(map[string]any)
	clipID := clip["id"].(string)
	assert.Equal(t, "Morning idea", clip["title"])
	assert.EqualValues(t, 5000, clip["duration"])
	assert.EqualValues(t, len("fake-audio"), clip["file_size"])
	assert.Equal(t, []any{}, clip["tags"])
	assert.Equal(t, 1, e.blobs.Len())

	w = e.do(t, http.MethodGet, "/clips/"+clipID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, clipID, decode(t, w)["clip"].(map[string]any)["id"])

	w = e.do(t, http.MethodDelete, "/clips/"+clipID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])
	assert.Equal(t, 0, e.blobs.Len())

	w = e.do(t, http.MethodGet, "/clips/"+clipID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Clip not found", errorOf(t, w))
}

func TestCreateClip_Validation(t *testing.T) {
	e := newAPIEnv(t)
	_, token := e.register(t, "alice@example.com")

	full := func(overrides map[string]string) map[string]string {
		f := map[string]string{"title": "t", "timestamp": "2025-03-01T09:00:00Z", "duration": "1000"}
		for k, v := range overrides {
			if v == "" {
				delete(f, k)
				continue
			}
			f[k] = v
		}
		return f
	}

	tests := []struct {
		name    string
		fields  map[string]string
		file    []byte
		wantMsg string
	}{
		{"no file", full(nil), nil, "Audio file is required"},
		{"no title", full(map[string]string{"title": ""}), []byte("a"), "Title, timestamp, and duration are required"},
		{"no duration", full(map[string]string{"duration": ""}), []byte("a"), "Title, timestamp, and duration are required"},
		{"bad timestamp", full(map[string]string{"timestamp": "yesterday"}), []byte("a"), "Invalid timestamp"},
		{"bad duration", full(map[string]string{"duration": "long"}), []byte("a"), "Invalid duration"},
		{"negative duration", full(map[string]string{"duration": "-5"}), []byte("a"), "Duration must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.upload(t, token, tt.fields, tt.file)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantMsg, errorOf(t, w))
		})
	}
	assert.Equal(t, 0, e.repos.ClipCount())
	assert.Equal(t, 0, e.blobs.Len())
}

func TestCreateClip_TagsAndEpochTimestamp(t *testing.T) {
	e := newAPIEnv(t)
	_, token := e.register(t, "alice@example.com")
	ts := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	w := e.upload(t, token, map[string]string{
		"title":     "tagged",
		"timestamp": fmt.Sprint(ts.UnixMilli()),
		"duration":  "0",
		"tags":      `["work","idea"]`,
	}, []byte("x"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	clip := decode(t, w)["clip"].(map[string]any)
	assert.Equal(t, []any{"work", "idea"}, clip["tags"])
	assert.Equal(t, "2025-03-01T09:00:00Z", clip["timestamp"])

	w = e.upload(t, token, map[string]string{
		"title": "broken tags", "timestamp": "2025-03-01T09:00:00Z", "duration": "1", "tags": "{not json",
	}, []byte("x"))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []any{}, decode(t, w)["clip"].(map[string]any)["tags"])
}

func TestCreateClip_TooLarge(t *testing.T) {
	e := newAPIEnv(t, func(o *Options) { o.MaxUploadBytes = 1024 })
	_, token := e.register(t, "alice@example.com")

	w := e.upload(t, token, map[string]string{
		"title": "big", "timestamp": "2025-03-01T09:00:00Z", "duration": "1",
	}, make([]byte, 4096))
	assert.Contains(t, []int{http.StatusBadRequest, http.StatusRequestEntityTooLarge}, w.Code)
	assert.Equal(t, 0, e.repos.ClipCount())
}

func TestListClips_Pagination(t *testing.T) {
	e := newAPIEnv(t)
	_, token := e.register(t, "alice@example.com")

	for i := range 3 {
		w := e.upload(t, token, map[string]string{
			"title":     fmt.Sprintf("clip %d", i),
			"timestamp": time.Date(2025, 3, 1, 9, i, 0, 0, time.UTC).Format(time.RFC3339),
			"duration":  "1000",
		}, []byte("x"))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := e.do(t, http.MethodGet, "/clips?limit=2&offset=0", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 3, body["total"])
	clips := body["clips"].([]any)
	require.Len(t, clips, 2)
	assert.Equal(t, "clip 2", clips[0].(map[string]any)["title"])

	for _, q := range []string{"limit=0", "limit=1001", "offset=-1", "limit=abc", "offset=x"} {
		w := e.do(t, http.MethodGet, "/clips?"+q, token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Equal(t, "Invalid pagination parameters", errorOf(t, w), q)
	}
}

func TestClips_OwnershipIsolation(t *testing.T) {
	e := newAPIEnv(t)
	_, alice := e.register(t, "alice@example.com")
	_, bob := e.register(t, "bob@example.com")

	w := e.upload(t, alice, map[string]string{"title": "mine", "timestamp": "2025-03-01T09:00:00Z", "duration": "1"}, []byte("x"))
	require.Equal(t, http.StatusCreated, w.Code)
	clipID := decode(t, w)["clip"].(map[string]any)["id"].(string)

	w = e.do(t, http.MethodGet, "/clips/"+clipID, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodDelete, "/clips/"+clipID, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, e.repos.ClipCount())

	w = e.do(t, http.MethodGet, "/clips", bob, nil)
	assert.EqualValues(t, 0, decode(t, w)["total"])

	w = e.do(t, http.MethodGet, "/clips/not-a-uuid", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	got, err := parseTimestamp("2025-03-01T11:00:00+02:00")
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	got, err = parseTimestamp(fmt.Sprint(want.UnixMilli()))
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	_, err = parseTimestamp("03/01/2025")
	assert.Error(t, err)
}
