package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewHTTPClient(srv.URL, 5*time.Second)
	c.retryBase = time.Millisecond
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin_SendsCredentialsAndDecodesSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "ann@example.com", in["email"])
		assert.Equal(t, "hunter22", in["password"])

		writeJSON(w, http.StatusOK, map[string]any{
			"user":  map[string]any{"id": "u1", "email": "ann@example.com", "auth_provider": "email"},
			"token": "jwt-token",
		})
	})

	s, err := c.Login(context.Background(), "ann@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", s.Token)
	assert.Equal(t, "u1", s.User.ID)
}

func TestRegister_OmitsEmptyName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_, hasName := in["name"]
		assert.False(t, hasName)
		writeJSON(w, http.StatusCreated, map[string]any{"user": map[string]any{"id": "u1"}, "token": "t"})
	})

	s, err := c.Register(context.Background(), "a@b.co", "password1", "")
	require.NoError(t, err)
	assert.Equal(t, "t", s.Token)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"error":"Invalid token"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnauthorized)
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
				assert.Equal(t, "Invalid token", apiErr.Message)
			},
		},
		{
			name:   "google-only login hint",
			status: http.StatusUnauthorized,
			body:   `{"error":"This account uses Google Sign-In. Please login with Google."}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnauthorized)
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "This account uses Google Sign-In. Please login with Google.", apiErr.Message)
			},
		},
		{
			name:   "server message",
			status: http.StatusBadRequest,
			body:   `{"error":"User already exists"}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusBadRequest, apiErr.Status)
				assert.Equal(t, "User already exists", apiErr.Message)
			},
		},
		{
			name:   "no json body",
			status: http.StatusNotFound,
			body:   `nope`,
			check: func(t *testing.T, err error) {
				assert.True(t, IsNotFound(err))
				assert.Contains(t, err.Error(), "Not Found")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.Login(context.Background(), "a@b.co", "x")
			tt.check(t, err)
		})
	}
}

func TestUnavailable_RetriesReads(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(url, time.Second)
	c.retryBase = time.Millisecond

	_, err := c.ListClips(context.Background(), 10, 0)
	assert.ErrorIs(t, err, ErrUnavailable)

	err = c.DeleteClip(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRetry_RecoversAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			_ = conn.Close()
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"clips": []any{}, "total": 0, "limit": 10, "offset": 0})
	})

	page, err := c.ListClips(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, int32(2), calls.Load())
}

func TestListClips_SendsTokenAndPaging(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/clips", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "10", r.URL.Query().Get("offset"))
		writeJSON(w, http.StatusOK, map[string]any{
			"clips": []map[string]any{{"id": "c1", "title": "Hello", "duration": 1000, "tags": []string{"x"}}},
			"total": 11, "limit": 5, "offset": 10,
		})
	})
	c.SetToken("tok")

	page, err := c.ListClips(context.Background(), 5, 10)
	require.NoError(t, err)
	require.Len(t, page.Clips, 1)
	assert.Equal(t, "Hello", page.Clips[0].Title)
	assert.Equal(t, 11, page.Total)
}

func TestUploadClip_SendsMultipart(t *testing.T) {
	ts := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Meeting", r.FormValue("title"))
		assert.Equal(t, "2025-03-01T09:00:00Z", r.FormValue("timestamp"))
		assert.Equal(t, "4200", r.FormValue("duration"))
		assert.Equal(t, `["work"]`, r.FormValue("tags"))

		f, fh, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "meeting.m4a", fh.Filename)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "AUDIO", string(data))

		writeJSON(w, http.StatusCreated, map[string]any{"clip": map[string]any{"id": "c9", "title": "Meeting", "file_size": 5}})
	})

	clip, err := c.UploadClip(context.Background(), models.NewClip{Title: "Meeting", Timestamp: ts, Duration: 4200, Tags: []string{"work"}}, "meeting.m4a", strings.NewReader("AUDIO"))
	require.NoError(t, err)
	assert.Equal(t, "c9", clip.ID)
	assert.Equal(t, int64(5), clip.FileSize)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestUploadClip_ReaderFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Audio file is required"})
	})

	_, err := c.UploadClip(context.Background(), models.NewClip{Title: "x", Timestamp: time.Now(), Duration: 1}, "x.m4a", failingReader{})
	assert.Error(t, err)
}

func TestPrivacyAndDeletion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/user/privacy":
			writeJSON(w, http.StatusOK, map[string]any{"settings": map[string]any{"analytics_consent": true}})
		case r.Method == http.MethodPut && r.URL.Path == "/user/privacy":
			var in map[string]bool
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, map[string]bool{"marketing": true}, in)
			writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "settings": map[string]any{"marketing_consent": true}})
		case r.Method == http.MethodDelete && r.URL.Path == "/user/delete":
			if r.URL.Query().Get("immediate") == "true" {
				writeJSON(w, http.StatusOK, map[string]any{"message": "Account deleted successfully", "immediate": true})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"message": "Account deletion scheduled", "grace_period_days": 30, "scheduled_date": "2025-03-31T12:00:00Z"})
		case r.Method == http.MethodPost && r.URL.Path == "/user/delete":
			writeJSON(w, http.StatusOK, map[string]any{"message": "Account deletion cancelled successfully"})
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	})
	ctx := context.Background()

	s, err := c.GetPrivacy(ctx)
	require.NoError(t, err)
	assert.True(t, s.AnalyticsConsent)

	yes := true
	s, err = c.UpdatePrivacy(ctx, models.PrivacyUpdate{Marketing: &yes})
	require.NoError(t, err)
	assert.True(t, s.MarketingConsent)

	res, err := c.DeleteAccount(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 30, res.GracePeriodDays)
	assert.False(t, res.Immediate)

	res, err = c.DeleteAccount(ctx, true)
	require.NoError(t, err)
	assert.True(t, res.Immediate)

	require.NoError(t, c.CancelDeletion(ctx))
}

func TestExport_CopiesBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="x.json"`)
		_, _ = io.WriteString(w, `{"export_version":"1.0"}`)
	})

	var buf bytes.Buffer
	require.NoError(t, c.Export(context.Background(), &buf))
	assert.JSONEq(t, `{"export_version":"1.0"}`, buf.String())
}

func TestPing(t *testing.T) {
	status := http.StatusOK
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		writeJSON(w, status, map[string]any{"status": "x"})
	})

	assert.NoError(t, c.Ping(context.Background()))
	status = http.StatusServiceUnavailable
	assert.NoError(t, c.Ping(context.Background()))
	status = http.StatusInternalServerError
	assert.Error(t, c.Ping(context.Background()))
}
