package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/server/auth"
	"github.com/dmitrijs2005/savethatagain/internal/server/blob"
	"github.com/dmitrijs2005/savethatagain/internal/server/metrics"
	"github.com/dmitrijs2005/savethatagain/internal/server/ratelimit"
	"github.com/dmitrijs2005/savethatagain/internal/server/repositories/memory"
	"github.com/dmitrijs2005/savethatagain/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGoogle map[string]*auth.GoogleIdentity

func (f fakeGoogle) Verify(_ context.Context, idToken string) (*auth.GoogleIdentity, error) {
	if id, ok := f[idToken]; ok {
		return id, nil
	}
	return nil, errors.New("rejected")
}

type apiEnv struct {
	repos   *memory.Manager
	blobs   *blob.MemoryStore
	google  fakeGoogle
	metrics *metrics.Metrics
	handler *Handler
	router  *gin.Engine
}

type envOption func(*Options)

func newAPIEnv(t *testing.T, opts ...envOption) *apiEnv {
	t.Helper()

	e := &apiEnv{
		repos:   memory.NewManager(),
		blobs:   blob.NewMemoryStore("http://blobs.test"),
		google:  fakeGoogle{},
		metrics: metrics.New(),
	}
	d := services.Deps{Tx: e.repos, Repos: e.repos, Blobs: e.blobs, Metrics: e.metrics}

	o := Options{Limiter: ratelimit.NoopLimiter{}}
	for _, fn := range opts {
		fn(&o)
	}

	e.handler = NewHandler(
		services.NewAuthService(d, auth.NewTokenCodec("test-secret", time.Hour), e.google),
		services.NewAccountService(d, 0),
		services.NewClipService(d),
		services.NewHealthService(d, nil),
		o,
	)
	e.router = NewRouter(e.handler, e.metrics)
	return e
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *apiEnv) upload(t *testing.T, token string, fields map[string]string, file []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="file"; filename="clip.m4a"`)
		h.Set("Content-Type", "audio/mp4")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/clips", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// register creates a user and returns its id and token.
func (e *apiEnv) register(t *testing.T, email string) (string, string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": email, "password": "password123", "name": "Tester",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	return body["user"].(map[string]any)["id"].(string), body["token"].(string)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decode(t, w)["error"].(string)
	return msg
}
