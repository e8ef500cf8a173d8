package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/client/models"
	"github.com/dmitrijs2005/savethatagain/internal/common"
	"github.com/sethvargo/go-retry"
)

// Client is the API surface the CLI services depend on.
type Client interface {
	SetToken(token string)
	Ping(ctx context.Context) error
	Register(ctx context.Context, email, password, name string) (*models.Session, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
	ListClips(ctx context.Context, limit, offset int) (*models.ClipPage, error)
	GetClip(ctx context.Context, id string) (*models.Clip, error)
	UploadClip(ctx context.Context, meta models.NewClip, filename string, audio io.Reader) (*models.Clip, error)
	DeleteClip(ctx context.Context, id string) error
	GetPrivacy(ctx context.Context) (*models.PrivacySettings, error)
	UpdatePrivacy(ctx context.Context, upd models.PrivacyUpdate) (*models.PrivacySettings, error)
	DeleteAccount(ctx context.Context, immediate bool) (*models.DeletionResult, error)
	CancelDeletion(ctx context.Context) error
	Export(ctx context.Context, w io.Writer) error
}

// HTTPClient talks JSON to the savethatagain server. Idempotent reads are
// retried while the server is unreachable.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	token   string

	retries   uint64
	retryBase time.Duration
}

// NewHTTPClient returns a client for the API rooted at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:   baseURL,
		http:      &http.Client{Timeout: timeout},
		retries:   2,
		retryBase: 200 * time.Millisecond,
	}
}

// SetToken sets the bearer token sent with every request. An empty token
// sends none.
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token)
	}
	return req, nil
}

// do sends req and maps transport failures and error statuses to errors.
// On success the caller owns the response body.
func (c *HTTPClient) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Message = payload.Error
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, apiErr)
	}
	return nil, apiErr
}

// call sends a JSON request and decodes the JSON answer into out when out
// is non-nil.
func (c *HTTPClient) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	var raw []byte
	if in != nil {
		var err error
		if raw, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	send := func(ctx context.Context) error {
		if raw != nil {
			body = bytes.NewReader(raw)
		}
		req, err := c.newRequest(ctx, method, path, body)
		if err != nil {
			return err
		}
		if raw != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := c.do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	if method != http.MethodGet {
		return send(ctx)
	}
	b := retry.WithMaxRetries(c.retries, retry.NewExponential(c.retryBase))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := send(ctx)
		if errors.Is(err, ErrUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// Ping checks that the server answers its health endpoint. A degraded
// server still counts as reachable.
func (c *HTTPClient) Ping(ctx context.Context) error {
	err := c.call(ctx, http.MethodGet, "/health", nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable {
		return nil
	}
	return err
}

func (c *HTTPClient) Register(ctx context.Context, email, password, name string) (*models.Session, error) {
	in := map[string]string{"email": email, "password": password}
	if name != "" {
		in["name"] = name
	}
	var out models.Session
	if err := c.call(ctx, http.MethodPost, "/auth/register", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.Session, error) {
	in := map[string]string{"email": email, "password": password}
	var out models.Session
	if err := c.call(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListClips(ctx context.Context, limit, offset int) (*models.ClipPage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var out models.ClipPage
	if err := c.call(ctx, http.MethodGet, "/clips?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetClip(ctx context.Context, id string) (*models.Clip, error) {
	var out struct {
		Clip *models.Clip `json:"clip"`
	}
	if err := c.call(ctx, http.MethodGet, "/clips/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return out.Clip, nil
}

// UploadClip streams audio as a multipart form together with meta.
func (c *HTTPClient) UploadClip(ctx context.Context, meta models.NewClip, filename string, audio io.Reader) (*models.Clip, error) {
	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		fields := [][2]string{
			{"title", meta.Title},
			{"timestamp", meta.Timestamp.UTC().Format(time.RFC3339Nano)},
			{"duration", strconv.Itoa(meta.Duration)},
			{"tags", string(rawTags)},
		}
		for _, f := range fields {
			if err := mw.WriteField(f[0], f[1]); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, audio); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/clips", pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		pr.Close()
		return nil, err
	}
	defer resp.Body.Close()

	var out struct {
		Clip *models.Clip `json:"clip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Clip, nil
}

func (c *HTTPClient) DeleteClip(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/clips/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) GetPrivacy(ctx context.Context) (*models.PrivacySettings, error) {
	var out struct {
		Settings *models.PrivacySettings `json:"settings"`
	}
	if err := c.call(ctx, http.MethodGet, "/user/privacy", nil, &out); err != nil {
		return nil, err
	}
	return out.Settings, nil
}

func (c *HTTPClient) UpdatePrivacy(ctx context.Context, upd models.PrivacyUpdate) (*models.PrivacySettings, error) {
	var out struct {
		Settings *models.PrivacySettings `json:"settings"`
	}
	if err := c.call(ctx, http.MethodPut, "/user/privacy", upd, &out); err != nil {
		return nil, err
	}
	return out.Settings, nil
}

func (c *HTTPClient) DeleteAccount(ctx context.Context, immediate bool) (*models.DeletionResult, error) {
	path := "/user/delete"
	if immediate {
		path += "?immediate=true"
	}
	var out models.DeletionResult
	if err := c.call(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CancelDeletion(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/user/delete", nil, nil)
}

// Export copies the JSON data export to w.
func (c *HTTPClient) Export(ctx context.Context, w io.Writer) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/user/export", nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	return nil
}
