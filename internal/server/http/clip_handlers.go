package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/common"
	"github.com/dmitrijs2005/savethatagain/internal/server/services"
	"github.com/gin-gonic/gin"
)

const defaultContentType = "audio/mp4"

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	v := c.Query(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

// clipError is fail with clip-specific wording for a missing clip.
func (h *Handler) clipError(c *gin.Context, err error) {
	if errors.Is(err, common.ErrorNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Clip not found"})
		return
	}
	h.fail(c, err)
}

func (h *Handler) ListClips(c *gin.Context) {
	limit, okLimit := queryInt(c, "limit", services.DefaultClipLimit)
	offset, okOffset := queryInt(c, "offset", 0)
	if !okLimit || !okOffset {
		badRequest(c, "Invalid pagination parameters")
		return
	}

	page, err := h.clips.List(c.Request.Context(), currentUser(c).ID, limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"clips":  page.Clips,
		"total":  page.Total,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}

// parseTimestamp accepts RFC 3339 or Unix milliseconds.
func parseTimestamp(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// parseTags reads a JSON array of strings. Anything else yields no tags.
func parseTags(s string) []string {
	tags := []string{}
	if s == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(s), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

func (h *Handler) CreateClip(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Audio file is too large"})
			return
		}
		badRequest(c, "Audio file is required")
		return
	}

	title := c.PostForm("title")
	rawTimestamp := c.PostForm("timestamp")
	rawDuration := c.PostForm("duration")
	if title == "" || rawTimestamp == "" || rawDuration == "" {
		badRequest(c, "Title, timestamp, and duration are required")
		return
	}

	ts, err := parseTimestamp(rawTimestamp)
	if err != nil {
		badRequest(c, "Invalid timestamp")
		return
	}
	duration, err := strconv.Atoi(rawDuration)
	if err != nil {
		badRequest(c, "Invalid duration")
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = defaultContentType
	}

	clip, err := h.clips.Create(c.Request.Context(), currentUser(c).ID, services.ClipUpload{
		Title:       title,
		Timestamp:   ts,
		Duration:    duration,
		Tags:        parseTags(c.PostForm("tags")),
		ContentType: contentType,
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"clip": clip})
}

func (h *Handler) GetClip(c *gin.Context) {
	clip, err := h.clips.Get(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		h.clipError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clip": clip})
}

func (h *Handler) DeleteClip(c *gin.Context) {
	if err := h.clips.Delete(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		h.clipError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
