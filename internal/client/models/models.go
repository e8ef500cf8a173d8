// Package models defines the client-side views of the savethatagain API.
package models

import "time"

// Clip is a recorded clip as listed by the server.
type Clip struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
	// Duration is in milliseconds.
	Duration  int       `json:"duration"`
	FileSize  int64     `json:"file_size"`
	BlobURL   string    `json:"blob_url"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// DurationValue converts the millisecond duration.
func (c *Clip) DurationValue() time.Duration {
	return time.Duration(c.Duration) * time.Millisecond
}

// ClipPage is one page of the clip listing.
type ClipPage struct {
	Clips  []*Clip `json:"clips"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// NewClip is the metadata sent along with an upload.
type NewClip struct {
	Title     string
	Timestamp time.Time
	Duration  int
	Tags      []string
}

// User is the account as returned by register and login.
type User struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	Name         *string `json:"name"`
	AuthProvider string  `json:"auth_provider"`
}

// Session is the answer of the auth endpoints.
type Session struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// PrivacySettings are the consent flags of the signed-in user.
type PrivacySettings struct {
	DataSharingConsent bool       `json:"data_sharing_consent"`
	AnalyticsConsent   bool       `json:"analytics_consent"`
	MarketingConsent   bool       `json:"marketing_consent"`
	LastUpdated        *time.Time `json:"last_updated"`
}

// PrivacyUpdate changes only the flags that are set.
type PrivacyUpdate struct {
	DataSharing *bool `json:"data_sharing,omitempty"`
	Analytics   *bool `json:"analytics,omitempty"`
	Marketing   *bool `json:"marketing,omitempty"`
}

// DeletionResult describes the outcome of an account deletion request.
type DeletionResult struct {
	Message         string     `json:"message"`
	Immediate       bool       `json:"immediate"`
	ScheduledDate   *time.Time `json:"scheduled_date"`
	GracePeriodDays int        `json:"grace_period_days"`
}
