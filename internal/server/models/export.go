package models

import "time"

// ExportVersion identifies the layout of Export.
const ExportVersion = "1.0"

// Export is the downloadable copy of everything stored about a user.
type Export struct {
	ExportDate    time.Time        `json:"export_date"`
	ExportVersion string           `json:"export_version"`
	User          ExportUser       `json:"user"`
	Clips         []ExportClip     `json:"clips"`
	Statistics    ExportStatistics `json:"statistics"`
}

// ExportUser is the user without credentials or deletion bookkeeping.
type ExportUser struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Name               *string    `json:"name"`
	AuthProvider       string     `json:"auth_provider"`
	CreatedAt          time.Time  `json:"created_at"`
	DataSharingConsent bool       `json:"data_sharing_consent"`
	AnalyticsConsent   bool       `json:"analytics_consent"`
	MarketingConsent   bool       `json:"marketing_consent"`
	LastSettingsUpdate *time.Time `json:"last_settings_update"`
}

type ExportClip struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
	Duration  int       `json:"duration"`
	FileSize  int64     `json:"file_size"`
	BlobURL   string    `json:"blob_url"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ExportStatistics struct {
	TotalClips         int   `json:"total_clips"`
	TotalDurationMs    int64 `json:"total_duration_ms"`
	TotalFileSizeBytes int64 `json:"total_file_size_bytes"`
}

// NewExport assembles an export of u and clips taken at now.
func NewExport(u *User, clips []*AudioClip, now time.Time) *Export {
	e := &Export{
		ExportDate:    now,
		ExportVersion: ExportVersion,
		User: ExportUser{
			ID:                 u.ID,
			Email:              u.Email,
			Name:               u.Name,
			AuthProvider:       u.AuthProvider,
			CreatedAt:          u.CreatedAt,
			DataSharingConsent: u.DataSharingConsent,
			AnalyticsConsent:   u.AnalyticsConsent,
			MarketingConsent:   u.MarketingConsent,
			LastSettingsUpdate: u.LastSettingsUpdate,
		},
		Clips: make([]ExportClip, 0, len(clips)),
	}

	for _, c := range clips {
		tags := c.Tags
		if tags == nil {
			tags = []string{}
		}
		e.Clips = append(e.Clips, ExportClip{
			ID:        c.ID,
			Title:     c.Title,
			Timestamp: c.Timestamp,
			Duration:  c.Duration,
			FileSize:  c.FileSize,
			BlobURL:   c.BlobURL,
			Tags:      tags,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
		e.Statistics.TotalDurationMs += int64(c.Duration)
		e.Statistics.TotalFileSizeBytes += c.FileSize
	}
	e.Statistics.TotalClips = len(e.Clips)

	return e
}
