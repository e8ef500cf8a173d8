package models

import "time"

// AudioClip is the metadata of a recorded clip. The audio itself lives in
// object storage under BlobPathname.
type AudioClip struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	// Timestamp is when the captured moment happened, not when it was uploaded.
	Timestamp time.Time `json:"timestamp"`
	// Duration is in milliseconds.
	Duration     int       `json:"duration"`
	BlobURL      string    `json:"blob_url"`
	BlobPathname string    `json:"blob_pathname"`
	FileSize     int64     `json:"file_size"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BlobDeletion is a queued removal of an object whose row is already gone.
type BlobDeletion struct {
	ID           int64
	BlobPathname string
	Attempts     int
	LastError    *string
	CreatedAt    time.Time
}
