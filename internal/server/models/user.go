// Package models defines server-side data models persisted in the database
// and the JSON shapes derived from them.
package models

import "time"

// User is a row of the users table. A user always carries at least one
// credential: a password hash, a Google subject id, or both.
type User struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	PasswordHash *string `json:"-"`
	Name         *string `json:"name"`
	GoogleID     *string `json:"google_id"`
	// AuthProvider is "email" or "google": the method used at creation.
	AuthProvider   string    `json:"auth_provider"`
	ProfilePicture *string   `json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`

	DataSharingConsent bool       `json:"data_sharing_consent"`
	AnalyticsConsent   bool       `json:"analytics_consent"`
	MarketingConsent   bool       `json:"marketing_consent"`
	LastSettingsUpdate *time.Time `json:"last_settings_update"`

	AccountDeletionRequested *time.Time `json:"account_deletion_requested"`
	AccountDeletionScheduled *time.Time `json:"account_deletion_scheduled"`
}

// HasPassword reports whether the user can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// PrivacySettings returns the consent flags of the user.
func (u *User) PrivacySettings() *PrivacySettings {
	return &PrivacySettings{
		DataSharingConsent: u.DataSharingConsent,
		AnalyticsConsent:   u.AnalyticsConsent,
		MarketingConsent:   u.MarketingConsent,
		LastUpdated:        u.LastSettingsUpdate,
	}
}

// Profile is the reduced user view returned by Google sign-in.
type Profile struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	Name           *string `json:"name"`
	ProfilePicture *string `json:"profile_picture"`
	AuthProvider   string  `json:"auth_provider"`
}

// Profile returns the public subset of u.
func (u *User) Profile() *Profile {
	return &Profile{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		ProfilePicture: u.ProfilePicture,
		AuthProvider:   u.AuthProvider,
	}
}

// PrivacySettings are the three consent flags plus the time they last changed.
type PrivacySettings struct {
	DataSharingConsent bool       `json:"data_sharing_consent"`
	AnalyticsConsent   bool       `json:"analytics_consent"`
	MarketingConsent   bool       `json:"marketing_consent"`
	LastUpdated        *time.Time `json:"last_updated"`
}
