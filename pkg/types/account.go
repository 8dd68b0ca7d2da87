// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// User is a registered account. The password hash never leaves the store.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is an opaque login token bound to a user.
type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Bookmark is a saved snapshot of a Resource.
type Bookmark struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Type        ResourceType `json:"resource_type"`
	Title       string       `json:"title"`
	URL         string       `json:"url"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"created_at"`
}

// UploadStatus is the moderation state of a community upload.
type UploadStatus string

const (
	UploadPending  UploadStatus = "pending"
	UploadApproved UploadStatus = "approved"
	UploadRejected UploadStatus = "rejected"
)

// Valid reports whether s is a known moderation state.
func (s UploadStatus) Valid() bool {
	switch s {
	case UploadPending, UploadApproved, UploadRejected:
		return true
	}
	return false
}

// Upload is a community-submitted resource waiting for, or past, moderation.
type Upload struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Type        ResourceType `json:"resource_type"`
	Title       string       `json:"title"`
	URL         string       `json:"url"`
	Description string       `json:"description"`
	Status      UploadStatus `json:"status"`
	ReviewedBy  string       `json:"reviewed_by,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	ReviewedAt  *time.Time   `json:"reviewed_at,omitempty"`
}

// Resource converts an approved upload into a Resource for display.
func (u Upload) Resource() Resource {
	return Resource{
		Type:   u.Type,
		Source: "community",
		Title:  u.Title,
		Body:   u.Description,
		URL:    u.URL,
	}
}
