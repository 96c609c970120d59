package model

import (
	"time"

	"github.com/google/uuid"
)

// ============ ENTITIES ============

// Post - Domain Entity (from database)
type Post struct {
	// Identity
	ID    uuid.UUID `json:"id" db:"id"`
	Title string    `json:"title" db:"title"`
	Slug  string    `json:"slug" db:"slug"`

	// Content
	Summary  string   `json:"summary" db:"summary"`
	Body     string   `json:"body" db:"body"`
	Category string   `json:"category,omitempty" db:"category"`
	Tags     []string `json:"tags" db:"tags"`

	// Author
	AuthorName     string `json:"authorName" db:"author_name"`
	AuthorImageURL string `json:"authorImageUrl,omitempty" db:"author_image_url"`

	// Media (only set by a successful upload)
	MediaURL string `json:"mediaUrl,omitempty" db:"media_url"`

	// Status
	Visible     bool       `json:"visible" db:"visible"`
	Featured    bool       `json:"featured" db:"featured"`
	PublishedAt *time.Time `json:"publishedAt" db:"published_at"`

	// Timestamps
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Defaults applied when a create request leaves the flags out.
const (
	DefaultVisible  = true
	DefaultFeatured = false
)

// Attachment limits.
const (
	MaxAttachmentSize int64 = 5 * 1024 * 1024 // 5 MiB
	MimeJPEG                = "image/jpeg"
	MimePNG                 = "image/png"
)

// AllowedMimeTypes - declared attachment types accepted on create
var AllowedMimeTypes = map[string]bool{
	MimeJPEG: true,
	MimePNG:  true,
}

// Publish marks the post as published at t if it is visible.
func (p *Post) Publish(t time.Time) {
	if p.Visible {
		published := t
		p.PublishedAt = &published
	}
}

