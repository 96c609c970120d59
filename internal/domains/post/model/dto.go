package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ============ REQUEST DTOs ============

// Fields - normalized create/update payload. A nil pointer means the
// caller did not send the field at all.
type Fields struct {
	Title          *string   `json:"title,omitempty"`
	Slug           *string   `json:"slug,omitempty"`
	Summary        *string   `json:"summary,omitempty"`
	Body           *string   `json:"body,omitempty"`
	AuthorName     *string   `json:"authorName,omitempty"`
	AuthorImageURL *string   `json:"authorImageUrl,omitempty"`
	Category       *string   `json:"category,omitempty"`
	Tags           *[]string `json:"tags,omitempty"`
	Visible        *bool     `json:"visible,omitempty"`
	Featured       *bool     `json:"featured,omitempty"`
}

// Attachment - binary part of a multipart submission
type Attachment struct {
	Data      []byte
	MimeType  string
	SizeBytes int64
	Filename  string
}

// Payload - what the request decoder hands to the service, whatever the
// wire encoding was.
type Payload struct {
	Fields     Fields
	Attachment *Attachment
}

// ListRequest - query params of the listing endpoint
type ListRequest struct {
	Page     int
	Limit    int
	Category string
	Featured *bool
	Search   string
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Normalize applies page/limit defaults.
func (r *ListRequest) Normalize() {
	if r.Page < 1 {
		r.Page = DefaultPage
	}
	if r.Limit < 1 {
		r.Limit = DefaultLimit
	}
	r.Category = strings.TrimSpace(r.Category)
	r.Search = strings.TrimSpace(r.Search)
}

// CacheKey - deterministic key for one listing query
func (r ListRequest) CacheKey() string {
	featured := "any"
	if r.Featured != nil {
		featured = fmt.Sprintf("%t", *r.Featured)
	}
	return fmt.Sprintf("%s:p=%d:l=%d:c=%s:f=%s:q=%s",
		CacheKeyList, r.Page, r.Limit, r.Category, featured, strings.ToLower(r.Search))
}

// ============ STORE QUERY TYPES ============

// PostFilter - criteria understood by every repository implementation
type PostFilter struct {
	Visible  *bool
	Category string
	Featured *bool
	Search   string // case-insensitive substring over title/summary/body/tags
	Sort     SortOrder
}

// Window - skip/limit pair; a nil *Window means "return every match".
type Window struct {
	Offset int
	Limit  int
}

// SortOrder selects the ordering of Find results.
type SortOrder int

const (
	SortPublishedDesc SortOrder = iota
	SortCreatedDesc
)

// ============ RESPONSE DTOs ============

// PaginationMeta - pagination block of the listing response
type PaginationMeta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPaginationMeta computes pages = ceil(total/limit).
func NewPaginationMeta(page, limit, total int) PaginationMeta {
	pages := 0
	if limit > 0 {
		pages = total / limit
		if total%limit != 0 {
			pages++
		}
	}
	return PaginationMeta{Page: page, Limit: limit, Total: total, Pages: pages}
}

// ListResult - listing payload
type ListResult struct {
	Items      []Post         `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// ItemResponse - single item envelope
type ItemResponse struct {
	Item *Post `json:"item"`
}

// DeleteResponse - DELETE by id
type DeleteResponse struct {
	Message     string `json:"message"`
	DeletedItem *Post  `json:"deletedItem"`
}

// DeleteAllResponse - DELETE without id
type DeleteAllResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

// HealthResponse - GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ============ CACHE KEYS ============

const (
	CacheKeyPrefix = "blog:"
	CacheKeyList   = CacheKeyPrefix + "list"
)

// CacheKeyByID - cache key of a single post looked up by id
func CacheKeyByID(id string) string {
	return CacheKeyPrefix + "id:" + id
}

// CacheKeyBySlug - cache key of a single visible post looked up by slug
func CacheKeyBySlug(slug string) string {
	return CacheKeyPrefix + "slug:" + slug
}

// ============ MAPPERS ============

// ToPostEntity builds a new Post from a validated create payload.
func ToPostEntity(f Fields, now time.Time) *Post {
	p := &Post{
		ID:             uuid.New(),
		Title:          deref(f.Title),
		Slug:           deref(f.Slug),
		Summary:        deref(f.Summary),
		Body:           deref(f.Body),
		AuthorName:     deref(f.AuthorName),
		AuthorImageURL: deref(f.AuthorImageURL),
		Category:       deref(f.Category),
		Tags:           []string{},
		Visible:        DefaultVisible,
		Featured:       DefaultFeatured,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if f.Tags != nil {
		p.Tags = dedupeTags(*f.Tags)
	}
	if f.Visible != nil {
		p.Visible = *f.Visible
	}
	if f.Featured != nil {
		p.Featured = *f.Featured
	}
	p.Publish(now)
	return p
}

// ApplyFields merges the fields the caller sent into p. It reports whether
// the post went from hidden to visible.
func ApplyFields(p *Post, f Fields) (becameVisible bool) {
	if f.Title != nil {
		p.Title = *f.Title
	}
	if f.Slug != nil {
		p.Slug = *f.Slug
	}
	if f.Summary != nil {
		p.Summary = *f.Summary
	}
	if f.Body != nil {
		p.Body = *f.Body
	}
	if f.AuthorName != nil {
		p.AuthorName = *f.AuthorName
	}
	if f.AuthorImageURL != nil {
		p.AuthorImageURL = *f.AuthorImageURL
	}
	if f.Category != nil {
		p.Category = *f.Category
	}
	if f.Tags != nil {
		p.Tags = dedupeTags(*f.Tags)
	}
	if f.Featured != nil {
		p.Featured = *f.Featured
	}
	if f.Visible != nil {
		becameVisible = !p.Visible && *f.Visible
		p.Visible = *f.Visible
	}
	return becameVisible
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// tags are a set: trim, drop blanks and duplicates, keep first-seen order
func dedupeTags(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
