package model

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestToPostEntity_Defaults(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	p := ToPostEntity(completeFields(), now)

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.True(t, p.Visible)
	assert.False(t, p.Featured)
	require.NotNil(t, p.PublishedAt)
	assert.Equal(t, now, *p.PublishedAt)
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, now, p.UpdatedAt)
	assert.Equal(t, []string{}, p.Tags)
}

func TestToPostEntity_HiddenIsUnpublished(t *testing.T) {
	f := completeFields()
	f.Visible = boolPtr(false)
	f.Featured = boolPtr(true)
	f.Tags = &[]string{" go ", "go", "", "web"}

	p := ToPostEntity(f, time.Now())

	assert.False(t, p.Visible)
	assert.True(t, p.Featured)
	assert.Nil(t, p.PublishedAt)
	assert.Equal(t, []string{"go", "web"}, p.Tags)
}

func TestApplyFields(t *testing.T) {
	t.Run("only sent fields change", func(t *testing.T) {
		p := ToPostEntity(completeFields(), time.Now())
		becameVisible := ApplyFields(p, Fields{Title: strPtr("New title")})

		assert.False(t, becameVisible)
		assert.Equal(t, "New title", p.Title)
		assert.Equal(t, "intro", p.Slug)
		assert.Equal(t, "Ada", p.AuthorName)
	})

	t.Run("hidden to visible is reported", func(t *testing.T) {
		f := completeFields()
		f.Visible = boolPtr(false)
		p := ToPostEntity(f, time.Now())

		assert.True(t, ApplyFields(p, Fields{Visible: boolPtr(true)}))
		assert.True(t, p.Visible)
	})

	t.Run("visible to visible is not a transition", func(t *testing.T) {
		p := ToPostEntity(completeFields(), time.Now())
		assert.False(t, ApplyFields(p, Fields{Visible: boolPtr(true)}))
	})
}

func TestListRequest_Normalize(t *testing.T) {
	r := ListRequest{Page: 0, Limit: -3, Category: "  news ", Search: " go "}
	r.Normalize()

	assert.Equal(t, DefaultPage, r.Page)
	assert.Equal(t, DefaultLimit, r.Limit)
	assert.Equal(t, "news", r.Category)
	assert.Equal(t, "go", r.Search)
}

func TestListRequest_CacheKeyDistinguishesFilters(t *testing.T) {
	base := ListRequest{Page: 1, Limit: 10}
	featured := base
	featured.Featured = boolPtr(true)
	notFeatured := base
	notFeatured.Featured = boolPtr(false)

	keys := map[string]bool{
		base.CacheKey():        true,
		featured.CacheKey():    true,
		notFeatured.CacheKey(): true,
	}
	assert.Len(t, keys, 3)
	assert.Contains(t, base.CacheKey(), CacheKeyPrefix)
}

func TestNewPaginationMeta(t *testing.T) {
	tests := []struct {
		total, limit, pages int
	}{
		{total: 0, limit: 10, pages: 0},
		{total: 10, limit: 10, pages: 1},
		{total: 11, limit: 10, pages: 2},
		{total: 25, limit: 10, pages: 3},
		{total: 25, limit: math.MaxInt, pages: 1},
	}
	for _, tt := range tests {
		m := NewPaginationMeta(1, tt.limit, tt.total)
		assert.Equal(t, tt.pages, m.Pages, "total=%d limit=%d", tt.total, tt.limit)
	}
}
