package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"content-backend/internal/domains/post/model"
)

// memoryRepository keeps posts in a map guarded by one RWMutex.
// Used by STORE_DRIVER=memory and by the tests.
type memoryRepository struct {
	mu     sync.RWMutex
	posts  map[string]model.Post // by id
	bySlug map[string]string     // slug -> id
}

// NewMemoryRepository - Constructor
func NewMemoryRepository() RepositoryInterface {
	return &memoryRepository{
		posts:  make(map[string]model.Post),
		bySlug: make(map[string]string),
	}
}

func (r *memoryRepository) Insert(_ context.Context, post *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.bySlug[post.Slug]; taken {
		return model.ErrSlugAlreadyExists
	}
	id := post.ID.String()
	r.posts[id] = clonePost(*post)
	r.bySlug[post.Slug] = id
	return nil
}

func (r *memoryRepository) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySlug[slug]
	return ok && id != excludeID, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (*model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	out := clonePost(p)
	return &out, nil
}

func (r *memoryRepository) FindBySlug(_ context.Context, slug string, visibleOnly bool) (*model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySlug[slug]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	p := r.posts[id]
	if visibleOnly && !p.Visible {
		return nil, model.ErrPostNotFound
	}
	out := clonePost(p)
	return &out, nil
}

func (r *memoryRepository) Count(_ context.Context, filter *model.PostFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, p := range r.posts {
		if matches(&p, filter) {
			n++
		}
	}
	return n, nil
}

func (r *memoryRepository) Find(_ context.Context, filter *model.PostFilter, window *model.Window) ([]model.Post, error) {
	r.mu.RLock()
	out := make([]model.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if matches(&p, filter) {
			out = append(out, clonePost(p))
		}
	}
	r.mu.RUnlock()

	sortPosts(out, filter)

	if window == nil {
		return out, nil
	}
	if window.Offset < 0 || window.Offset >= len(out) {
		return []model.Post{}, nil
	}
	end := window.Offset + window.Limit
	if window.Limit <= 0 || end > len(out) || end < window.Offset {
		end = len(out)
	}
	return out[window.Offset:end], nil
}

func (r *memoryRepository) Update(_ context.Context, post *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := post.ID.String()
	existing, ok := r.posts[id]
	if !ok {
		return model.ErrPostNotFound
	}
	if owner, taken := r.bySlug[post.Slug]; taken && owner != id {
		return model.ErrSlugAlreadyExists
	}

	delete(r.bySlug, existing.Slug)
	r.bySlug[post.Slug] = id
	r.posts[id] = clonePost(*post)
	return nil
}

func (r *memoryRepository) DeleteByID(_ context.Context, id string) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	delete(r.posts, id)
	delete(r.bySlug, p.Slug)
	return &p, nil
}

func (r *memoryRepository) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.posts))
	r.posts = make(map[string]model.Post)
	r.bySlug = make(map[string]string)
	return n, nil
}

func (r *memoryRepository) Ping(context.Context) error { return nil }

// ============================================
// HELPERS
// ============================================

func matches(p *model.Post, f *model.PostFilter) bool {
	if f == nil {
		return true
	}
	if f.Visible != nil && p.Visible != *f.Visible {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	if f.Search != "" {
		return matchesSearch(p, strings.ToLower(f.Search))
	}
	return true
}

func matchesSearch(p *model.Post, term string) bool {
	for _, s := range []string{p.Title, p.Summary, p.Body} {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), term) {
			return true
		}
	}
	return false
}

// sortPosts orders newest first; unpublished posts go last, ties broken by
// createdAt then id so paging is stable.
func sortPosts(posts []model.Post, f *model.PostFilter) {
	byCreated := f != nil && f.Sort == model.SortCreatedDesc
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if !byCreated {
			switch {
			case a.PublishedAt == nil && b.PublishedAt != nil:
				return false
			case a.PublishedAt != nil && b.PublishedAt == nil:
				return true
			case a.PublishedAt != nil && b.PublishedAt != nil && !a.PublishedAt.Equal(*b.PublishedAt):
				return a.PublishedAt.After(*b.PublishedAt)
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

func clonePost(p model.Post) model.Post {
	p.Tags = append(make([]string, 0, len(p.Tags)), p.Tags...)
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		p.PublishedAt = &t
	}
	return p
}
