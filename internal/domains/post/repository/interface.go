package repository

import (
	"context"

	"content-backend/internal/domains/post/model"
)

// RepositoryInterface - persistence contract of the post domain.
//
// Implementations must make Insert an atomic "insert if slug is absent" and
// must enforce slug uniqueness on Update too, returning
// model.ErrSlugAlreadyExists in both cases. Lookups that match nothing
// return model.ErrPostNotFound.
type RepositoryInterface interface {
	Insert(ctx context.Context, post *model.Post) error
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)

	FindByID(ctx context.Context, id string) (*model.Post, error)
	FindBySlug(ctx context.Context, slug string, visibleOnly bool) (*model.Post, error)

	// Count and Find share the same filter semantics; a nil window returns
	// every match.
	Count(ctx context.Context, filter *model.PostFilter) (int, error)
	Find(ctx context.Context, filter *model.PostFilter, window *model.Window) ([]model.Post, error)

	Update(ctx context.Context, post *model.Post) error
	DeleteByID(ctx context.Context, id string) (*model.Post, error)
	DeleteAll(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
}
