package service

import (
	"context"
	"io"

	"content-backend/internal/domains/post/model"
)

// ServiceInterface - CRUD contract of the blog post resource
type ServiceInterface interface {
	Create(ctx context.Context, payload *model.Payload) (*model.Post, error)

	GetByID(ctx context.Context, id string) (*model.Post, error)
	GetBySlug(ctx context.Context, slug string) (*model.Post, error)
	List(ctx context.Context, req model.ListRequest) (*model.ListResult, error)

	Update(ctx context.Context, id string, fields model.Fields) (*model.Post, error)

	Delete(ctx context.Context, id string) (*model.Post, error)
	DeleteAll(ctx context.Context) (int64, error)

	Export(ctx context.Context, w io.Writer) error
	Ping(ctx context.Context) error
}

// MediaUploader stores encoded bytes under a destination folder and returns
// a publicly resolvable URL.
type MediaUploader interface {
	Upload(ctx context.Context, data []byte, folder string) (string, error)
}

// MediaRemover is implemented by uploaders that can take an upload back.
// Create uses it to clean up media whose post lost the slug race.
type MediaRemover interface {
	Remove(ctx context.Context, url string) error
}

// MediaPinger is implemented by uploaders that can check their backend.
// Ping reports them alongside the store and the cache.
type MediaPinger interface {
	Ping(ctx context.Context) error
}
