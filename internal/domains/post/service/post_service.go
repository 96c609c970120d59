package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"content-backend/internal/domains/post/model"
	"content-backend/internal/domains/post/repository"
	"content-backend/internal/infrastructure/storage"
	"content-backend/internal/shared/utils"
	"content-backend/pkg/cache"
	"content-backend/pkg/logger"

	"github.com/microcosm-cc/bluemonday"
)

const defaultCacheTTL = 10 * time.Minute

// Options - tunables of PostService
type Options struct {
	MediaFolder string
	CacheTTL    time.Duration
	Now         func() time.Time // overridable clock, defaults to time.Now
}

// PostService - Implements ServiceInterface
type PostService struct {
	repo      repository.RepositoryInterface
	uploader  MediaUploader
	images    *storage.ImageProcessor
	cache     cache.Cache
	sanitizer *bluemonday.Policy

	folder   string
	cacheTTL time.Duration
	now      func() time.Time
}

// NewService - Constructor with DI
func NewService(
	repo repository.RepositoryInterface,
	uploader MediaUploader,
	images *storage.ImageProcessor,
	c cache.Cache,
	opts Options,
) *PostService {
	if c == nil {
		c = cache.NewNoop()
	}
	if images == nil {
		images = storage.NewImageProcessor(0)
	}
	if opts.MediaFolder == "" {
		opts.MediaFolder = "blog"
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &PostService{
		repo:      repo,
		uploader:  uploader,
		images:    images,
		cache:     c,
		sanitizer: bluemonday.UGCPolicy(),
		folder:    opts.MediaFolder,
		cacheTTL:  opts.CacheTTL,
		now:       opts.Now,
	}
}

var _ ServiceInterface = (*PostService)(nil)

// ============================================
// CREATE
// ============================================

// Create validates, checks the slug, uploads the attachment and inserts.
// Every rejection happens before the first side effect.
func (s *PostService) Create(ctx context.Context, payload *model.Payload) (*model.Post, error) {
	if payload == nil {
		return nil, model.NewDecodeError(errors.New("empty payload"))
	}

	// 1. Required fields, as sent and after normalization
	if err := model.ValidateCreateFields(payload.Fields); err != nil {
		return nil, err
	}
	fields := s.normalizeFields(payload.Fields)
	if *fields.Slug == "" {
		return nil, errInvalidSlug()
	}
	if err := model.ValidateCreateFields(fields); err != nil {
		return nil, err
	}

	// 2. Attachment type/size, then content
	att := payload.Attachment
	if err := model.ValidateAttachment(att); err != nil {
		return nil, err
	}
	if att != nil {
		if err := s.images.ValidateImage(att.Data, model.NormalizeMimeType(att.MimeType)); err != nil {
			return nil, model.NewValidationError(err.Error(), "attachment")
		}
	}

	// 3. Slug uniqueness
	slug := *fields.Slug
	taken, err := s.repo.SlugExists(ctx, slug, "")
	if err != nil {
		return nil, model.NewStoreError("check slug", err)
	}
	if taken {
		return nil, model.NewConflictError(*payload.Fields.Slug, slug)
	}

	// 4. Upload
	var mediaURL string
	if att != nil {
		mediaURL, err = s.upload(ctx, att)
		if err != nil {
			return nil, err
		}
	}

	// 5. Build + 6. atomic insert
	post := model.ToPostEntity(fields, s.now().UTC())
	post.MediaURL = mediaURL

	if err := s.repo.Insert(ctx, post); err != nil {
		s.discardMedia(ctx, mediaURL)
		if errors.Is(err, model.ErrSlugAlreadyExists) {
			return nil, model.NewConflictError(*payload.Fields.Slug, slug)
		}
		return nil, model.NewStoreError("create post", err)
	}

	s.invalidate(ctx)
	logger.Info("[PostService] Post created", map[string]interface{}{
		"id":    post.ID.String(),
		"slug":  post.Slug,
		"media": mediaURL != "",
	})
	return post, nil
}

func (s *PostService) upload(ctx context.Context, att *model.Attachment) (string, error) {
	if s.uploader == nil {
		return "", model.NewUploadError(errors.New("media uploader is not configured"))
	}

	data, err := s.images.Fit(att.Data)
	if err != nil {
		return "", model.NewUploadError(err)
	}

	url, err := s.uploader.Upload(ctx, data, s.folder)
	if err != nil {
		return "", model.NewUploadError(err)
	}
	return url, nil
}

// discardMedia removes an upload whose post was never written.
func (s *PostService) discardMedia(ctx context.Context, url string) {
	if url == "" {
		return
	}
	remover, ok := s.uploader.(MediaRemover)
	if !ok {
		return
	}
	if err := remover.Remove(ctx, url); err != nil {
		logger.Error("[PostService] Failed to remove orphaned media "+url, err)
	}
}

// ============================================
// READ
// ============================================

func (s *PostService) GetByID(ctx context.Context, id string) (*model.Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, model.NewNotFoundError()
	}
	return s.cachedLookup(ctx, model.CacheKeyByID(id), func() (*model.Post, error) {
		return s.repo.FindByID(ctx, id)
	})
}

// GetBySlug only resolves visible posts.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	slug = utils.NormalizeSlug(slug)
	if slug == "" {
		return nil, model.NewNotFoundError()
	}
	return s.cachedLookup(ctx, model.CacheKeyBySlug(slug), func() (*model.Post, error) {
		return s.repo.FindBySlug(ctx, slug, true)
	})
}

func (s *PostService) cachedLookup(ctx context.Context, key string, load func() (*model.Post, error)) (*model.Post, error) {
	var cached model.Post
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn("[PostService] Cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	if found {
		return &cached, nil
	}

	post, err := load()
	if errors.Is(err, model.ErrPostNotFound) {
		return nil, model.NewNotFoundError()
	}
	if err != nil {
		return nil, model.NewStoreError("get post", err)
	}

	s.store(ctx, key, post)
	return post, nil
}

// List returns visible posts, newest first. When limit is not smaller than
// the number of matches, every match is returned and page is ignored.
func (s *PostService) List(ctx context.Context, req model.ListRequest) (*model.ListResult, error) {
	req.Normalize()

	cacheKey := req.CacheKey()
	var cached model.ListResult
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		logger.Warn("[PostService] Cache read failed", map[string]interface{}{"key": cacheKey, "error": err.Error()})
	}
	if found {
		return &cached, nil
	}

	visible := true
	filter := &model.PostFilter{
		Visible:  &visible,
		Category: req.Category,
		Featured: req.Featured,
		Search:   req.Search,
		Sort:     model.SortPublishedDesc,
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, model.NewStoreError("count posts", err)
	}

	meta := model.NewPaginationMeta(req.Page, req.Limit, total)

	// limit >= total returns every match whatever the page; pages past the
	// end are empty.
	items := []model.Post{}
	switch {
	case req.Limit >= total:
		items, err = s.repo.Find(ctx, filter, nil)
	case req.Page <= meta.Pages:
		items, err = s.repo.Find(ctx, filter, &model.Window{Offset: (req.Page - 1) * req.Limit, Limit: req.Limit})
	}
	if err != nil {
		return nil, model.NewStoreError("list posts", err)
	}

	result := &model.ListResult{Items: items, Pagination: meta}

	s.store(ctx, cacheKey, result)
	return result, nil
}

// ============================================
// UPDATE
// ============================================

// Update merges fields into the post. A slug change is re-checked against
// every other post; a hidden→visible transition stamps publishedAt.
func (s *PostService) Update(ctx context.Context, id string, fields model.Fields) (*model.Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, model.NewValidationError("id is required", "id")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, model.ErrPostNotFound) {
		return nil, model.NewNotFoundError()
	}
	if err != nil {
		return nil, model.NewStoreError("get post", err)
	}

	requested := fields.Slug
	fields = s.normalizeFields(fields)
	if fields.Slug != nil && *fields.Slug != existing.Slug {
		if *fields.Slug == "" {
			return nil, errInvalidSlug()
		}
		taken, err := s.repo.SlugExists(ctx, *fields.Slug, id)
		if err != nil {
			return nil, model.NewStoreError("check slug", err)
		}
		if taken {
			return nil, model.NewConflictError(*requested, *fields.Slug)
		}
	}

	becameVisible := model.ApplyFields(existing, fields)
	if err := model.ValidateRequired(existing); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if becameVisible {
		existing.Publish(now)
	}
	existing.UpdatedAt = now

	if err := s.repo.Update(ctx, existing); err != nil {
		switch {
		case errors.Is(err, model.ErrSlugAlreadyExists):
			return nil, model.NewConflictError(existing.Slug, existing.Slug)
		case errors.Is(err, model.ErrPostNotFound):
			return nil, model.NewNotFoundError()
		}
		return nil, model.NewStoreError("update post", err)
	}

	s.invalidate(ctx)
	logger.Info("[PostService] Post updated", map[string]interface{}{"id": id, "slug": existing.Slug})
	return existing, nil
}

// ============================================
// DELETE
// ============================================

func (s *PostService) Delete(ctx context.Context, id string) (*model.Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, model.NewValidationError("id is required", "id")
	}

	post, err := s.repo.DeleteByID(ctx, id)
	if errors.Is(err, model.ErrPostNotFound) {
		return nil, model.NewNotFoundError()
	}
	if err != nil {
		return nil, model.NewStoreError("delete post", err)
	}

	s.invalidate(ctx)
	logger.Info("[PostService] Post deleted", map[string]interface{}{"id": id})
	return post, nil
}

// DeleteAll removes every post. Irreversible; callers gate it.
func (s *PostService) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, model.NewStoreError("delete posts", err)
	}

	s.invalidate(ctx)
	logger.Warn("[PostService] All posts deleted", map[string]interface{}{"count": n})
	return n, nil
}

// Ping checks the store, the cache and, when the uploader supports it, the media
// backend.
func (s *PostService) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return model.NewStoreError("reach store", err)
	}
	if err := s.cache.Ping(ctx); err != nil {
		return model.NewStoreError("reach cache", err)
	}
	if pinger, ok := s.uploader.(MediaPinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			return model.NewStoreError("reach media storage", err)
		}
	}
	return nil
}

// ============================================
// HELPERS
// ============================================

// normalizeFields trims text, canonicalizes the slug and sanitizes the body.
func (s *PostService) normalizeFields(f model.Fields) model.Fields {
	trim := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := strings.TrimSpace(*p)
		return &v
	}

	out := f
	out.Title = trim(f.Title)
	out.Summary = trim(f.Summary)
	out.AuthorName = trim(f.AuthorName)
	out.AuthorImageURL = trim(f.AuthorImageURL)
	out.Category = trim(f.Category)

	if f.Slug != nil {
		slug := utils.NormalizeSlug(*f.Slug)
		out.Slug = &slug
	}

	if f.Body != nil {
		body := strings.TrimSpace(s.sanitizer.Sanitize(*f.Body))
		out.Body = &body
	}
	return out
}

func errInvalidSlug() error {
	return model.NewValidationError("slug must contain at least one letter or digit", "slug")
}

func (s *PostService) store(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		logger.Warn("[PostService] Cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

func (s *PostService) invalidate(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, model.CacheKeyPrefix+"*"); err != nil {
		logger.Warn("[PostService] Cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}
