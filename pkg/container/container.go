package container

import (
	"context"
	"fmt"
	"time"

	"content-backend/internal/config"
	infraCache "content-backend/internal/infrastructure/cache"
	"content-backend/internal/infrastructure/database"
	"content-backend/internal/infrastructure/storage"
	"content-backend/pkg/cache"
	"content-backend/pkg/jwt"
	"content-backend/pkg/logger"

	postHandler "content-backend/internal/domains/post/handler"
	postRepo "content-backend/internal/domains/post/repository"
	postService "content-backend/internal/domains/post/service"
)

var _ postService.MediaPinger = (*storage.MinIOStorage)(nil)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds the dependency graph of the API process.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config     *config.Config
	DB         *database.PostgresDB // nil with STORE_DRIVER=memory
	Cache      cache.Cache
	Media      *storage.MinIOStorage // nil when MinIO is unreachable
	Images     *storage.ImageProcessor
	JWTManager *jwt.Manager

	// ========================================
	// REPOSITORY / SERVICE / HANDLER
	// ========================================
	PostRepo    postRepo.RepositoryInterface
	PostService postService.ServiceInterface
	PostHandler *postHandler.PostHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer wires everything in dependency order:
// config -> infrastructure -> repository -> service -> handler.
func NewContainer(ctx context.Context) (*Container, error) {
	logger.Info("[Container] Initializing", nil)

	c := &Container{}

	// STEP 1: configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	// STEP 2: infrastructure
	if err := c.initStore(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}
	c.initCache(ctx)
	c.initMedia(ctx)
	c.JWTManager = jwt.NewManager(cfg.Auth.JWTSecret, 0)

	// STEP 3-5: domain layers
	c.initPostDomain()

	logger.Info("[Container] Initialized", map[string]interface{}{
		"store": cfg.App.StoreDriver,
		"redis": cfg.Redis.Enabled,
		"media": c.Media != nil,
		"auth":  cfg.Auth.Enabled,
	})
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initStore(ctx context.Context) error {
	if c.Config.App.StoreDriver == config.StoreDriverMemory {
		logger.Warn("[Container] Using in-memory store, data will not survive restarts", nil)
		c.PostRepo = postRepo.NewMemoryRepository()
		return nil
	}

	dbConfig, err := config.LoadDatabaseConfig(c.Config.Database)
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.Connect(connectCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	if c.Config.Database.AutoMigrate {
		if err := database.Migrate(dbConfig); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	c.PostRepo = postRepo.NewPostgresRepository(db.Pool)
	return nil
}

// Redis is optional: a failed connection degrades to no caching.
func (c *Container) initCache(ctx context.Context) {
	c.Cache = cache.NewNoop()
	if !c.Config.Redis.Enabled {
		return
	}

	rc := infraCache.NewRedisCache(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
	if err := rc.Connect(ctx); err != nil {
		logger.Error("[Container] Redis connection failed, caching disabled", err)
		_ = rc.Close()
		return
	}
	c.Cache = rc
}

// MinIO is optional too: without it uploads fail with UploadError while
// posts without attachments keep working.
func (c *Container) initMedia(ctx context.Context) {
	c.Images = storage.NewImageProcessor(c.Config.Media.MaxDimension)

	mediaCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	m, err := storage.NewMinIOStorage(mediaCtx, c.Config.MinIO)
	if err != nil {
		logger.Error("[Container] MinIO unavailable, uploads disabled", err)
		return
	}
	c.Media = m
}

func (c *Container) initPostDomain() {
	// a nil *MinIOStorage must not become a non-nil interface
	var uploader postService.MediaUploader
	if c.Media != nil {
		uploader = c.Media
	}

	c.PostService = postService.NewService(c.PostRepo, uploader, c.Images, c.Cache, postService.Options{
		MediaFolder: c.Config.Media.Folder,
		CacheTTL:    c.Config.Redis.TTL,
	})

	c.PostHandler = postHandler.NewPostHandler(
		c.PostService,
		postHandler.NewRequestDecoder(c.Config.Media.MaxReadBytes),
		c.Config.App.Version,
	)
}

// Cleanup releases pools and connections. Safe on a partially built
// container.
func (c *Container) Cleanup() {
	if c.DB != nil {
		c.DB.Close()
	}

	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			logger.Error("[Container] Failed to close Redis", err)
		}
	}

	logger.Info("[Container] Cleanup completed", nil)
}
