package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"content-backend/internal/domains/post/model"
	"content-backend/internal/shared/utils"
	"content-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// uniqueViolation - SQLSTATE for unique_violation
const uniqueViolation = "23505"

const postColumns = `
	p.id, p.title, p.slug, p.summary, p.body, p.author_name, p.author_image_url,
	p.category, p.tags, p.media_url, p.visible, p.featured, p.published_at,
	p.created_at, p.updated_at`

// postgresRepository - Raw SQL with pgxpool
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository - Constructor
func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

// Insert writes the post only if no other post holds its slug. The check and
// the write are one statement, so two concurrent creates cannot both win.
func (r *postgresRepository) Insert(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (
			id, title, slug, summary, body, author_name, author_image_url,
			category, tags, media_url, visible, featured, published_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (slug) DO NOTHING
		RETURNING id
	`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query,
		post.ID, post.Title, post.Slug, post.Summary, post.Body, post.AuthorName, post.AuthorImageURL,
		post.Category, pq.Array(post.Tags), post.MediaURL, post.Visible, post.Featured, post.PublishedAt,
		post.CreatedAt, post.UpdatedAt,
	).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrSlugAlreadyExists
	}
	if err != nil {
		return mapPgError("insert post", err)
	}
	return nil
}

// SlugExists - Check slug tồn tại ngoại trừ post hiện tại
func (r *postgresRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM posts WHERE slug = $1 AND id::text <> $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.ErrPostNotFound
	}

	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = $1`
	return r.scanOne(ctx, "get post", query, id)
}

func (r *postgresRepository) FindBySlug(ctx context.Context, slug string, visibleOnly bool) (*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.slug = $1`
	if visibleOnly {
		query += ` AND p.visible = true`
	}
	return r.scanOne(ctx, "get post by slug", query, slug)
}

func (r *postgresRepository) Count(ctx context.Context, filter *model.PostFilter) (int, error) {
	whereClause, args := buildWhereClause(filter)

	query := `SELECT COUNT(*) FROM posts p` + whereClause

	var total int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return total, nil
}

func (r *postgresRepository) Find(ctx context.Context, filter *model.PostFilter, window *model.Window) ([]model.Post, error) {
	whereClause, args := buildWhereClause(filter)
	query, args := buildFindQuery(whereClause, args, filter, window)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query failed: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return posts, nil
}

// Update locks the row, then rewrites every mutable column. The unique index
// on slug still guards against a concurrent writer taking the same slug.
func (r *postgresRepository) Update(ctx context.Context, post *model.Post) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM posts WHERE id = $1 FOR UPDATE`, post.ID).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrPostNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock post: %w", err)
		}

		query := `
			UPDATE posts SET
				title = $2, slug = $3, summary = $4, body = $5,
				author_name = $6, author_image_url = $7, category = $8, tags = $9,
				media_url = $10, visible = $11, featured = $12, published_at = $13,
				updated_at = $14
			WHERE id = $1
		`
		_, err = tx.Exec(ctx, query,
			post.ID, post.Title, post.Slug, post.Summary, post.Body,
			post.AuthorName, post.AuthorImageURL, post.Category, pq.Array(post.Tags),
			post.MediaURL, post.Visible, post.Featured, post.PublishedAt,
			post.UpdatedAt,
		)
		if err != nil {
			return mapPgError("update post", err)
		}
		return nil
	})
}

func (r *postgresRepository) DeleteByID(ctx context.Context, id string) (*model.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.ErrPostNotFound
	}

	query := `DELETE FROM posts p WHERE p.id = $1 RETURNING ` + postColumns
	return r.scanOne(ctx, "delete post", query, id)
}

func (r *postgresRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete posts: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *postgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// ============================================
// HELPER METHODS
// ============================================

func (r *postgresRepository) scanOne(ctx context.Context, op, query string, args ...interface{}) (*model.Post, error) {
	p, err := scanPost(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return p, nil
}

func scanPost(row pgx.Row) (*model.Post, error) {
	var p model.Post
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Summary, &p.Body, &p.AuthorName, &p.AuthorImageURL,
		&p.Category, &p.Tags, &p.MediaURL, &p.Visible, &p.Featured, &p.PublishedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

func mapPgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return model.ErrSlugAlreadyExists
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// buildWhereClause - Construct WHERE clause dynamically
// Returns: (" WHERE ..." or "", args)
func buildWhereClause(filter *model.PostFilter) (string, []interface{}) {
	if filter == nil {
		return "", nil
	}

	var conditions []string
	args := []interface{}{}
	argIndex := 1

	if filter.Visible != nil {
		conditions = append(conditions, fmt.Sprintf("p.visible = $%d", argIndex))
		args = append(args, *filter.Visible)
		argIndex++
	}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("p.category = $%d", argIndex))
		args = append(args, filter.Category)
		argIndex++
	}

	if filter.Featured != nil {
		conditions = append(conditions, fmt.Sprintf("p.featured = $%d", argIndex))
		args = append(args, *filter.Featured)
		argIndex++
	}

	// case-insensitive substring over the text columns and every tag
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(p.title ILIKE $%[1]d OR p.summary ILIKE $%[1]d OR p.body ILIKE $%[1]d "+
				"OR EXISTS (SELECT 1 FROM unnest(p.tags) AS t(tag) WHERE t.tag ILIKE $%[1]d))",
			argIndex))
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + utils.JoinWithAnd(conditions), args
}

func buildFindQuery(whereClause string, args []interface{}, filter *model.PostFilter, window *model.Window) (string, []interface{}) {
	orderBy := " ORDER BY p.published_at DESC NULLS LAST, p.created_at DESC, p.id"
	if filter != nil && filter.Sort == model.SortCreatedDesc {
		orderBy = " ORDER BY p.created_at DESC, p.id"
	}

	query := `SELECT ` + postColumns + ` FROM posts p` + whereClause + orderBy
	if window == nil {
		return query, args
	}

	next := len(args) + 1
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", next, next+1)
	return query, append(args, window.Limit, window.Offset)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
