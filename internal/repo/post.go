package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/map-collection/internal/domain"
)

// PostRepo defines the persistence operations for posts (maps).
// Every read returns the derived like count alongside the stored columns.
type PostRepo interface {
	// Create inserts a new post. Returns domain.ErrConflict if the owner already
	// has a recommended post and this one is recommended too.
	Create(ctx context.Context, post domain.Post) (domain.Post, error)

	// GetByID returns domain.ErrNotFound if no post with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Post, error)

	// ListByOwner returns every post of owner, newest first.
	ListByOwner(ctx context.Context, owner string) ([]domain.Post, error)

	// ListByOwnerPaged returns one page of owner's posts plus the total count.
	ListByOwnerPaged(ctx context.Context, owner string, p domain.PaginationParams) ([]domain.Post, int64, error)

	// GetRecommended returns the owner's recommended post, or domain.ErrNotFound.
	GetRecommended(ctx context.Context, owner string) (domain.Post, error)

	// ListRecent returns the newest posts across all owners, up to limit.
	ListRecent(ctx context.Context, limit int) ([]domain.Post, error)

	// ListByIDs returns the posts with the given IDs in the given order.
	// IDs that no longer exist are skipped.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Post, error)

	// Update overwrites map_name, map_type and recommended.
	Update(ctx context.Context, post domain.Post) (domain.Post, error)

	// Delete removes a post and, through the foreign key, all of its spots.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddCollaborator adds email to the post's collaborators if absent.
	AddCollaborator(ctx context.Context, id uuid.UUID, email string) (domain.Post, error)
}

type pgPostRepo struct {
	db db
}

// NewPostRepo constructs a PostRepo backed by the provided db connection.
func NewPostRepo(db db) PostRepo {
	return &pgPostRepo{db: db}
}

// postColumns selects from a relation aliased as p. like_count counts the users
// whose favorites contain the post.
const postColumns = `p.id, p.owner_email, p.map_name, p.map_type, p.recommended, p.collaborators,
	(SELECT count(*) FROM users u WHERE p.id = ANY(u.favorites)) AS like_count,
	p.created_at, p.updated_at`

func (r *pgPostRepo) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	const q = `
		WITH p AS (
			INSERT INTO posts (owner_email, map_name, map_type, recommended, collaborators)
			VALUES (@owner_email, @map_name, @map_type, @recommended, @collaborators)
			RETURNING *
		)
		SELECT ` + postColumns + ` FROM p`

	args := pgx.NamedArgs{
		"owner_email":   post.OwnerEmail,
		"map_name":      post.MapName,
		"map_type":      post.MapType,
		"recommended":   post.Recommended,
		"collaborators": nonNil(post.Collaborators),
	}

	result, err := scanPost(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Post{}, fmt.Errorf("repo.PostRepo.Create: %w", mapPgError(err))
	}
	return result, nil
}

func (r *pgPostRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Post, error) {
	const q = `SELECT ` + postColumns + ` FROM posts p WHERE p.id = @id`

	result, err := scanPost(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Post{}, fmt.Errorf("repo.PostRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgPostRepo) ListByOwner(ctx context.Context, owner string) ([]domain.Post, error) {
	const q = `
		SELECT ` + postColumns + `
		FROM posts p
		WHERE p.owner_email = @owner
		ORDER BY p.created_at DESC`

	posts, err := r.queryPosts(ctx, q, pgx.NamedArgs{"owner": owner})
	if err != nil {
		return nil, fmt.Errorf("repo.PostRepo.ListByOwner: %w", err)
	}
	return posts, nil
}

func (r *pgPostRepo) ListByOwnerPaged(ctx context.Context, owner string, p domain.PaginationParams) ([]domain.Post, int64, error) {
	const countQ = `SELECT count(*) FROM posts WHERE owner_email = @owner`
	const q = `
		SELECT ` + postColumns + `
		FROM posts p
		WHERE p.owner_email = @owner
		ORDER BY p.created_at DESC
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"owner": owner}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.PostRepo.ListByOwnerPaged: count: %w", err)
	}

	posts, err := r.queryPosts(ctx, q, pgx.NamedArgs{"owner": owner, "limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.PostRepo.ListByOwnerPaged: %w", err)
	}
	return posts, total, nil
}

func (r *pgPostRepo) GetRecommended(ctx context.Context, owner string) (domain.Post, error) {
	const q = `SELECT ` + postColumns + ` FROM posts p WHERE p.owner_email = @owner AND p.recommended`

	result, err := scanPost(r.db.QueryRow(ctx, q, pgx.NamedArgs{"owner": owner}))
	if err != nil {
		return domain.Post{}, fmt.Errorf("repo.PostRepo.GetRecommended: %w", err)
	}
	return result, nil
}

func (r *pgPostRepo) ListRecent(ctx context.Context, limit int) ([]domain.Post, error) {
	const q = `
		SELECT ` + postColumns + `
		FROM posts p
		ORDER BY p.created_at DESC
		LIMIT @limit`

	posts, err := r.queryPosts(ctx, q, pgx.NamedArgs{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("repo.PostRepo.ListRecent: %w", err)
	}
	return posts, nil
}

func (r *pgPostRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Post, error) {
	const q = `
		SELECT ` + postColumns + `
		FROM unnest(@ids::uuid[]) WITH ORDINALITY AS i(id, ord)
		JOIN posts p ON p.id = i.id
		ORDER BY i.ord`

	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, id.String())
	}

	posts, err := r.queryPosts(ctx, q, pgx.NamedArgs{"ids": strs})
	if err != nil {
		return nil, fmt.Errorf("repo.PostRepo.ListByIDs: %w", err)
	}
	return posts, nil
}

func (r *pgPostRepo) Update(ctx context.Context, post domain.Post) (domain.Post, error) {
	const q = `
		WITH p AS (
			UPDATE posts
			SET map_name    = @map_name,
			    map_type    = @map_type,
			    recommended = @recommended,
			    updated_at  = now()
			WHERE id = @id
			RETURNING *
		)
		SELECT ` + postColumns + ` FROM p`

	args := pgx.NamedArgs{
		"id":          post.ID,
		"map_name":    post.MapName,
		"map_type":    post.MapType,
		"recommended": post.Recommended,
	}

	result, err := scanPost(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Post{}, fmt.Errorf("repo.PostRepo.Update: %w", mapPgError(err))
	}
	return result, nil
}

func (r *pgPostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM posts WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.PostRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PostRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgPostRepo) AddCollaborator(ctx context.Context, id uuid.UUID, email string) (domain.Post, error) {
	const q = `
		WITH p AS (
			UPDATE posts
			SET collaborators = CASE WHEN @email = ANY(collaborators) THEN collaborators
			                         ELSE array_append(collaborators, @email) END,
			    updated_at    = now()
			WHERE id = @id
			RETURNING *
		)
		SELECT ` + postColumns + ` FROM p`

	result, err := scanPost(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "email": email}))
	if err != nil {
		return domain.Post{}, fmt.Errorf("repo.PostRepo.AddCollaborator: %w", err)
	}
	return result, nil
}

func (r *pgPostRepo) queryPosts(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Post, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return posts, nil
}

// scanPost maps a single database row into a domain.Post.
func scanPost(s scanner) (domain.Post, error) {
	var (
		p     domain.Post
		id    pgtype.UUID
		likes int64
	)

	err := s.Scan(&id, &p.OwnerEmail, &p.MapName, &p.MapType, &p.Recommended, &p.Collaborators, &likes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, domain.ErrNotFound
		}
		return domain.Post{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	p.LikeCount = int(likes)
	p.Collaborators = nonNil(p.Collaborators)
	return p, nil
}
