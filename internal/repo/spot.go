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

// SpotRepo defines the persistence operations for the spots of a post.
// Single-row operations are scoped by postID.
type SpotRepo interface {
	Create(ctx context.Context, spot domain.Spot) (domain.Spot, error)

	// GetByID returns domain.ErrNotFound if the spot does not belong to postID.
	GetByID(ctx context.Context, postID, spotID uuid.UUID) (domain.Spot, error)

	// ListByPostID returns the spots of a post ordered by created_at ascending.
	ListByPostID(ctx context.Context, postID uuid.UUID) ([]domain.Spot, error)

	Update(ctx context.Context, spot domain.Spot) (domain.Spot, error)
	Delete(ctx context.Context, postID, spotID uuid.UUID) error
	SetPhotoURL(ctx context.Context, postID, spotID uuid.UUID, url string) (domain.Spot, error)
}

type pgSpotRepo struct {
	db db
}

// NewSpotRepo constructs a SpotRepo backed by the provided db connection.
func NewSpotRepo(db db) SpotRepo {
	return &pgSpotRepo{db: db}
}

const spotColumns = `id, post_id, name, description, lat, lng, photo_url, created_at, updated_at`

func (r *pgSpotRepo) Create(ctx context.Context, spot domain.Spot) (domain.Spot, error) {
	const q = `
		INSERT INTO spots (post_id, name, description, lat, lng)
		VALUES (@post_id, @name, @description, @lat, @lng)
		RETURNING ` + spotColumns

	args := pgx.NamedArgs{
		"post_id":     spot.PostID,
		"name":        spot.Name,
		"description": spot.Description,
		"lat":         spot.Lat,
		"lng":         spot.Lng,
	}

	result, err := scanSpot(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Spot{}, fmt.Errorf("repo.SpotRepo.Create: %w", mapPgError(err))
	}
	return result, nil
}

func (r *pgSpotRepo) GetByID(ctx context.Context, postID, spotID uuid.UUID) (domain.Spot, error) {
	const q = `SELECT ` + spotColumns + ` FROM spots WHERE id = @id AND post_id = @post_id`

	result, err := scanSpot(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": spotID, "post_id": postID}))
	if err != nil {
		return domain.Spot{}, fmt.Errorf("repo.SpotRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgSpotRepo) ListByPostID(ctx context.Context, postID uuid.UUID) ([]domain.Spot, error) {
	const q = `
		SELECT ` + spotColumns + `
		FROM spots
		WHERE post_id = @post_id
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"post_id": postID})
	if err != nil {
		return nil, fmt.Errorf("repo.SpotRepo.ListByPostID: %w", err)
	}
	defer rows.Close()

	spots := []domain.Spot{}
	for rows.Next() {
		s, err := scanSpot(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.SpotRepo.ListByPostID: scan: %w", err)
		}
		spots = append(spots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SpotRepo.ListByPostID: rows: %w", err)
	}
	return spots, nil
}

func (r *pgSpotRepo) Update(ctx context.Context, spot domain.Spot) (domain.Spot, error) {
	const q = `
		UPDATE spots
		SET name        = @name,
		    description = @description,
		    lat         = @lat,
		    lng         = @lng,
		    updated_at  = now()
		WHERE id = @id AND post_id = @post_id
		RETURNING ` + spotColumns

	args := pgx.NamedArgs{
		"id":          spot.ID,
		"post_id":     spot.PostID,
		"name":        spot.Name,
		"description": spot.Description,
		"lat":         spot.Lat,
		"lng":         spot.Lng,
	}

	result, err := scanSpot(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Spot{}, fmt.Errorf("repo.SpotRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgSpotRepo) Delete(ctx context.Context, postID, spotID uuid.UUID) error {
	const q = `DELETE FROM spots WHERE id = @id AND post_id = @post_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": spotID, "post_id": postID})
	if err != nil {
		return fmt.Errorf("repo.SpotRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.SpotRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgSpotRepo) SetPhotoURL(ctx context.Context, postID, spotID uuid.UUID, url string) (domain.Spot, error) {
	const q = `
		UPDATE spots SET photo_url = @url, updated_at = now()
		WHERE id = @id AND post_id = @post_id
		RETURNING ` + spotColumns

	result, err := scanSpot(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": spotID, "post_id": postID, "url": url}))
	if err != nil {
		return domain.Spot{}, fmt.Errorf("repo.SpotRepo.SetPhotoURL: %w", err)
	}
	return result, nil
}

func scanSpot(s scanner) (domain.Spot, error) {
	var (
		sp     domain.Spot
		id     pgtype.UUID
		postID pgtype.UUID
	)

	err := s.Scan(&id, &postID, &sp.Name, &sp.Description, &sp.Lat, &sp.Lng, &sp.PhotoURL, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Spot{}, domain.ErrNotFound
		}
		return domain.Spot{}, err
	}

	sp.ID = uuid.UUID(id.Bytes)
	sp.PostID = uuid.UUID(postID.Bytes)
	return sp, nil
}
