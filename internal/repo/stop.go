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

// TripStopRepo defines the persistence operations for trip stops.
// All single-row operations are scoped by tripID and day so a stop can only be
// reached through the trip and day it belongs to.
type TripStopRepo interface {
	// Create inserts a new stop and returns the persisted record.
	Create(ctx context.Context, stop domain.TripStop) (domain.TripStop, error)

	// GetByID retrieves a single stop scoped to its trip and day.
	// Returns domain.ErrNotFound if no such stop exists.
	GetByID(ctx context.Context, tripID uuid.UUID, day int, stopID uuid.UUID) (domain.TripStop, error)

	// ListByDay returns the stops of one trip day ordered by created_at ascending.
	ListByDay(ctx context.Context, tripID uuid.UUID, day int) ([]domain.TripStop, error)

	// ListByTrip returns every stop of a trip ordered by day, then created_at.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.TripStop, error)

	// Update overwrites the name, description and coordinates of a stop.
	// Returns domain.ErrNotFound if no such stop exists.
	Update(ctx context.Context, stop domain.TripStop) (domain.TripStop, error)

	// Delete removes a stop. Returns domain.ErrNotFound if no such stop exists.
	Delete(ctx context.Context, tripID uuid.UUID, day int, stopID uuid.UUID) error

	// SetPhotoURL stores the photo URL of a stop.
	SetPhotoURL(ctx context.Context, tripID uuid.UUID, day int, stopID uuid.UUID, url string) (domain.TripStop, error)

	// CountBeyondDay counts the stops of a trip whose day is greater than day.
	CountBeyondDay(ctx context.Context, tripID uuid.UUID, day int) (int, error)
}

// pgTripStopRepo is the Postgres implementation of TripStopRepo.
type pgTripStopRepo struct {
	db db
}

// NewTripStopRepo constructs a TripStopRepo backed by the provided db connection.
func NewTripStopRepo(db db) TripStopRepo {
	return &pgTripStopRepo{db: db}
}

const stopColumns = `id, trip_id, day, name, description, lat, lng, photo_url, created_at, updated_at`

func (r *pgTripStopRepo) Create(ctx context.Context, stop domain.TripStop) (domain.TripStop, error) {
	const q = `
		INSERT INTO trip_stops (trip_id, day, name, description, lat, lng, photo_url)
		VALUES (@trip_id, @day, @name, @description, @lat, @lng, @photo_url)
		RETURNING ` + stopColumns

	args := pgx.NamedArgs{
		"trip_id":     stop.TripID,
		"day":         stop.Day,
		"name":        stop.Name,
		"description": stop.Description,
		"lat":         stop.Lat,
		"lng":         stop.Lng,
		"photo_url":   stop.PhotoURL,
	}

	result, err := scanStop(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TripStop{}, fmt.Errorf("repo.TripStopRepo.Create: %w", mapPgError(err))
	}
	return result, nil
}

func (r *pgTripStopRepo) GetByID(ctx context.Context, tripID uuid.UUID, day int, stopID uuid.UUID) (domain.TripStop, error) {
	const q = `
		SELECT ` + stopColumns + `
		FROM trip_stops
		WHERE id = @id AND trip_id = @trip_id AND day = @day`

	result, err := scanStop(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": stopID, "trip_id": tripID, "day": day}))
	if err != nil {
		return domain.TripStop{}, fmt.Errorf("repo.TripStopRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTripStopRepo) ListByDay(ctx context.Context, tripID uuid.UUID, day int) ([]domain.TripStop, error) {
	const q = `
		SELECT ` + stopColumns + `
		FROM trip_stops
		WHERE trip_id = @trip_id AND day = @day
		ORDER BY created_at ASC`

	stops, err := r.queryStops(ctx, q, pgx.NamedArgs{"trip_id": tripID, "day": day})
	if err != nil {
		return nil, fmt.Errorf("repo.TripStopRepo.ListByDay: %w", err)
	}
	return stops, nil
}

func (r *pgTripStopRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.TripStop, error) {
	const q = `
		SELECT ` + stopColumns + `
		FROM trip_stops
		WHERE trip_id = @trip_id
		ORDER BY day ASC, created_at ASC`

	stops, err := r.queryStops(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.TripStopRepo.ListByTrip: %w", err)
	}
	return stops, nil
}

func (r *pgTripStopRepo) Update(ctx context.Context, stop domain.TripStop) (domain.TripStop, error) {
	const q = `
		UPDATE trip_stops
		SET name        = @name,
		    description = @description,
		    lat         = @lat,
		    lng         = @lng,
		    updated_at  = now()
		WHERE id = @id AND trip_id = @trip_id AND day = @day
		RETURNING ` + stopColumns

	args := pgx.NamedArgs{
		"id":          stop.ID,
		"trip_id":     stop.TripID,
		"day":         stop.Day,
		"name":        stop.Name,
		"description": stop.Description,
		"lat":         stop.Lat,
		"lng":         stop.Lng,
	}

	result, err := scanStop(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TripStop{}, fmt.Errorf("repo.TripStopRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgTripStopRepo) Delete(ctx context.Context, tripID uuid.UUID, day int, stopID uuid.UUID) error {
	const q = `DELETE FROM trip_stops WHERE id = @id AND trip_id = @trip_id AND day = @day`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": stopID, "trip_id": tripID, "day": day})
	if err != nil {
		return fmt.Errorf("repo.TripStopRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripStopRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTripStopRepo) SetPhotoURL(ctx context.Context, tripID uuid.UUID, day int, stopID uuid.UUID, url string) (domain.TripStop, error) {
	const q = `
		UPDATE trip_stops SET photo_url = @url, updated_at = now()
		WHERE id = @id AND trip_id = @trip_id AND day = @day
		RETURNING ` + stopColumns

	result, err := scanStop(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": stopID, "trip_id": tripID, "day": day, "url": url}))
	if err != nil {
		return domain.TripStop{}, fmt.Errorf("repo.TripStopRepo.SetPhotoURL: %w", err)
	}
	return result, nil
}

func (r *pgTripStopRepo) CountBeyondDay(ctx context.Context, tripID uuid.UUID, day int) (int, error) {
	const q = `SELECT count(*) FROM trip_stops WHERE trip_id = @trip_id AND day > @day`

	var n int
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "day": day}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.TripStopRepo.CountBeyondDay: %w", err)
	}
	return n, nil
}

func (r *pgTripStopRepo) queryStops(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.TripStop, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stops := []domain.TripStop{}
	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		stops = append(stops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return stops, nil
}

// scanStop maps a single database row into a domain.TripStop.
func scanStop(s scanner) (domain.TripStop, error) {
	var (
		st     domain.TripStop
		id     pgtype.UUID
		tripID pgtype.UUID
	)

	err := s.Scan(&id, &tripID, &st.Day, &st.Name, &st.Description, &st.Lat, &st.Lng, &st.PhotoURL, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TripStop{}, domain.ErrNotFound
		}
		return domain.TripStop{}, err
	}

	st.ID = uuid.UUID(id.Bytes)
	st.TripID = uuid.UUID(tripID.Bytes)
	return st, nil
}
