// Package repo contains all database access logic for the map collection API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/map-collection/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with DB-generated
	// id, created_at, and updated_at populated).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListAccessiblePaged returns one page of trips the email owns or
	// collaborates on, ordered by start_date descending, plus the total count.
	ListAccessiblePaged(ctx context.Context, email string, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// Update overwrites the mutable fields of an existing trip and returns the
	// updated record. Returns domain.ErrNotFound if no trip with that ID exists.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip and, through the foreign key, all of its stops.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddCollaborator adds email to the trip's collaborators if absent.
	// Returns domain.ErrNotFound if the trip does not exist.
	AddCollaborator(ctx context.Context, id uuid.UUID, email string) (domain.Trip, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, owner_email, title, days, start_date, end_date, collaborators, created_at, updated_at`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (owner_email, title, days, start_date, end_date, collaborators)
		VALUES (@owner_email, @title, @days, @start_date, @end_date, @collaborators)
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"owner_email":   trip.OwnerEmail,
		"title":         trip.Title,
		"days":          trip.Days,
		"start_date":    trip.StartDate,
		"end_date":      trip.EndDate, // nil becomes NULL
		"collaborators": nonNil(trip.Collaborators),
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", mapPgError(err))
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListAccessiblePaged returns trips owned by or shared with email, most recent
// start date first.
func (r *pgTripRepo) ListAccessiblePaged(ctx context.Context, email string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	const countQ = `
		SELECT count(*) FROM trips
		WHERE owner_email = @email OR @email = ANY(collaborators)`
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE owner_email = @email OR @email = ANY(collaborators)
		ORDER BY start_date DESC, created_at DESC
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"email": email}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListAccessiblePaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"email": email, "limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListAccessiblePaged: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListAccessiblePaged: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListAccessiblePaged: rows: %w", err)
	}

	return trips, total, nil
}

// Update overwrites the mutable fields of a trip and returns the updated record.
func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET title      = @title,
		    days       = @days,
		    start_date = @start_date,
		    end_date   = @end_date,
		    updated_at = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"id":         trip.ID,
		"title":      trip.Title,
		"days":       trip.Days,
		"start_date": trip.StartDate,
		"end_date":   trip.EndDate,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// AddCollaborator appends email to collaborators unless already present.
func (r *pgTripRepo) AddCollaborator(ctx context.Context, id uuid.UUID, email string) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET collaborators = CASE WHEN @email = ANY(collaborators) THEN collaborators
		                         ELSE array_append(collaborators, @email) END,
		    updated_at    = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "email": email}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.AddCollaborator: %w", err)
	}
	return result, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the UUID and nullable end_date conversions.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t       domain.Trip
		id      pgtype.UUID
		endDate pgtype.Date
		sdRaw   pgtype.Date
	)

	err := s.Scan(&id, &t.OwnerEmail, &t.Title, &t.Days, &sdRaw, &endDate, &t.Collaborators, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.StartDate = sdRaw.Time
	if endDate.Valid {
		ed := endDate.Time
		t.EndDate = &ed
	}
	t.Collaborators = nonNil(t.Collaborators)

	return t, nil
}
