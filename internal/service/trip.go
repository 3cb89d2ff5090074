// Package service contains the business logic for the map collection API.
// Services validate inputs, enforce ownership rules, and orchestrate repo calls.
// No SQL lives here. Services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/repo"
	"github.com/pkordes/map-collection/internal/storage"
)

// TripInput carries the editable fields of a trip. When EndDate is set the
// day count is derived from the date range; otherwise Days is used, and a nil
// Days means domain.DefaultTripDays. Either way the result is clamped.
type TripInput struct {
	Title     string
	StartDate time.Time
	EndDate   *time.Time
	Days      *int
}

// resolve validates the input and returns the trimmed title and day count.
func (in TripInput) resolve() (string, int, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "", 0, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if in.StartDate.IsZero() {
		return "", 0, fmt.Errorf("%w: start_date is required", domain.ErrValidation)
	}
	if in.EndDate != nil {
		if in.EndDate.Before(in.StartDate) {
			return "", 0, fmt.Errorf("%w: end_date must not be before start_date", domain.ErrValidation)
		}
		return title, domain.DaysInRange(in.StartDate, *in.EndDate), nil
	}
	if in.Days != nil {
		return title, domain.ClampDays(*in.Days), nil
	}
	return title, domain.DefaultTripDays, nil
}

// endDate returns the end date to store for a trip of the given day count.
// A range longer than the clamped count is cut to the trip's last day.
func (in TripInput) endDate(days int) *time.Time {
	if in.EndDate == nil {
		return nil
	}
	last := in.StartDate.AddDate(0, 0, days-1)
	if in.EndDate.After(last) {
		return &last
	}
	end := *in.EndDate
	return &end
}

// TripPage is one page of trips plus the total across all pages.
type TripPage struct {
	Trips []domain.Trip
	Total int64
}

// TripService implements business logic for Trip operations.
type TripService struct {
	trips repo.TripRepo
	stops repo.TripStopRepo
	users repo.UserRepo
	blobs BlobStore
}

// NewTripService constructs a TripService.
func NewTripService(trips repo.TripRepo, stops repo.TripStopRepo, users repo.UserRepo, blobs BlobStore) *TripService {
	return &TripService{trips: trips, stops: stops, users: users, blobs: blobs}
}

// accessibleTrip loads a trip and checks that caller owns or collaborates on it.
func accessibleTrip(ctx context.Context, trips repo.TripRepo, caller string, id uuid.UUID) (domain.Trip, error) {
	trip, err := trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, err
	}
	if !trip.CanAccess(caller) {
		return domain.Trip{}, fmt.Errorf("%w: not a member of this trip", domain.ErrForbidden)
	}
	return trip, nil
}

// checkDay reports a validation error when day is outside the trip.
func checkDay(trip domain.Trip, day int) error {
	if day < domain.MinTripDays || day > trip.Days {
		return fmt.Errorf("%w: day must be between %d and %d", domain.ErrValidation, domain.MinTripDays, trip.Days)
	}
	return nil
}

// Create validates and persists a new trip owned by owner.
func (s *TripService) Create(ctx context.Context, owner string, in TripInput) (domain.Trip, error) {
	title, days, err := in.resolve()
	if err != nil {
		return domain.Trip{}, err
	}

	trip, err := s.trips.Create(ctx, domain.Trip{
		OwnerEmail: owner,
		Title:      title,
		Days:       days,
		StartDate:  in.StartDate,
		EndDate:    in.endDate(days),
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return trip, nil
}

// Get returns a trip the caller owns or collaborates on.
func (s *TripService) Get(ctx context.Context, caller string, id uuid.UUID) (domain.Trip, error) {
	trip, err := accessibleTrip(ctx, s.trips, caller, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", err)
	}
	return trip, nil
}

// List returns one page of the trips the caller owns or collaborates on.
func (s *TripService) List(ctx context.Context, caller string, p domain.PaginationParams) (TripPage, error) {
	trips, total, err := s.trips.ListAccessiblePaged(ctx, caller, p)
	if err != nil {
		return TripPage{}, fmt.Errorf("service.TripService.List: %w", err)
	}
	return TripPage{Trips: trips, Total: total}, nil
}

// Update changes a trip's title, dates and day count. Removing days that still
// hold stops is rejected so no stop is silently orphaned.
func (s *TripService) Update(ctx context.Context, caller string, id uuid.UUID, in TripInput) (domain.Trip, error) {
	title, days, err := in.resolve()
	if err != nil {
		return domain.Trip{}, err
	}

	trip, err := accessibleTrip(ctx, s.trips, caller, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	if days < trip.Days {
		n, err := s.stops.CountBeyondDay(ctx, id, days)
		if err != nil {
			return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
		}
		if n > 0 {
			return domain.Trip{}, fmt.Errorf("%w: %d stops are planned after day %d", domain.ErrValidation, n, days)
		}
	}

	trip.Title = title
	trip.Days = days
	trip.StartDate = in.StartDate
	trip.EndDate = in.endDate(days)

	updated, err := s.trips.Update(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a trip, its stops and their photos. Owner only.
func (s *TripService) Delete(ctx context.Context, caller string, id uuid.UUID) error {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if trip.OwnerEmail != caller {
		return fmt.Errorf("%w: only the owner can delete this trip", domain.ErrForbidden)
	}

	if err := s.trips.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if err := s.blobs.DeletePrefix(ctx, storage.TripPrefix(id)); err != nil {
		slog.WarnContext(ctx, "trip photos not removed", "trip_id", id, "error", err)
	}
	return nil
}

// AddCollaborator shares the trip with another registered user. Any member
// of the trip may invite.
func (s *TripService) AddCollaborator(ctx context.Context, caller string, id uuid.UUID, email string) (domain.Trip, error) {
	email = normalizeEmail(email)
	trip, err := accessibleTrip(ctx, s.trips, caller, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.AddCollaborator: %w", err)
	}
	if email == trip.OwnerEmail {
		return domain.Trip{}, fmt.Errorf("%w: the owner is already a member", domain.ErrValidation)
	}
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.AddCollaborator: %w", err)
	}

	updated, err := s.trips.AddCollaborator(ctx, id, email)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.AddCollaborator: %w", err)
	}
	return updated, nil
}
