package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/repo"
	"github.com/pkordes/map-collection/internal/storage"
)

// StopInput carries the editable fields of a trip stop.
type StopInput struct {
	Name        string
	Description string
	Lat         float64
	Lng         float64
}

// stopName returns the trimmed name, or the placeholder for a blank one.
func stopName(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return domain.UnnamedStop
}

// TripStopService implements business logic for the stops of a trip day.
type TripStopService struct {
	trips repo.TripRepo
	stops repo.TripStopRepo
	blobs BlobStore
	now   func() time.Time
}

// NewTripStopService constructs a TripStopService.
func NewTripStopService(trips repo.TripRepo, stops repo.TripStopRepo, blobs BlobStore) *TripStopService {
	return &TripStopService{trips: trips, stops: stops, blobs: blobs, now: time.Now}
}

// tripDay checks that caller may use the trip and that day lies within it.
func (s *TripStopService) tripDay(ctx context.Context, caller string, tripID uuid.UUID, day int) error {
	trip, err := accessibleTrip(ctx, s.trips, caller, tripID)
	if err != nil {
		return err
	}
	return checkDay(trip, day)
}

// Create adds a stop to a trip day. A blank name becomes domain.UnnamedStop.
func (s *TripStopService) Create(ctx context.Context, caller string, tripID uuid.UUID, day int, in StopInput) (domain.TripStop, error) {
	if err := validateCoordinates(in.Lat, in.Lng); err != nil {
		return domain.TripStop{}, err
	}
	if err := s.tripDay(ctx, caller, tripID, day); err != nil {
		return domain.TripStop{}, fmt.Errorf("service.TripStopService.Create: %w", err)
	}

	stop, err := s.stops.Create(ctx, domain.TripStop{
		TripID:      tripID,
		Day:         day,
		Name:        stopName(in.Name),
		Description: strings.TrimSpace(in.Description),
		Lat:         in.Lat,
		Lng:         in.Lng,
	})
	if err != nil {
		return domain.TripStop{}, fmt.Errorf("service.TripStopService.Create: %w", err)
	}
	return stop, nil
}

// List returns the stops of a trip day in the order they were added.
func (s *TripStopService) List(ctx context.Context, caller string, tripID uuid.UUID, day int) ([]domain.TripStop, error) {
	if err := s.tripDay(ctx, caller, tripID, day); err != nil {
		return nil, fmt.Errorf("service.TripStopService.List: %w", err)
	}
	stops, err := s.stops.ListByDay(ctx, tripID, day)
	if err != nil {
		return nil, fmt.Errorf("service.TripStopService.List: %w", err)
	}
	return stops, nil
}

// Get returns a single stop.
func (s *TripStopService) Get(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID) (domain.TripStop, error) {
	if err := s.tripDay(ctx, caller, tripID, day); err != nil {
		return domain.TripStop{}, fmt.Errorf("service.TripStopService.Get: %w", err)
	}
	stop, err := s.stops.GetByID(ctx, tripID, day, stopID)
	if err != nil {
		return domain.TripStop{}, fmt.Errorf("service.TripStopService.Get: %w", err)
	}
	return stop, nil
}

// Update changes a stop's name, description and coordinates.
func (s *TripStopService) Update(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID, in StopInput) (domain.TripStop, error) {
	if err := validateCoordinates(in.Lat, in.Lng); err != nil {
		return domain.TripStop{}, err
	}
	if err := s.tripDay(ctx, caller, tripID, day); err != nil {
		return domain.TripStop{}, fmt.Errorf("service.TripStopService.Update: %w", err)
	}

	updated, err := s.stops.Update(ctx, domain.TripStop{
		ID:          stopID,
		TripID:      tripID,
		Day:         day,
		Name:        stopName(in.Name),
		Description: strings.TrimSpace(in.Description),
		Lat:         in.Lat,
		Lng:         in.Lng,
	})
	if err != nil {
		return domain.TripStop{}, fmt.Errorf("service.TripStopService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a stop and its photo.
func (s *TripStopService) Delete(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID) error {
	if err := s.tripDay(ctx, caller, tripID, day); err != nil {
		return fmt.Errorf("service.TripStopService.Delete: %w", err)
	}
	if err := s.stops.Delete(ctx, tripID, day, stopID); err != nil {
		return fmt.Errorf("service.TripStopService.Delete: %w", err)
	}
	if err := s.blobs.Delete(ctx, storage.StopPhotoKey(tripID, day, stopID)); err != nil {
		slog.WarnContext(ctx, "stop photo not removed", "stop_id", stopID, "error", err)
	}
	return nil
}

// SetPhoto stores the stop's photo, replacing any previous one. The returned
// URL carries a version query so clients do not show the replaced image.
func (s *TripStopService) SetPhoto(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID, r io.Reader) (domain.TripStop, error) {
	if err := s.tripDay(ctx, caller, tripID, day); err != nil {
		return domain.TripStop{}, fmt.Errorf("service.TripStopService.SetPhoto: %w", err)
	}
	if _, err := s.stops.GetByID(ctx, tripID, day, stopID); err != nil {
		return domain.TripStop{}, fmt.Errorf("service.TripStopService.SetPhoto: %w", err)
	}

	url, err := storePhoto(ctx, s.blobs, storage.StopPhotoKey(tripID, day, stopID), "stop", r)
	if err != nil {
		return domain.TripStop{}, fmt.Errorf("service.TripStopService.SetPhoto: %w", err)
	}
	url = fmt.Sprintf("%s?v=%d", url, s.now().UnixMilli())

	stop, err := s.stops.SetPhotoURL(ctx, tripID, day, stopID, url)
	if err != nil {
		return domain.TripStop{}, fmt.Errorf("service.TripStopService.SetPhoto: %w", err)
	}
	return stop, nil
}
