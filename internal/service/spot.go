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

// SpotInput carries the editable fields of a spot.
type SpotInput struct {
	Name        string
	Description string
	Lat         float64
	Lng         float64
}

func (in SpotInput) normalize() (SpotInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return in, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if err := validateCoordinates(in.Lat, in.Lng); err != nil {
		return in, err
	}
	return in, nil
}

func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: lat must be between -90 and 90", domain.ErrValidation)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: lng must be between -180 and 180", domain.ErrValidation)
	}
	return nil
}

// SpotService implements business logic for the spots of a post.
type SpotService struct {
	posts repo.PostRepo
	spots repo.SpotRepo
	trips repo.TripRepo
	stops repo.TripStopRepo
	blobs BlobStore
	now   func() time.Time
}

// NewSpotService constructs a SpotService.
func NewSpotService(posts repo.PostRepo, spots repo.SpotRepo, trips repo.TripRepo, stops repo.TripStopRepo, blobs BlobStore) *SpotService {
	return &SpotService{posts: posts, spots: spots, trips: trips, stops: stops, blobs: blobs, now: time.Now}
}

// editablePost loads the post and checks the caller may change it.
func (s *SpotService) editablePost(ctx context.Context, caller string, postID uuid.UUID) (domain.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return domain.Post{}, err
	}
	if !post.CanEdit(caller) {
		return domain.Post{}, fmt.Errorf("%w: only the owner or a collaborator can edit this map", domain.ErrForbidden)
	}
	return post, nil
}

// Create adds a spot to a post.
func (s *SpotService) Create(ctx context.Context, caller string, postID uuid.UUID, in SpotInput) (domain.Spot, error) {
	in, err := in.normalize()
	if err != nil {
		return domain.Spot{}, err
	}
	if _, err := s.editablePost(ctx, caller, postID); err != nil {
		return domain.Spot{}, fmt.Errorf("service.SpotService.Create: %w", err)
	}

	spot, err := s.spots.Create(ctx, domain.Spot{
		PostID:      postID,
		Name:        in.Name,
		Description: in.Description,
		Lat:         in.Lat,
		Lng:         in.Lng,
	})
	if err != nil {
		return domain.Spot{}, fmt.Errorf("service.SpotService.Create: %w", err)
	}
	return spot, nil
}

// List returns the spots of a post in creation order.
func (s *SpotService) List(ctx context.Context, postID uuid.UUID) ([]domain.Spot, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, fmt.Errorf("service.SpotService.List: %w", err)
	}
	spots, err := s.spots.ListByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("service.SpotService.List: %w", err)
	}
	return spots, nil
}

// Get returns one spot of a post.
func (s *SpotService) Get(ctx context.Context, postID, spotID uuid.UUID) (domain.Spot, error) {
	spot, err := s.spots.GetByID(ctx, postID, spotID)
	if err != nil {
		return domain.Spot{}, fmt.Errorf("service.SpotService.Get: %w", err)
	}
	return spot, nil
}

// Update changes a spot's name, description and coordinates.
func (s *SpotService) Update(ctx context.Context, caller string, postID, spotID uuid.UUID, in SpotInput) (domain.Spot, error) {
	in, err := in.normalize()
	if err != nil {
		return domain.Spot{}, err
	}
	if _, err := s.editablePost(ctx, caller, postID); err != nil {
		return domain.Spot{}, fmt.Errorf("service.SpotService.Update: %w", err)
	}

	updated, err := s.spots.Update(ctx, domain.Spot{
		ID:          spotID,
		PostID:      postID,
		Name:        in.Name,
		Description: in.Description,
		Lat:         in.Lat,
		Lng:         in.Lng,
	})
	if err != nil {
		return domain.Spot{}, fmt.Errorf("service.SpotService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a spot and its photos.
func (s *SpotService) Delete(ctx context.Context, caller string, postID, spotID uuid.UUID) error {
	if _, err := s.editablePost(ctx, caller, postID); err != nil {
		return fmt.Errorf("service.SpotService.Delete: %w", err)
	}
	if err := s.spots.Delete(ctx, postID, spotID); err != nil {
		return fmt.Errorf("service.SpotService.Delete: %w", err)
	}
	prefix := fmt.Sprintf("%sspots/%s/", storage.PostPrefix(postID), spotID)
	if err := s.blobs.DeletePrefix(ctx, prefix); err != nil {
		slog.WarnContext(ctx, "spot photos not removed", "spot_id", spotID, "error", err)
	}
	return nil
}

// SetPhoto stores a new photo for the spot. Every upload gets a fresh key.
func (s *SpotService) SetPhoto(ctx context.Context, caller string, postID, spotID uuid.UUID, r io.Reader) (domain.Spot, error) {
	if _, err := s.editablePost(ctx, caller, postID); err != nil {
		return domain.Spot{}, fmt.Errorf("service.SpotService.SetPhoto: %w", err)
	}
	if _, err := s.spots.GetByID(ctx, postID, spotID); err != nil {
		return domain.Spot{}, fmt.Errorf("service.SpotService.SetPhoto: %w", err)
	}

	url, err := storePhoto(ctx, s.blobs, storage.SpotPhotoKey(postID, spotID, s.now()), "spot", r)
	if err != nil {
		return domain.Spot{}, fmt.Errorf("service.SpotService.SetPhoto: %w", err)
	}
	spot, err := s.spots.SetPhotoURL(ctx, postID, spotID, url)
	if err != nil {
		return domain.Spot{}, fmt.Errorf("service.SpotService.SetPhoto: %w", err)
	}
	return spot, nil
}

// CopyToTrip adds the spot as a stop on one day of a trip the caller can edit.
func (s *SpotService) CopyToTrip(ctx context.Context, caller string, postID, spotID, tripID uuid.UUID, day int) (domain.TripStop, error) {
	spot, err := s.spots.GetByID(ctx, postID, spotID)
	if err != nil {
		return domain.TripStop{}, fmt.Errorf("service.SpotService.CopyToTrip: %w", err)
	}
	trip, err := accessibleTrip(ctx, s.trips, caller, tripID)
	if err != nil {
		return domain.TripStop{}, fmt.Errorf("service.SpotService.CopyToTrip: %w", err)
	}
	if err := checkDay(trip, day); err != nil {
		return domain.TripStop{}, err
	}

	stop, err := s.stops.Create(ctx, domain.TripStop{
		TripID:      tripID,
		Day:         day,
		Name:        stopName(spot.Name),
		Description: spot.Description,
		Lat:         spot.Lat,
		Lng:         spot.Lng,
		PhotoURL:    spot.PhotoURL,
	})
	if err != nil {
		return domain.TripStop{}, fmt.Errorf("service.SpotService.CopyToTrip: %w", err)
	}
	return stop, nil
}
