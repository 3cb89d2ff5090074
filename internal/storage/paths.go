package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SpotPhotoKey is the key of a spot photo uploaded at t. Each upload gets a new
// key so cached copies of the previous photo are never served stale.
func SpotPhotoKey(postID, spotID uuid.UUID, t time.Time) string {
	return fmt.Sprintf("posts/%s/spots/%s/photo_%d.jpg", postID, spotID, t.UnixMilli())
}

// PostPrefix is the key prefix holding every photo of a post.
func PostPrefix(postID uuid.UUID) string {
	return fmt.Sprintf("posts/%s/", postID)
}

// StopPhotoKey is the key of a trip stop photo. A new upload replaces the old.
func StopPhotoKey(tripID uuid.UUID, day int, stopID uuid.UUID) string {
	return fmt.Sprintf("trips/%s/%d/stops/%s.jpg", tripID, day, stopID)
}

// TripPrefix is the key prefix holding every photo of a trip.
func TripPrefix(tripID uuid.UUID) string {
	return fmt.Sprintf("trips/%s/", tripID)
}

// ProfilePhotoKey is the key of a user's profile photo.
func ProfilePhotoKey(email string) string {
	return fmt.Sprintf("users/%s/profile.jpg", email)
}
