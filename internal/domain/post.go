package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Post is a user-owned, named collection of spots (a "map").
// At most one post per owner carries Recommended; it is the owner's featured map.
type Post struct {
	ID            uuid.UUID
	OwnerEmail    string
	MapName       string
	MapType       string
	Recommended   bool
	Collaborators []string
	// LikeCount is derived: the number of users who favorited this post.
	LikeCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanEdit reports whether email may change the post's metadata and spots.
func (p Post) CanEdit(email string) bool {
	return email != "" && (p.OwnerEmail == email || slices.Contains(p.Collaborators, email))
}

// Spot is a single geotagged point of interest belonging to a post.
type Spot struct {
	ID          uuid.UUID
	PostID      uuid.UUID
	Name        string
	Description string
	Lat         float64
	Lng         float64
	PhotoURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
