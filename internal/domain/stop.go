package domain

import (
	"time"

	"github.com/google/uuid"
)

// UnnamedStop replaces a blank stop name.
const UnnamedStop = "未命名景點"

// TripStop is a geotagged point of interest on one day of a trip.
type TripStop struct {
	ID          uuid.UUID
	TripID      uuid.UUID
	Day         int
	Name        string
	Description string
	Lat         float64
	Lng         float64
	PhotoURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
