// Package domain contains the core data types for the map collection service.
// This package has no dependencies on other internal packages and is imported
// by every other internal package (repo, service, handler).
package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Trip day bounds. Every trip has between MinTripDays and MaxTripDays days.
const (
	MinTripDays     = 1
	MaxTripDays     = 7
	DefaultTripDays = MaxTripDays
)

// Trip is a day-structured itinerary owned by one user and editable by its
// collaborators. Stops belong to one day of a trip.
type Trip struct {
	ID            uuid.UUID
	OwnerEmail    string
	Title         string
	Days          int
	StartDate     time.Time
	EndDate       *time.Time // nil when only a day count was given
	Collaborators []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanAccess reports whether email is the owner or a collaborator of t.
func (t Trip) CanAccess(email string) bool {
	return email != "" && (t.OwnerEmail == email || slices.Contains(t.Collaborators, email))
}

// DayDate returns the calendar date of the given 1-based day.
func (t Trip) DayDate(day int) time.Time {
	return t.StartDate.AddDate(0, 0, day-1)
}

// ClampDays bounds n to [MinTripDays, MaxTripDays].
func ClampDays(n int) int {
	return min(max(n, MinTripDays), MaxTripDays)
}

// DaysInRange returns the inclusive number of calendar days from start to end,
// clamped to the trip bounds. A range of any length yields at most MaxTripDays.
func DaysInRange(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	span := int(e.Sub(s).Hours()/24) + 1
	return ClampDays(span)
}
