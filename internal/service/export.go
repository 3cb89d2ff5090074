package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/repo"
)

// ExportService flattens a trip itinerary into rows for CSV or JSON download.
type ExportService struct {
	trips repo.TripRepo
	stops repo.TripStopRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(trips repo.TripRepo, stops repo.TripStopRepo) *ExportService {
	return &ExportService{trips: trips, stops: stops}
}

// Export returns one ItineraryRow per stop of the trip, ordered by day then
// creation time. Days with no stops contribute one row with empty stop fields.
func (s *ExportService) Export(ctx context.Context, caller string, tripID uuid.UUID) ([]domain.ItineraryRow, error) {
	trip, err := accessibleTrip(ctx, s.trips, caller, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	stops, err := s.stops.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	byDay := make(map[int][]domain.TripStop, trip.Days)
	for _, st := range stops {
		byDay[st.Day] = append(byDay[st.Day], st)
	}

	rows := make([]domain.ItineraryRow, 0, len(stops)+trip.Days)
	for day := 1; day <= trip.Days; day++ {
		base := domain.ItineraryRow{
			TripID:    trip.ID.String(),
			TripTitle: trip.Title,
			Day:       day,
			Date:      trip.DayDate(day).Format("2006-01-02"),
		}
		dayStops := byDay[day]
		if len(dayStops) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, st := range dayStops {
			row := base
			lat, lng := st.Lat, st.Lng
			row.StopName = st.Name
			row.StopDescription = st.Description
			row.Lat = &lat
			row.Lng = &lng
			row.PhotoURL = st.PhotoURL
			rows = append(rows, row)
		}
	}
	return rows, nil
}
