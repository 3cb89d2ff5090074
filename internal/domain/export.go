package domain

// ItineraryRow is a single row of a trip itinerary export.
// It is a flat view: one row per stop, ordered by day then creation time, with
// the trip fields repeated. Days without stops yield one row with empty stop
// fields so the full day structure is always visible.
type ItineraryRow struct {
	TripID    string
	TripTitle string
	Day       int
	Date      string // "2006-01-02"

	StopName        string
	StopDescription string
	Lat             *float64
	Lng             *float64
	PhotoURL        string
}
