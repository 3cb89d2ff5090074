package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pkordes/map-collection/internal/auth"
	"github.com/pkordes/map-collection/internal/domain"
)

// Export formats accepted by ?format=.
const (
	formatJSON = "json"
	formatCSV  = "csv"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "trip_title", "day", "date",
	"stop_name", "stop_description", "lat", "lng", "photo_url",
}

// ItineraryRowResponse is one row of a JSON itinerary export. Stop fields are
// omitted on rows that represent an empty day.
type ItineraryRowResponse struct {
	TripID          string   `json:"trip_id"`
	TripTitle       string   `json:"trip_title"`
	Day             int      `json:"day"`
	Date            string   `json:"date"`
	StopName        *string  `json:"stop_name,omitempty"`
	StopDescription *string  `json:"stop_description,omitempty"`
	Lat             *float64 `json:"lat,omitempty"`
	Lng             *float64 `json:"lng,omitempty"`
	PhotoURL        *string  `json:"photo_url,omitempty"`
}

// ExportTrip handles GET /trips/{tripId}/export.
// Use ?format=csv to receive a CSV attachment; default is JSON.
func (s *Server) ExportTrip(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathUUID(r, "tripId")
	if err != nil {
		s.respondError(w, r, err, "trip")
		return
	}
	format, err := queryString(r, "format")
	if err != nil {
		s.respondError(w, r, err, "trip")
		return
	}
	if format == "" {
		format = formatJSON
	}
	if format != formatJSON && format != formatCSV {
		s.respondError(w, r, fmt.Errorf("%w: format must be one of: json csv", domain.ErrValidation), "trip")
		return
	}

	rows, err := s.export.Export(r.Context(), auth.EmailFrom(r.Context()), tripID)
	if err != nil {
		s.respondError(w, r, err, "trip")
		return
	}

	if format == formatCSV {
		body, err := encodeCSV(rows)
		if err != nil {
			s.respondError(w, r, fmt.Errorf("handler.ExportTrip: %w", err), "trip")
			return
		}
		writeCSV(w, fmt.Sprintf("trip-%s.csv", tripID), body)
		return
	}
	out := make([]ItineraryRowResponse, len(rows))
	for i, row := range rows {
		out[i] = rowToResponse(row)
	}
	writeJSON(w, http.StatusOK, out)
}

// encodeCSV renders rows under csvHeaders.
func encodeCSV(rows []domain.ItineraryRow) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(rowToCSVRecord(row)); err != nil {
			return nil, fmt.Errorf("encode csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}

// writeCSV sends body as a CSV attachment named filename.
func writeCSV(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// rowToResponse maps a domain row to its JSON form. Empty strings become nil
// pointers (omitted in JSON).
func rowToResponse(r domain.ItineraryRow) ItineraryRowResponse {
	out := ItineraryRowResponse{
		TripID:    r.TripID,
		TripTitle: r.TripTitle,
		Day:       r.Day,
		Date:      r.Date,
		Lat:       r.Lat,
		Lng:       r.Lng,
	}
	if r.StopName != "" {
		out.StopName = &r.StopName
	}
	if r.StopDescription != "" {
		out.StopDescription = &r.StopDescription
	}
	if r.PhotoURL != "" {
		out.PhotoURL = &r.PhotoURL
	}
	return out
}

// rowToCSVRecord encodes a row as a flat string slice. Missing coordinates
// are written as empty cells.
func rowToCSVRecord(r domain.ItineraryRow) []string {
	return []string{
		r.TripID,
		r.TripTitle,
		strconv.Itoa(r.Day),
		r.Date,
		r.StopName,
		r.StopDescription,
		formatOptionalFloat(r.Lat),
		formatOptionalFloat(r.Lng),
		r.PhotoURL,
	}
}

func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
