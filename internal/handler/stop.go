package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/map-collection/internal/auth"
	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/service"
)

type stopRequest struct {
	Name        string   `json:"name" validate:"max=100"`
	Description string   `json:"description" validate:"max=2000"`
	Lat         *float64 `json:"lat" validate:"required,latitude"`
	Lng         *float64 `json:"lng" validate:"required,longitude"`
}

// StopResponse is a trip stop as returned by the API.
type StopResponse struct {
	ID          uuid.UUID `json:"id"`
	TripID      uuid.UUID `json:"trip_id"`
	Day         int       `json:"day"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// dayPath binds {tripId} and {day} from the URL.
func dayPath(r *http.Request) (uuid.UUID, int, error) {
	tripID, err := pathUUID(r, "tripId")
	if err != nil {
		return uuid.Nil, 0, err
	}
	day, err := pathInt(r, "day")
	if err != nil {
		return uuid.Nil, 0, err
	}
	return tripID, day, nil
}

// stopPath binds {tripId}, {day} and {stopId} from the URL.
func stopPath(r *http.Request) (uuid.UUID, int, uuid.UUID, error) {
	tripID, day, err := dayPath(r)
	if err != nil {
		return uuid.Nil, 0, uuid.Nil, err
	}
	stopID, err := pathUUID(r, "stopId")
	if err != nil {
		return uuid.Nil, 0, uuid.Nil, err
	}
	return tripID, day, stopID, nil
}

// CreateStop handles POST /trips/{tripId}/days/{day}/stops.
func (s *Server) CreateStop(w http.ResponseWriter, r *http.Request) {
	tripID, day, err := dayPath(r)
	if err != nil {
		s.respondError(w, r, err, "trip")
		return
	}
	var req stopRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, err, "stop")
		return
	}

	stop, err := s.stops.Create(r.Context(), auth.EmailFrom(r.Context()), tripID, day, req.toInput())
	if err != nil {
		s.respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, stopToResponse(stop))
}

// ListStops handles GET /trips/{tripId}/days/{day}/stops.
func (s *Server) ListStops(w http.ResponseWriter, r *http.Request) {
	tripID, day, err := dayPath(r)
	if err != nil {
		s.respondError(w, r, err, "trip")
		return
	}
	stops, err := s.stops.List(r.Context(), auth.EmailFrom(r.Context()), tripID, day)
	if err != nil {
		s.respondError(w, r, err, "trip")
		return
	}
	out := make([]StopResponse, len(stops))
	for i, st := range stops {
		out[i] = stopToResponse(st)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetStop handles GET /trips/{tripId}/days/{day}/stops/{stopId}.
func (s *Server) GetStop(w http.ResponseWriter, r *http.Request) {
	tripID, day, stopID, err := stopPath(r)
	if err != nil {
		s.respondError(w, r, err, "stop")
		return
	}
	stop, err := s.stops.Get(r.Context(), auth.EmailFrom(r.Context()), tripID, day, stopID)
	if err != nil {
		s.respondError(w, r, err, "stop")
		return
	}
	writeJSON(w, http.StatusOK, stopToResponse(stop))
}

// UpdateStop handles PUT /trips/{tripId}/days/{day}/stops/{stopId}.
func (s *Server) UpdateStop(w http.ResponseWriter, r *http.Request) {
	tripID, day, stopID, err := stopPath(r)
	if err != nil {
		s.respondError(w, r, err, "stop")
		return
	}
	var req stopRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, err, "stop")
		return
	}

	stop, err := s.stops.Update(r.Context(), auth.EmailFrom(r.Context()), tripID, day, stopID, req.toInput())
	if err != nil {
		s.respondError(w, r, err, "stop")
		return
	}
	writeJSON(w, http.StatusOK, stopToResponse(stop))
}

// DeleteStop handles DELETE /trips/{tripId}/days/{day}/stops/{stopId}.
func (s *Server) DeleteStop(w http.ResponseWriter, r *http.Request) {
	tripID, day, stopID, err := stopPath(r)
	if err != nil {
		s.respondError(w, r, err, "stop")
		return
	}
	if err := s.stops.Delete(r.Context(), auth.EmailFrom(r.Context()), tripID, day, stopID); err != nil {
		s.respondError(w, r, err, "stop")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetStopPhoto handles PUT /trips/{tripId}/days/{day}/stops/{stopId}/photo.
func (s *Server) SetStopPhoto(w http.ResponseWriter, r *http.Request) {
	tripID, day, stopID, err := stopPath(r)
	if err != nil {
		s.respondError(w, r, err, "stop")
		return
	}
	body, err := readUpload(r)
	if err != nil {
		s.respondError(w, r, err, "stop")
		return
	}

	stop, err := s.stops.SetPhoto(r.Context(), auth.EmailFrom(r.Context()), tripID, day, stopID, body)
	if err != nil {
		s.respondError(w, r, err, "stop")
		return
	}
	writeJSON(w, http.StatusOK, stopToResponse(stop))
}

// --- mapping helpers --------------------------------------------------------

func (req stopRequest) toInput() service.StopInput {
	return service.StopInput{
		Name:        req.Name,
		Description: req.Description,
		Lat:         *req.Lat,
		Lng:         *req.Lng,
	}
}

func stopToResponse(st domain.TripStop) StopResponse {
	return StopResponse{
		ID:          st.ID,
		TripID:      st.TripID,
		Day:         st.Day,
		Name:        st.Name,
		Description: st.Description,
		Lat:         st.Lat,
		Lng:         st.Lng,
		PhotoURL:    st.PhotoURL,
		CreatedAt:   st.CreatedAt,
		UpdatedAt:   st.UpdatedAt,
	}
}
