package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/map-collection/internal/auth"
	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/service"
)

type tripRequest struct {
	Title     string              `json:"title" validate:"required,max=100"`
	StartDate openapi_types.Date  `json:"start_date"`
	EndDate   *openapi_types.Date `json:"end_date"`
	Days      *int                `json:"days"`
}

// TripResponse is a trip as returned by the API.
type TripResponse struct {
	ID            uuid.UUID           `json:"id"`
	OwnerEmail    string              `json:"owner_email"`
	Title         string              `json:"title"`
	Days          int                 `json:"days"`
	StartDate     openapi_types.Date  `json:"start_date"`
	EndDate       *openapi_types.Date `json:"end_date,omitempty"`
	Collaborators []string            `json:"collaborators"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// TripList is a paginated list of trips.
type TripList struct {
	Data       []TripResponse `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req tripRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, err, "trip")
		return
	}

	trip, err := s.trips.Create(r.Context(), auth.EmailFrom(r.Context()), req.toInput())
	if err != nil {
		s.respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(trip))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	params, err := pagination(r)
	if err != nil {
		s.respondError(w, r, err, "trip")
		return
	}
	page, err := s.trips.List(r.Context(), auth.EmailFrom(r.Context()), params)
	if err != nil {
		s.respondError(w, r, err, "trip")
		return
	}

	data := make([]TripResponse, len(page.Trips))
	for i, t := range page.Trips {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, TripList{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(page.Total)},
	})
}

// GetTrip handles GET /trips/{tripId}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "tripId")
	if err != nil {
		s.respondError(w, r, err, "trip")
		return
	}
	trip, err := s.trips.Get(r.Context(), auth.EmailFrom(r.Context()), id)
	if err != nil {
		s.respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PUT /trips/{tripId}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "tripId")
	if err != nil {
		s.respondError(w, r, err, "trip")
		return
	}
	var req tripRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, err, "trip")
		return
	}

	trip, err := s.trips.Update(r.Context(), auth.EmailFrom(r.Context()), id, req.toInput())
	if err != nil {
		s.respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// DeleteTrip handles DELETE /trips/{tripId}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "tripId")
	if err != nil {
		s.respondError(w, r, err, "trip")
		return
	}
	if err := s.trips.Delete(r.Context(), auth.EmailFrom(r.Context()), id); err != nil {
		s.respondError(w, r, err, "trip")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTripCollaborator handles POST /trips/{tripId}/collaborators.
func (s *Server) AddTripCollaborator(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "tripId")
	if err != nil {
		s.respondError(w, r, err, "trip")
		return
	}
	var req collaboratorRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, err, "trip")
		return
	}

	trip, err := s.trips.AddCollaborator(r.Context(), auth.EmailFrom(r.Context()), id, req.Email)
	if err != nil {
		s.respondError(w, r, err, "trip or user")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// --- mapping helpers --------------------------------------------------------

// toInput converts the request body into a service.TripInput.
func (req tripRequest) toInput() service.TripInput {
	in := service.TripInput{
		Title:     req.Title,
		StartDate: req.StartDate.Time,
		Days:      req.Days,
	}
	if req.EndDate != nil {
		ed := req.EndDate.Time
		in.EndDate = &ed
	}
	return in
}

// tripToResponse converts a domain.Trip into its API representation.
func tripToResponse(t domain.Trip) TripResponse {
	collaborators := t.Collaborators
	if collaborators == nil {
		collaborators = []string{}
	}
	resp := TripResponse{
		ID:            t.ID,
		OwnerEmail:    t.OwnerEmail,
		Title:         t.Title,
		Days:          t.Days,
		StartDate:     openapi_types.Date{Time: t.StartDate},
		Collaborators: collaborators,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if t.EndDate != nil {
		ed := openapi_types.Date{Time: *t.EndDate}
		resp.EndDate = &ed
	}
	return resp
}
