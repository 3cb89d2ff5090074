package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/map-collection/internal/auth"
	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/service"
)

type spotRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=2000"`
	Lat         *float64 `json:"lat" validate:"required,latitude"`
	Lng         *float64 `json:"lng" validate:"required,longitude"`
}

type copyToTripRequest struct {
	TripID uuid.UUID `json:"trip_id" validate:"required"`
	Day    int       `json:"day" validate:"required,gte=1"`
}

// SpotResponse is a spot as returned by the API.
type SpotResponse struct {
	ID          uuid.UUID `json:"id"`
	PostID      uuid.UUID `json:"post_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// spotPath binds {postId} and, when withSpot is set, {spotId}.
func spotPath(r *http.Request, withSpot bool) (postID, spotID uuid.UUID, err error) {
	if postID, err = pathUUID(r, "postId"); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if withSpot {
		if spotID, err = pathUUID(r, "spotId"); err != nil {
			return uuid.Nil, uuid.Nil, err
		}
	}
	return postID, spotID, nil
}

// CreateSpot handles POST /posts/{postId}/spots.
func (s *Server) CreateSpot(w http.ResponseWriter, r *http.Request) {
	postID, _, err := spotPath(r, false)
	if err != nil {
		s.respondError(w, r, err, "post")
		return
	}
	var req spotRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, err, "spot")
		return
	}

	spot, err := s.spots.Create(r.Context(), auth.EmailFrom(r.Context()), postID, req.toInput())
	if err != nil {
		s.respondError(w, r, err, "post")
		return
	}
	writeJSON(w, http.StatusCreated, spotToResponse(spot))
}

// ListSpots handles GET /posts/{postId}/spots.
func (s *Server) ListSpots(w http.ResponseWriter, r *http.Request) {
	postID, _, err := spotPath(r, false)
	if err != nil {
		s.respondError(w, r, err, "post")
		return
	}
	spots, err := s.spots.List(r.Context(), postID)
	if err != nil {
		s.respondError(w, r, err, "post")
		return
	}
	out := make([]SpotResponse, len(spots))
	for i, sp := range spots {
		out[i] = spotToResponse(sp)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetSpot handles GET /posts/{postId}/spots/{spotId}.
func (s *Server) GetSpot(w http.ResponseWriter, r *http.Request) {
	postID, spotID, err := spotPath(r, true)
	if err != nil {
		s.respondError(w, r, err, "spot")
		return
	}
	spot, err := s.spots.Get(r.Context(), postID, spotID)
	if err != nil {
		s.respondError(w, r, err, "spot")
		return
	}
	writeJSON(w, http.StatusOK, spotToResponse(spot))
}

// UpdateSpot handles PUT /posts/{postId}/spots/{spotId}.
func (s *Server) UpdateSpot(w http.ResponseWriter, r *http.Request) {
	postID, spotID, err := spotPath(r, true)
	if err != nil {
		s.respondError(w, r, err, "spot")
		return
	}
	var req spotRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, err, "spot")
		return
	}

	spot, err := s.spots.Update(r.Context(), auth.EmailFrom(r.Context()), postID, spotID, req.toInput())
	if err != nil {
		s.respondError(w, r, err, "spot")
		return
	}
	writeJSON(w, http.StatusOK, spotToResponse(spot))
}

// DeleteSpot handles DELETE /posts/{postId}/spots/{spotId}.
func (s *Server) DeleteSpot(w http.ResponseWriter, r *http.Request) {
	postID, spotID, err := spotPath(r, true)
	if err != nil {
		s.respondError(w, r, err, "spot")
		return
	}
	if err := s.spots.Delete(r.Context(), auth.EmailFrom(r.Context()), postID, spotID); err != nil {
		s.respondError(w, r, err, "spot")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetSpotPhoto handles PUT /posts/{postId}/spots/{spotId}/photo.
func (s *Server) SetSpotPhoto(w http.ResponseWriter, r *http.Request) {
	postID, spotID, err := spotPath(r, true)
	if err != nil {
		s.respondError(w, r, err, "spot")
		return
	}
	body, err := readUpload(r)
	if err != nil {
		s.respondError(w, r, err, "spot")
		return
	}

	spot, err := s.spots.SetPhoto(r.Context(), auth.EmailFrom(r.Context()), postID, spotID, body)
	if err != nil {
		s.respondError(w, r, err, "spot")
		return
	}
	writeJSON(w, http.StatusOK, spotToResponse(spot))
}

// CopySpotToTrip handles POST /posts/{postId}/spots/{spotId}/copy-to-trip.
func (s *Server) CopySpotToTrip(w http.ResponseWriter, r *http.Request) {
	postID, spotID, err := spotPath(r, true)
	if err != nil {
		s.respondError(w, r, err, "spot")
		return
	}
	var req copyToTripRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, err, "spot")
		return
	}

	stop, err := s.spots.CopyToTrip(r.Context(), auth.EmailFrom(r.Context()), postID, spotID, req.TripID, req.Day)
	if err != nil {
		s.respondError(w, r, err, "spot or trip")
		return
	}
	writeJSON(w, http.StatusCreated, stopToResponse(stop))
}

// --- mapping helpers --------------------------------------------------------

func (req spotRequest) toInput() service.SpotInput {
	return service.SpotInput{
		Name:        req.Name,
		Description: req.Description,
		Lat:         *req.Lat,
		Lng:         *req.Lng,
	}
}

func spotToResponse(sp domain.Spot) SpotResponse {
	return SpotResponse{
		ID:          sp.ID,
		PostID:      sp.PostID,
		Name:        sp.Name,
		Description: sp.Description,
		Lat:         sp.Lat,
		Lng:         sp.Lng,
		PhotoURL:    sp.PhotoURL,
		CreatedAt:   sp.CreatedAt,
		UpdatedAt:   sp.UpdatedAt,
	}
}
