package handler

import (
	"net/http"

	"github.com/pkordes/map-collection/internal/auth"
)

type askRequest struct {
	Question string `json:"question" validate:"required"`
}

// AnswerResponse carries generated text.
type AnswerResponse struct {
	Answer string `json:"answer"`
}

// Ask handles POST /assistant/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, err, "question")
		return
	}
	answer, err := s.assistant.Ask(r.Context(), req.Question)
	if err != nil {
		s.respondError(w, r, err, "question")
		return
	}
	writeJSON(w, http.StatusOK, AnswerResponse{Answer: answer})
}

// GetStopInsight handles GET /trips/{tripId}/days/{day}/stops/{stopId}/insight?mode=.
func (s *Server) GetStopInsight(w http.ResponseWriter, r *http.Request) {
	tripID, day, stopID, err := stopPath(r)
	if err != nil {
		s.respondError(w, r, err, "stop")
		return
	}
	mode, err := queryString(r, "mode")
	if err != nil {
		s.respondError(w, r, err, "stop")
		return
	}

	answer, err := s.assistant.StopInsight(r.Context(), auth.EmailFrom(r.Context()), tripID, day, stopID, mode)
	if err != nil {
		s.respondError(w, r, err, "stop")
		return
	}
	writeJSON(w, http.StatusOK, AnswerResponse{Answer: answer})
}
