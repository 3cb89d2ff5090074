package handler

import (
	"net/http"

	"github.com/pkordes/map-collection/internal/auth"
	"github.com/pkordes/map-collection/internal/service"
)

// FeedItemResponse is a ranked post. PositionBonus is only set by search.
type FeedItemResponse struct {
	Post          PostResponse `json:"post"`
	Score         int          `json:"score"`
	PositionBonus int          `json:"position_bonus,omitempty"`
}

// GetRecommendedFeed handles GET /feed/recommended. Anonymous callers get the
// unpersonalised ranking.
func (s *Server) GetRecommendedFeed(w http.ResponseWriter, r *http.Request) {
	items, err := s.feed.Recommend(r.Context(), auth.EmailFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err, "feed")
		return
	}
	writeJSON(w, http.StatusOK, feedToResponse(items))
}

// Search handles GET /search?q=.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q, err := queryString(r, "q")
	if err != nil {
		s.respondError(w, r, err, "post")
		return
	}
	items, err := s.feed.Search(r.Context(), q)
	if err != nil {
		s.respondError(w, r, err, "post")
		return
	}
	writeJSON(w, http.StatusOK, feedToResponse(items))
}

func feedToResponse(items []service.FeedItem) []FeedItemResponse {
	out := make([]FeedItemResponse, len(items))
	for i, it := range items {
		out[i] = FeedItemResponse{
			Post:          postToResponse(it.Post),
			Score:         it.Score,
			PositionBonus: it.PositionBonus,
		}
	}
	return out
}
