package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/map-collection/internal/auth"
	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/service"
)

type postRequest struct {
	MapName     string `json:"map_name" validate:"required,max=100"`
	MapType     string `json:"map_type" validate:"required,max=100"`
	Recommended bool   `json:"recommended"`
}

type collaboratorRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PostResponse is a map as returned by the API.
type PostResponse struct {
	ID            uuid.UUID `json:"id"`
	OwnerEmail    string    `json:"owner_email"`
	MapName       string    `json:"map_name"`
	MapType       string    `json:"map_type"`
	Recommended   bool      `json:"recommended"`
	Collaborators []string  `json:"collaborators"`
	LikeCount     int       `json:"like_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// PostList is a paginated list of posts.
type PostList struct {
	Data       []PostResponse `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// CreatePost handles POST /posts.
func (s *Server) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, err, "post")
		return
	}

	post, err := s.posts.Create(r.Context(), auth.EmailFrom(r.Context()), service.PostInput(req))
	if err != nil {
		s.respondError(w, r, err, "recommended map")
		return
	}
	writeJSON(w, http.StatusCreated, postToResponse(post))
}

// GetPost handles GET /posts/{postId}.
func (s *Server) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "postId")
	if err != nil {
		s.respondError(w, r, err, "post")
		return
	}
	post, err := s.posts.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "post")
		return
	}
	writeJSON(w, http.StatusOK, postToResponse(post))
}

// ListMyPosts handles GET /me/posts.
func (s *Server) ListMyPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.posts.ListMine(r.Context(), auth.EmailFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err, "post")
		return
	}
	writeJSON(w, http.StatusOK, postsToResponse(posts))
}

// GetMyRecommended handles GET /me/recommended.
func (s *Server) GetMyRecommended(w http.ResponseWriter, r *http.Request) {
	post, err := s.posts.Recommended(r.Context(), auth.EmailFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err, "recommended map")
		return
	}
	writeJSON(w, http.StatusOK, postToResponse(post))
}

// UpdatePost handles PUT /posts/{postId}.
func (s *Server) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "postId")
	if err != nil {
		s.respondError(w, r, err, "post")
		return
	}
	var req postRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, err, "post")
		return
	}

	post, err := s.posts.Update(r.Context(), auth.EmailFrom(r.Context()), id, service.PostInput(req))
	if err != nil {
		s.respondError(w, r, err, "post")
		return
	}
	writeJSON(w, http.StatusOK, postToResponse(post))
}

// DeletePost handles DELETE /posts/{postId}.
func (s *Server) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "postId")
	if err != nil {
		s.respondError(w, r, err, "post")
		return
	}
	if err := s.posts.Delete(r.Context(), auth.EmailFrom(r.Context()), id); err != nil {
		s.respondError(w, r, err, "post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddPostCollaborator handles POST /posts/{postId}/collaborators.
func (s *Server) AddPostCollaborator(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "postId")
	if err != nil {
		s.respondError(w, r, err, "post")
		return
	}
	var req collaboratorRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, err, "post")
		return
	}

	post, err := s.posts.AddCollaborator(r.Context(), auth.EmailFrom(r.Context()), id, req.Email)
	if err != nil {
		s.respondError(w, r, err, "post or user")
		return
	}
	writeJSON(w, http.StatusOK, postToResponse(post))
}

// --- mapping helpers --------------------------------------------------------

func postToResponse(p domain.Post) PostResponse {
	collaborators := p.Collaborators
	if collaborators == nil {
		collaborators = []string{}
	}
	return PostResponse{
		ID:            p.ID,
		OwnerEmail:    p.OwnerEmail,
		MapName:       p.MapName,
		MapType:       p.MapType,
		Recommended:   p.Recommended,
		Collaborators: collaborators,
		LikeCount:     p.LikeCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func postsToResponse(posts []domain.Post) []PostResponse {
	out := make([]PostResponse, len(posts))
	for i, p := range posts {
		out[i] = postToResponse(p)
	}
	return out
}
