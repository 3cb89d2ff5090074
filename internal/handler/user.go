package handler

import (
	"net/http"
	"time"

	"github.com/pkordes/map-collection/internal/auth"
	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/service"
)

type registerRequest struct {
	Email           string `json:"email" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	UserName     string `json:"user_name" validate:"required,max=50"`
	UserLabel    string `json:"user_label" validate:"max=200"`
	Introduction string `json:"introduction" validate:"max=1000"`
}

// UserResponse is the caller's own account.
type UserResponse struct {
	Email        string    `json:"email"`
	UserName     string    `json:"user_name"`
	UserLabel    string    `json:"user_label"`
	Introduction string    `json:"introduction"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	Following    []string  `json:"following"`
	Favorites    []string  `json:"favorites"`
	FirstLogin   bool      `json:"first_login"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProfileResponse is the public view of another user.
type ProfileResponse struct {
	Email        string `json:"email"`
	UserName     string `json:"user_name"`
	UserLabel    string `json:"user_label"`
	Introduction string `json:"introduction"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

// LoginResponse carries the session token. FirstLogin tells the client to
// show the profile onboarding step.
type LoginResponse struct {
	Token      string       `json:"token"`
	ExpiresAt  time.Time    `json:"expires_at"`
	FirstLogin bool         `json:"first_login"`
	User       UserResponse `json:"user"`
}

// Register handles POST /auth/register.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, err, "user")
		return
	}

	user, err := s.users.Register(r.Context(), service.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		s.respondError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusCreated, userToResponse(user))
}

// Login handles POST /auth/login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, err, "user")
		return
	}

	sess, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{
		Token:      sess.Token,
		ExpiresAt:  sess.ExpiresAt,
		FirstLogin: sess.User.FirstLogin,
		User:       userToResponse(sess.User),
	})
}

// GetMe handles GET /me.
func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Me(r.Context(), auth.EmailFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(user))
}

// UpdateMe handles PUT /me.
func (s *Server) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, err, "user")
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), auth.EmailFrom(r.Context()), domain.ProfileUpdate{
		UserName:     req.UserName,
		UserLabel:    req.UserLabel,
		Introduction: req.Introduction,
	})
	if err != nil {
		s.respondError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(user))
}

// SetMyPhoto handles PUT /me/photo. The body is the raw image.
func (s *Server) SetMyPhoto(w http.ResponseWriter, r *http.Request) {
	body, err := readUpload(r)
	if err != nil {
		s.respondError(w, r, err, "user")
		return
	}
	user, err := s.users.SetPhoto(r.Context(), auth.EmailFrom(r.Context()), body)
	if err != nil {
		s.respondError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(user))
}

// FindUsers handles GET /users?name=.
func (s *Server) FindUsers(w http.ResponseWriter, r *http.Request) {
	name, err := queryString(r, "name")
	if err != nil {
		s.respondError(w, r, err, "user")
		return
	}
	users, err := s.users.FindByName(r.Context(), name)
	if err != nil {
		s.respondError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, profilesToResponse(users))
}

// GetUserProfile handles GET /users/{email}.
func (s *Server) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	email, err := pathString(r, "email")
	if err != nil {
		s.respondError(w, r, err, "user")
		return
	}
	user, err := s.users.PublicProfile(r.Context(), email)
	if err != nil {
		s.respondError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, profileToResponse(user))
}

// ListUserPosts handles GET /users/{email}/posts.
func (s *Server) ListUserPosts(w http.ResponseWriter, r *http.Request) {
	email, err := pathString(r, "email")
	if err != nil {
		s.respondError(w, r, err, "user")
		return
	}
	params, err := pagination(r)
	if err != nil {
		s.respondError(w, r, err, "user")
		return
	}

	page, err := s.users.PostsByOwner(r.Context(), email, params)
	if err != nil {
		s.respondError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, PostList{
		Data:       postsToResponse(page.Posts),
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(page.Total)},
	})
}

// ListFollowing handles GET /me/following.
func (s *Server) ListFollowing(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.Following(r.Context(), auth.EmailFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, profilesToResponse(users))
}

// Follow handles PUT /me/following/{email}.
func (s *Server) Follow(w http.ResponseWriter, r *http.Request) {
	target, err := pathString(r, "email")
	if err != nil {
		s.respondError(w, r, err, "user")
		return
	}
	user, err := s.users.Follow(r.Context(), auth.EmailFrom(r.Context()), target)
	if err != nil {
		s.respondError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(user))
}

// Unfollow handles DELETE /me/following/{email}.
func (s *Server) Unfollow(w http.ResponseWriter, r *http.Request) {
	target, err := pathString(r, "email")
	if err != nil {
		s.respondError(w, r, err, "user")
		return
	}
	user, err := s.users.Unfollow(r.Context(), auth.EmailFrom(r.Context()), target)
	if err != nil {
		s.respondError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(user))
}

// ListFavorites handles GET /me/favorites.
func (s *Server) ListFavorites(w http.ResponseWriter, r *http.Request) {
	posts, err := s.users.Favorites(r.Context(), auth.EmailFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, postsToResponse(posts))
}

// AddFavorite handles PUT /me/favorites/{postId}.
func (s *Server) AddFavorite(w http.ResponseWriter, r *http.Request) {
	postID, err := pathUUID(r, "postId")
	if err != nil {
		s.respondError(w, r, err, "post")
		return
	}
	user, err := s.users.AddFavorite(r.Context(), auth.EmailFrom(r.Context()), postID)
	if err != nil {
		s.respondError(w, r, err, "post")
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(user))
}

// RemoveFavorite handles DELETE /me/favorites/{postId}.
func (s *Server) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	postID, err := pathUUID(r, "postId")
	if err != nil {
		s.respondError(w, r, err, "post")
		return
	}
	user, err := s.users.RemoveFavorite(r.Context(), auth.EmailFrom(r.Context()), postID)
	if err != nil {
		s.respondError(w, r, err, "post")
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(user))
}

// --- mapping helpers --------------------------------------------------------

func userToResponse(u domain.User) UserResponse {
	favs := make([]string, len(u.Favorites))
	for i, id := range u.Favorites {
		favs[i] = id.String()
	}
	following := u.Following
	if following == nil {
		following = []string{}
	}
	return UserResponse{
		Email:        u.Email,
		UserName:     u.UserName,
		UserLabel:    u.UserLabel,
		Introduction: u.Introduction,
		PhotoURL:     u.PhotoURL,
		Following:    following,
		Favorites:    favs,
		FirstLogin:   u.FirstLogin,
		CreatedAt:    u.CreatedAt,
	}
}

func profileToResponse(u domain.User) ProfileResponse {
	return ProfileResponse{
		Email:        u.Email,
		UserName:     u.UserName,
		UserLabel:    u.UserLabel,
		Introduction: u.Introduction,
		PhotoURL:     u.PhotoURL,
	}
}

func profilesToResponse(users []domain.User) []ProfileResponse {
	out := make([]ProfileResponse, len(users))
	for i, u := range users {
		out[i] = profileToResponse(u)
	}
	return out
}
