package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Placeholder profile values written on registration. The client shows them
// until the user completes the first-login profile step.
const (
	DefaultUserName     = "使用者姓名"
	DefaultUserLabel    = "個人化標籤"
	DefaultIntroduction = "個人簡介"
)

// User is a registered account. Email is the identity key.
// UserLabel is free text; it is split into interest labels by ranking.ParseLabels.
type User struct {
	Email        string
	PasswordHash string
	UserName     string
	UserLabel    string
	Introduction string
	PhotoURL     string
	Following    []string
	Favorites    []uuid.UUID
	FirstLogin   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsFollowing reports whether u follows the account with the given email.
func (u User) IsFollowing(email string) bool {
	return slices.Contains(u.Following, email)
}

// HasFavorite reports whether postID is in u's favorites.
func (u User) HasFavorite(postID uuid.UUID) bool {
	return slices.Contains(u.Favorites, postID)
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	UserName     string
	UserLabel    string
	Introduction string
}
