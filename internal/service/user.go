package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/map-collection/internal/cache"
	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/repo"
	"github.com/pkordes/map-collection/internal/storage"
	"github.com/pkordes/map-collection/internal/validation"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// RegisterInput is the data needed to open an account.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

// PostPage is one page of posts plus the total across all pages.
type PostPage struct {
	Posts []domain.Post
	Total int64
}

// UserService implements accounts, profiles, following and favorites.
type UserService struct {
	users  repo.UserRepo
	posts  repo.PostRepo
	hasher PasswordHasher
	tokens TokenIssuer
	blobs  BlobStore
	cache  cache.KV
}

// NewUserService constructs a UserService.
func NewUserService(users repo.UserRepo, posts repo.PostRepo, hasher PasswordHasher, tokens TokenIssuer, blobs BlobStore, kv cache.KV) *UserService {
	return &UserService{users: users, posts: posts, hasher: hasher, tokens: tokens, blobs: blobs, cache: kv}
}

// normalizeEmail trims and lower-cases an email so it can be used as identity.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates the input and creates an account with the default profile.
// Returns domain.ErrConflict if the email is already registered.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	email := normalizeEmail(in.Email)
	if err := validation.Var("email", email, "required,email"); err != nil {
		return domain.User{}, err
	}
	if len(in.Password) < MinPasswordLength {
		return domain.User{}, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, MinPasswordLength)
	}
	if in.Password != in.ConfirmPassword {
		return domain.User{}, fmt.Errorf("%w: passwords do not match", domain.ErrValidation)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Register: %w", err)
	}

	user, err := s.users.Create(ctx, domain.User{
		Email:        email,
		PasswordHash: hash,
		UserName:     domain.DefaultUserName,
		UserLabel:    domain.DefaultUserLabel,
		Introduction: domain.DefaultIntroduction,
		FirstLogin:   true,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Register: %w", err)
	}
	return user, nil
}

// Login checks credentials and issues a token. Unknown emails and wrong
// passwords are both domain.ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return Session{}, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
		}
		return Session{}, fmt.Errorf("service.UserService.Login: %w", err)
	}

	ok, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return Session{}, fmt.Errorf("service.UserService.Login: %w", err)
	}
	if !ok {
		return Session{}, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}

	token, expires, err := s.tokens.Issue(user.Email)
	if err != nil {
		return Session{}, fmt.Errorf("service.UserService.Login: %w", err)
	}
	return Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// Me returns the caller's own account.
func (s *UserService) Me(ctx context.Context, email string) (domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Me: %w", err)
	}
	return user, nil
}

// UpdateProfile saves the editable profile fields. Completing the profile
// also ends the first-login onboarding.
func (s *UserService) UpdateProfile(ctx context.Context, email string, p domain.ProfileUpdate) (domain.User, error) {
	p.UserName = strings.TrimSpace(p.UserName)
	p.UserLabel = strings.TrimSpace(p.UserLabel)
	p.Introduction = strings.TrimSpace(p.Introduction)
	if p.UserName == "" {
		return domain.User{}, fmt.Errorf("%w: user_name is required", domain.ErrValidation)
	}

	user, err := s.users.UpdateProfile(ctx, email, p)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.UpdateProfile: %w", err)
	}
	return user, nil
}

// SetPhoto re-encodes and stores the caller's profile photo.
func (s *UserService) SetPhoto(ctx context.Context, email string, r io.Reader) (domain.User, error) {
	url, err := storePhoto(ctx, s.blobs, storage.ProfilePhotoKey(email), "profile", r)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.SetPhoto: %w", err)
	}
	user, err := s.users.SetPhotoURL(ctx, email, url)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.SetPhoto: %w", err)
	}
	return user, nil
}

// FindByName returns the users whose display name equals name. It backs the
// collaborator picker, which looks people up by name.
func (s *UserService) FindByName(ctx context.Context, name string) ([]domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	users, err := s.users.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("service.UserService.FindByName: %w", err)
	}
	return users, nil
}

// PublicProfile returns another user's profile, served from the local cache
// when the database read fails.
func (s *UserService) PublicProfile(ctx context.Context, email string) (domain.User, error) {
	email = normalizeEmail(email)
	user, err := cache.Revalidate(ctx, s.cache, "profile:"+email, func(ctx context.Context) (domain.User, error) {
		u, err := s.users.GetByEmail(ctx, email)
		u.PasswordHash = ""
		return u, err
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.PublicProfile: %w", err)
	}
	return user, nil
}

// PostsByOwner returns one page of a user's posts, newest first, with the same
// cache fallback as PublicProfile.
func (s *UserService) PostsByOwner(ctx context.Context, email string, p domain.PaginationParams) (PostPage, error) {
	email = normalizeEmail(email)
	key := fmt.Sprintf("posts:%s:%d:%d", email, p.Page, p.Limit)
	page, err := cache.Revalidate(ctx, s.cache, key, func(ctx context.Context) (PostPage, error) {
		if _, err := s.users.GetByEmail(ctx, email); err != nil {
			return PostPage{}, err
		}
		posts, total, err := s.posts.ListByOwnerPaged(ctx, email, p)
		return PostPage{Posts: posts, Total: total}, err
	})
	if err != nil {
		return PostPage{}, fmt.Errorf("service.UserService.PostsByOwner: %w", err)
	}
	return page, nil
}

// Following returns the profiles the caller follows, in follow order.
func (s *UserService) Following(ctx context.Context, email string) ([]domain.User, error) {
	me, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service.UserService.Following: %w", err)
	}
	users, err := s.users.ListByEmails(ctx, me.Following)
	if err != nil {
		return nil, fmt.Errorf("service.UserService.Following: %w", err)
	}
	return users, nil
}

// Follow adds target to the caller's follow list. Following twice is a no-op.
func (s *UserService) Follow(ctx context.Context, email, target string) (domain.User, error) {
	target = normalizeEmail(target)
	if target == email {
		return domain.User{}, fmt.Errorf("%w: cannot follow yourself", domain.ErrValidation)
	}
	if _, err := s.users.GetByEmail(ctx, target); err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Follow: %w", err)
	}
	user, err := s.users.AddFollowing(ctx, email, target)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Follow: %w", err)
	}
	return user, nil
}

// Unfollow removes target from the caller's follow list.
func (s *UserService) Unfollow(ctx context.Context, email, target string) (domain.User, error) {
	user, err := s.users.RemoveFollowing(ctx, email, normalizeEmail(target))
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Unfollow: %w", err)
	}
	return user, nil
}

// Favorites returns the caller's favorited posts in the order they were added.
// Posts deleted since are skipped.
func (s *UserService) Favorites(ctx context.Context, email string) ([]domain.Post, error) {
	me, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service.UserService.Favorites: %w", err)
	}
	posts, err := s.posts.ListByIDs(ctx, me.Favorites)
	if err != nil {
		return nil, fmt.Errorf("service.UserService.Favorites: %w", err)
	}
	return posts, nil
}

// AddFavorite favorites an existing post. Favoriting twice is a no-op.
func (s *UserService) AddFavorite(ctx context.Context, email string, postID uuid.UUID) (domain.User, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.AddFavorite: %w", err)
	}
	user, err := s.users.AddFavorite(ctx, email, postID)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.AddFavorite: %w", err)
	}
	return user, nil
}

// RemoveFavorite un-favorites a post.
func (s *UserService) RemoveFavorite(ctx context.Context, email string, postID uuid.UUID) (domain.User, error) {
	user, err := s.users.RemoveFavorite(ctx, email, postID)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.RemoveFavorite: %w", err)
	}
	return user, nil
}
