package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/repo"
	"github.com/pkordes/map-collection/internal/storage"
)

// PostInput carries the editable fields of a post.
type PostInput struct {
	MapName     string
	MapType     string
	Recommended bool
}

func (in PostInput) normalize() (PostInput, error) {
	in.MapName = strings.TrimSpace(in.MapName)
	in.MapType = strings.TrimSpace(in.MapType)
	if in.MapName == "" {
		return in, fmt.Errorf("%w: map_name is required", domain.ErrValidation)
	}
	if in.MapType == "" {
		return in, fmt.Errorf("%w: map_type is required", domain.ErrValidation)
	}
	return in, nil
}

// PostService implements business logic for posts (maps).
type PostService struct {
	posts repo.PostRepo
	users repo.UserRepo
	blobs BlobStore
}

// NewPostService constructs a PostService.
func NewPostService(posts repo.PostRepo, users repo.UserRepo, blobs BlobStore) *PostService {
	return &PostService{posts: posts, users: users, blobs: blobs}
}

// Create validates and persists a new post owned by owner.
// A second recommended post for the same owner is domain.ErrConflict.
func (s *PostService) Create(ctx context.Context, owner string, in PostInput) (domain.Post, error) {
	in, err := in.normalize()
	if err != nil {
		return domain.Post{}, err
	}

	post, err := s.posts.Create(ctx, domain.Post{
		OwnerEmail:  owner,
		MapName:     in.MapName,
		MapType:     in.MapType,
		Recommended: in.Recommended,
	})
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.Create: %w", err)
	}
	return post, nil
}

// Get returns a single post. Posts are public.
func (s *PostService) Get(ctx context.Context, id uuid.UUID) (domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.Get: %w", err)
	}
	return post, nil
}

// ListMine returns every post owned by owner, newest first.
func (s *PostService) ListMine(ctx context.Context, owner string) ([]domain.Post, error) {
	posts, err := s.posts.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("service.PostService.ListMine: %w", err)
	}
	return posts, nil
}

// Recommended returns the owner's featured post, or domain.ErrNotFound.
func (s *PostService) Recommended(ctx context.Context, owner string) (domain.Post, error) {
	post, err := s.posts.GetRecommended(ctx, owner)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.Recommended: %w", err)
	}
	return post, nil
}

// Update changes a post's name, type and recommended flag. Owners and
// collaborators may edit; only the owner may change the recommended flag.
func (s *PostService) Update(ctx context.Context, caller string, id uuid.UUID, in PostInput) (domain.Post, error) {
	in, err := in.normalize()
	if err != nil {
		return domain.Post{}, err
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.Update: %w", err)
	}
	if !post.CanEdit(caller) {
		return domain.Post{}, fmt.Errorf("%w: only the owner or a collaborator can edit this map", domain.ErrForbidden)
	}
	if in.Recommended != post.Recommended && post.OwnerEmail != caller {
		return domain.Post{}, fmt.Errorf("%w: only the owner can change the recommended map", domain.ErrForbidden)
	}

	post.MapName = in.MapName
	post.MapType = in.MapType
	post.Recommended = in.Recommended

	updated, err := s.posts.Update(ctx, post)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a post, its spots and their stored photos. Owner only.
// Photo cleanup failures are logged; the post is gone either way.
func (s *PostService) Delete(ctx context.Context, caller string, id uuid.UUID) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.PostService.Delete: %w", err)
	}
	if post.OwnerEmail != caller {
		return fmt.Errorf("%w: only the owner can delete this map", domain.ErrForbidden)
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.PostService.Delete: %w", err)
	}
	if err := s.blobs.DeletePrefix(ctx, storage.PostPrefix(id)); err != nil {
		slog.WarnContext(ctx, "post photos not removed", "post_id", id, "error", err)
	}
	return nil
}

// AddCollaborator lets another registered user edit the post. Owner only.
func (s *PostService) AddCollaborator(ctx context.Context, caller string, id uuid.UUID, email string) (domain.Post, error) {
	email = normalizeEmail(email)
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.AddCollaborator: %w", err)
	}
	if post.OwnerEmail != caller {
		return domain.Post{}, fmt.Errorf("%w: only the owner can add collaborators", domain.ErrForbidden)
	}
	if email == post.OwnerEmail {
		return domain.Post{}, fmt.Errorf("%w: the owner is already an editor", domain.ErrValidation)
	}
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.AddCollaborator: %w", err)
	}

	updated, err := s.posts.AddCollaborator(ctx, id, email)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.AddCollaborator: %w", err)
	}
	return updated, nil
}
