package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/service"
)

func postRepoWith(post domain.Post) *mockPostRepo {
	return &mockPostRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Post, error) {
			if id != post.ID {
				return domain.Post{}, domain.ErrNotFound
			}
			return post, nil
		},
		update: func(_ context.Context, p domain.Post) (domain.Post, error) { return p, nil },
	}
}

func amysPost(collaborators ...string) domain.Post {
	return domain.Post{ID: uuid.New(), OwnerEmail: amy, MapName: "Cafes", MapType: "咖啡", Collaborators: collaborators}
}

func TestPostService_Create(t *testing.T) {
	var saved domain.Post
	posts := &mockPostRepo{create: func(_ context.Context, p domain.Post) (domain.Post, error) {
		saved = p
		p.ID = uuid.New()
		return p, nil
	}}
	svc := service.NewPostService(posts, nil, newMemBlobs())

	got, err := svc.Create(context.Background(), amy, service.PostInput{MapName: " Cafes ", MapType: "咖啡", Recommended: true})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, "Cafes", saved.MapName)
	assert.Equal(t, amy, saved.OwnerEmail)
	assert.True(t, saved.Recommended)
}

func TestPostService_Create_Validation(t *testing.T) {
	svc := service.NewPostService(&mockPostRepo{}, nil, newMemBlobs())
	ctx := context.Background()

	_, err := svc.Create(ctx, amy, service.PostInput{MapType: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(ctx, amy, service.PostInput{MapName: "x", MapType: " "})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPostService_Create_SecondRecommended(t *testing.T) {
	posts := &mockPostRepo{create: func(context.Context, domain.Post) (domain.Post, error) {
		return domain.Post{}, domain.ErrConflict
	}}
	svc := service.NewPostService(posts, nil, newMemBlobs())

	_, err := svc.Create(context.Background(), amy, service.PostInput{MapName: "a", MapType: "b", Recommended: true})

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestPostService_Update_Permissions(t *testing.T) {
	post := amysPost(bob)
	svc := service.NewPostService(postRepoWith(post), nil, newMemBlobs())
	ctx := context.Background()

	got, err := svc.Update(ctx, bob, post.ID, service.PostInput{MapName: "Night cafes", MapType: "咖啡"})
	require.NoError(t, err, "collaborators may rename")
	assert.Equal(t, "Night cafes", got.MapName)

	_, err = svc.Update(ctx, bob, post.ID, service.PostInput{MapName: "x", MapType: "y", Recommended: true})
	assert.ErrorIs(t, err, domain.ErrForbidden, "only the owner changes the recommended flag")

	_, err = svc.Update(ctx, "eve@example.com", post.ID, service.PostInput{MapName: "x", MapType: "y"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err = svc.Update(ctx, amy, post.ID, service.PostInput{MapName: "x", MapType: "y", Recommended: true})
	require.NoError(t, err)
	assert.True(t, got.Recommended)
}

func TestPostService_Delete(t *testing.T) {
	post := amysPost(bob)
	posts := postRepoWith(post)
	deleted := false
	posts.delete = func(context.Context, uuid.UUID) error {
		deleted = true
		return nil
	}
	blobs := newMemBlobs()
	svc := service.NewPostService(posts, nil, blobs)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, bob, post.ID), domain.ErrForbidden)
	assert.False(t, deleted)

	require.NoError(t, svc.Delete(ctx, amy, post.ID))
	assert.True(t, deleted)
	assert.Equal(t, []string{"posts/" + post.ID.String() + "/"}, blobs.deletedPrefix)

	assert.ErrorIs(t, svc.Delete(ctx, amy, uuid.New()), domain.ErrNotFound)
}

func TestPostService_AddCollaborator(t *testing.T) {
	post := amysPost()
	posts := postRepoWith(post)
	posts.addCollaborator = func(_ context.Context, _ uuid.UUID, email string) (domain.Post, error) {
		p := post
		p.Collaborators = []string{email}
		return p, nil
	}
	users := &mockUserRepo{getByEmail: func(_ context.Context, email string) (domain.User, error) {
		if email != bob {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{Email: bob}, nil
	}}
	svc := service.NewPostService(posts, users, newMemBlobs())
	ctx := context.Background()

	got, err := svc.AddCollaborator(ctx, amy, post.ID, "Bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{bob}, got.Collaborators)

	_, err = svc.AddCollaborator(ctx, bob, post.ID, "carol@example.com")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.AddCollaborator(ctx, amy, post.ID, amy)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AddCollaborator(ctx, amy, post.ID, "ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostService_Recommended_None(t *testing.T) {
	posts := &mockPostRepo{getRecommended: func(context.Context, string) (domain.Post, error) {
		return domain.Post{}, domain.ErrNotFound
	}}
	svc := service.NewPostService(posts, nil, newMemBlobs())

	_, err := svc.Recommended(context.Background(), amy)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
