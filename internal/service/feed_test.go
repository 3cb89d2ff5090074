package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/ranking"
	"github.com/pkordes/map-collection/internal/service"
)

func feedPosts() []domain.Post {
	now := time.Now()
	return []domain.Post{
		{ID: uuid.New(), OwnerEmail: "carol@example.com", MapName: "Ramen crawl", MapType: "美食", LikeCount: 50, CreatedAt: now},
		{ID: uuid.New(), OwnerEmail: bob, MapName: "Hiking", MapType: "山", LikeCount: 0, CreatedAt: now},
		{ID: uuid.New(), OwnerEmail: "dan@example.com", MapName: "Latte地圖", MapType: "咖啡", LikeCount: 10, CreatedAt: now},
	}
}

func TestFeedService_Recommend_Personalised(t *testing.T) {
	posts := feedPosts()
	users := &mockUserRepo{getByEmail: func(context.Context, string) (domain.User, error) {
		return domain.User{Email: amy, UserLabel: "咖啡, 夜景", Following: []string{bob}}, nil
	}}
	postRepo := &mockPostRepo{listRecent: func(_ context.Context, limit int) ([]domain.Post, error) {
		assert.Equal(t, ranking.RecentWindow, limit)
		return posts, nil
	}}
	svc := service.NewFeedService(users, postRepo)

	items, err := svc.Recommend(context.Background(), amy)

	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Hiking", items[0].Post.MapName, "followed owner wins")
	assert.Equal(t, "Latte地圖", items[1].Post.MapName, "label match beats likes")
	assert.Equal(t, "Ramen crawl", items[2].Post.MapName)
	assert.Greater(t, items[0].Score, items[1].Score)
}

func TestFeedService_Recommend_Anonymous(t *testing.T) {
	posts := feedPosts()
	postRepo := &mockPostRepo{listRecent: func(context.Context, int) ([]domain.Post, error) { return posts, nil }}
	svc := service.NewFeedService(&mockUserRepo{}, postRepo)

	items, err := svc.Recommend(context.Background(), "")

	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Ramen crawl", items[0].Post.MapName, "likes decide without a profile")
}

func TestFeedService_Recommend_ProfileFailureFallsBack(t *testing.T) {
	posts := feedPosts()
	users := &mockUserRepo{getByEmail: func(context.Context, string) (domain.User, error) {
		return domain.User{}, errors.New("timeout")
	}}
	postRepo := &mockPostRepo{listRecent: func(context.Context, int) ([]domain.Post, error) { return posts, nil }}
	svc := service.NewFeedService(users, postRepo)

	items, err := svc.Recommend(context.Background(), amy)

	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Ramen crawl", items[0].Post.MapName)
}

func TestFeedService_Recommend_PostsFailureIsEmpty(t *testing.T) {
	postRepo := &mockPostRepo{listRecent: func(context.Context, int) ([]domain.Post, error) {
		return nil, errors.New("connection refused")
	}}
	svc := service.NewFeedService(&mockUserRepo{}, postRepo)

	items, err := svc.Recommend(context.Background(), "")

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestFeedService_Search(t *testing.T) {
	posts := feedPosts()
	postRepo := &mockPostRepo{listRecent: func(context.Context, int) ([]domain.Post, error) { return posts, nil }}
	svc := service.NewFeedService(&mockUserRepo{}, postRepo)

	items, err := svc.Search(context.Background(), " 咖啡 ")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, posts[2].ID, items[0].Post.ID)
}

func TestFeedService_Search_BlankQuery(t *testing.T) {
	svc := service.NewFeedService(&mockUserRepo{}, &mockPostRepo{})

	items, err := svc.Search(context.Background(), "   ")

	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFeedService_Search_Failure(t *testing.T) {
	postRepo := &mockPostRepo{listRecent: func(context.Context, int) ([]domain.Post, error) {
		return nil, errors.New("boom")
	}}
	svc := service.NewFeedService(&mockUserRepo{}, postRepo)

	_, err := svc.Search(context.Background(), "ramen")

	assert.Error(t, err)
}
