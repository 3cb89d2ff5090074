package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/metrics"
	"github.com/pkordes/map-collection/internal/ranking"
	"github.com/pkordes/map-collection/internal/repo"
)

// FeedItem is a ranked post.
type FeedItem struct {
	Post          domain.Post
	Score         int
	PositionBonus int
}

// FeedService ranks recent posts for the recommendation feed and search.
type FeedService struct {
	users repo.UserRepo
	posts repo.PostRepo
	now   func() time.Time
}

// NewFeedService constructs a FeedService.
func NewFeedService(users repo.UserRepo, posts repo.PostRepo) *FeedService {
	return &FeedService{users: users, posts: posts, now: time.Now}
}

// Recommend ranks the most recent posts for caller. An empty caller, or one
// whose profile cannot be loaded, gets the unpersonalised ranking (likes and
// recency only). If the posts cannot be loaded the feed is empty.
func (s *FeedService) Recommend(ctx context.Context, caller string) ([]FeedItem, error) {
	var (
		g       errgroup.Group
		profile ranking.Profile
		posts   []domain.Post
	)

	if caller != "" {
		g.Go(func() error {
			user, err := s.users.GetByEmail(ctx, caller)
			if err != nil {
				slog.WarnContext(ctx, "feed without personalisation", "email", caller, "error", err)
				return nil
			}
			profile = ranking.Profile{
				Labels:    ranking.ParseLabels(user.UserLabel),
				Following: user.Following,
			}
			return nil
		})
	}
	g.Go(func() error {
		var err error
		posts, err = s.posts.ListRecent(ctx, ranking.RecentWindow)
		return err
	})

	if err := g.Wait(); err != nil {
		slog.WarnContext(ctx, "recommendation feed unavailable", "error", err)
		return []FeedItem{}, nil
	}

	personalised := len(profile.Labels) > 0 || len(profile.Following) > 0
	metrics.RecordFeed("recommend", personalised, len(posts))

	results := ranking.Recommend(toCandidates(posts), profile, s.now())
	return toFeedItems(results, posts), nil
}

// Search returns the recent posts matching query, best match first.
// A blank query returns no results without touching the database.
func (s *FeedService) Search(ctx context.Context, query string) ([]FeedItem, error) {
	if strings.TrimSpace(query) == "" {
		return []FeedItem{}, nil
	}

	posts, err := s.posts.ListRecent(ctx, ranking.RecentWindow)
	if err != nil {
		return nil, fmt.Errorf("service.FeedService.Search: %w", err)
	}
	metrics.RecordFeed("search", false, len(posts))

	return toFeedItems(ranking.Search(toCandidates(posts), query), posts), nil
}

func toCandidates(posts []domain.Post) []ranking.Candidate {
	out := make([]ranking.Candidate, 0, len(posts))
	for _, p := range posts {
		out = append(out, ranking.Candidate{
			ID:        p.ID,
			Owner:     p.OwnerEmail,
			Name:      p.MapName,
			Category:  p.MapType,
			CreatedAt: p.CreatedAt,
			Likes:     p.LikeCount,
		})
	}
	return out
}

func toFeedItems(results []ranking.Result, posts []domain.Post) []FeedItem {
	byID := make(map[uuid.UUID]domain.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	items := make([]FeedItem, 0, len(results))
	for _, r := range results {
		items = append(items, FeedItem{Post: byID[r.ID], Score: r.Score, PositionBonus: r.PositionBonus})
	}
	return items
}
