// Package handler implements the HTTP handlers for the map collection API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (user.go, post.go, trip.go, etc.) but share the same Server struct so
// they can access its dependencies. Routes wires them into a chi router.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/middleware"
	"github.com/pkordes/map-collection/internal/service"
)

// The service interfaces below are defined here, in the consumer package, so
// handler tests can inject function-field mocks without a database.

// UserServicer is the account, profile, follow and favorite API.
type UserServicer interface {
	Register(ctx context.Context, in service.RegisterInput) (domain.User, error)
	Login(ctx context.Context, email, password string) (service.Session, error)
	Me(ctx context.Context, email string) (domain.User, error)
	UpdateProfile(ctx context.Context, email string, p domain.ProfileUpdate) (domain.User, error)
	SetPhoto(ctx context.Context, email string, r io.Reader) (domain.User, error)
	FindByName(ctx context.Context, name string) ([]domain.User, error)
	PublicProfile(ctx context.Context, email string) (domain.User, error)
	PostsByOwner(ctx context.Context, email string, p domain.PaginationParams) (service.PostPage, error)
	Following(ctx context.Context, email string) ([]domain.User, error)
	Follow(ctx context.Context, email, target string) (domain.User, error)
	Unfollow(ctx context.Context, email, target string) (domain.User, error)
	Favorites(ctx context.Context, email string) ([]domain.Post, error)
	AddFavorite(ctx context.Context, email string, postID uuid.UUID) (domain.User, error)
	RemoveFavorite(ctx context.Context, email string, postID uuid.UUID) (domain.User, error)
}

// PostServicer is the map (post) API.
type PostServicer interface {
	Create(ctx context.Context, owner string, in service.PostInput) (domain.Post, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Post, error)
	ListMine(ctx context.Context, owner string) ([]domain.Post, error)
	Recommended(ctx context.Context, owner string) (domain.Post, error)
	Update(ctx context.Context, caller string, id uuid.UUID, in service.PostInput) (domain.Post, error)
	Delete(ctx context.Context, caller string, id uuid.UUID) error
	AddCollaborator(ctx context.Context, caller string, id uuid.UUID, email string) (domain.Post, error)
}

// SpotServicer is the API for the spots of a map.
type SpotServicer interface {
	Create(ctx context.Context, caller string, postID uuid.UUID, in service.SpotInput) (domain.Spot, error)
	List(ctx context.Context, postID uuid.UUID) ([]domain.Spot, error)
	Get(ctx context.Context, postID, spotID uuid.UUID) (domain.Spot, error)
	Update(ctx context.Context, caller string, postID, spotID uuid.UUID, in service.SpotInput) (domain.Spot, error)
	Delete(ctx context.Context, caller string, postID, spotID uuid.UUID) error
	SetPhoto(ctx context.Context, caller string, postID, spotID uuid.UUID, r io.Reader) (domain.Spot, error)
	CopyToTrip(ctx context.Context, caller string, postID, spotID, tripID uuid.UUID, day int) (domain.TripStop, error)
}

// TripServicer is the trip API.
type TripServicer interface {
	Create(ctx context.Context, owner string, in service.TripInput) (domain.Trip, error)
	Get(ctx context.Context, caller string, id uuid.UUID) (domain.Trip, error)
	List(ctx context.Context, caller string, p domain.PaginationParams) (service.TripPage, error)
	Update(ctx context.Context, caller string, id uuid.UUID, in service.TripInput) (domain.Trip, error)
	Delete(ctx context.Context, caller string, id uuid.UUID) error
	AddCollaborator(ctx context.Context, caller string, id uuid.UUID, email string) (domain.Trip, error)
}

// StopServicer is the API for the stops of a trip day.
type StopServicer interface {
	Create(ctx context.Context, caller string, tripID uuid.UUID, day int, in service.StopInput) (domain.TripStop, error)
	List(ctx context.Context, caller string, tripID uuid.UUID, day int) ([]domain.TripStop, error)
	Get(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID) (domain.TripStop, error)
	Update(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID, in service.StopInput) (domain.TripStop, error)
	Delete(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID) error
	SetPhoto(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID, r io.Reader) (domain.TripStop, error)
}

// ExportServicer flattens a trip into itinerary rows.
type ExportServicer interface {
	Export(ctx context.Context, caller string, tripID uuid.UUID) ([]domain.ItineraryRow, error)
}

// FeedServicer ranks posts for the feed and search.
type FeedServicer interface {
	Recommend(ctx context.Context, caller string) ([]service.FeedItem, error)
	Search(ctx context.Context, query string) ([]service.FeedItem, error)
}

// AssistantServicer answers travel questions.
type AssistantServicer interface {
	Ask(ctx context.Context, question string) (string, error)
	StopInsight(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID, mode string) (string, error)
}

// MediaStore reads stored photos.
type MediaStore interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Services bundles the dependencies of Server.
type Services struct {
	Users     UserServicer
	Posts     PostServicer
	Spots     SpotServicer
	Trips     TripServicer
	Stops     StopServicer
	Export    ExportServicer
	Feed      FeedServicer
	Assistant AssistantServicer
	Media     MediaStore
	Tokens    middleware.TokenVerifier
}

// Options configures the router built by Routes.
type Options struct {
	Logger             *slog.Logger
	CORSOrigins        []string
	MaxBodyBytes       int64
	RateLimitPerMinute int
	// Ping reports database health for /healthz. Nil skips the check.
	Ping func(ctx context.Context) error
}

// Server holds every service the HTTP handlers call.
type Server struct {
	users     UserServicer
	posts     PostServicer
	spots     SpotServicer
	trips     TripServicer
	stops     StopServicer
	export    ExportServicer
	feed      FeedServicer
	assistant AssistantServicer
	media     MediaStore
	tokens    middleware.TokenVerifier
	opts      Options
	log       *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 10 << 20
	}
	return &Server{
		users:     svc.Users,
		posts:     svc.Posts,
		spots:     svc.Spots,
		trips:     svc.Trips,
		stops:     svc.Stops,
		export:    svc.Export,
		feed:      svc.Feed,
		assistant: svc.Assistant,
		media:     svc.Media,
		tokens:    svc.Tokens,
		opts:      opts,
		log:       log,
	}
}

// Routes returns the API router.
//
// Middleware is applied in order: RequestID → RealIP → identity tracking →
// SlogLogger → Recoverer → metrics → CORS → body limit. Auth is applied per
// route group: public reads identify the caller when a token is present,
// everything that writes or is personal requires one.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.TrackIdentity)
	r.Use(middleware.NewSlogLogger(s.log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewMetrics())
	r.Use(middleware.NewCORSHandler(s.opts.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(s.opts.MaxBodyBytes))

	limited := middleware.NewRateLimiter(s.opts.RateLimitPerMinute)

	// --- ops ----------------------------------------------------------------
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/media/*", s.GetMedia)

	// --- accounts -----------------------------------------------------------
	r.With(limited).Post("/auth/register", s.Register)
	r.With(limited).Post("/auth/login", s.Login)

	// --- public reads -------------------------------------------------------
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(s.tokens))

		r.Get("/feed/recommended", s.GetRecommendedFeed)
		r.Get("/search", s.Search)
		r.Get("/users/{email}", s.GetUserProfile)
		r.Get("/users/{email}/posts", s.ListUserPosts)
		r.Get("/posts/{postId}", s.GetPost)
		r.Get("/posts/{postId}/spots", s.ListSpots)
		r.Get("/posts/{postId}/spots/{spotId}", s.GetSpot)
	})

	// --- authenticated ------------------------------------------------------
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.tokens))

		r.Get("/me", s.GetMe)
		r.Put("/me", s.UpdateMe)
		r.Put("/me/photo", s.SetMyPhoto)
		r.Get("/me/posts", s.ListMyPosts)
		r.Get("/me/recommended", s.GetMyRecommended)
		r.Get("/me/following", s.ListFollowing)
		r.Put("/me/following/{email}", s.Follow)
		r.Delete("/me/following/{email}", s.Unfollow)
		r.Get("/me/favorites", s.ListFavorites)
		r.Put("/me/favorites/{postId}", s.AddFavorite)
		r.Delete("/me/favorites/{postId}", s.RemoveFavorite)
		r.Get("/users", s.FindUsers)

		r.Post("/posts", s.CreatePost)
		r.Put("/posts/{postId}", s.UpdatePost)
		r.Delete("/posts/{postId}", s.DeletePost)
		r.Post("/posts/{postId}/collaborators", s.AddPostCollaborator)

		r.Post("/posts/{postId}/spots", s.CreateSpot)
		r.Put("/posts/{postId}/spots/{spotId}", s.UpdateSpot)
		r.Delete("/posts/{postId}/spots/{spotId}", s.DeleteSpot)
		r.Put("/posts/{postId}/spots/{spotId}/photo", s.SetSpotPhoto)
		r.Post("/posts/{postId}/spots/{spotId}/copy-to-trip", s.CopySpotToTrip)

		r.Post("/trips", s.CreateTrip)
		r.Get("/trips", s.ListTrips)
		r.Get("/trips/{tripId}", s.GetTrip)
		r.Put("/trips/{tripId}", s.UpdateTrip)
		r.Delete("/trips/{tripId}", s.DeleteTrip)
		r.Post("/trips/{tripId}/collaborators", s.AddTripCollaborator)
		r.Get("/trips/{tripId}/export", s.ExportTrip)

		r.Route("/trips/{tripId}/days/{day}/stops", func(r chi.Router) {
			r.Post("/", s.CreateStop)
			r.Get("/", s.ListStops)
			r.Get("/{stopId}", s.GetStop)
			r.Put("/{stopId}", s.UpdateStop)
			r.Delete("/{stopId}", s.DeleteStop)
			r.Put("/{stopId}/photo", s.SetStopPhoto)
			r.Get("/{stopId}/insight", s.GetStopInsight)
		})

		r.With(limited).Post("/assistant/ask", s.Ask)
	})

	return r
}
