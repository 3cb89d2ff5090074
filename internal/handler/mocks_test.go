package handler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	json "github.com/goccy/go-json"

	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/handler"
	"github.com/pkordes/map-collection/internal/service"
)

// Test doubles for the handler's service interfaces. Each method is a
// function field; set only the ones your test needs.

type mockUsers struct {
	register       func(ctx context.Context, in service.RegisterInput) (domain.User, error)
	login          func(ctx context.Context, email, password string) (service.Session, error)
	me             func(ctx context.Context, email string) (domain.User, error)
	updateProfile  func(ctx context.Context, email string, p domain.ProfileUpdate) (domain.User, error)
	setPhoto       func(ctx context.Context, email string, r io.Reader) (domain.User, error)
	findByName     func(ctx context.Context, name string) ([]domain.User, error)
	publicProfile  func(ctx context.Context, email string) (domain.User, error)
	postsByOwner   func(ctx context.Context, email string, p domain.PaginationParams) (service.PostPage, error)
	following      func(ctx context.Context, email string) ([]domain.User, error)
	follow         func(ctx context.Context, email, target string) (domain.User, error)
	unfollow       func(ctx context.Context, email, target string) (domain.User, error)
	favorites      func(ctx context.Context, email string) ([]domain.Post, error)
	addFavorite    func(ctx context.Context, email string, id uuid.UUID) (domain.User, error)
	removeFavorite func(ctx context.Context, email string, id uuid.UUID) (domain.User, error)
}

func (m *mockUsers) Register(ctx context.Context, in service.RegisterInput) (domain.User, error) {
	return m.register(ctx, in)
}
func (m *mockUsers) Login(ctx context.Context, email, password string) (service.Session, error) {
	return m.login(ctx, email, password)
}
func (m *mockUsers) Me(ctx context.Context, email string) (domain.User, error) {
	return m.me(ctx, email)
}
func (m *mockUsers) UpdateProfile(ctx context.Context, email string, p domain.ProfileUpdate) (domain.User, error) {
	return m.updateProfile(ctx, email, p)
}
func (m *mockUsers) SetPhoto(ctx context.Context, email string, r io.Reader) (domain.User, error) {
	return m.setPhoto(ctx, email, r)
}
func (m *mockUsers) FindByName(ctx context.Context, name string) ([]domain.User, error) {
	return m.findByName(ctx, name)
}
func (m *mockUsers) PublicProfile(ctx context.Context, email string) (domain.User, error) {
	return m.publicProfile(ctx, email)
}
func (m *mockUsers) PostsByOwner(ctx context.Context, email string, p domain.PaginationParams) (service.PostPage, error) {
	return m.postsByOwner(ctx, email, p)
}
func (m *mockUsers) Following(ctx context.Context, email string) ([]domain.User, error) {
	return m.following(ctx, email)
}
func (m *mockUsers) Follow(ctx context.Context, email, target string) (domain.User, error) {
	return m.follow(ctx, email, target)
}
func (m *mockUsers) Unfollow(ctx context.Context, email, target string) (domain.User, error) {
	return m.unfollow(ctx, email, target)
}
func (m *mockUsers) Favorites(ctx context.Context, email string) ([]domain.Post, error) {
	return m.favorites(ctx, email)
}
func (m *mockUsers) AddFavorite(ctx context.Context, email string, id uuid.UUID) (domain.User, error) {
	return m.addFavorite(ctx, email, id)
}
func (m *mockUsers) RemoveFavorite(ctx context.Context, email string, id uuid.UUID) (domain.User, error) {
	return m.removeFavorite(ctx, email, id)
}

var _ handler.UserServicer = (*mockUsers)(nil)

type mockPosts struct {
	create          func(ctx context.Context, owner string, in service.PostInput) (domain.Post, error)
	get             func(ctx context.Context, id uuid.UUID) (domain.Post, error)
	listMine        func(ctx context.Context, owner string) ([]domain.Post, error)
	recommended     func(ctx context.Context, owner string) (domain.Post, error)
	update          func(ctx context.Context, caller string, id uuid.UUID, in service.PostInput) (domain.Post, error)
	delete          func(ctx context.Context, caller string, id uuid.UUID) error
	addCollaborator func(ctx context.Context, caller string, id uuid.UUID, email string) (domain.Post, error)
}

func (m *mockPosts) Create(ctx context.Context, owner string, in service.PostInput) (domain.Post, error) {
	return m.create(ctx, owner, in)
}
func (m *mockPosts) Get(ctx context.Context, id uuid.UUID) (domain.Post, error) {
	return m.get(ctx, id)
}
func (m *mockPosts) ListMine(ctx context.Context, owner string) ([]domain.Post, error) {
	return m.listMine(ctx, owner)
}
func (m *mockPosts) Recommended(ctx context.Context, owner string) (domain.Post, error) {
	return m.recommended(ctx, owner)
}
func (m *mockPosts) Update(ctx context.Context, caller string, id uuid.UUID, in service.PostInput) (domain.Post, error) {
	return m.update(ctx, caller, id, in)
}
func (m *mockPosts) Delete(ctx context.Context, caller string, id uuid.UUID) error {
	return m.delete(ctx, caller, id)
}
func (m *mockPosts) AddCollaborator(ctx context.Context, caller string, id uuid.UUID, email string) (domain.Post, error) {
	return m.addCollaborator(ctx, caller, id, email)
}

var _ handler.PostServicer = (*mockPosts)(nil)

type mockSpots struct {
	create     func(ctx context.Context, caller string, postID uuid.UUID, in service.SpotInput) (domain.Spot, error)
	list       func(ctx context.Context, postID uuid.UUID) ([]domain.Spot, error)
	get        func(ctx context.Context, postID, spotID uuid.UUID) (domain.Spot, error)
	update     func(ctx context.Context, caller string, postID, spotID uuid.UUID, in service.SpotInput) (domain.Spot, error)
	delete     func(ctx context.Context, caller string, postID, spotID uuid.UUID) error
	setPhoto   func(ctx context.Context, caller string, postID, spotID uuid.UUID, r io.Reader) (domain.Spot, error)
	copyToTrip func(ctx context.Context, caller string, postID, spotID, tripID uuid.UUID, day int) (domain.TripStop, error)
}

func (m *mockSpots) Create(ctx context.Context, caller string, postID uuid.UUID, in service.SpotInput) (domain.Spot, error) {
	return m.create(ctx, caller, postID, in)
}
func (m *mockSpots) List(ctx context.Context, postID uuid.UUID) ([]domain.Spot, error) {
	return m.list(ctx, postID)
}
func (m *mockSpots) Get(ctx context.Context, postID, spotID uuid.UUID) (domain.Spot, error) {
	return m.get(ctx, postID, spotID)
}
func (m *mockSpots) Update(ctx context.Context, caller string, postID, spotID uuid.UUID, in service.SpotInput) (domain.Spot, error) {
	return m.update(ctx, caller, postID, spotID, in)
}
func (m *mockSpots) Delete(ctx context.Context, caller string, postID, spotID uuid.UUID) error {
	return m.delete(ctx, caller, postID, spotID)
}
func (m *mockSpots) SetPhoto(ctx context.Context, caller string, postID, spotID uuid.UUID, r io.Reader) (domain.Spot, error) {
	return m.setPhoto(ctx, caller, postID, spotID, r)
}
func (m *mockSpots) CopyToTrip(ctx context.Context, caller string, postID, spotID, tripID uuid.UUID, day int) (domain.TripStop, error) {
	return m.copyToTrip(ctx, caller, postID, spotID, tripID, day)
}

var _ handler.SpotServicer = (*mockSpots)(nil)

type mockTrips struct {
	create          func(ctx context.Context, owner string, in service.TripInput) (domain.Trip, error)
	get             func(ctx context.Context, caller string, id uuid.UUID) (domain.Trip, error)
	list            func(ctx context.Context, caller string, p domain.PaginationParams) (service.TripPage, error)
	update          func(ctx context.Context, caller string, id uuid.UUID, in service.TripInput) (domain.Trip, error)
	delete          func(ctx context.Context, caller string, id uuid.UUID) error
	addCollaborator func(ctx context.Context, caller string, id uuid.UUID, email string) (domain.Trip, error)
}

func (m *mockTrips) Create(ctx context.Context, owner string, in service.TripInput) (domain.Trip, error) {
	return m.create(ctx, owner, in)
}
func (m *mockTrips) Get(ctx context.Context, caller string, id uuid.UUID) (domain.Trip, error) {
	return m.get(ctx, caller, id)
}
func (m *mockTrips) List(ctx context.Context, caller string, p domain.PaginationParams) (service.TripPage, error) {
	return m.list(ctx, caller, p)
}
func (m *mockTrips) Update(ctx context.Context, caller string, id uuid.UUID, in service.TripInput) (domain.Trip, error) {
	return m.update(ctx, caller, id, in)
}
func (m *mockTrips) Delete(ctx context.Context, caller string, id uuid.UUID) error {
	return m.delete(ctx, caller, id)
}
func (m *mockTrips) AddCollaborator(ctx context.Context, caller string, id uuid.UUID, email string) (domain.Trip, error) {
	return m.addCollaborator(ctx, caller, id, email)
}

var _ handler.TripServicer = (*mockTrips)(nil)

type mockStops struct {
	create   func(ctx context.Context, caller string, tripID uuid.UUID, day int, in service.StopInput) (domain.TripStop, error)
	list     func(ctx context.Context, caller string, tripID uuid.UUID, day int) ([]domain.TripStop, error)
	get      func(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID) (domain.TripStop, error)
	update   func(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID, in service.StopInput) (domain.TripStop, error)
	delete   func(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID) error
	setPhoto func(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID, r io.Reader) (domain.TripStop, error)
}

func (m *mockStops) Create(ctx context.Context, caller string, tripID uuid.UUID, day int, in service.StopInput) (domain.TripStop, error) {
	return m.create(ctx, caller, tripID, day, in)
}
func (m *mockStops) List(ctx context.Context, caller string, tripID uuid.UUID, day int) ([]domain.TripStop, error) {
	return m.list(ctx, caller, tripID, day)
}
func (m *mockStops) Get(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID) (domain.TripStop, error) {
	return m.get(ctx, caller, tripID, day, stopID)
}
func (m *mockStops) Update(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID, in service.StopInput) (domain.TripStop, error) {
	return m.update(ctx, caller, tripID, day, stopID, in)
}
func (m *mockStops) Delete(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID) error {
	return m.delete(ctx, caller, tripID, day, stopID)
}
func (m *mockStops) SetPhoto(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID, r io.Reader) (domain.TripStop, error) {
	return m.setPhoto(ctx, caller, tripID, day, stopID, r)
}

var _ handler.StopServicer = (*mockStops)(nil)

type mockExport struct {
	export func(ctx context.Context, caller string, tripID uuid.UUID) ([]domain.ItineraryRow, error)
}

func (m *mockExport) Export(ctx context.Context, caller string, tripID uuid.UUID) ([]domain.ItineraryRow, error) {
	return m.export(ctx, caller, tripID)
}

type mockFeed struct {
	recommend func(ctx context.Context, caller string) ([]service.FeedItem, error)
	search    func(ctx context.Context, query string) ([]service.FeedItem, error)
}

func (m *mockFeed) Recommend(ctx context.Context, caller string) ([]service.FeedItem, error) {
	return m.recommend(ctx, caller)
}
func (m *mockFeed) Search(ctx context.Context, query string) ([]service.FeedItem, error) {
	return m.search(ctx, query)
}

type mockAssistant struct {
	ask         func(ctx context.Context, question string) (string, error)
	stopInsight func(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID, mode string) (string, error)
}

func (m *mockAssistant) Ask(ctx context.Context, question string) (string, error) {
	return m.ask(ctx, question)
}
func (m *mockAssistant) StopInsight(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID, mode string) (string, error) {
	return m.stopInsight(ctx, caller, tripID, day, stopID, mode)
}

// stubTokens accepts "token-<name>" and returns "<name>@example.com".
type stubTokens struct{}

func (stubTokens) Verify(token string) (string, error) {
	name, ok := strings.CutPrefix(token, "token-")
	if !ok || name == "" {
		return "", errors.New("invalid token")
	}
	return name + "@example.com", nil
}

const (
	amy = "amy@example.com"
	bob = "bob@example.com"
)

// ---- helpers ---------------------------------------------------------------

// newRouter builds the production router around the given services.
// Unset services are filled with empty mocks, whose methods panic if called.
func newRouter(svc handler.Services) http.Handler {
	return newRouterWithOptions(svc, handler.Options{})
}

func newRouterWithOptions(svc handler.Services, opts handler.Options) http.Handler {
	if svc.Users == nil {
		svc.Users = &mockUsers{}
	}
	if svc.Posts == nil {
		svc.Posts = &mockPosts{}
	}
	if svc.Spots == nil {
		svc.Spots = &mockSpots{}
	}
	if svc.Trips == nil {
		svc.Trips = &mockTrips{}
	}
	if svc.Stops == nil {
		svc.Stops = &mockStops{}
	}
	if svc.Export == nil {
		svc.Export = &mockExport{}
	}
	if svc.Feed == nil {
		svc.Feed = &mockFeed{}
	}
	if svc.Assistant == nil {
		svc.Assistant = &mockAssistant{}
	}
	svc.Tokens = stubTokens{}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return handler.NewServer(svc, opts).Routes()
}

// do sends a request as caller ("" for anonymous) and returns the recorder.
func do(t *testing.T, h http.Handler, method, target, caller string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != "" {
		name, _, _ := strings.Cut(caller, "@")
		req.Header.Set("Authorization", "Bearer token-"+name)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return strings.NewReader(string(b))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[handler.ErrorResponse](t, rec).Error.Code
}

// doWithHeader sends a request with a raw Authorization header.
func doWithHeader(t *testing.T, h http.Handler, method, target, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Authorization", authorization)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// doWithOrigin sends an anonymous GET carrying an Origin header.
func doWithOrigin(t *testing.T, h http.Handler, target, origin string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Origin", origin)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
