package service_test

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/repo"
	"github.com/pkordes/map-collection/internal/service"
)

// Hand-written test doubles. Each method is a function field; set only the
// ones a test needs. An unset field panics, which flags an unexpected call.

type mockUserRepo struct {
	create          func(ctx context.Context, u domain.User) (domain.User, error)
	getByEmail      func(ctx context.Context, email string) (domain.User, error)
	findByName      func(ctx context.Context, name string) ([]domain.User, error)
	listByEmails    func(ctx context.Context, emails []string) ([]domain.User, error)
	updateProfile   func(ctx context.Context, email string, p domain.ProfileUpdate) (domain.User, error)
	setPhotoURL     func(ctx context.Context, email, url string) (domain.User, error)
	addFollowing    func(ctx context.Context, email, target string) (domain.User, error)
	removeFollowing func(ctx context.Context, email, target string) (domain.User, error)
	addFavorite     func(ctx context.Context, email string, id uuid.UUID) (domain.User, error)
	removeFavorite  func(ctx context.Context, email string, id uuid.UUID) (domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	return m.create(ctx, u)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return m.getByEmail(ctx, email)
}
func (m *mockUserRepo) FindByName(ctx context.Context, name string) ([]domain.User, error) {
	return m.findByName(ctx, name)
}
func (m *mockUserRepo) ListByEmails(ctx context.Context, emails []string) ([]domain.User, error) {
	return m.listByEmails(ctx, emails)
}
func (m *mockUserRepo) UpdateProfile(ctx context.Context, email string, p domain.ProfileUpdate) (domain.User, error) {
	return m.updateProfile(ctx, email, p)
}
func (m *mockUserRepo) SetPhotoURL(ctx context.Context, email, url string) (domain.User, error) {
	return m.setPhotoURL(ctx, email, url)
}
func (m *mockUserRepo) AddFollowing(ctx context.Context, email, target string) (domain.User, error) {
	return m.addFollowing(ctx, email, target)
}
func (m *mockUserRepo) RemoveFollowing(ctx context.Context, email, target string) (domain.User, error) {
	return m.removeFollowing(ctx, email, target)
}
func (m *mockUserRepo) AddFavorite(ctx context.Context, email string, id uuid.UUID) (domain.User, error) {
	return m.addFavorite(ctx, email, id)
}
func (m *mockUserRepo) RemoveFavorite(ctx context.Context, email string, id uuid.UUID) (domain.User, error) {
	return m.removeFavorite(ctx, email, id)
}

var _ repo.UserRepo = (*mockUserRepo)(nil)

type mockPostRepo struct {
	create           func(ctx context.Context, p domain.Post) (domain.Post, error)
	getByID          func(ctx context.Context, id uuid.UUID) (domain.Post, error)
	listByOwner      func(ctx context.Context, owner string) ([]domain.Post, error)
	listByOwnerPaged func(ctx context.Context, owner string, p domain.PaginationParams) ([]domain.Post, int64, error)
	getRecommended   func(ctx context.Context, owner string) (domain.Post, error)
	listRecent       func(ctx context.Context, limit int) ([]domain.Post, error)
	listByIDs        func(ctx context.Context, ids []uuid.UUID) ([]domain.Post, error)
	update           func(ctx context.Context, p domain.Post) (domain.Post, error)
	delete           func(ctx context.Context, id uuid.UUID) error
	addCollaborator  func(ctx context.Context, id uuid.UUID, email string) (domain.Post, error)
}

func (m *mockPostRepo) Create(ctx context.Context, p domain.Post) (domain.Post, error) {
	return m.create(ctx, p)
}
func (m *mockPostRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Post, error) {
	return m.getByID(ctx, id)
}
func (m *mockPostRepo) ListByOwner(ctx context.Context, owner string) ([]domain.Post, error) {
	return m.listByOwner(ctx, owner)
}
func (m *mockPostRepo) ListByOwnerPaged(ctx context.Context, owner string, p domain.PaginationParams) ([]domain.Post, int64, error) {
	return m.listByOwnerPaged(ctx, owner, p)
}
func (m *mockPostRepo) GetRecommended(ctx context.Context, owner string) (domain.Post, error) {
	return m.getRecommended(ctx, owner)
}
func (m *mockPostRepo) ListRecent(ctx context.Context, limit int) ([]domain.Post, error) {
	return m.listRecent(ctx, limit)
}
func (m *mockPostRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Post, error) {
	return m.listByIDs(ctx, ids)
}
func (m *mockPostRepo) Update(ctx context.Context, p domain.Post) (domain.Post, error) {
	return m.update(ctx, p)
}
func (m *mockPostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockPostRepo) AddCollaborator(ctx context.Context, id uuid.UUID, email string) (domain.Post, error) {
	return m.addCollaborator(ctx, id, email)
}

var _ repo.PostRepo = (*mockPostRepo)(nil)

type mockSpotRepo struct {
	create       func(ctx context.Context, s domain.Spot) (domain.Spot, error)
	getByID      func(ctx context.Context, postID, spotID uuid.UUID) (domain.Spot, error)
	listByPostID func(ctx context.Context, postID uuid.UUID) ([]domain.Spot, error)
	update       func(ctx context.Context, s domain.Spot) (domain.Spot, error)
	delete       func(ctx context.Context, postID, spotID uuid.UUID) error
	setPhotoURL  func(ctx context.Context, postID, spotID uuid.UUID, url string) (domain.Spot, error)
}

func (m *mockSpotRepo) Create(ctx context.Context, s domain.Spot) (domain.Spot, error) {
	return m.create(ctx, s)
}
func (m *mockSpotRepo) GetByID(ctx context.Context, postID, spotID uuid.UUID) (domain.Spot, error) {
	return m.getByID(ctx, postID, spotID)
}
func (m *mockSpotRepo) ListByPostID(ctx context.Context, postID uuid.UUID) ([]domain.Spot, error) {
	return m.listByPostID(ctx, postID)
}
func (m *mockSpotRepo) Update(ctx context.Context, s domain.Spot) (domain.Spot, error) {
	return m.update(ctx, s)
}
func (m *mockSpotRepo) Delete(ctx context.Context, postID, spotID uuid.UUID) error {
	return m.delete(ctx, postID, spotID)
}
func (m *mockSpotRepo) SetPhotoURL(ctx context.Context, postID, spotID uuid.UUID, url string) (domain.Spot, error) {
	return m.setPhotoURL(ctx, postID, spotID, url)
}

var _ repo.SpotRepo = (*mockSpotRepo)(nil)

type mockTripRepo struct {
	create              func(ctx context.Context, t domain.Trip) (domain.Trip, error)
	getByID             func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listAccessiblePaged func(ctx context.Context, email string, p domain.PaginationParams) ([]domain.Trip, int64, error)
	update              func(ctx context.Context, t domain.Trip) (domain.Trip, error)
	delete              func(ctx context.Context, id uuid.UUID) error
	addCollaborator     func(ctx context.Context, id uuid.UUID, email string) (domain.Trip, error)
}

func (m *mockTripRepo) Create(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, t)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) ListAccessiblePaged(ctx context.Context, email string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listAccessiblePaged(ctx, email, p)
}
func (m *mockTripRepo) Update(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.update(ctx, t)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockTripRepo) AddCollaborator(ctx context.Context, id uuid.UUID, email string) (domain.Trip, error) {
	return m.addCollaborator(ctx, id, email)
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

type mockStopRepo struct {
	create         func(ctx context.Context, s domain.TripStop) (domain.TripStop, error)
	getByID        func(ctx context.Context, tripID uuid.UUID, day int, stopID uuid.UUID) (domain.TripStop, error)
	listByDay      func(ctx context.Context, tripID uuid.UUID, day int) ([]domain.TripStop, error)
	listByTrip     func(ctx context.Context, tripID uuid.UUID) ([]domain.TripStop, error)
	update         func(ctx context.Context, s domain.TripStop) (domain.TripStop, error)
	delete         func(ctx context.Context, tripID uuid.UUID, day int, stopID uuid.UUID) error
	setPhotoURL    func(ctx context.Context, tripID uuid.UUID, day int, stopID uuid.UUID, url string) (domain.TripStop, error)
	countBeyondDay func(ctx context.Context, tripID uuid.UUID, day int) (int, error)
}

func (m *mockStopRepo) Create(ctx context.Context, s domain.TripStop) (domain.TripStop, error) {
	return m.create(ctx, s)
}
func (m *mockStopRepo) GetByID(ctx context.Context, tripID uuid.UUID, day int, stopID uuid.UUID) (domain.TripStop, error) {
	return m.getByID(ctx, tripID, day, stopID)
}
func (m *mockStopRepo) ListByDay(ctx context.Context, tripID uuid.UUID, day int) ([]domain.TripStop, error) {
	return m.listByDay(ctx, tripID, day)
}
func (m *mockStopRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.TripStop, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockStopRepo) Update(ctx context.Context, s domain.TripStop) (domain.TripStop, error) {
	return m.update(ctx, s)
}
func (m *mockStopRepo) Delete(ctx context.Context, tripID uuid.UUID, day int, stopID uuid.UUID) error {
	return m.delete(ctx, tripID, day, stopID)
}
func (m *mockStopRepo) SetPhotoURL(ctx context.Context, tripID uuid.UUID, day int, stopID uuid.UUID, url string) (domain.TripStop, error) {
	return m.setPhotoURL(ctx, tripID, day, stopID, url)
}
func (m *mockStopRepo) CountBeyondDay(ctx context.Context, tripID uuid.UUID, day int) (int, error) {
	return m.countBeyondDay(ctx, tripID, day)
}

var _ repo.TripStopRepo = (*mockStopRepo)(nil)

// memBlobs is an in-memory BlobStore that records what was written and removed.
type memBlobs struct {
	saved          map[string][]byte
	deleted        []string
	deletedPrefix  []string
	deletePrefixFn func(prefix string) error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{saved: map[string][]byte{}}
}

func (b *memBlobs) Save(_ context.Context, key string, r io.Reader) (int64, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	b.saved[key] = buf.Bytes()
	return n, err
}
func (b *memBlobs) Delete(_ context.Context, key string) error {
	b.deleted = append(b.deleted, key)
	return nil
}
func (b *memBlobs) DeletePrefix(_ context.Context, prefix string) error {
	b.deletedPrefix = append(b.deletedPrefix, prefix)
	if b.deletePrefixFn != nil {
		return b.deletePrefixFn(prefix)
	}
	return nil
}
func (b *memBlobs) URL(key string) string { return "http://media.test/" + key }

var _ service.BlobStore = (*memBlobs)(nil)

// plainHasher "hashes" by prefixing, so tests stay fast and deterministic.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }
func (plainHasher) Compare(h, p string) (bool, error) {
	return h == "hashed:"+p, nil
}

type fixedTokens struct{ expires time.Time }

func (f fixedTokens) Issue(email string) (string, time.Time, error) {
	return "token-for-" + email, f.expires, nil
}

type mockAsker struct {
	ask func(ctx context.Context, prompt string) (string, error)
}

func (m *mockAsker) Ask(ctx context.Context, prompt string) (string, error) {
	return m.ask(ctx, prompt)
}
