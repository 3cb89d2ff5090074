package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/repo"
	"github.com/pkordes/map-collection/testutil"
)

// repos bundles every repo over a single transaction, so parents and children
// can be created in the same test and rolled back together.
type repos struct {
	users repo.UserRepo
	posts repo.PostRepo
	spots repo.SpotRepo
	trips repo.TripRepo
	stops repo.TripStopRepo
}

// newTestRepos returns all repos backed by one transaction on the test
// database. The transaction is rolled back when the test finishes.
func newTestRepos(t *testing.T) repos {
	t.Helper()
	tx := testutil.NewTx(t)

	return repos{
		users: repo.NewUserRepo(tx),
		posts: repo.NewPostRepo(tx),
		spots: repo.NewSpotRepo(tx),
		trips: repo.NewTripRepo(tx),
		stops: repo.NewTripStopRepo(tx),
	}
}

// mustCreateUser inserts a user with the given email and default profile.
func mustCreateUser(t *testing.T, r repo.UserRepo, email string) domain.User {
	t.Helper()
	u, err := r.Create(context.Background(), domain.User{
		Email:        email,
		PasswordHash: "hash",
		UserName:     domain.DefaultUserName,
		UserLabel:    domain.DefaultUserLabel,
		Introduction: domain.DefaultIntroduction,
		FirstLogin:   true,
	})
	require.NoError(t, err, "create user %s", email)
	return u
}

// mustCreatePost inserts a non-recommended post for owner.
func mustCreatePost(t *testing.T, r repo.PostRepo, owner, name string) domain.Post {
	t.Helper()
	p, err := r.Create(context.Background(), domain.Post{
		OwnerEmail: owner,
		MapName:    name,
		MapType:    "咖啡廳",
	})
	require.NoError(t, err, "create post %s", name)
	return p
}
