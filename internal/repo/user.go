package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/map-collection/internal/domain"
)

// UserRepo defines the persistence operations for user accounts, including the
// follow and favorite lists stored on the user row.
type UserRepo interface {
	// Create inserts a new user. Returns domain.ErrConflict if the email is taken.
	Create(ctx context.Context, user domain.User) (domain.User, error)

	// GetByEmail retrieves a user by email.
	// Returns domain.ErrNotFound if no user with that email exists.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// FindByName returns all users whose user_name equals name exactly.
	FindByName(ctx context.Context, name string) ([]domain.User, error)

	// ListByEmails returns the users with the given emails, in the given order.
	// Unknown emails are skipped.
	ListByEmails(ctx context.Context, emails []string) ([]domain.User, error)

	// UpdateProfile overwrites the editable profile fields and clears first_login.
	UpdateProfile(ctx context.Context, email string, p domain.ProfileUpdate) (domain.User, error)

	// SetPhotoURL stores the profile photo URL.
	SetPhotoURL(ctx context.Context, email, url string) (domain.User, error)

	// AddFollowing adds target to email's follow list (set semantics).
	AddFollowing(ctx context.Context, email, target string) (domain.User, error)

	// RemoveFollowing removes target from email's follow list. Idempotent.
	RemoveFollowing(ctx context.Context, email, target string) (domain.User, error)

	// AddFavorite adds postID to email's favorites (set semantics).
	AddFavorite(ctx context.Context, email string, postID uuid.UUID) (domain.User, error)

	// RemoveFavorite removes postID from email's favorites. Idempotent.
	RemoveFavorite(ctx context.Context, email string, postID uuid.UUID) (domain.User, error)
}

// pgUserRepo is the Postgres implementation of UserRepo.
type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

const userColumns = `email, password_hash, user_name, user_label, introduction, photo_url,
	following, favorites, first_login, created_at, updated_at`

func (r *pgUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	const q = `
		INSERT INTO users (email, password_hash, user_name, user_label, introduction, first_login)
		VALUES (@email, @password_hash, @user_name, @user_label, @introduction, @first_login)
		RETURNING ` + userColumns

	args := pgx.NamedArgs{
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"user_name":     user.UserName,
		"user_label":    user.UserLabel,
		"introduction":  user.Introduction,
		"first_login":   user.FirstLogin,
	}

	result, err := scanUser(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", mapPgError(err))
	}
	return result, nil
}

func (r *pgUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = @email`

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"email": email}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByEmail: %w", err)
	}
	return result, nil
}

func (r *pgUserRepo) FindByName(ctx context.Context, name string) ([]domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE user_name = @name ORDER BY email`

	users, err := r.queryUsers(ctx, q, pgx.NamedArgs{"name": name})
	if err != nil {
		return nil, fmt.Errorf("repo.UserRepo.FindByName: %w", err)
	}
	return users, nil
}

// ListByEmails preserves the caller's order using WITH ORDINALITY.
func (r *pgUserRepo) ListByEmails(ctx context.Context, emails []string) ([]domain.User, error) {
	const q = `
		SELECT u.email, u.password_hash, u.user_name, u.user_label, u.introduction, u.photo_url,
		       u.following, u.favorites, u.first_login, u.created_at, u.updated_at
		FROM unnest(@emails::text[]) WITH ORDINALITY AS e(email, ord)
		JOIN users u ON u.email = e.email
		ORDER BY e.ord`

	users, err := r.queryUsers(ctx, q, pgx.NamedArgs{"emails": nonNil(emails)})
	if err != nil {
		return nil, fmt.Errorf("repo.UserRepo.ListByEmails: %w", err)
	}
	return users, nil
}

func (r *pgUserRepo) UpdateProfile(ctx context.Context, email string, p domain.ProfileUpdate) (domain.User, error) {
	const q = `
		UPDATE users
		SET user_name    = @user_name,
		    user_label   = @user_label,
		    introduction = @introduction,
		    first_login  = FALSE,
		    updated_at   = now()
		WHERE email = @email
		RETURNING ` + userColumns

	args := pgx.NamedArgs{
		"email":        email,
		"user_name":    p.UserName,
		"user_label":   p.UserLabel,
		"introduction": p.Introduction,
	}
	return r.updateOne(ctx, "UpdateProfile", q, args)
}

func (r *pgUserRepo) SetPhotoURL(ctx context.Context, email, url string) (domain.User, error) {
	const q = `
		UPDATE users SET photo_url = @url, updated_at = now()
		WHERE email = @email
		RETURNING ` + userColumns
	return r.updateOne(ctx, "SetPhotoURL", q, pgx.NamedArgs{"email": email, "url": url})
}

func (r *pgUserRepo) AddFollowing(ctx context.Context, email, target string) (domain.User, error) {
	const q = `
		UPDATE users
		SET following  = CASE WHEN @target = ANY(following) THEN following
		                      ELSE array_append(following, @target) END,
		    updated_at = now()
		WHERE email = @email
		RETURNING ` + userColumns
	return r.updateOne(ctx, "AddFollowing", q, pgx.NamedArgs{"email": email, "target": target})
}

func (r *pgUserRepo) RemoveFollowing(ctx context.Context, email, target string) (domain.User, error) {
	const q = `
		UPDATE users
		SET following = array_remove(following, @target), updated_at = now()
		WHERE email = @email
		RETURNING ` + userColumns
	return r.updateOne(ctx, "RemoveFollowing", q, pgx.NamedArgs{"email": email, "target": target})
}

func (r *pgUserRepo) AddFavorite(ctx context.Context, email string, postID uuid.UUID) (domain.User, error) {
	const q = `
		UPDATE users
		SET favorites  = CASE WHEN @post_id::uuid = ANY(favorites) THEN favorites
		                      ELSE array_append(favorites, @post_id::uuid) END,
		    updated_at = now()
		WHERE email = @email
		RETURNING ` + userColumns
	return r.updateOne(ctx, "AddFavorite", q, pgx.NamedArgs{"email": email, "post_id": postID.String()})
}

func (r *pgUserRepo) RemoveFavorite(ctx context.Context, email string, postID uuid.UUID) (domain.User, error) {
	const q = `
		UPDATE users
		SET favorites = array_remove(favorites, @post_id::uuid), updated_at = now()
		WHERE email = @email
		RETURNING ` + userColumns
	return r.updateOne(ctx, "RemoveFavorite", q, pgx.NamedArgs{"email": email, "post_id": postID.String()})
}

// updateOne runs a single-row UPDATE ... RETURNING and wraps errors with op.
func (r *pgUserRepo) updateOne(ctx context.Context, op, q string, args pgx.NamedArgs) (domain.User, error) {
	result, err := scanUser(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.%s: %w", op, err)
	}
	return result, nil
}

func (r *pgUserRepo) queryUsers(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return users, nil
}

// scanUser maps a single database row into a domain.User.
func scanUser(s scanner) (domain.User, error) {
	var (
		u         domain.User
		favorites []pgtype.UUID
	)
	err := s.Scan(&u.Email, &u.PasswordHash, &u.UserName, &u.UserLabel, &u.Introduction, &u.PhotoURL,
		&u.Following, &favorites, &u.FirstLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}

	u.Following = nonNil(u.Following)
	u.Favorites = make([]uuid.UUID, 0, len(favorites))
	for _, f := range favorites {
		u.Favorites = append(u.Favorites, uuid.UUID(f.Bytes))
	}
	return u, nil
}
