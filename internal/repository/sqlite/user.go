package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/family-tree/internal/apperror"
	"github.com/sakif/family-tree/internal/model"
	"github.com/sakif/family-tree/internal/repository"
)

// UserRepo implements repository.UserRepository.
type UserRepo struct {
	conn *sql.DB
}

var _ repository.UserRepository = (*UserRepo)(nil)

const userCols = `id, email, name, google_id, avatar_url, created_at, updated_at`

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.Email, &u.Name, &u.GoogleID, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Upsert creates or refreshes a user keyed by email.
//
// Update path: the row's name, avatar, and google_id take the caller's values
// only when those are non-empty: a login that arrives without a display name
// must not blank out the one we already have. The internal ID is never
// touched.
//
// Insert path: a fresh xid is generated and the full profile stored.
//
// Either way the caller's struct is overwritten with the persisted row, so
// the returned state is what a follow-up read would see.
//
// The whole operation is one INSERT ... ON CONFLICT statement, so two logins
// racing on the same fresh email cannot both take the insert path; one
// inserts and the other merges.
func (r *UserRepo) Upsert(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, name, google_id, avatar_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(email) DO UPDATE SET
		     name       = CASE WHEN excluded.name       != '' THEN excluded.name       ELSE users.name       END,
		     google_id  = CASE WHEN excluded.google_id  != '' THEN excluded.google_id  ELSE users.google_id  END,
		     avatar_url = CASE WHEN excluded.avatar_url != '' THEN excluded.avatar_url ELSE users.avatar_url END,
		     updated_at = excluded.updated_at`,
		xid.New().String(), user.Email, user.Name, user.GoogleID, user.AvatarURL, now, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting user %s: %w", user.Email, err)
	}

	stored, err := r.GetByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	*user = *stored
	return nil
}

// GetByID retrieves a user by internal ID.
// Returns apperror.ErrNotFound if no such user exists.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email.
// Returns apperror.ErrNotFound if no such user exists.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE email = ?`, email)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email %s: %w", email, err)
	}
	return u, nil
}
