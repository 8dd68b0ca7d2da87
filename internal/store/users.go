// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pdiddy/aihub/pkg/types"
)

// CreateUser registers a new account. Usernames and emails are unique
// (case-insensitive for email); a clash yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, username, email, password string) (types.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, errors.Wrap(err, "hashing password")
	}

	u := types.User{
		ID:        uuid.NewString(),
		Username:  strings.TrimSpace(username),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		CreatedAt: s.now(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, is_admin, created_at) VALUES (?, ?, ?, ?, 0, ?)`,
		u.ID, u.Username, u.Email, string(hash), formatTime(u.CreatedAt))
	if isConstraint(err) {
		return types.User{}, errors.Wrapf(ErrConflict, "user %q", u.Username)
	}
	if err != nil {
		return types.User{}, errors.Wrap(err, "inserting user")
	}
	return u, nil
}

// Authenticate checks a username (or email) and password. Unknown users and
// wrong passwords both yield ErrUnauthorized.
func (s *Store) Authenticate(ctx context.Context, login, password string) (types.User, error) {
	login = strings.TrimSpace(login)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, is_admin, created_at, password_hash FROM users WHERE username = ? OR email = ?`,
		login, strings.ToLower(login))

	var hash string
	u, err := scanUser(row, &hash)
	if errors.Is(err, ErrNotFound) {
		return types.User{}, ErrUnauthorized
	}
	if err != nil {
		return types.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return types.User{}, ErrUnauthorized
	}
	return u, nil
}

// User returns the account with the given ID.
func (s *Store) User(ctx context.Context, id string) (types.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, is_admin, created_at, password_hash FROM users WHERE id = ?`, id)
	var hash string
	return scanUser(row, &hash)
}

// SetAdmin grants or revokes admin rights for username.
func (s *Store) SetAdmin(ctx context.Context, username string, admin bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET is_admin = ? WHERE username = ?`, admin, username)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrapf(ErrNotFound, "user %q", username)
	}
	return nil
}

// CreateSession issues an opaque session token for userID valid for ttl.
func (s *Store) CreateSession(ctx context.Context, userID string, ttl time.Duration) (types.Session, error) {
	sess := types.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: s.now().Add(ttl),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		sess.Token, sess.UserID, formatTime(sess.ExpiresAt))
	if err != nil {
		return types.Session{}, errors.Wrap(err, "inserting session")
	}
	return sess, nil
}

// SessionUser resolves a session token to its user. Expired sessions are
// deleted and reported as ErrUnauthorized.
func (s *Store) SessionUser(ctx context.Context, token string) (types.User, error) {
	var userID, expires string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, expires_at FROM sessions WHERE token = ?`, token).Scan(&userID, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return types.User{}, ErrUnauthorized
	}
	if err != nil {
		return types.User{}, errors.Wrap(err, "querying session")
	}
	if !s.now().Before(parseTime(expires)) {
		_ = s.DeleteSession(ctx, token)
		return types.User{}, ErrUnauthorized
	}

	u, err := s.User(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return types.User{}, ErrUnauthorized
	}
	return u, err
}

// DeleteSession removes a session. Deleting an unknown token is not an error.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return errors.Wrap(err, "deleting session")
}

func scanUser(row *sql.Row, hash *string) (types.User, error) {
	var u types.User
	var created string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.IsAdmin, &created, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return types.User{}, ErrNotFound
	}
	if err != nil {
		return types.User{}, errors.Wrap(err, "scanning user")
	}
	u.CreatedAt = parseTime(created)
	return u, nil
}
