// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/pdiddy/aihub/pkg/types"
)

// AddBookmark saves a snapshot of r for userID. Bookmarking the same URL
// twice yields ErrConflict.
func (s *Store) AddBookmark(ctx context.Context, userID string, r types.Resource) (types.Bookmark, error) {
	b := types.Bookmark{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        r.Type,
		Title:       r.Title,
		URL:         r.URL,
		Description: r.Body,
		CreatedAt:   s.now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bookmarks (id, user_id, resource_type, title, url, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, string(b.Type), b.Title, b.URL, b.Description, formatTime(b.CreatedAt))
	if isConstraint(err) {
		return types.Bookmark{}, errors.Wrapf(ErrConflict, "bookmark for %s", b.URL)
	}
	if err != nil {
		return types.Bookmark{}, errors.Wrap(err, "inserting bookmark")
	}
	return b, nil
}

// Bookmarks lists userID's bookmarks, newest first.
func (s *Store) Bookmarks(ctx context.Context, userID string) ([]types.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, resource_type, title, url, description, created_at
		 FROM bookmarks WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying bookmarks")
	}
	defer rows.Close()

	out := []types.Bookmark{}
	for rows.Next() {
		var b types.Bookmark
		var typ, created string
		if err := rows.Scan(&b.ID, &b.UserID, &typ, &b.Title, &b.URL, &b.Description, &created); err != nil {
			return nil, errors.Wrap(err, "scanning bookmark")
		}
		b.Type = types.ResourceType(typ)
		b.CreatedAt = parseTime(created)
		out = append(out, b)
	}
	return out, errors.Wrap(rows.Err(), "iterating bookmarks")
}

// DeleteBookmark removes bookmark id if it belongs to userID.
func (s *Store) DeleteBookmark(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return errors.Wrap(err, "deleting bookmark")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrapf(ErrNotFound, "bookmark %s", id)
	}
	return nil
}
