// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/pdiddy/aihub/pkg/types"
)

// ErrAlreadyReviewed is returned when moderating an upload that has left
// the pending state.
var ErrAlreadyReviewed = errors.New("upload already reviewed")

const uploadColumns = `id, user_id, resource_type, title, url, description, status,
	COALESCE(reviewed_by, ''), created_at, COALESCE(reviewed_at, '')`

// SubmitUpload queues a community submission for moderation.
func (s *Store) SubmitUpload(ctx context.Context, userID string, r types.Resource) (types.Upload, error) {
	u := types.Upload{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        r.Type,
		Title:       r.Title,
		URL:         r.URL,
		Description: r.Body,
		Status:      types.UploadPending,
		CreatedAt:   s.now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uploads (id, user_id, resource_type, title, url, description, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.UserID, string(u.Type), u.Title, u.URL, u.Description, string(u.Status), formatTime(u.CreatedAt))
	if err != nil {
		return types.Upload{}, errors.Wrap(err, "inserting upload")
	}
	return u, nil
}

// Uploads lists uploads in the given state, oldest first.
func (s *Store) Uploads(ctx context.Context, status types.UploadStatus) ([]types.Upload, error) {
	if !status.Valid() {
		return nil, errors.Newf("unknown upload status %q", status)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+uploadColumns+` FROM uploads WHERE status = ? ORDER BY created_at, rowid`, string(status))
	if err != nil {
		return nil, errors.Wrap(err, "querying uploads")
	}
	defer rows.Close()

	out := []types.Upload{}
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, errors.Wrap(rows.Err(), "iterating uploads")
}

// Upload returns one upload by ID.
func (s *Store) Upload(ctx context.Context, id string) (types.Upload, error) {
	u, err := scanUpload(s.db.QueryRowContext(ctx, `SELECT `+uploadColumns+` FROM uploads WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Upload{}, errors.Wrapf(ErrNotFound, "upload %s", id)
	}
	return u, err
}

// ReviewUpload moves a pending upload to approved or rejected. Reviewing
// an upload twice yields ErrAlreadyReviewed.
func (s *Store) ReviewUpload(ctx context.Context, id, reviewerID string, status types.UploadStatus) (types.Upload, error) {
	if status != types.UploadApproved && status != types.UploadRejected {
		return types.Upload{}, errors.Newf("cannot move upload to %q", status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Upload{}, errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM uploads WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Upload{}, errors.Wrapf(ErrNotFound, "upload %s", id)
	}
	if err != nil {
		return types.Upload{}, errors.Wrap(err, "querying upload")
	}
	if types.UploadStatus(current) != types.UploadPending {
		return types.Upload{}, errors.Wrapf(ErrAlreadyReviewed, "upload %s is %s", id, current)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE uploads SET status = ?, reviewed_by = ?, reviewed_at = ? WHERE id = ?`,
		string(status), reviewerID, formatTime(s.now()), id); err != nil {
		return types.Upload{}, errors.Wrap(err, "updating upload")
	}
	if err := tx.Commit(); err != nil {
		return types.Upload{}, errors.Wrap(err, "committing review")
	}
	return s.Upload(ctx, id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(sc scanner) (types.Upload, error) {
	var u types.Upload
	var typ, status, created, reviewed string
	err := sc.Scan(&u.ID, &u.UserID, &typ, &u.Title, &u.URL, &u.Description, &status,
		&u.ReviewedBy, &created, &reviewed)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Upload{}, err
	}
	if err != nil {
		return types.Upload{}, errors.Wrap(err, "scanning upload")
	}
	u.Type = types.ResourceType(typ)
	u.Status = types.UploadStatus(status)
	u.CreatedAt = parseTime(created)
	if reviewed != "" {
		t := parseTime(reviewed)
		u.ReviewedAt = &t
	}
	return u, nil
}
