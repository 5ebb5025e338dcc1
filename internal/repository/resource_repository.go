package repository

import (
	"context"
	"database/sql"

	"github.com/readshelf/readshelf/internal/model"
)

type ResourceRepo struct{ DB *sql.DB }

func NewResourceRepo(db *sql.DB) *ResourceRepo { return &ResourceRepo{DB: db} }

// CreateLink inserts a LINK resource and returns its ID.
func (r *ResourceRepo) CreateLink(ctx context.Context, topicID, creatorID uint64, description, url string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO resources (topic_id, creator_id, description, type, url) VALUES (?,?,?,'LINK',?)",
		topicID, creatorID, description, url)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// CreateDocument inserts a DOCUMENT resource referencing an already stored
// blob and returns its ID. The blob is written before this insert; on
// insert failure the caller removes it again.
func (r *ResourceRepo) CreateDocument(ctx context.Context, topicID, creatorID uint64, description, filePath string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO resources (topic_id, creator_id, description, type, file_path) VALUES (?,?,?,'DOCUMENT',?)",
		topicID, creatorID, description, filePath)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a resource by primary key.
func (r *ResourceRepo) GetByID(ctx context.Context, id uint64) (model.Resource, error) {
	var (
		res  model.Resource
		url  sql.NullString
		path sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, topic_id, creator_id, description, type, url, file_path, created_at, updated_at
		 FROM resources WHERE id=? LIMIT 1`, id).
		Scan(&res.ID, &res.TopicID, &res.CreatorID, &res.Description, &res.Type,
			&url, &path, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return model.Resource{}, err
	}
	if url.Valid {
		res.URL = &url.String
	}
	if path.Valid {
		res.FilePath = &path.String
	}
	return res, nil
}

// Update applies the provided fields. The url column is only touched for
// LINK rows; the type guard belongs to the statement so a racing type
// cannot slip through (type is immutable anyway).
func (r *ResourceRepo) Update(ctx context.Context, id uint64, description, url *string) error {
	if description == nil && url == nil {
		return nil
	}
	set := ""
	args := []any{}
	if description != nil {
		set = "description=?"
		args = append(args, *description)
	}
	if url != nil {
		if set != "" {
			set += ", "
		}
		set += "url=IF(type='LINK', ?, url)"
		args = append(args, *url)
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx, "UPDATE resources SET "+set+" WHERE id=?", args...)
	if err != nil {
		return err
	}
	// MySQL reports zero affected rows for a no-op update, so matched rows
	// cannot distinguish "absent" here; callers fetch the row first.
	_, err = res.RowsAffected()
	return err
}

// Delete removes the resource row only; reading items and ratings are
// removed first by the cascade in the handler layer.
func (r *ResourceRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM resources WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DocumentPathsByTopic returns the blob paths of every DOCUMENT resource
// in a topic, for the delete cascade.
func (r *ResourceRepo) DocumentPathsByTopic(ctx context.Context, topicID uint64) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT file_path FROM resources WHERE topic_id=? AND type='DOCUMENT' AND file_path IS NOT NULL",
		topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// DeleteByTopic removes all resources of a topic and returns how many rows
// went away; the count is surfaced in the delete-topic response.
func (r *ResourceRepo) DeleteByTopic(ctx context.Context, topicID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM resources WHERE topic_id=?", topicID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
