package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/readshelf/readshelf/internal/model"
)

type TopicRepo struct{ DB *sql.DB }

func NewTopicRepo(db *sql.DB) *TopicRepo { return &TopicRepo{DB: db} }

// ErrTopicExists is returned when the owner already has a topic with the
// same name (UNIQUE(owner_id, name)).
var ErrTopicExists = errors.New("topic name already used by this owner")

// Create inserts a topic and returns its ID. The duplicate-key path covers
// the race where two requests create the same name concurrently.
func (r *TopicRepo) Create(ctx context.Context, name string, ownerID uint64, visibility string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO topics (name, owner_id, visibility) VALUES (?,?,?)",
		name, ownerID, visibility)
	if err != nil {
		if _, dup := isDuplicate(err); dup {
			return 0, ErrTopicExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a topic by primary key.
func (r *TopicRepo) GetByID(ctx context.Context, id uint64) (model.Topic, error) {
	var t model.Topic
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, owner_id, visibility, created_at FROM topics WHERE id=? LIMIT 1", id).
		Scan(&t.ID, &t.Name, &t.OwnerID, &t.Visibility, &t.CreatedAt)
	return t, err
}

// Delete removes the topic row only. Dependent rows are removed first by
// the cascade in the handler layer; see internal/saga.
func (r *TopicRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM topics WHERE id=?", id)
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
