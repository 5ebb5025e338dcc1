package repository

import (
	"context"
	"database/sql"
)

type ReadingItemRepo struct{ DB *sql.DB }

func NewReadingItemRepo(db *sql.DB) *ReadingItemRepo { return &ReadingItemRepo{DB: db} }

// Toggle flips the viewer's read flag for a resource, creating the row as
// read=true on first use. The insert-or-flip is a single atomic statement
// on the unique (resource_id, user_id) index, so two concurrent toggles
// never race through a separate exists-check.
func (r *ReadingItemRepo) Toggle(ctx context.Context, resourceID, userID uint64) (bool, error) {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO reading_items (resource_id, user_id, is_read) VALUES (?,?,1)
		 ON DUPLICATE KEY UPDATE is_read = NOT is_read`,
		resourceID, userID)
	if err != nil {
		return false, err
	}
	var isRead bool
	err = r.DB.QueryRowContext(ctx,
		"SELECT is_read FROM reading_items WHERE resource_id=? AND user_id=? LIMIT 1",
		resourceID, userID).Scan(&isRead)
	return isRead, err
}

// Get fetches the viewer's read flag. sql.ErrNoRows means the resource was
// never toggled, which callers treat as unread.
func (r *ReadingItemRepo) Get(ctx context.Context, resourceID, userID uint64) (bool, error) {
	var isRead bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT is_read FROM reading_items WHERE resource_id=? AND user_id=? LIMIT 1",
		resourceID, userID).Scan(&isRead)
	return isRead, err
}

// DeleteByResource removes all read markers of a resource.
func (r *ReadingItemRepo) DeleteByResource(ctx context.Context, resourceID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM reading_items WHERE resource_id=?", resourceID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByTopic removes the read markers of every resource in a topic, as
// part of the topic deletion cascade.
func (r *ReadingItemRepo) DeleteByTopic(ctx context.Context, topicID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE ri FROM reading_items ri
		 JOIN resources res ON res.id = ri.resource_id
		 WHERE res.topic_id = ?`, topicID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
