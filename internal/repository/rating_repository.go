package repository

import (
	"context"
	"database/sql"
)

type RatingRepo struct{ DB *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{DB: db} }

// Upsert stores or replaces the viewer's score for a resource in one
// atomic statement on the unique (resource_id, user_id) index. Re-rating
// updates the existing row; the rater count never grows for the same user.
func (r *RatingRepo) Upsert(ctx context.Context, resourceID, userID uint64, score uint8) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO resource_ratings (resource_id, user_id, score) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE score = VALUES(score)`,
		resourceID, userID, score)
	return err
}

// Stats returns the raw arithmetic mean and the rater count for a
// resource. The mean is nil when no ratings exist (SQL AVG over an empty
// set); rounding for display is the response layer's concern.
func (r *RatingRepo) Stats(ctx context.Context, resourceID uint64) (*float64, int64, error) {
	var (
		avg   sql.NullFloat64
		total int64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT AVG(score), COUNT(*) FROM resource_ratings WHERE resource_id=?",
		resourceID).Scan(&avg, &total)
	if err != nil {
		return nil, 0, err
	}
	if !avg.Valid {
		return nil, total, nil
	}
	return &avg.Float64, total, nil
}

// DeleteByResource removes all ratings of a resource.
func (r *RatingRepo) DeleteByResource(ctx context.Context, resourceID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM resource_ratings WHERE resource_id=?", resourceID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByTopic removes the ratings of every resource in a topic, as part
// of the topic deletion cascade.
func (r *RatingRepo) DeleteByTopic(ctx context.Context, topicID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE rr FROM resource_ratings rr
		 JOIN resources res ON res.id = rr.resource_id
		 WHERE res.topic_id = ?`, topicID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
