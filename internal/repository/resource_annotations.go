package repository

import (
	"context"
	"database/sql"
)

// CreatorSummary is the denormalized author attached to listed resources.
type CreatorSummary struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AnnotatedResource is a resource enriched with viewer-specific and
// aggregate fields: the creator summary, the viewer's read flag, the raw
// average rating, the rater count and the viewer's own score.
// AverageRating carries the raw arithmetic mean; rounding to one decimal
// happens at the response-shaping boundary, never here.
type AnnotatedResource struct {
	ID            uint64         `json:"id"`
	TopicID       uint64         `json:"topic_id"`
	Type          string         `json:"type"`
	Description   string         `json:"description"`
	URL           *string        `json:"url,omitempty"`
	FilePath      *string        `json:"file_path,omitempty"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
	Creator       CreatorSummary `json:"created_by"`
	IsRead        bool           `json:"is_read"`
	AverageRating *float64       `json:"average_rating"`
	TotalRatings  int64          `json:"total_ratings"`
	UserRating    *uint8         `json:"user_rating"`
}

const annotatedSelect = `SELECT
		r.id,
		r.topic_id,
		r.type,
		r.description,
		r.url,
		r.file_path,
		DATE_FORMAT(r.created_at, '%Y-%m-%d %T') AS created_at,
		DATE_FORMAT(r.updated_at, '%Y-%m-%d %T') AS updated_at,
		u.id AS creator_id,
		u.username,
		u.first_name,
		u.last_name,
		COALESCE(ri.is_read, 0) AS is_read,
		agg.avg_score,
		COALESCE(agg.total, 0) AS total_ratings,
		mine.score AS user_rating
	FROM resources r
	JOIN users u ON u.id = r.creator_id
	LEFT JOIN reading_items ri ON ri.resource_id = r.id AND ri.user_id = ?
	LEFT JOIN (
		SELECT resource_id, AVG(score) AS avg_score, COUNT(*) AS total
		FROM resource_ratings GROUP BY resource_id
	) agg ON agg.resource_id = r.id
	LEFT JOIN resource_ratings mine ON mine.resource_id = r.id AND mine.user_id = ?`

// ListByTopic returns a topic's resources newest first, annotated for the
// viewer, plus the total row count for pagination.
func (r *ResourceRepo) ListByTopic(ctx context.Context, topicID, viewerID uint64, page, pageSize int) ([]AnnotatedResource, int64, error) {
	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM resources WHERE topic_id=?", topicID).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := pageSize
	offset := (page - 1) * pageSize

	rows, err := r.DB.QueryContext(ctx, annotatedSelect+`
		WHERE r.topic_id = ?
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ? OFFSET ?`,
		viewerID, viewerID, topicID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]AnnotatedResource, 0, limit)
	for rows.Next() {
		res, err := scanAnnotated(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, res)
	}
	return out, total, rows.Err()
}

// GetAnnotated returns one resource annotated for the viewer.
func (r *ResourceRepo) GetAnnotated(ctx context.Context, resourceID, viewerID uint64) (AnnotatedResource, error) {
	rows, err := r.DB.QueryContext(ctx, annotatedSelect+" WHERE r.id = ? LIMIT 1",
		viewerID, viewerID, resourceID)
	if err != nil {
		return AnnotatedResource{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return AnnotatedResource{}, err
		}
		return AnnotatedResource{}, sql.ErrNoRows
	}
	return scanAnnotated(rows)
}

func scanAnnotated(rows *sql.Rows) (AnnotatedResource, error) {
	var (
		res  AnnotatedResource
		url  sql.NullString
		path sql.NullString
		avg  sql.NullFloat64
		mine sql.NullInt64
	)
	err := rows.Scan(&res.ID, &res.TopicID, &res.Type, &res.Description, &url, &path,
		&res.CreatedAt, &res.UpdatedAt,
		&res.Creator.ID, &res.Creator.Username, &res.Creator.FirstName, &res.Creator.LastName,
		&res.IsRead, &avg, &res.TotalRatings, &mine)
	if err != nil {
		return AnnotatedResource{}, err
	}
	if url.Valid {
		res.URL = &url.String
	}
	if path.Valid {
		res.FilePath = &path.String
	}
	if avg.Valid {
		res.AverageRating = &avg.Float64
	}
	if mine.Valid {
		score := uint8(mine.Int64)
		res.UserRating = &score
	}
	return res, nil
}
