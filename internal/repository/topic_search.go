package repository

import (
	"context"
	"strings"
)

// TopicSearchQuery defines the filter and pagination for browsing public
// topics.
type TopicSearchQuery struct {
	Search   string
	Page     int
	PageSize int
}

// PublicTopicRow is a public topic with its live subscriber count and an
// owner summary attached, shaped for list responses.
type PublicTopicRow struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	Visibility      string `json:"visibility"`
	CreatedAt       string `json:"created_at"`
	SubscriberCount int64  `json:"subscriber_count"`
	OwnerID         uint64 `json:"owner_id"`
	OwnerUsername   string `json:"owner_username"`
	OwnerFirstName  string `json:"owner_first_name"`
	OwnerLastName   string `json:"owner_last_name"`
}

// SearchPublic returns PUBLIC topics matched by case-insensitive substring
// on the name, newest first, with the total match count for pagination.
func (r *TopicRepo) SearchPublic(ctx context.Context, q TopicSearchQuery) ([]PublicTopicRow, int64, error) {
	cond := "t.visibility = 'PUBLIC'"
	args := []any{}
	if q.Search != "" {
		cond += " AND LOWER(t.name) LIKE ?"
		args = append(args, "%"+strings.ToLower(q.Search)+"%")
	}

	var total int64
	countSQL := "SELECT COUNT(*) FROM topics t WHERE " + cond
	if err := r.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			t.id,
			t.name,
			t.visibility,
			DATE_FORMAT(t.created_at, '%Y-%m-%d %T') AS created_at,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.topic_id = t.id) AS subscriber_count,
			u.id   AS owner_id,
			u.username,
			u.first_name,
			u.last_name
		FROM topics t
		JOIN users u ON u.id = t.owner_id
		WHERE ` + cond + `
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]PublicTopicRow, 0, limit)
	for rows.Next() {
		var t PublicTopicRow
		if err := rows.Scan(&t.ID, &t.Name, &t.Visibility, &t.CreatedAt, &t.SubscriberCount,
			&t.OwnerID, &t.OwnerUsername, &t.OwnerFirstName, &t.OwnerLastName); err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

// Trending ranks PUBLIC topics by subscriber count descending and returns
// the top n with owner details attached.
func (r *TopicRepo) Trending(ctx context.Context, n int) ([]PublicTopicRow, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT
			t.id,
			t.name,
			t.visibility,
			DATE_FORMAT(t.created_at, '%Y-%m-%d %T') AS created_at,
			COUNT(s.id) AS subscriber_count,
			u.id AS owner_id,
			u.username,
			u.first_name,
			u.last_name
		FROM topics t
		JOIN users u ON u.id = t.owner_id
		LEFT JOIN subscriptions s ON s.topic_id = t.id
		WHERE t.visibility = 'PUBLIC'
		GROUP BY t.id, t.name, t.visibility, t.created_at, u.id, u.username, u.first_name, u.last_name
		ORDER BY subscriber_count DESC, t.created_at DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PublicTopicRow, 0, n)
	for rows.Next() {
		var t PublicTopicRow
		if err := rows.Scan(&t.ID, &t.Name, &t.Visibility, &t.CreatedAt, &t.SubscriberCount,
			&t.OwnerID, &t.OwnerUsername, &t.OwnerFirstName, &t.OwnerLastName); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
