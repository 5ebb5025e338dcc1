package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/readshelf/readshelf/internal/model"
)

type SubscriptionRepo struct{ DB *sql.DB }

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{DB: db} }

// ErrAlreadySubscribed is returned when the (topic, user) pair already has
// a subscription row. It originates from the unique index, not from a
// pre-check, so concurrent subscribe calls resolve deterministically.
var ErrAlreadySubscribed = errors.New("already subscribed to this topic")

// Create inserts a subscription and returns its ID.
func (r *SubscriptionRepo) Create(ctx context.Context, topicID, userID uint64, seriousness string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO subscriptions (topic_id, user_id, seriousness) VALUES (?,?,?)",
		topicID, userID, seriousness)
	if err != nil {
		if _, dup := isDuplicate(err); dup {
			return 0, ErrAlreadySubscribed
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Get fetches the subscription for a (topic, user) pair. sql.ErrNoRows
// means the user is not subscribed.
func (r *SubscriptionRepo) Get(ctx context.Context, topicID, userID uint64) (model.Subscription, error) {
	var s model.Subscription
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, topic_id, user_id, seriousness, created_at
		 FROM subscriptions WHERE topic_id=? AND user_id=? LIMIT 1`,
		topicID, userID).
		Scan(&s.ID, &s.TopicID, &s.UserID, &s.Seriousness, &s.CreatedAt)
	return s, err
}

// UpdateSeriousness changes the label on an existing subscription. Writing
// the current value affects zero rows, so a zero count falls back to an
// existence check before reporting sql.ErrNoRows.
func (r *SubscriptionRepo) UpdateSeriousness(ctx context.Context, topicID, userID uint64, seriousness string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE subscriptions SET seriousness=? WHERE topic_id=? AND user_id=?",
		seriousness, topicID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.Get(ctx, topicID, userID); err != nil {
			return err
		}
	}
	return nil
}

// CountByTopic returns the live subscriber count for a topic.
func (r *SubscriptionRepo) CountByTopic(ctx context.Context, topicID uint64) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM subscriptions WHERE topic_id=?", topicID).Scan(&n)
	return n, err
}

// UserTopicRow is one of the caller's subscriptions with the topic and its
// owner attached, shaped for the my-topics listing.
type UserTopicRow struct {
	SubscriptionID uint64 `json:"subscription_id"`
	Seriousness    string `json:"seriousness"`
	SubscribedAt   string `json:"subscribed_at"`
	TopicID        uint64 `json:"topic_id"`
	TopicName      string `json:"topic_name"`
	Visibility     string `json:"visibility"`
	OwnerID        uint64 `json:"owner_id"`
	OwnerUsername  string `json:"owner_username"`
	OwnerFirstName string `json:"owner_first_name"`
	OwnerLastName  string `json:"owner_last_name"`
}

// ListByUser returns every subscription held by a user, most recent first.
func (r *SubscriptionRepo) ListByUser(ctx context.Context, userID uint64) ([]UserTopicRow, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT
			s.id,
			s.seriousness,
			DATE_FORMAT(s.created_at, '%Y-%m-%d %T') AS subscribed_at,
			t.id   AS topic_id,
			t.name AS topic_name,
			t.visibility,
			u.id   AS owner_id,
			u.username,
			u.first_name,
			u.last_name
		FROM subscriptions s
		JOIN topics t ON t.id = s.topic_id
		JOIN users u  ON u.id = t.owner_id
		WHERE s.user_id = ?
		ORDER BY s.created_at DESC, s.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]UserTopicRow, 0)
	for rows.Next() {
		var row UserTopicRow
		if err := rows.Scan(&row.SubscriptionID, &row.Seriousness, &row.SubscribedAt,
			&row.TopicID, &row.TopicName, &row.Visibility,
			&row.OwnerID, &row.OwnerUsername, &row.OwnerFirstName, &row.OwnerLastName); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// DeleteByTopic removes all subscriptions of a topic as part of the topic
// deletion cascade.
func (r *SubscriptionRepo) DeleteByTopic(ctx context.Context, topicID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM subscriptions WHERE topic_id=?", topicID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
