package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/readshelf/readshelf/internal/model"
)

type InviteRepo struct{ DB *sql.DB }

func NewInviteRepo(db *sql.DB) *InviteRepo { return &InviteRepo{DB: db} }

var (
	// ErrInviteExists is returned when an invite for the (topic, invitee)
	// pair already exists (unique index).
	ErrInviteExists = errors.New("invite already sent to this user")
	// ErrInviteResponded is returned when responding to an invite that has
	// already been accepted or rejected; both states are terminal.
	ErrInviteResponded = errors.New("invite already responded to")
)

// Create inserts a PENDING invite and returns its ID.
func (r *InviteRepo) Create(ctx context.Context, topicID, inviterID, inviteeID uint64) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO topic_invites (topic_id, inviter_id, invitee_id) VALUES (?,?,?)",
		topicID, inviterID, inviteeID)
	if err != nil {
		if _, dup := isDuplicate(err); dup {
			return 0, ErrInviteExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches an invite by primary key.
func (r *InviteRepo) GetByID(ctx context.Context, id uint64) (model.TopicInvite, error) {
	var inv model.TopicInvite
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, topic_id, inviter_id, invitee_id, status, created_at
		 FROM topic_invites WHERE id=? LIMIT 1`, id).
		Scan(&inv.ID, &inv.TopicID, &inv.InviterID, &inv.InviteeID, &inv.Status, &inv.CreatedAt)
	return inv, err
}

// MarkResponded transitions a PENDING invite to ACCEPTED or REJECTED. The
// status guard lives in the WHERE clause so that two concurrent responses
// cannot both succeed; the loser sees ErrInviteResponded.
func (r *InviteRepo) MarkResponded(ctx context.Context, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE topic_invites SET status=? WHERE id=? AND status='PENDING'",
		status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrInviteResponded
	}
	return nil
}

// HasPending reports whether a PENDING invite exists for the pair.
func (r *InviteRepo) HasPending(ctx context.Context, topicID, inviteeID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM topic_invites WHERE topic_id=? AND invitee_id=? AND status='PENDING' LIMIT 1",
		topicID, inviteeID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PendingInviteRow is a pending invite with the topic and inviter
// attached, shaped for the invitee's pending list.
type PendingInviteRow struct {
	ID              uint64 `json:"id"`
	CreatedAt       string `json:"created_at"`
	TopicID         uint64 `json:"topic_id"`
	TopicName       string `json:"topic_name"`
	TopicVisibility string `json:"topic_visibility"`
	InviterID       uint64 `json:"inviter_id"`
	InviterUsername string `json:"inviter_username"`
	InviterName     string `json:"inviter_name"`
}

// ListPendingByInvitee returns all PENDING invites addressed to a user.
func (r *InviteRepo) ListPendingByInvitee(ctx context.Context, inviteeID uint64) ([]PendingInviteRow, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT
			i.id,
			DATE_FORMAT(i.created_at, '%Y-%m-%d %T') AS created_at,
			t.id   AS topic_id,
			t.name AS topic_name,
			t.visibility,
			u.id   AS inviter_id,
			u.username,
			CONCAT(u.first_name, ' ', u.last_name) AS inviter_name
		FROM topic_invites i
		JOIN topics t ON t.id = i.topic_id
		JOIN users u  ON u.id = i.inviter_id
		WHERE i.invitee_id = ? AND i.status = 'PENDING'
		ORDER BY i.created_at DESC, i.id DESC`, inviteeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PendingInviteRow, 0)
	for rows.Next() {
		var row PendingInviteRow
		if err := rows.Scan(&row.ID, &row.CreatedAt, &row.TopicID, &row.TopicName,
			&row.TopicVisibility, &row.InviterID, &row.InviterUsername, &row.InviterName); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// DeleteByTopic removes all invites of a topic as part of the topic
// deletion cascade.
func (r *InviteRepo) DeleteByTopic(ctx context.Context, topicID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM topic_invites WHERE topic_id=?", topicID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
