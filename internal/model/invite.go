package model

import "time"

// Invite status values. PENDING transitions to ACCEPTED or REJECTED once;
// both outcomes are terminal.
const (
	InvitePending  = "PENDING"
	InviteAccepted = "ACCEPTED"
	InviteRejected = "REJECTED"
)

// TopicInvite represents a pending offer of subscription access to a
// specific user for a specific topic, stored in `topic_invites`. A topic
// can hold at most one invite per invitee (UNIQUE(topic_id, invitee_id)).
type TopicInvite struct {
	ID        uint64    // topic_invites.id
	TopicID   uint64    // topic_invites.topic_id
	InviterID uint64    // topic_invites.inviter_id
	InviteeID uint64    // topic_invites.invitee_id
	Status    string    // topic_invites.status
	CreatedAt time.Time // topic_invites.created_at
}
