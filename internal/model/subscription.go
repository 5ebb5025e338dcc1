package model

import "time"

// Seriousness labels a subscriber attaches to a topic. Informational only;
// no behavior depends on the chosen level.
const (
	SeriousnessCasual      = "CASUAL"
	SeriousnessSerious     = "SERIOUS"
	SeriousnessVerySerious = "VERY_SERIOUS"
)

// ValidSeriousness reports whether s is one of the seriousness levels.
func ValidSeriousness(s string) bool {
	switch s {
	case SeriousnessCasual, SeriousnessSerious, SeriousnessVerySerious:
		return true
	}
	return false
}

// Subscription links a user to a topic and grants read/post access to the
// topic's resources. One row per (topic, user) pair, enforced by
// UNIQUE(topic_id, user_id).
type Subscription struct {
	ID          uint64    // subscriptions.id
	TopicID     uint64    // subscriptions.topic_id
	UserID      uint64    // subscriptions.user_id
	Seriousness string    // subscriptions.seriousness
	CreatedAt   time.Time // subscriptions.created_at
}
