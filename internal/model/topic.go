package model

import "time"

// Topic visibility values. PRIVATE topics are joinable only through an
// accepted invite; PUBLIC topics are discoverable and open to anyone.
const (
	VisibilityPublic  = "PUBLIC"
	VisibilityPrivate = "PRIVATE"
)

// ValidVisibility reports whether v is one of the visibility values.
func ValidVisibility(v string) bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Topic represents a row in the `topics` table. A user cannot own two
// topics with the same name; different users may reuse names
// (UNIQUE(owner_id, name)).
type Topic struct {
	ID         uint64    // topics.id
	Name       string    // topics.name
	OwnerID    uint64    // topics.owner_id
	Visibility string    // topics.visibility
	CreatedAt  time.Time // topics.created_at
}
