package model

// ResourceRating is a per-user 1..5 score on a resource, stored in
// `resource_ratings` with upsert semantics: re-rating updates the existing
// row. UNIQUE(resource_id, user_id).
type ResourceRating struct {
	ID         uint64 // resource_ratings.id
	ResourceID uint64 // resource_ratings.resource_id
	UserID     uint64 // resource_ratings.user_id
	Score      uint8  // resource_ratings.score
}
