package model

// ReadingItem is a per-user read/unread marker on a resource, stored in
// `reading_items`. Rows are created lazily on the first toggle (read=true)
// and flipped in place afterwards. UNIQUE(resource_id, user_id).
type ReadingItem struct {
	ID         uint64 // reading_items.id
	ResourceID uint64 // reading_items.resource_id
	UserID     uint64 // reading_items.user_id
	IsRead     bool   // reading_items.is_read
}
