package model

import "time"

// Resource type tags. The tag is immutable after creation: LINK rows carry
// URL, DOCUMENT rows carry FilePath. Dispatch is on the tag, never on which
// optional field happens to be set.
const (
	ResourceLink     = "LINK"
	ResourceDocument = "DOCUMENT"
)

// ValidResourceType reports whether t is LINK or DOCUMENT.
func ValidResourceType(t string) bool {
	return t == ResourceLink || t == ResourceDocument
}

// Resource represents a unit of shared content under a topic, stored in
// the `resources` table.
//
// Fields:
//  ID          – primary key identifier.
//  TopicID     – topic this resource belongs to.
//  CreatorID   – user who posted the resource; only the creator may edit
//                it, and only the creator or an admin may delete it.
//  Description – free-form description shown in listings.
//  Type        – LINK or DOCUMENT (discriminator).
//  URL         – target address; set only for LINK rows.
//  FilePath    – server-local blob reference; set only for DOCUMENT rows.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Resource struct {
	ID          uint64    // resources.id
	TopicID     uint64    // resources.topic_id
	CreatorID   uint64    // resources.creator_id
	Description string    // resources.description
	Type        string    // resources.type
	URL         *string   // resources.url (nullable)
	FilePath    *string   // resources.file_path (nullable)
	CreatedAt   time.Time // resources.created_at
	UpdatedAt   time.Time // resources.updated_at
}
