package model

import "time"

// User represents an application user record as stored in the `users`
// table. The json tags are omitted because these structs are used by the
// repository layer; handlers define separate response types with the
// fields that are safe to expose.
//
// Fields:
//  ID                  – primary key identifier of the user.
//  Email               – unique email address, stored lower-cased.
//  Username            – unique public handle.
//  PasswordHash        – bcrypt hashed password; plaintext is never stored.
//  FirstName, LastName – display name parts.
//  IsAdmin             – grants delete rights over any topic or resource.
//  IsActive            – deactivated accounts cannot log in.
//  ResetTokenHash      – SHA-256 hex digest of the pending password-reset
//                        token; nil when no reset is in flight.
//  ResetTokenExpiresAt – expiry of the pending reset token (nullable).
//  CreatedAt/UpdatedAt – row timestamps.
type User struct {
	ID                  uint64     // users.id
	Email               string     // users.email
	Username            string     // users.username
	PasswordHash        string     // users.password_hash
	FirstName           string     // users.first_name
	LastName            string     // users.last_name
	IsAdmin             bool       // users.is_admin
	IsActive            bool       // users.is_active
	ResetTokenHash      *string    // users.reset_token_hash (nullable)
	ResetTokenExpiresAt *time.Time // users.reset_token_expires_at (nullable)
	CreatedAt           time.Time  // users.created_at
	UpdatedAt           time.Time  // users.updated_at
}
