// Package queue defines message payloads exchanged over the message broker.
package queue

// PasswordResetRequestedEvent is published when a user asks for a password
// reset. It carries everything the mail worker needs to compose and send
// the message without querying the primary database. The reset URL embeds
// the raw token; the event transports it to the sender and it appears
// nowhere else.
type PasswordResetRequestedEvent struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	ResetURL    string `json:"reset_url"`
	ExpiresAt   string `json:"expires_at"`
	RequestedAt string `json:"requested_at"`
}
