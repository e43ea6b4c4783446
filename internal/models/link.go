package models

import "time"

// ShareableLink is a capability granting access to exactly one meme.
// Expiry is a read-time check: a link past its ExpiresAt stays in the
// catalog but rejects resolution with Gone until the owner revokes it.
type ShareableLink struct {
	ID        string
	Token     string
	MemeID    string
	UserID    string
	ExpiresAt *time.Time
	IsPublic  bool
	CreatedAt time.Time
}

// Expired reports whether the link is past its expiry at the given instant.
// Links without an expiry never expire.
func (l ShareableLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}
