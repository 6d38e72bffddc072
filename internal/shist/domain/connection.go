package domain

import "time"

// Connection is an unordered user pair. Store one row per pair; the sqlite
// driver normalizes the pair order so (a,b) and (b,a) collide.
type Connection struct {
	ID        string
	UserAID   string
	UserBID   string
	CreatedAt time.Time
}
