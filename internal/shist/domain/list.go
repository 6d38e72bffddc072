package domain

import "time"

// List is a named collection of items owned by a creator, optionally shared
// with other users. The creator is fixed at creation time.
type List struct {
	ID        string
	Name      string
	CreatorID string
	Public    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Item struct {
	ID        string
	ListID    string
	Name      string
	Category  string
	Done      bool
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Visibility is a derived classification of who can discover a list. It is
// computed from the public flag and membership count, never persisted.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityShared  Visibility = "shared"
	VisibilityPrivate Visibility = "private"
)

// ClassifyVisibility derives a list's visibility. A private list with at
// least one non-creator member is "shared".
func ClassifyVisibility(list List, memberCount int) Visibility {
	switch {
	case list.Public:
		return VisibilityPublic
	case memberCount > 0:
		return VisibilityShared
	default:
		return VisibilityPrivate
	}
}
