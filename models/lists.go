package models

import "time"

// BucketListItem marks content the user intends to watch someday.
type BucketListItem struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"userId"`
	ContentID int64      `json:"contentId"`
	IsWatched bool       `json:"isWatched"`
	WatchedAt *time.Time `json:"watchedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// CustomList is a user-curated collection of content.
type CustomList struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CustomListItem is one entry of a custom list.
type CustomListItem struct {
	ID        int64     `json:"id"`
	ListID    int64     `json:"listId"`
	ContentID int64     `json:"contentId"`
	Note      string    `json:"note,omitempty"`
	AddedAt   time.Time `json:"addedAt"`
}

// Recommendation is content a user suggests to others.
type Recommendation struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	ContentID int64     `json:"contentId"`
	IsPublic  bool      `json:"isPublic"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Review is free-form user commentary on content.
type Review struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	ContentID   int64     `json:"contentId"`
	Description string    `json:"description"`
	IsPrivate   bool      `json:"isPrivate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Rating is a 1-10 score, one per user and content, upserted in place.
type Rating struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	ContentID int64     `json:"contentId"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
