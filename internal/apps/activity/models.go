package activity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Activity types. The metadata payload is a typed variant per type, not an
// open-ended blob.
const (
	TypeFinishedBook = "finished_book"
	TypeStartedBook  = "started_book"
	TypeRatedBook    = "rated_book"
	TypeAddedReview  = "added_review"
	TypeAddedFriend  = "added_friend"
)

// Activity is an append-only timeline entry. Rows are never updated or
// deleted through the API.
type Activity struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      string         `gorm:"column:activity_type;size:30;not null" json:"activity_type"`
	BookID    *uuid.UUID     `gorm:"type:uuid;index" json:"book_id,omitempty"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

// BookMetadata accompanies finished_book, started_book and added_review.
type BookMetadata struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// RatingMetadata accompanies rated_book.
type RatingMetadata struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Rating int    `json:"rating"`
}

// FriendMetadata accompanies added_friend.
type FriendMetadata struct {
	Username string `json:"username"`
}
