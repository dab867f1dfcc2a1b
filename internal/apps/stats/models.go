package stats

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LeaderboardEntry is one row of the yearly pages-read ranking among a user
// and their accepted friends.
type LeaderboardEntry struct {
	UserID        uuid.UUID `json:"user_id"`
	Username      string    `json:"username"`
	DisplayName   string    `json:"display_name"`
	AvatarURL     string    `json:"avatar_url"`
	BooksFinished int       `json:"books_finished"`
	PagesRead     int       `json:"pages_read"`
	Rank          int       `json:"rank"`
}

type LeaderboardResponse struct {
	Year    int                `json:"year"`
	Entries []LeaderboardEntry `json:"entries"`
}

type TagCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// ProfileStatsResponse aggregates a single user's shelf for one year plus
// all-time totals.
type ProfileStatsResponse struct {
	Year               int              `json:"year"`
	TotalBooks         int64            `json:"total_books"`
	BooksFinished      int64            `json:"books_finished"`
	BooksFinishedYear  int64            `json:"books_finished_year"`
	PagesRead          int              `json:"pages_read"`
	AverageRating      float64          `json:"average_rating"`
	StatusCounts       map[string]int64 `json:"status_counts"`
	TopTags            []TagCount       `json:"top_tags"`
	AverageReadingDays float64          `json:"average_reading_days"`
}

// ReadingFriend is a friend with a book currently in progress.
type ReadingFriend struct {
	UserID      uuid.UUID  `json:"user_id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	AvatarURL   string     `json:"avatar_url"`
	BookID      uuid.UUID  `json:"book_id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	CoverURL    string     `json:"cover_image_url"`
	StartDate   *time.Time `json:"start_date"`
}

// Recommendation is a friend's public book flagged recommend_to_friends that
// the requesting user does not already have on their own shelf.
type Recommendation struct {
	BookID      uuid.UUID `json:"book_id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	CoverURL    string    `json:"cover_image_url"`
	Rating      *int      `json:"rating"`
	Review      string    `json:"review"`
	FriendID    uuid.UUID `json:"friend_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
}

// FeedEntry is an activity row enriched with its actor's profile.
type FeedEntry struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	Username    string         `json:"username"`
	DisplayName string         `json:"display_name"`
	AvatarURL   string         `json:"avatar_url"`
	Type        string         `json:"activity_type"`
	BookID      *uuid.UUID     `json:"book_id,omitempty"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

type FeedResponse struct {
	Activities []FeedEntry `json:"activities"`
}
