package books

import (
	"time"

	"github.com/google/uuid"
)

// Reading statuses. A book may move between any two of them; finished and
// stopped are terminal only in the sense that nothing forces a book onward.
const (
	StatusWishlist   = "wishlist"
	StatusWantToRead = "want_to_read"
	StatusReading    = "reading"
	StatusFinished   = "finished"
	StatusStopped    = "stopped"
)

var ValidStatuses = []string{StatusWishlist, StatusWantToRead, StatusReading, StatusFinished, StatusStopped}

type Book struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Title               string     `gorm:"size:500;not null" json:"title"`
	Author              string     `gorm:"size:255;not null" json:"author"`
	Description         string     `gorm:"type:text" json:"description"`
	CoverImageURL       string     `gorm:"type:text" json:"cover_image_url"`
	ISBN                string     `gorm:"size:20" json:"isbn"`
	Publisher           string     `gorm:"size:255" json:"publisher"`
	Language            string     `gorm:"size:10" json:"language"`
	Status              string     `gorm:"size:20;not null;index" json:"status"`
	StartDate           *time.Time `json:"start_date"`
	EndDate             *time.Time `json:"end_date"`
	Rating              *int       `json:"rating"`
	Review              string     `gorm:"type:text" json:"review"`
	IsPublic            bool       `json:"is_public"`
	PageCount           int        `gorm:"default:0" json:"page_count"`
	PagesRead           int        `gorm:"default:0" json:"pages_read"`
	RecommendToFriends  bool       `gorm:"default:false" json:"recommend_to_friends"`
	AvailableForLending bool       `gorm:"default:false" json:"available_for_lending"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `gorm:"index" json:"updated_at"`
}

// Tag is a per-user label. The same text may exist independently per user.
type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tags_user_name" json:"user_id"`
	Name      string    `gorm:"size:50;not null;uniqueIndex:idx_tags_user_name" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type BookTag struct {
	BookID uuid.UUID `gorm:"type:uuid;primaryKey" json:"book_id"`
	TagID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"tag_id"`
}

// --- DTOs ---

type CreateBookRequest struct {
	Title               string `json:"title" validate:"required,max=500"`
	Author              string `json:"author" validate:"required,max=255"`
	Description         string `json:"description"`
	CoverImageURL       string `json:"cover_image_url"`
	ISBN                string `json:"isbn" validate:"omitempty,max=20"`
	Publisher           string `json:"publisher"`
	Language            string `json:"language" validate:"omitempty,max=10"`
	Status              string `json:"status"`
	PageCount           int    `json:"page_count" validate:"omitempty,min=0"`
	IsPublic            *bool  `json:"is_public"`
	RecommendToFriends  bool   `json:"recommend_to_friends"`
	AvailableForLending bool   `json:"available_for_lending"`
}

// UpdateBookRequest uses pointers so "not sent" and "set to zero value" are
// distinguishable; the status state machine depends on that.
type UpdateBookRequest struct {
	Title               *string `json:"title"`
	Author              *string `json:"author"`
	Description         *string `json:"description"`
	CoverImageURL       *string `json:"cover_image_url"`
	ISBN                *string `json:"isbn"`
	Publisher           *string `json:"publisher"`
	Language            *string `json:"language"`
	Status              *string `json:"status"`
	Rating              *int    `json:"rating"`
	Review              *string `json:"review"`
	PageCount           *int    `json:"page_count"`
	PagesRead           *int    `json:"pages_read"`
	IsPublic            *bool   `json:"is_public"`
	RecommendToFriends  *bool   `json:"recommend_to_friends"`
	AvailableForLending *bool   `json:"available_for_lending"`
}

type CreateTagRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

type BookListResponse struct {
	Books []Book `json:"books"`
	Total int64  `json:"total"`
}

type BookWithTags struct {
	Book
	Tags []Tag `json:"tags"`
}
