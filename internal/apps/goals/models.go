package goals

import (
	"time"

	"github.com/google/uuid"
)

// ReadingGoal is the yearly target. At most one row per (user, year).
type ReadingGoal struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_goals_user_year" json:"user_id"`
	Year        int       `gorm:"not null;uniqueIndex:idx_goals_user_year" json:"year"`
	TargetBooks int       `gorm:"not null" json:"target_books"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// --- DTOs ---

type UpsertGoalRequest struct {
	Year        int `json:"year" validate:"required,min=2000,max=2200"`
	TargetBooks int `json:"target_books" validate:"required,min=1,max=1000"`
}

type GoalProgressResponse struct {
	Year        int     `json:"year"`
	TargetBooks int     `json:"target_books"`
	BooksRead   int     `json:"books_read"`
	Percentage  float64 `json:"percentage"`
	Remaining   int     `json:"remaining"`
}
