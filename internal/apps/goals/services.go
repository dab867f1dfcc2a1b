package goals

import (
	"errors"
	"fmt"
	"time"

	"github.com/booklyapp/bookly-server/internal/apps/books"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrGoalNotFound = errors.New("no reading goal for that year")

type GoalService struct {
	db *gorm.DB
}

func NewGoalService(db *gorm.DB) *GoalService {
	return &GoalService{db: db}
}

// Upsert creates or replaces the target for (user, year). The unique index
// resolves two concurrent first-time upserts; the loser retries as an update.
func (s *GoalService) Upsert(userID uuid.UUID, year, targetBooks int) (*ReadingGoal, error) {
	var goal ReadingGoal
	err := s.db.Where("user_id = ? AND year = ?", userID, year).First(&goal).Error
	if err == nil {
		goal.TargetBooks = targetBooks
		if err := s.db.Save(&goal).Error; err != nil {
			return nil, fmt.Errorf("failed to update goal: %w", err)
		}
		return &goal, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	goal = ReadingGoal{
		ID:          uuid.New(),
		UserID:      userID,
		Year:        year,
		TargetBooks: targetBooks,
	}
	if err := s.db.Create(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.Upsert(userID, year, targetBooks)
		}
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return &goal, nil
}

// Progress reports the goal against finished books whose end_date falls in
// the goal year.
func (s *GoalService) Progress(userID uuid.UUID, year int) (*GoalProgressResponse, error) {
	var goal ReadingGoal
	err := s.db.Where("user_id = ? AND year = ?", userID, year).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := yearStart.AddDate(1, 0, 0)

	var booksRead int64
	err = s.db.Model(&books.Book{}).
		Where("user_id = ? AND status = ? AND end_date >= ? AND end_date < ?",
			userID, books.StatusFinished, yearStart, yearEnd).
		Count(&booksRead).Error
	if err != nil {
		return nil, err
	}

	percentage := float64(booksRead) / float64(goal.TargetBooks) * 100
	if percentage > 100 {
		percentage = 100
	}
	remaining := goal.TargetBooks - int(booksRead)
	if remaining < 0 {
		remaining = 0
	}

	return &GoalProgressResponse{
		Year:        year,
		TargetBooks: goal.TargetBooks,
		BooksRead:   int(booksRead),
		Percentage:  percentage,
		Remaining:   remaining,
	}, nil
}

func (s *GoalService) Delete(userID uuid.UUID, year int) error {
	result := s.db.Where("user_id = ? AND year = ?", userID, year).Delete(&ReadingGoal{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGoalNotFound
	}
	return nil
}
