package goals

import (
	"testing"
	"time"

	"github.com/booklyapp/bookly-server/internal/apps/books"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&ReadingGoal{}, &books.Book{}))
	return db
}

func finishBook(t *testing.T, db *gorm.DB, userID uuid.UUID, endDate time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&books.Book{
		ID:      uuid.New(),
		UserID:  userID,
		Title:   "Book",
		Author:  "Author",
		Status:  books.StatusFinished,
		EndDate: &endDate,
	}).Error)
}

func TestUpsert_OneRowPerUserYear(t *testing.T) {
	db := newTestDB(t)
	svc := NewGoalService(db)
	userID := uuid.New()

	first, err := svc.Upsert(userID, 2026, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, first.TargetBooks)

	second, err := svc.Upsert(userID, 2026, 24)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 24, second.TargetBooks)

	var count int64
	require.NoError(t, db.Model(&ReadingGoal{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsert_SeparateYears(t *testing.T) {
	db := newTestDB(t)
	svc := NewGoalService(db)
	userID := uuid.New()

	_, err := svc.Upsert(userID, 2025, 10)
	require.NoError(t, err)
	_, err = svc.Upsert(userID, 2026, 20)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&ReadingGoal{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestProgress_CountsYearBoundedFinishes(t *testing.T) {
	db := newTestDB(t)
	svc := NewGoalService(db)
	userID := uuid.New()

	_, err := svc.Upsert(userID, 2026, 4)
	require.NoError(t, err)

	finishBook(t, db, userID, time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC))
	finishBook(t, db, userID, time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC))
	// Previous year does not count.
	finishBook(t, db, userID, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	// Other users do not count.
	finishBook(t, db, uuid.New(), time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC))

	progress, err := svc.Progress(userID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.BooksRead)
	assert.Equal(t, 4, progress.TargetBooks)
	assert.InDelta(t, 50.0, progress.Percentage, 0.001)
	assert.Equal(t, 2, progress.Remaining)
}

func TestProgress_CapsAtHundredPercent(t *testing.T) {
	db := newTestDB(t)
	svc := NewGoalService(db)
	userID := uuid.New()

	_, err := svc.Upsert(userID, 2026, 1)
	require.NoError(t, err)
	finishBook(t, db, userID, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	finishBook(t, db, userID, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC))

	progress, err := svc.Progress(userID, 2026)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, progress.Percentage, 0.001)
	assert.Equal(t, 0, progress.Remaining)
}

func TestProgress_NoGoal(t *testing.T) {
	db := newTestDB(t)
	svc := NewGoalService(db)

	_, err := svc.Progress(uuid.New(), 2026)
	assert.ErrorIs(t, err, ErrGoalNotFound)
}

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewGoalService(db)
	userID := uuid.New()

	_, err := svc.Upsert(userID, 2026, 10)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(userID, 2026))
	assert.ErrorIs(t, svc.Delete(userID, 2026), ErrGoalNotFound)
}
