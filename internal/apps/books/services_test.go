package books_test

import (
	"testing"

	"github.com/booklyapp/bookly-server/internal/apps/activity"
	"github.com/booklyapp/bookly-server/internal/apps/books"
	"github.com/booklyapp/bookly-server/internal/apps/lending"
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

	require.NoError(t, db.AutoMigrate(
		&books.Book{},
		&books.Tag{},
		&books.BookTag{},
		&activity.Activity{},
		&lending.LendingRequest{},
	))
	return db
}

func newBookService(t *testing.T) (*books.BookService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return books.NewBookService(db, activity.NewRecorder(db)), db
}

func countActivities(t *testing.T, db *gorm.DB, activityType string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&activity.Activity{}).
		Where("activity_type = ?", activityType).
		Count(&count).Error)
	return count
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func TestCreate_DefaultsToWishlist(t *testing.T) {
	svc, _ := newBookService(t)
	userID := uuid.New()

	book, err := svc.Create(userID, &books.CreateBookRequest{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)
	assert.Equal(t, books.StatusWishlist, book.Status)
	assert.True(t, book.IsPublic)
	assert.Nil(t, book.StartDate)
	assert.Nil(t, book.EndDate)
}

func TestCreate_DirectlyAsReadingFillsStartDate(t *testing.T) {
	svc, db := newBookService(t)
	userID := uuid.New()

	book, err := svc.Create(userID, &books.CreateBookRequest{
		Title: "Dune", Author: "Frank Herbert", Status: books.StatusReading,
	})
	require.NoError(t, err)
	assert.NotNil(t, book.StartDate)
	assert.Nil(t, book.EndDate)

	// Creating directly in a status appends no activity.
	assert.Zero(t, countActivities(t, db, activity.TypeStartedBook))
}

func TestCreate_PrivateBookStaysPrivate(t *testing.T) {
	svc, db := newBookService(t)
	userID := uuid.New()

	book, err := svc.Create(userID, &books.CreateBookRequest{
		Title: "Diary", Author: "Me", IsPublic: boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, book.IsPublic)

	// The stored row must be private too, not just the returned struct.
	var stored books.Book
	require.NoError(t, db.First(&stored, "id = ?", book.ID).Error)
	assert.False(t, stored.IsPublic)
}

func TestCreate_InvalidStatus(t *testing.T) {
	svc, _ := newBookService(t)

	_, err := svc.Create(uuid.New(), &books.CreateBookRequest{
		Title: "Dune", Author: "Frank Herbert", Status: "paused",
	})
	assert.ErrorIs(t, err, books.ErrInvalidStatus)
}

func TestUpdate_FinishTransition(t *testing.T) {
	svc, db := newBookService(t)
	userID := uuid.New()

	book, err := svc.Create(userID, &books.CreateBookRequest{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	updated, err := svc.Update(userID, book.ID, &books.UpdateBookRequest{
		Status: strPtr(books.StatusFinished),
	})
	require.NoError(t, err)
	assert.Equal(t, books.StatusFinished, updated.Status)
	require.NotNil(t, updated.EndDate)
	// A book finished without ever entering reading gets its start backfilled.
	require.NotNil(t, updated.StartDate)

	assert.Equal(t, int64(1), countActivities(t, db, activity.TypeFinishedBook))

	// Re-sending finished changes nothing and appends nothing.
	_, err = svc.Update(userID, book.ID, &books.UpdateBookRequest{
		Status: strPtr(books.StatusFinished),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), countActivities(t, db, activity.TypeFinishedBook))
}

func TestUpdate_StartReadingTransition(t *testing.T) {
	svc, db := newBookService(t)
	userID := uuid.New()

	book, err := svc.Create(userID, &books.CreateBookRequest{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	updated, err := svc.Update(userID, book.ID, &books.UpdateBookRequest{
		Status: strPtr(books.StatusReading),
	})
	require.NoError(t, err)
	assert.NotNil(t, updated.StartDate)
	assert.Equal(t, int64(1), countActivities(t, db, activity.TypeStartedBook))
}

func TestUpdate_StoppedKeepsPagesRead(t *testing.T) {
	svc, _ := newBookService(t)
	userID := uuid.New()

	book, err := svc.Create(userID, &books.CreateBookRequest{
		Title: "Dune", Author: "Frank Herbert", Status: books.StatusReading, PageCount: 600,
	})
	require.NoError(t, err)

	updated, err := svc.Update(userID, book.ID, &books.UpdateBookRequest{
		Status:    strPtr(books.StatusStopped),
		PagesRead: intPtr(150),
	})
	require.NoError(t, err)
	assert.Equal(t, books.StatusStopped, updated.Status)
	assert.Equal(t, 150, updated.PagesRead)
	assert.NotNil(t, updated.EndDate)

	// pages_read can still be corrected after the book is already stopped.
	updated, err = svc.Update(userID, book.ID, &books.UpdateBookRequest{
		PagesRead: intPtr(180),
	})
	require.NoError(t, err)
	assert.Equal(t, books.StatusStopped, updated.Status)
	assert.Equal(t, 180, updated.PagesRead)
}

func TestUpdate_RatingAndReviewActivities(t *testing.T) {
	svc, db := newBookService(t)
	userID := uuid.New()

	book, err := svc.Create(userID, &books.CreateBookRequest{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	_, err = svc.Update(userID, book.ID, &books.UpdateBookRequest{Rating: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), countActivities(t, db, activity.TypeRatedBook))

	// Same rating again is not a change.
	_, err = svc.Update(userID, book.ID, &books.UpdateBookRequest{Rating: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), countActivities(t, db, activity.TypeRatedBook))

	_, err = svc.Update(userID, book.ID, &books.UpdateBookRequest{Rating: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), countActivities(t, db, activity.TypeRatedBook))

	_, err = svc.Update(userID, book.ID, &books.UpdateBookRequest{Review: strPtr("A classic.")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), countActivities(t, db, activity.TypeAddedReview))
}

func TestUpdate_InvalidRating(t *testing.T) {
	svc, _ := newBookService(t)
	userID := uuid.New()

	book, err := svc.Create(userID, &books.CreateBookRequest{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	_, err = svc.Update(userID, book.ID, &books.UpdateBookRequest{Rating: intPtr(6)})
	assert.ErrorIs(t, err, books.ErrInvalidRating)
	_, err = svc.Update(userID, book.ID, &books.UpdateBookRequest{Rating: intPtr(0)})
	assert.ErrorIs(t, err, books.ErrInvalidRating)
}

func TestUpdate_OwnerScoped(t *testing.T) {
	svc, _ := newBookService(t)
	owner := uuid.New()

	book, err := svc.Create(owner, &books.CreateBookRequest{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	_, err = svc.Update(uuid.New(), book.ID, &books.UpdateBookRequest{Title: strPtr("Hijacked")})
	assert.ErrorIs(t, err, books.ErrBookNotFound)
}

func TestDelete_CascadesTagLinksAndLendingRequests(t *testing.T) {
	svc, db := newBookService(t)
	tags := books.NewTagService(db)
	owner := uuid.New()

	book, err := svc.Create(owner, &books.CreateBookRequest{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	tag, err := tags.Create(owner, "sci-fi")
	require.NoError(t, err)
	require.NoError(t, tags.Attach(owner, book.ID, tag.ID))

	require.NoError(t, db.Create(&lending.LendingRequest{
		ID:          uuid.New(),
		RequesterID: uuid.New(),
		OwnerID:     owner,
		BookID:      book.ID,
		Status:      lending.StatusPending,
	}).Error)

	require.NoError(t, svc.Delete(owner, book.ID))

	var links, requests int64
	require.NoError(t, db.Model(&books.BookTag{}).Where("book_id = ?", book.ID).Count(&links).Error)
	require.NoError(t, db.Model(&lending.LendingRequest{}).Where("book_id = ?", book.ID).Count(&requests).Error)
	assert.Zero(t, links)
	assert.Zero(t, requests)

	// The tag itself survives.
	list, err := tags.List(owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTags_PerUserUniqueness(t *testing.T) {
	_, db := newBookService(t)
	tags := books.NewTagService(db)
	alice := uuid.New()
	bob := uuid.New()

	_, err := tags.Create(alice, "sci-fi")
	require.NoError(t, err)

	_, err = tags.Create(alice, "sci-fi")
	assert.ErrorIs(t, err, books.ErrTagExists)

	// Same name under a different user is a different tag.
	_, err = tags.Create(bob, "sci-fi")
	require.NoError(t, err)
}

func TestTags_AttachShowsUpOnGet(t *testing.T) {
	svc, db := newBookService(t)
	tags := books.NewTagService(db)
	owner := uuid.New()

	book, err := svc.Create(owner, &books.CreateBookRequest{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)
	tag, err := tags.Create(owner, "sci-fi")
	require.NoError(t, err)

	require.NoError(t, tags.Attach(owner, book.ID, tag.ID))
	// Attaching twice is a no-op.
	require.NoError(t, tags.Attach(owner, book.ID, tag.ID))

	got, err := svc.Get(owner, book.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "sci-fi", got.Tags[0].Name)

	require.NoError(t, tags.Detach(owner, book.ID, tag.ID))
	got, err = svc.Get(owner, book.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestList_FiltersByStatus(t *testing.T) {
	svc, _ := newBookService(t)
	owner := uuid.New()

	_, err := svc.Create(owner, &books.CreateBookRequest{Title: "A", Author: "X"})
	require.NoError(t, err)
	_, err = svc.Create(owner, &books.CreateBookRequest{Title: "B", Author: "X", Status: books.StatusReading})
	require.NoError(t, err)

	all, err := svc.List(owner, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	reading, err := svc.List(owner, books.StatusReading)
	require.NoError(t, err)
	require.Equal(t, int64(1), reading.Total)
	assert.Equal(t, "B", reading.Books[0].Title)

	_, err = svc.List(owner, "bogus")
	assert.ErrorIs(t, err, books.ErrInvalidStatus)
}
