package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/booklyapp/bookly-server/internal/apps/activity"
	"github.com/booklyapp/bookly-server/internal/apps/books"
	"github.com/booklyapp/bookly-server/internal/apps/friends"
	"github.com/booklyapp/bookly-server/internal/models"
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
		&models.Profile{},
		&friends.Friendship{},
		&books.Book{},
		&books.Tag{},
		&books.BookTag{},
		&activity.Activity{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Create(&models.Profile{
		ID:            id,
		Username:      username,
		UsernameLower: strings.ToLower(username),
	}).Error)
	return id
}

func makeFriends(t *testing.T, db *gorm.DB, a uuid.UUID, bUsername string, b uuid.UUID) {
	t.Helper()
	svc := friends.NewFriendService(db, activity.NewRecorder(db))
	f, err := svc.SendRequest(a, bUsername)
	require.NoError(t, err)
	_, err = svc.Accept(f.ID, b)
	require.NoError(t, err)
}

func addBook(t *testing.T, db *gorm.DB, b books.Book) {
	t.Helper()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Author == "" {
		b.Author = "Author"
	}
	require.NoError(t, db.Create(&b).Error)
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestLeaderboard_RanksByPages(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	stranger := createUser(t, db, "stranger")
	makeFriends(t, db, alice, "bob", bob)

	// Alice: one 320-page finish this year.
	addBook(t, db, books.Book{UserID: alice, Title: "Big", Status: books.StatusFinished,
		PageCount: 320, EndDate: datePtr(2026, time.May, 1)})
	// Bob: a 200-page finish plus 50 pages from a stopped book.
	addBook(t, db, books.Book{UserID: bob, Title: "Mid", Status: books.StatusFinished,
		PageCount: 200, EndDate: datePtr(2026, time.April, 1)})
	addBook(t, db, books.Book{UserID: bob, Title: "Abandoned", Status: books.StatusStopped,
		PageCount: 400, PagesRead: 50, EndDate: datePtr(2026, time.June, 1)})
	// A finish from another year stays out.
	addBook(t, db, books.Book{UserID: bob, Title: "Old", Status: books.StatusFinished,
		PageCount: 999, EndDate: datePtr(2024, time.May, 1)})
	// Strangers stay out entirely.
	addBook(t, db, books.Book{UserID: stranger, Title: "Huge", Status: books.StatusFinished,
		PageCount: 5000, EndDate: datePtr(2026, time.May, 1)})

	resp, err := svc.Leaderboard(alice, 2026, 10)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)

	assert.Equal(t, "alice", resp.Entries[0].Username)
	assert.Equal(t, 320, resp.Entries[0].PagesRead)
	assert.Equal(t, 1, resp.Entries[0].BooksFinished)
	assert.Equal(t, 1, resp.Entries[0].Rank)

	assert.Equal(t, "bob", resp.Entries[1].Username)
	assert.Equal(t, 250, resp.Entries[1].PagesRead)
	assert.Equal(t, 2, resp.Entries[1].Rank)
}

func TestLeaderboard_CountsFinishesWithoutEndDate(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db)
	alice := createUser(t, db, "alice")

	// Rows migrated before end dates were tracked have none.
	addBook(t, db, books.Book{UserID: alice, Title: "Legacy", Status: books.StatusFinished, PageCount: 100})

	resp, err := svc.Leaderboard(alice, 2026, 10)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, 100, resp.Entries[0].PagesRead)
}

func TestProfileStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db)
	alice := createUser(t, db, "alice")

	four, five := 4, 5
	addBook(t, db, books.Book{UserID: alice, Title: "A", Status: books.StatusFinished, PageCount: 300,
		Rating: &five, StartDate: datePtr(2026, time.January, 1), EndDate: datePtr(2026, time.January, 11)})
	addBook(t, db, books.Book{UserID: alice, Title: "B", Status: books.StatusFinished, PageCount: 200,
		Rating: &four, StartDate: datePtr(2025, time.June, 1), EndDate: datePtr(2025, time.June, 21)})
	addBook(t, db, books.Book{UserID: alice, Title: "C", Status: books.StatusReading})
	addBook(t, db, books.Book{UserID: alice, Title: "D", Status: books.StatusWishlist})

	resp, err := svc.ProfileStats(alice, 2026)
	require.NoError(t, err)

	assert.Equal(t, int64(4), resp.TotalBooks)
	assert.Equal(t, int64(2), resp.BooksFinished)
	assert.Equal(t, int64(1), resp.BooksFinishedYear)
	assert.Equal(t, 300, resp.PagesRead)
	assert.InDelta(t, 4.5, resp.AverageRating, 0.001)
	assert.Equal(t, int64(1), resp.StatusCounts[books.StatusReading])
	assert.Equal(t, int64(1), resp.StatusCounts[books.StatusWishlist])
	assert.Equal(t, int64(0), resp.StatusCounts[books.StatusStopped])
	// (11-1 + 21-1) / 2 = 15 days on average.
	assert.InDelta(t, 15.0, resp.AverageReadingDays, 0.001)
}

func TestProfileStats_TopTags(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db)
	alice := createUser(t, db, "alice")

	sciFi := books.Tag{ID: uuid.New(), UserID: alice, Name: "sci-fi"}
	fantasy := books.Tag{ID: uuid.New(), UserID: alice, Name: "fantasy"}
	require.NoError(t, db.Create(&sciFi).Error)
	require.NoError(t, db.Create(&fantasy).Error)

	b1, b2 := uuid.New(), uuid.New()
	addBook(t, db, books.Book{ID: b1, UserID: alice, Title: "A", Status: books.StatusFinished})
	addBook(t, db, books.Book{ID: b2, UserID: alice, Title: "B", Status: books.StatusFinished})
	require.NoError(t, db.Create(&books.BookTag{BookID: b1, TagID: sciFi.ID}).Error)
	require.NoError(t, db.Create(&books.BookTag{BookID: b2, TagID: sciFi.ID}).Error)
	require.NoError(t, db.Create(&books.BookTag{BookID: b1, TagID: fantasy.ID}).Error)

	resp, err := svc.ProfileStats(alice, 2026)
	require.NoError(t, err)
	require.Len(t, resp.TopTags, 2)
	assert.Equal(t, "sci-fi", resp.TopTags[0].Name)
	assert.Equal(t, int64(2), resp.TopTags[0].Count)
	assert.Equal(t, "fantasy", resp.TopTags[1].Name)
}

func TestFriendsCurrentlyReading(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	makeFriends(t, db, alice, "bob", bob)

	addBook(t, db, books.Book{UserID: bob, Title: "Stale", Status: books.StatusReading,
		IsPublic: true, StartDate: datePtr(2026, time.August, 10),
		UpdatedAt: time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)})
	addBook(t, db, books.Book{UserID: bob, Title: "Fresh", Status: books.StatusReading,
		IsPublic: true, StartDate: datePtr(2026, time.July, 1),
		UpdatedAt: time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC)})
	addBook(t, db, books.Book{UserID: bob, Title: "Hidden", Status: books.StatusReading, IsPublic: false})
	addBook(t, db, books.Book{UserID: bob, Title: "Done", Status: books.StatusFinished, IsPublic: true})

	rows, err := svc.FriendsCurrentlyReading(alice, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// Most recently updated first, regardless of start date.
	assert.Equal(t, "Fresh", rows[0].Title)
	assert.Equal(t, "Stale", rows[1].Title)
	assert.Equal(t, "bob", rows[0].Username)
}

func TestRecommendations_SkipsOwnedTitles(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	makeFriends(t, db, alice, "bob", bob)

	addBook(t, db, books.Book{UserID: bob, Title: "Dune", Author: "Frank Herbert",
		Status: books.StatusFinished, IsPublic: true, RecommendToFriends: true})
	addBook(t, db, books.Book{UserID: bob, Title: "Hyperion", Author: "Dan Simmons",
		Status: books.StatusFinished, IsPublic: true, RecommendToFriends: true})
	addBook(t, db, books.Book{UserID: bob, Title: "Quiet Pick", Author: "Someone",
		Status: books.StatusFinished, IsPublic: true, RecommendToFriends: false})

	// Alice already has Dune, case differences included.
	addBook(t, db, books.Book{UserID: alice, Title: "DUNE", Author: "frank herbert", Status: books.StatusWishlist})

	recs, err := svc.Recommendations(alice)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Hyperion", recs[0].Title)
	assert.Equal(t, "bob", recs[0].Username)
}

func TestFeed_IncludesSelfAndFriendsOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db)
	recorder := activity.NewRecorder(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	stranger := createUser(t, db, "stranger")
	makeFriends(t, db, alice, "bob", bob)

	bookID := uuid.New()
	recorder.FinishedBook(alice, bookID, "Dune", "Frank Herbert")
	recorder.StartedBook(bob, bookID, "Hyperion", "Dan Simmons")
	recorder.FinishedBook(stranger, bookID, "Secret", "Nobody")

	resp, err := svc.Feed(alice, 50)
	require.NoError(t, err)

	usernames := make(map[string]bool)
	for _, e := range resp.Activities {
		usernames[e.Username] = true
	}
	assert.True(t, usernames["alice"])
	assert.True(t, usernames["bob"])
	assert.False(t, usernames["stranger"])

	// Accepting the friendship itself produced added_friend entries, plus the
	// two book events above.
	assert.Len(t, resp.Activities, 4)
}
