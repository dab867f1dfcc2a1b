package lending

import (
	"strings"
	"testing"

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
		&activity.Activity{},
		&books.Book{},
		&LendingRequest{},
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

func createBook(t *testing.T, db *gorm.DB, owner uuid.UUID, title string, lendable bool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Create(&books.Book{
		ID:                  id,
		UserID:              owner,
		Title:               title,
		Author:              "Author",
		Status:              books.StatusFinished,
		IsPublic:            true,
		AvailableForLending: lendable,
	}).Error)
	return id
}

func TestCreateRequest_Gates(t *testing.T) {
	db := newTestDB(t)
	svc := NewLendingService(db)
	owner := createUser(t, db, "owner")
	borrower := createUser(t, db, "borrower")
	bookID := createBook(t, db, owner, "Dune", true)

	_, err := svc.CreateRequest(borrower, uuid.New(), "")
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, err = svc.CreateRequest(owner, bookID, "")
	assert.ErrorIs(t, err, ErrOwnBook)

	_, err = svc.CreateRequest(borrower, bookID, "")
	assert.ErrorIs(t, err, ErrNotFriends)

	makeFriends(t, db, borrower, "owner", owner)

	lockedID := createBook(t, db, owner, "Locked", false)
	_, err = svc.CreateRequest(borrower, lockedID, "")
	assert.ErrorIs(t, err, ErrNotLendable)

	req, err := svc.CreateRequest(borrower, bookID, "please?")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, req.Status)
	assert.Equal(t, owner, req.OwnerID)
}

func TestCreateRequest_PendingDedup(t *testing.T) {
	db := newTestDB(t)
	svc := NewLendingService(db)
	owner := createUser(t, db, "owner")
	borrower := createUser(t, db, "borrower")
	makeFriends(t, db, borrower, "owner", owner)
	bookID := createBook(t, db, owner, "Dune", true)

	_, err := svc.CreateRequest(borrower, bookID, "")
	require.NoError(t, err)

	_, err = svc.CreateRequest(borrower, bookID, "again")
	assert.ErrorIs(t, err, ErrAlreadyRequested)
}

func TestApprovedExclusivityUntilReturned(t *testing.T) {
	db := newTestDB(t)
	svc := NewLendingService(db)
	owner := createUser(t, db, "owner")
	first := createUser(t, db, "first")
	second := createUser(t, db, "second")
	makeFriends(t, db, first, "owner", owner)
	makeFriends(t, db, second, "owner", owner)
	bookID := createBook(t, db, owner, "Dune", true)

	req, err := svc.CreateRequest(first, bookID, "")
	require.NoError(t, err)
	approved, err := svc.Respond(req.ID, owner, StatusApproved, "enjoy")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)

	// While lent out, nobody else can open a request on the book.
	_, err = svc.CreateRequest(second, bookID, "")
	assert.ErrorIs(t, err, ErrAlreadyLent)

	_, err = svc.MarkReturned(req.ID, owner)
	require.NoError(t, err)

	_, err = svc.CreateRequest(second, bookID, "")
	require.NoError(t, err)
}

func TestRespond_Rules(t *testing.T) {
	db := newTestDB(t)
	svc := NewLendingService(db)
	owner := createUser(t, db, "owner")
	borrower := createUser(t, db, "borrower")
	makeFriends(t, db, borrower, "owner", owner)
	bookID := createBook(t, db, owner, "Dune", true)

	req, err := svc.CreateRequest(borrower, bookID, "")
	require.NoError(t, err)

	_, err = svc.Respond(req.ID, owner, "maybe", "")
	assert.ErrorIs(t, err, ErrInvalidDecision)

	_, err = svc.Respond(req.ID, borrower, StatusApproved, "")
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.Respond(uuid.New(), owner, StatusApproved, "")
	assert.ErrorIs(t, err, ErrRequestNotFound)

	_, err = svc.Respond(req.ID, owner, StatusRejected, "sorry")
	require.NoError(t, err)

	_, err = svc.Respond(req.ID, owner, StatusApproved, "")
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestMarkReturned_OnlyApproved(t *testing.T) {
	db := newTestDB(t)
	svc := NewLendingService(db)
	owner := createUser(t, db, "owner")
	borrower := createUser(t, db, "borrower")
	makeFriends(t, db, borrower, "owner", owner)
	bookID := createBook(t, db, owner, "Dune", true)

	req, err := svc.CreateRequest(borrower, bookID, "")
	require.NoError(t, err)

	_, err = svc.MarkReturned(req.ID, owner)
	assert.ErrorIs(t, err, ErrNotApproved)

	_, err = svc.Respond(req.ID, owner, StatusApproved, "")
	require.NoError(t, err)

	_, err = svc.MarkReturned(req.ID, borrower)
	assert.ErrorIs(t, err, ErrNotOwner)

	returned, err := svc.MarkReturned(req.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, StatusReturned, returned.Status)
}

func TestLists_EnrichCounterpartAndBook(t *testing.T) {
	db := newTestDB(t)
	svc := NewLendingService(db)
	owner := createUser(t, db, "owner")
	borrower := createUser(t, db, "borrower")
	makeFriends(t, db, borrower, "owner", owner)
	bookID := createBook(t, db, owner, "Dune", true)

	req, err := svc.CreateRequest(borrower, bookID, "pretty please")
	require.NoError(t, err)
	_, err = svc.Respond(req.ID, owner, StatusApproved, "bring it back in one piece")
	require.NoError(t, err)

	received, err := svc.ListReceived(owner)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "borrower", received[0].CounterpartUsername)
	assert.Equal(t, "Dune", received[0].BookTitle)
	assert.Equal(t, "pretty please", received[0].Message)

	sent, err := svc.ListSent(borrower)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "owner", sent[0].CounterpartUsername)
	assert.Equal(t, StatusApproved, sent[0].Status)
	assert.Equal(t, "bring it back in one piece", sent[0].ResponseMessage)
}
