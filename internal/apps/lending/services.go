package lending

import (
	"errors"
	"fmt"

	"github.com/booklyapp/bookly-server/internal/apps/books"
	"github.com/booklyapp/bookly-server/internal/apps/friends"
	"github.com/booklyapp/bookly-server/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBookNotFound     = errors.New("book not found")
	ErrOwnBook          = errors.New("you cannot borrow your own book")
	ErrNotFriends       = errors.New("you can only borrow books from friends")
	ErrNotLendable      = errors.New("this book is not available for lending")
	ErrAlreadyRequested = errors.New("you already have a pending request for this book")
	ErrAlreadyLent      = errors.New("this book is already lent out")
	ErrRequestNotFound  = errors.New("lending request not found")
	ErrNotOwner         = errors.New("only the book owner can respond to this request")
	ErrNotPending       = errors.New("request is no longer pending")
	ErrNotApproved      = errors.New("request is not approved")
	ErrInvalidDecision  = errors.New("decision must be approved or rejected")
)

type LendingService struct {
	db *gorm.DB
}

func NewLendingService(db *gorm.DB) *LendingService {
	return &LendingService{db: db}
}

// CreateRequest opens a borrow negotiation. The partial unique indexes on
// lending_requests catch two creates racing past the pre-checks.
func (s *LendingService) CreateRequest(requesterID, bookID uuid.UUID, message string) (*LendingRequest, error) {
	var book books.Book
	err := s.db.First(&book, "id = ?", bookID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}

	if book.UserID == requesterID {
		return nil, ErrOwnBook
	}

	areFriends, err := friends.AreFriends(s.db, requesterID, book.UserID)
	if err != nil {
		return nil, err
	}
	if !areFriends {
		return nil, ErrNotFriends
	}
	if !book.AvailableForLending {
		return nil, ErrNotLendable
	}

	var count int64
	if err := s.db.Model(&LendingRequest{}).
		Where("book_id = ? AND requester_id = ? AND status = ?", bookID, requesterID, StatusPending).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyRequested
	}

	if err := s.db.Model(&LendingRequest{}).
		Where("book_id = ? AND status = ?", bookID, StatusApproved).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyLent
	}

	request := LendingRequest{
		ID:          uuid.New(),
		RequesterID: requesterID,
		OwnerID:     book.UserID,
		BookID:      bookID,
		Message:     message,
		Status:      StatusPending,
	}
	if err := s.db.Create(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyRequested
		}
		return nil, fmt.Errorf("failed to create lending request: %w", err)
	}
	return &request, nil
}

// Respond approves or rejects a pending request. Only the book owner may
// respond. Approval is guarded by the one-approved-per-book index.
func (s *LendingService) Respond(requestID, actingUserID uuid.UUID, decision, responseMessage string) (*LendingRequest, error) {
	if decision != StatusApproved && decision != StatusRejected {
		return nil, ErrInvalidDecision
	}

	var request LendingRequest
	err := s.db.First(&request, "id = ?", requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}

	if request.OwnerID != actingUserID {
		return nil, ErrNotOwner
	}
	if request.Status != StatusPending {
		return nil, ErrNotPending
	}

	request.Status = decision
	request.ResponseMessage = responseMessage
	if err := s.db.Save(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyLent
		}
		return nil, fmt.Errorf("failed to respond to lending request: %w", err)
	}
	return &request, nil
}

// MarkReturned closes out an approved loan. Only the owner may confirm.
func (s *LendingService) MarkReturned(requestID, actingUserID uuid.UUID) (*LendingRequest, error) {
	var request LendingRequest
	err := s.db.First(&request, "id = ?", requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}

	if request.OwnerID != actingUserID {
		return nil, ErrNotOwner
	}
	if request.Status != StatusApproved {
		return nil, ErrNotApproved
	}

	request.Status = StatusReturned
	if err := s.db.Save(&request).Error; err != nil {
		return nil, fmt.Errorf("failed to mark request returned: %w", err)
	}
	return &request, nil
}

// ListReceived returns requests for books the user owns, newest first.
func (s *LendingService) ListReceived(ownerID uuid.UUID) ([]RequestEntry, error) {
	var rows []LendingRequest
	err := s.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return s.enrich(rows, true)
}

// ListSent returns requests the user made, newest first.
func (s *LendingService) ListSent(requesterID uuid.UUID) ([]RequestEntry, error) {
	var rows []LendingRequest
	err := s.db.Where("requester_id = ?", requesterID).Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return s.enrich(rows, false)
}

// enrich joins each request with the counterpart profile and the book.
// For received requests the counterpart is the requester, for sent ones the
// owner.
func (s *LendingService) enrich(rows []LendingRequest, received bool) ([]RequestEntry, error) {
	profileIDs := make([]uuid.UUID, 0, len(rows))
	bookIDs := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		if received {
			profileIDs = append(profileIDs, r.RequesterID)
		} else {
			profileIDs = append(profileIDs, r.OwnerID)
		}
		bookIDs = append(bookIDs, r.BookID)
	}

	profileMap := make(map[uuid.UUID]models.Profile)
	bookMap := make(map[uuid.UUID]books.Book)
	if len(rows) > 0 {
		var profiles []models.Profile
		if err := s.db.Where("id IN ?", profileIDs).Find(&profiles).Error; err != nil {
			return nil, fmt.Errorf("failed to load profiles: %w", err)
		}
		for _, p := range profiles {
			profileMap[p.ID] = p
		}

		var bookList []books.Book
		if err := s.db.Where("id IN ?", bookIDs).Find(&bookList).Error; err != nil {
			return nil, fmt.Errorf("failed to load books: %w", err)
		}
		for _, b := range bookList {
			bookMap[b.ID] = b
		}
	}

	entries := make([]RequestEntry, 0, len(rows))
	for _, r := range rows {
		counterpartID := r.RequesterID
		if !received {
			counterpartID = r.OwnerID
		}
		p := profileMap[counterpartID]
		b := bookMap[r.BookID]
		entries = append(entries, RequestEntry{
			ID:                  r.ID,
			Status:              r.Status,
			Message:             r.Message,
			ResponseMessage:     r.ResponseMessage,
			CreatedAt:           r.CreatedAt,
			UpdatedAt:           r.UpdatedAt,
			CounterpartID:       counterpartID,
			CounterpartUsername: p.Username,
			CounterpartName:     p.Name(),
			BookID:              r.BookID,
			BookTitle:           b.Title,
			BookAuthor:          b.Author,
			BookCoverURL:        b.CoverImageURL,
		})
	}
	return entries, nil
}
