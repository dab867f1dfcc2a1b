package books

import (
	"errors"
	"fmt"
	"time"

	"github.com/booklyapp/bookly-server/internal/apps/activity"
	"github.com/booklyapp/bookly-server/internal/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrTagNotFound   = errors.New("tag not found")
	ErrInvalidStatus = errors.New("invalid reading status")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrTagExists     = errors.New("tag already exists")
)

type BookService struct {
	db       *gorm.DB
	recorder *activity.Recorder
}

func NewBookService(db *gorm.DB, recorder *activity.Recorder) *BookService {
	return &BookService{db: db, recorder: recorder}
}

func (s *BookService) Create(userID uuid.UUID, req *CreateBookRequest) (*Book, error) {
	status := req.Status
	if status == "" {
		status = StatusWishlist
	}
	if !validStatus(status) {
		return nil, ErrInvalidStatus
	}

	book := Book{
		ID:                  uuid.New(),
		UserID:              userID,
		Title:               req.Title,
		Author:              req.Author,
		Description:         req.Description,
		CoverImageURL:       req.CoverImageURL,
		ISBN:                req.ISBN,
		Publisher:           req.Publisher,
		Language:            req.Language,
		Status:              status,
		PageCount:           req.PageCount,
		IsPublic:            true,
		RecommendToFriends:  req.RecommendToFriends,
		AvailableForLending: req.AvailableForLending,
	}
	if req.IsPublic != nil {
		book.IsPublic = *req.IsPublic
	}

	// Books entered directly as reading or finished get their dates filled in,
	// same as the equivalent transition would.
	today := dateOnly(time.Now())
	switch status {
	case StatusReading:
		book.StartDate = &today
	case StatusFinished, StatusStopped:
		book.StartDate = &today
		book.EndDate = &today
	}

	if err := s.db.Create(&book).Error; err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	return &book, nil
}

func (s *BookService) List(userID uuid.UUID, status string) (*BookListResponse, error) {
	query := s.db.Model(&Book{}).Scopes(database.ForOwner(userID))
	if status != "" {
		if !validStatus(status) {
			return nil, ErrInvalidStatus
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var list []Book
	if err := query.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}

	return &BookListResponse{Books: list, Total: total}, nil
}

func (s *BookService) Get(userID, bookID uuid.UUID) (*BookWithTags, error) {
	var book Book
	err := s.db.Scopes(database.ForOwner(userID)).First(&book, "id = ?", bookID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}

	var tags []Tag
	err = s.db.Joins("JOIN book_tags ON book_tags.tag_id = tags.id").
		Where("book_tags.book_id = ?", book.ID).
		Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}

	return &BookWithTags{Book: book, Tags: tags}, nil
}

// Update applies field changes and runs the status state machine. Each
// transition side effect fires exactly once per transition: repeating an
// update that leaves the status unchanged appends nothing.
func (s *BookService) Update(userID, bookID uuid.UUID, req *UpdateBookRequest) (*Book, error) {
	var book Book
	err := s.db.Scopes(database.ForOwner(userID)).First(&book, "id = ?", bookID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}

	prevStatus := book.Status
	prevRating := book.Rating
	prevReview := book.Review

	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return nil, ErrInvalidRating
	}
	if req.Status != nil && !validStatus(*req.Status) {
		return nil, ErrInvalidStatus
	}

	applyBookFields(&book, req)

	today := dateOnly(time.Now())
	enteredReading := false
	enteredFinished := false

	if req.Status != nil && *req.Status != prevStatus {
		switch *req.Status {
		case StatusReading:
			if book.StartDate == nil {
				book.StartDate = &today
			}
			enteredReading = true
		case StatusFinished:
			book.EndDate = &today
			if book.StartDate == nil {
				book.StartDate = &today
			}
			enteredFinished = true
		case StatusStopped:
			book.EndDate = &today
		}
	}

	ratingChanged := req.Rating != nil && (prevRating == nil || *req.Rating != *prevRating)
	reviewChanged := req.Review != nil && *req.Review != "" && *req.Review != prevReview

	if err := s.db.Save(&book).Error; err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	// Activity appends are best-effort and evaluated together; a single update
	// may fire zero, one or several of them.
	if enteredFinished {
		s.recorder.FinishedBook(userID, book.ID, book.Title, book.Author)
	}
	if enteredReading {
		s.recorder.StartedBook(userID, book.ID, book.Title, book.Author)
	}
	if ratingChanged {
		s.recorder.RatedBook(userID, book.ID, book.Title, book.Author, *book.Rating)
	}
	if reviewChanged {
		s.recorder.AddedReview(userID, book.ID, book.Title, book.Author)
	}

	return &book, nil
}

// Delete removes a book together with its tag links and any lending requests
// referencing it, in one transaction. A lending request whose book is gone
// can no longer be displayed or acted on.
func (s *BookService) Delete(userID, bookID uuid.UUID) error {
	var book Book
	err := s.db.Scopes(database.ForOwner(userID)).First(&book, "id = ?", bookID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrBookNotFound
	}
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", book.ID).Delete(&BookTag{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM lending_requests WHERE book_id = ?", book.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&book).Error
	})
}

func (s *BookService) SetCoverURL(userID, bookID uuid.UUID, url string) (*Book, error) {
	var book Book
	err := s.db.Scopes(database.ForOwner(userID)).First(&book, "id = ?", bookID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}

	book.CoverImageURL = url
	if err := s.db.Save(&book).Error; err != nil {
		return nil, fmt.Errorf("failed to store cover url: %w", err)
	}
	return &book, nil
}

func applyBookFields(book *Book, req *UpdateBookRequest) {
	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.CoverImageURL != nil {
		book.CoverImageURL = *req.CoverImageURL
	}
	if req.ISBN != nil {
		book.ISBN = *req.ISBN
	}
	if req.Publisher != nil {
		book.Publisher = *req.Publisher
	}
	if req.Language != nil {
		book.Language = *req.Language
	}
	if req.Status != nil {
		book.Status = *req.Status
	}
	if req.Rating != nil {
		book.Rating = req.Rating
	}
	if req.Review != nil {
		book.Review = *req.Review
	}
	if req.PageCount != nil {
		book.PageCount = *req.PageCount
	}
	if req.PagesRead != nil {
		book.PagesRead = *req.PagesRead
	}
	if req.IsPublic != nil {
		book.IsPublic = *req.IsPublic
	}
	if req.RecommendToFriends != nil {
		book.RecommendToFriends = *req.RecommendToFriends
	}
	if req.AvailableForLending != nil {
		book.AvailableForLending = *req.AvailableForLending
	}
}

func validStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// TagService
// =============================================================================

type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

func (s *TagService) Create(userID uuid.UUID, name string) (*Tag, error) {
	tag := Tag{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
	}
	if err := s.db.Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTagExists
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return &tag, nil
}

func (s *TagService) List(userID uuid.UUID) ([]Tag, error) {
	var tags []Tag
	err := s.db.Scopes(database.ForOwner(userID)).Order("name ASC").Find(&tags).Error
	return tags, err
}

func (s *TagService) Delete(userID, tagID uuid.UUID) error {
	var tag Tag
	err := s.db.Scopes(database.ForOwner(userID)).First(&tag, "id = ?", tagID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTagNotFound
	}
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", tag.ID).Delete(&BookTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
}

// Attach links an owned tag to an owned book. Attaching twice is a no-op.
func (s *TagService) Attach(userID, bookID, tagID uuid.UUID) error {
	var book Book
	if err := s.db.Scopes(database.ForOwner(userID)).First(&book, "id = ?", bookID).Error; err != nil {
		return ErrBookNotFound
	}
	var tag Tag
	if err := s.db.Scopes(database.ForOwner(userID)).First(&tag, "id = ?", tagID).Error; err != nil {
		return ErrTagNotFound
	}

	link := BookTag{BookID: bookID, TagID: tagID}
	err := s.db.Create(&link).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("failed to attach tag: %w", err)
	}
	return nil
}

func (s *TagService) Detach(userID, bookID, tagID uuid.UUID) error {
	var book Book
	if err := s.db.Scopes(database.ForOwner(userID)).First(&book, "id = ?", bookID).Error; err != nil {
		return ErrBookNotFound
	}
	return s.db.Where("book_id = ? AND tag_id = ?", bookID, tagID).Delete(&BookTag{}).Error
}
