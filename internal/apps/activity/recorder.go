package activity

import (
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recorder appends timeline entries. Appends are best-effort: activity rows
// are advisory social state, so a failed insert is logged but never fails the
// book or friendship mutation that triggered it.
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) FinishedBook(userID, bookID uuid.UUID, title, author string) {
	r.record(userID, TypeFinishedBook, &bookID, BookMetadata{Title: title, Author: author})
}

func (r *Recorder) StartedBook(userID, bookID uuid.UUID, title, author string) {
	r.record(userID, TypeStartedBook, &bookID, BookMetadata{Title: title, Author: author})
}

func (r *Recorder) RatedBook(userID, bookID uuid.UUID, title, author string, rating int) {
	r.record(userID, TypeRatedBook, &bookID, RatingMetadata{Title: title, Author: author, Rating: rating})
}

func (r *Recorder) AddedReview(userID, bookID uuid.UUID, title, author string) {
	r.record(userID, TypeAddedReview, &bookID, BookMetadata{Title: title, Author: author})
}

func (r *Recorder) AddedFriend(userID uuid.UUID, friendUsername string) {
	r.record(userID, TypeAddedFriend, nil, FriendMetadata{Username: friendUsername})
}

func (r *Recorder) record(userID uuid.UUID, activityType string, bookID *uuid.UUID, metadata interface{}) {
	entry := Activity{
		ID:     uuid.New(),
		UserID: userID,
		Type:   activityType,
		BookID: bookID,
	}

	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			entry.Metadata = datatypes.JSON(b)
		}
	}

	if err := r.db.Create(&entry).Error; err != nil {
		slog.Error("failed to record activity", "type", activityType, "user_id", userID.String(), "error", err)
	}
}
