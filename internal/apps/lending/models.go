package lending

import (
	"time"

	"github.com/google/uuid"
)

// Lending request lifecycle: pending → approved | rejected; approved →
// returned. Rejected and returned are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusReturned = "returned"
)

// LendingRequest is one borrow negotiation over one book. Two partial unique
// indexes carry the invariants: a book has at most one approved request, and
// a requester has at most one pending request per book.
type LendingRequest struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequesterID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_lending_one_pending" json:"requester_id"`
	OwnerID         uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	BookID          uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_lending_one_approved,where:status = 'approved';uniqueIndex:idx_lending_one_pending,where:status = 'pending'" json:"book_id"`
	Message         string    `gorm:"type:text" json:"message"`
	ResponseMessage string    `gorm:"type:text" json:"response_message"`
	Status          string    `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// --- DTOs ---

type CreateRequestBody struct {
	BookID  uuid.UUID `json:"book_id" validate:"required"`
	Message string    `json:"message" validate:"omitempty,max=1000"`
}

type RespondBody struct {
	Decision        string `json:"decision" validate:"required,oneof=approved rejected"`
	ResponseMessage string `json:"response_message" validate:"omitempty,max=1000"`
}

// RequestEntry is a lending request joined with the counterpart's profile and
// the book it concerns.
type RequestEntry struct {
	ID              uuid.UUID `json:"id"`
	Status          string    `json:"status"`
	Message         string    `json:"message"`
	ResponseMessage string    `json:"response_message"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	CounterpartID       uuid.UUID `json:"counterpart_id"`
	CounterpartUsername string    `json:"counterpart_username"`
	CounterpartName     string    `json:"counterpart_name"`

	BookID        uuid.UUID `json:"book_id"`
	BookTitle     string    `json:"book_title"`
	BookAuthor    string    `json:"book_author"`
	BookCoverURL  string    `json:"book_cover_url"`
}

type RequestListResponse struct {
	Requests []RequestEntry `json:"requests"`
}
