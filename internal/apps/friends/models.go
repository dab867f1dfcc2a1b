package friends

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
)

// Friendship is a directed edge: user_id sent the request, friend_id must
// accept it. Once accepted the relation is symmetric. PairKey is the
// order-normalized form of the two ids; its unique index guarantees at most
// one row per unordered pair regardless of direction.
type Friendship struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	FriendID  uuid.UUID `gorm:"type:uuid;not null;index" json:"friend_id"`
	PairKey   string    `gorm:"size:80;not null;uniqueIndex" json:"-"`
	Status    string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// pairKey returns the same value for (a,b) and (b,a).
func pairKey(a, b uuid.UUID) string {
	if a.String() > b.String() {
		a, b = b, a
	}
	return a.String() + ":" + b.String()
}

// --- DTOs ---

type SendRequestBody struct {
	Username string `json:"username" validate:"required"`
}

// FriendEntry is a friendship row seen from one side, joined with the
// counterpart's profile.
type FriendEntry struct {
	FriendshipID uuid.UUID `json:"friendship_id"`
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	Since        time.Time `json:"since"`
}

type FriendsListResponse struct {
	Friends []FriendEntry `json:"friends"`
}

type PendingListResponse struct {
	Requests []FriendEntry `json:"requests"`
}
