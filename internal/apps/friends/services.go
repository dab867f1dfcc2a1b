package friends

import (
	"errors"
	"fmt"
	"strings"

	"github.com/booklyapp/bookly-server/internal/apps/activity"
	"github.com/booklyapp/bookly-server/internal/apps/books"
	"github.com/booklyapp/bookly-server/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound           = errors.New("no user with that username")
	ErrSelfFriend             = errors.New("you cannot add yourself as a friend")
	ErrAlreadyFriends         = errors.New("you are already friends")
	ErrRequestAlreadySent     = errors.New("friend request already sent")
	ErrRequestAlreadyReceived = errors.New("this user already sent you a friend request")
	ErrRequestNotFound        = errors.New("friend request not found")
	ErrNotRecipient           = errors.New("only the recipient can respond to a friend request")
	ErrNotParticipant         = errors.New("you are not part of this friendship")
	ErrNotPending             = errors.New("friend request is no longer pending")
	ErrNotFriends             = errors.New("you are not friends with this user")
)

type FriendService struct {
	db       *gorm.DB
	recorder *activity.Recorder
}

func NewFriendService(db *gorm.DB, recorder *activity.Recorder) *FriendService {
	return &FriendService{db: db, recorder: recorder}
}

// SendRequest resolves the target by case-insensitive exact username match
// and creates a pending edge. The pair-key unique index is the backstop for
// two requests racing past the existence check from either direction.
func (s *FriendService) SendRequest(requesterID uuid.UUID, targetUsername string) (*Friendship, error) {
	var target models.Profile
	err := s.db.Where("username_lower = LOWER(?)", strings.TrimSpace(targetUsername)).First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if target.ID == requesterID {
		return nil, ErrSelfFriend
	}

	var existing Friendship
	err = s.db.Where("pair_key = ?", pairKey(requesterID, target.ID)).First(&existing).Error
	if err == nil {
		return nil, existingPairError(&existing, requesterID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing friendship: %w", err)
	}

	friendship := Friendship{
		ID:       uuid.New(),
		UserID:   requesterID,
		FriendID: target.ID,
		PairKey:  pairKey(requesterID, target.ID),
		Status:   StatusPending,
	}
	if err := s.db.Create(&friendship).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRequestAlreadySent
		}
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}
	return &friendship, nil
}

func existingPairError(f *Friendship, requesterID uuid.UUID) error {
	if f.Status == StatusAccepted {
		return ErrAlreadyFriends
	}
	if f.UserID == requesterID {
		return ErrRequestAlreadySent
	}
	return ErrRequestAlreadyReceived
}

// Accept transitions pending → accepted. Only the recipient may accept.
func (s *FriendService) Accept(friendshipID, actingUserID uuid.UUID) (*Friendship, error) {
	var friendship Friendship
	err := s.db.First(&friendship, "id = ?", friendshipID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}

	if friendship.FriendID != actingUserID {
		return nil, ErrNotRecipient
	}
	if friendship.Status != StatusPending {
		return nil, ErrNotPending
	}

	friendship.Status = StatusAccepted
	if err := s.db.Save(&friendship).Error; err != nil {
		return nil, fmt.Errorf("failed to accept friend request: %w", err)
	}

	// Both timelines get an added_friend entry, best-effort.
	var profiles []models.Profile
	if err := s.db.Where("id IN ?", []uuid.UUID{friendship.UserID, friendship.FriendID}).Find(&profiles).Error; err == nil {
		names := make(map[uuid.UUID]string, len(profiles))
		for _, p := range profiles {
			names[p.ID] = p.Username
		}
		s.recorder.AddedFriend(friendship.UserID, names[friendship.FriendID])
		s.recorder.AddedFriend(friendship.FriendID, names[friendship.UserID])
	}

	return &friendship, nil
}

// Reject deletes a pending request. Only the recipient may reject; rejection
// is a hard delete, not a soft state.
func (s *FriendService) Reject(friendshipID, actingUserID uuid.UUID) error {
	var friendship Friendship
	err := s.db.First(&friendship, "id = ?", friendshipID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRequestNotFound
	}
	if err != nil {
		return err
	}

	if friendship.FriendID != actingUserID {
		return ErrNotRecipient
	}
	if friendship.Status != StatusPending {
		return ErrNotPending
	}

	return s.db.Delete(&friendship).Error
}

// Remove deletes the edge regardless of status. Either party may remove, so
// this also cancels an outgoing pending request.
func (s *FriendService) Remove(friendshipID, actingUserID uuid.UUID) error {
	var friendship Friendship
	err := s.db.First(&friendship, "id = ?", friendshipID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRequestNotFound
	}
	if err != nil {
		return err
	}

	if friendship.UserID != actingUserID && friendship.FriendID != actingUserID {
		return ErrNotParticipant
	}

	return s.db.Delete(&friendship).Error
}

// ListFriends returns accepted friendships seen from userID's side.
func (s *FriendService) ListFriends(userID uuid.UUID) ([]FriendEntry, error) {
	var rows []Friendship
	err := s.db.Where("(user_id = ? OR friend_id = ?) AND status = ?", userID, userID, StatusAccepted).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return s.enrich(rows, userID)
}

// ListPendingIncoming returns requests waiting on userID's answer.
func (s *FriendService) ListPendingIncoming(userID uuid.UUID) ([]FriendEntry, error) {
	var rows []Friendship
	err := s.db.Where("friend_id = ? AND status = ?", userID, StatusPending).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return s.enrich(rows, userID)
}

// ListPendingOutgoing returns requests userID sent that are still unanswered.
func (s *FriendService) ListPendingOutgoing(userID uuid.UUID) ([]FriendEntry, error) {
	var rows []Friendship
	err := s.db.Where("user_id = ? AND status = ?", userID, StatusPending).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return s.enrich(rows, userID)
}

// enrich joins each row with the counterpart's profile.
func (s *FriendService) enrich(rows []Friendship, userID uuid.UUID) ([]FriendEntry, error) {
	counterparts := make([]uuid.UUID, 0, len(rows))
	for _, f := range rows {
		counterparts = append(counterparts, counterpart(&f, userID))
	}

	profiles := make(map[uuid.UUID]models.Profile, len(counterparts))
	if len(counterparts) > 0 {
		var list []models.Profile
		if err := s.db.Where("id IN ?", counterparts).Find(&list).Error; err != nil {
			return nil, fmt.Errorf("failed to load profiles: %w", err)
		}
		for _, p := range list {
			profiles[p.ID] = p
		}
	}

	entries := make([]FriendEntry, 0, len(rows))
	for _, f := range rows {
		other := counterpart(&f, userID)
		p := profiles[other]
		entries = append(entries, FriendEntry{
			FriendshipID: f.ID,
			UserID:       other,
			Username:     p.Username,
			DisplayName:  p.DisplayName,
			Since:        f.CreatedAt,
		})
	}
	return entries, nil
}

func counterpart(f *Friendship, userID uuid.UUID) uuid.UUID {
	if f.UserID == userID {
		return f.FriendID
	}
	return f.UserID
}

// FriendBooks returns a friend's public books. The caller must share an
// accepted friendship with friendID.
func (s *FriendService) FriendBooks(userID, friendID uuid.UUID) ([]books.Book, error) {
	ok, err := AreFriends(s.db, userID, friendID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFriends
	}

	var list []books.Book
	err = s.db.Where("user_id = ? AND is_public = ?", friendID, true).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// FriendIDs returns the ids of userID's accepted friends.
func FriendIDs(db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var rows []Friendship
	err := db.Where("(user_id = ? OR friend_id = ?) AND status = ?", userID, userID, StatusAccepted).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, f := range rows {
		ids = append(ids, counterpart(&f, userID))
	}
	return ids, nil
}

// AreFriends reports whether an accepted friendship links the two users.
func AreFriends(db *gorm.DB, a, b uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&Friendship{}).
		Where("pair_key = ? AND status = ?", pairKey(a, b), StatusAccepted).
		Count(&count).Error
	return count > 0, err
}
