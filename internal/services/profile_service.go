package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/booklyapp/bookly-server/internal/dto"
	"github.com/booklyapp/bookly-server/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// GetOrCreate returns the user's profile, creating one from the email local
// part if it is missing. Accounts that predate the profiles table heal here.
func (s *ProfileService) GetOrCreate(userID uuid.UUID, email string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.First(&profile, "id = ?", userID).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	base := strings.Split(email, "@")[0]
	if base == "" {
		base = "reader"
	}

	username := base
	for attempt := 0; ; attempt++ {
		profile = models.Profile{
			ID:            userID,
			Username:      username,
			UsernameLower: strings.ToLower(username),
		}
		err = s.db.Create(&profile).Error
		if err == nil {
			return &profile, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) || attempt >= 5 {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
		// Username collision: suffix a short random discriminator and retry.
		username = fmt.Sprintf("%s-%s", base, uuid.New().String()[:4])
	}
}

// GetByUsername resolves a profile by case-insensitive exact username match.
func (s *ProfileService) GetByUsername(username string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.Where("username_lower = ?", strings.ToLower(strings.TrimSpace(username))).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}
	return &profile, nil
}

// Update applies owner-supplied profile changes. Username is immutable here.
func (s *ProfileService) Update(userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.First(&profile, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = *req.AvatarURL
	}

	if err := s.db.Save(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &profile, nil
}
