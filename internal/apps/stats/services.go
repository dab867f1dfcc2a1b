package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/booklyapp/bookly-server/internal/apps/activity"
	"github.com/booklyapp/bookly-server/internal/apps/books"
	"github.com/booklyapp/bookly-server/internal/apps/friends"
	"github.com/booklyapp/bookly-server/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// Leaderboard ranks the user and their accepted friends by pages read in the
// given year, most pages first. A finished book counts its page_count when its
// end_date falls in the year; rows migrated from before end dates were tracked
// have no end_date and count toward whichever year is asked for. A stopped
// book contributes its pages_read.
func (s *StatsService) Leaderboard(userID uuid.UUID, year, limit int) (*LeaderboardResponse, error) {
	friendIDs, err := friends.FriendIDs(s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load friends: %w", err)
	}
	candidates := append([]uuid.UUID{userID}, friendIDs...)

	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := yearStart.AddDate(1, 0, 0)

	var rows []books.Book
	err = s.db.
		Where("user_id IN ?", candidates).
		Where("(status = ? AND (end_date IS NULL OR (end_date >= ? AND end_date < ?))) OR status = ?",
			books.StatusFinished, yearStart, yearEnd, books.StatusStopped).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load books: %w", err)
	}

	type tally struct {
		pages    int
		finished int
	}
	totals := make(map[uuid.UUID]*tally, len(candidates))
	for _, id := range candidates {
		totals[id] = &tally{}
	}
	for _, b := range rows {
		t := totals[b.UserID]
		if t == nil {
			continue
		}
		switch b.Status {
		case books.StatusFinished:
			t.pages += b.PageCount
			t.finished++
		case books.StatusStopped:
			t.pages += b.PagesRead
		}
	}

	profiles, err := s.profilesByID(candidates)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(candidates))
	for _, id := range candidates {
		p, ok := profiles[id]
		if !ok {
			continue
		}
		t := totals[id]
		entries = append(entries, LeaderboardEntry{
			UserID:        id,
			Username:      p.Username,
			DisplayName:   p.Name(),
			AvatarURL:     p.AvatarURL,
			BooksFinished: t.finished,
			PagesRead:     t.pages,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PagesRead > entries[j].PagesRead
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return &LeaderboardResponse{Year: year, Entries: entries}, nil
}

// ProfileStats aggregates one user's shelf: all-time totals plus the given
// year's finished count, pages, rating average and reading pace.
func (s *StatsService) ProfileStats(userID uuid.UUID, year int) (*ProfileStatsResponse, error) {
	var rows []books.Book
	if err := s.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load books: %w", err)
	}

	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := yearStart.AddDate(1, 0, 0)

	resp := &ProfileStatsResponse{
		Year:         year,
		TotalBooks:   int64(len(rows)),
		StatusCounts: make(map[string]int64, len(books.ValidStatuses)),
	}
	for _, st := range books.ValidStatuses {
		resp.StatusCounts[st] = 0
	}

	var ratingSum, ratingCount int
	var readingDaysSum float64
	var readingDaysCount int
	for _, b := range rows {
		resp.StatusCounts[b.Status]++
		if b.Status != books.StatusFinished {
			continue
		}
		resp.BooksFinished++
		if b.Rating != nil {
			ratingSum += *b.Rating
			ratingCount++
		}
		inYear := b.EndDate != nil && !b.EndDate.Before(yearStart) && b.EndDate.Before(yearEnd)
		if inYear {
			resp.BooksFinishedYear++
			resp.PagesRead += b.PageCount
		}
		if b.StartDate != nil && b.EndDate != nil && !b.EndDate.Before(*b.StartDate) {
			readingDaysSum += b.EndDate.Sub(*b.StartDate).Hours() / 24
			readingDaysCount++
		}
	}
	if ratingCount > 0 {
		resp.AverageRating = float64(ratingSum) / float64(ratingCount)
	}
	if readingDaysCount > 0 {
		resp.AverageReadingDays = readingDaysSum / float64(readingDaysCount)
	}

	topTags, err := s.topTags(userID, 5)
	if err != nil {
		return nil, err
	}
	resp.TopTags = topTags

	return resp, nil
}

func (s *StatsService) topTags(userID uuid.UUID, limit int) ([]TagCount, error) {
	var counts []TagCount
	err := s.db.Model(&books.Tag{}).
		Select("tags.name AS name, COUNT(book_tags.book_id) AS count").
		Joins("JOIN book_tags ON book_tags.tag_id = tags.id").
		Where("tags.user_id = ?", userID).
		Group("tags.name").
		Order("count DESC, name ASC").
		Limit(limit).
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count tags: %w", err)
	}
	return counts, nil
}

// FriendsCurrentlyReading lists friends' public books in the reading status,
// most recently updated first.
func (s *StatsService) FriendsCurrentlyReading(userID uuid.UUID, limit int) ([]ReadingFriend, error) {
	friendIDs, err := friends.FriendIDs(s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load friends: %w", err)
	}
	if len(friendIDs) == 0 {
		return []ReadingFriend{}, nil
	}

	var rows []books.Book
	q := s.db.Where("user_id IN ? AND status = ? AND is_public = ?", friendIDs, books.StatusReading, true).
		Order("updated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load books: %w", err)
	}

	profiles, err := s.profilesByID(friendIDs)
	if err != nil {
		return nil, err
	}

	out := make([]ReadingFriend, 0, len(rows))
	for _, b := range rows {
		p, ok := profiles[b.UserID]
		if !ok {
			continue
		}
		out = append(out, ReadingFriend{
			UserID:      b.UserID,
			Username:    p.Username,
			DisplayName: p.Name(),
			AvatarURL:   p.AvatarURL,
			BookID:      b.ID,
			Title:       b.Title,
			Author:      b.Author,
			CoverURL:    b.CoverImageURL,
			StartDate:   b.StartDate,
		})
	}
	return out, nil
}

// Recommendations returns friends' public books flagged for recommending,
// skipping titles already on the requesting user's own shelf.
func (s *StatsService) Recommendations(userID uuid.UUID) ([]Recommendation, error) {
	friendIDs, err := friends.FriendIDs(s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load friends: %w", err)
	}
	if len(friendIDs) == 0 {
		return []Recommendation{}, nil
	}

	var own []books.Book
	if err := s.db.Select("title", "author").Where("user_id = ?", userID).Find(&own).Error; err != nil {
		return nil, fmt.Errorf("failed to load shelf: %w", err)
	}
	owned := make(map[string]struct{}, len(own))
	for _, b := range own {
		owned[bookKey(b.Title, b.Author)] = struct{}{}
	}

	var rows []books.Book
	err = s.db.Where("user_id IN ? AND is_public = ? AND recommend_to_friends = ?", friendIDs, true, true).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load books: %w", err)
	}

	profiles, err := s.profilesByID(friendIDs)
	if err != nil {
		return nil, err
	}

	out := make([]Recommendation, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, b := range rows {
		key := bookKey(b.Title, b.Author)
		if _, ok := owned[key]; ok {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		p, ok := profiles[b.UserID]
		if !ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, Recommendation{
			BookID:      b.ID,
			Title:       b.Title,
			Author:      b.Author,
			CoverURL:    b.CoverImageURL,
			Rating:      b.Rating,
			Review:      b.Review,
			FriendID:    b.UserID,
			Username:    p.Username,
			DisplayName: p.Name(),
		})
	}
	return out, nil
}

// Feed returns the newest activities of the user and their friends, actor
// profile attached.
func (s *StatsService) Feed(userID uuid.UUID, limit int) (*FeedResponse, error) {
	friendIDs, err := friends.FriendIDs(s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load friends: %w", err)
	}
	actors := append([]uuid.UUID{userID}, friendIDs...)

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var rows []activity.Activity
	err = s.db.Where("user_id IN ?", actors).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}

	profiles, err := s.profilesByID(actors)
	if err != nil {
		return nil, err
	}

	entries := make([]FeedEntry, 0, len(rows))
	for _, a := range rows {
		p, ok := profiles[a.UserID]
		if !ok {
			continue
		}
		entries = append(entries, FeedEntry{
			ID:          a.ID,
			UserID:      a.UserID,
			Username:    p.Username,
			DisplayName: p.Name(),
			AvatarURL:   p.AvatarURL,
			Type:        a.Type,
			BookID:      a.BookID,
			Metadata:    a.Metadata,
			CreatedAt:   a.CreatedAt,
		})
	}
	return &FeedResponse{Activities: entries}, nil
}

func (s *StatsService) profilesByID(ids []uuid.UUID) (map[uuid.UUID]models.Profile, error) {
	var profiles []models.Profile
	if err := s.db.Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	byID := make(map[uuid.UUID]models.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	return byID, nil
}

func bookKey(title, author string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "|" + strings.ToLower(strings.TrimSpace(author))
}
