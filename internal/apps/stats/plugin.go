package stats

import (
	"github.com/booklyapp/bookly-server/internal/apps/activity"
	"github.com/booklyapp/bookly-server/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StatsPlugin struct{}

func New() *StatsPlugin {
	return &StatsPlugin{}
}

func (p *StatsPlugin) ID() string { return "stats" }

// Models includes the activity table: the activity package is a leaf the
// feature apps record into and owns no plugin of its own.
func (p *StatsPlugin) Models() []interface{} {
	return []interface{}{
		&activity.Activity{},
	}
}

func (p *StatsPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	svc := NewStatsService(db)
	handler := NewStatsHandler(svc)

	router.Get("/stats/leaderboard", handler.Leaderboard)
	router.Get("/stats/profile", handler.ProfileStats)
	router.Get("/stats/friends-reading", handler.FriendsReading)
	router.Get("/stats/recommendations", handler.Recommendations)
	router.Get("/activity/feed", handler.Feed)
}
