package goals

import (
	"github.com/booklyapp/bookly-server/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type GoalsPlugin struct{}

func New() *GoalsPlugin {
	return &GoalsPlugin{}
}

func (p *GoalsPlugin) ID() string { return "goals" }

func (p *GoalsPlugin) Models() []interface{} {
	return []interface{}{
		&ReadingGoal{},
	}
}

func (p *GoalsPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	svc := NewGoalService(db)
	handler := NewGoalHandler(svc)

	router.Put("/goals", handler.UpsertGoal)
	router.Get("/goals/:year", handler.GetGoal)
	router.Delete("/goals/:year", handler.DeleteGoal)
}
