package lending

import (
	"github.com/booklyapp/bookly-server/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LendingPlugin struct{}

func New() *LendingPlugin {
	return &LendingPlugin{}
}

func (p *LendingPlugin) ID() string { return "lending" }

func (p *LendingPlugin) Models() []interface{} {
	return []interface{}{
		&LendingRequest{},
	}
}

func (p *LendingPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	svc := NewLendingService(db)
	handler := NewLendingHandler(svc)

	router.Post("/lending/requests", handler.CreateRequest)
	router.Put("/lending/requests/:id", handler.Respond)
	router.Post("/lending/requests/:id/return", handler.MarkReturned)
	router.Get("/lending/received", handler.ListReceived)
	router.Get("/lending/sent", handler.ListSent)
}
