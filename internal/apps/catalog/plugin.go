package catalog

import (
	"github.com/booklyapp/bookly-server/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CatalogPlugin struct{}

func New() *CatalogPlugin {
	return &CatalogPlugin{}
}

func (p *CatalogPlugin) ID() string { return "catalog" }

func (p *CatalogPlugin) Models() []interface{} { return nil }

func (p *CatalogPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	svc := NewCatalogService(cfg)
	handler := NewCatalogHandler(svc)

	router.Get("/catalog/search", handler.Search)
}
