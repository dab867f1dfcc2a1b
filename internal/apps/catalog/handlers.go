package catalog

import (
	"errors"
	"strings"

	"github.com/booklyapp/bookly-server/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	catalogService *CatalogService
}

func NewCatalogHandler(catalogService *CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// Search handles GET /catalog/search?q=.
func (h *CatalogHandler) Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "Query parameter q is required",
		})
	}

	results, err := h.catalogService.Search(c.Context(), query)
	if err != nil {
		if errors.Is(err, ErrAllSourcesFailed) {
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Catalog sources are unavailable",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "Catalog search failed",
		})
	}
	return c.JSON(SearchResponse{Results: results})
}
