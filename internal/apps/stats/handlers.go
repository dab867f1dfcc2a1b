package stats

import (
	"strconv"
	"time"

	"github.com/booklyapp/bookly-server/internal/auth"
	"github.com/booklyapp/bookly-server/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type StatsHandler struct {
	statsService *StatsService
}

func NewStatsHandler(statsService *StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Leaderboard handles GET /stats/leaderboard?year=&limit=.
func (h *StatsHandler) Leaderboard(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	year, err := yearQuery(c)
	if err != nil {
		return respondErr(c, fiber.StatusBadRequest, "Invalid year")
	}
	limit := c.QueryInt("limit", 20)

	resp, err := h.statsService.Leaderboard(userID, year, limit)
	if err != nil {
		return respondErr(c, fiber.StatusInternalServerError, "Failed to build leaderboard")
	}
	return c.JSON(resp)
}

// ProfileStats handles GET /stats/profile?year=.
func (h *StatsHandler) ProfileStats(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	year, err := yearQuery(c)
	if err != nil {
		return respondErr(c, fiber.StatusBadRequest, "Invalid year")
	}

	resp, err := h.statsService.ProfileStats(userID, year)
	if err != nil {
		return respondErr(c, fiber.StatusInternalServerError, "Failed to compute stats")
	}
	return c.JSON(resp)
}

// FriendsReading handles GET /stats/friends-reading?limit=.
func (h *StatsHandler) FriendsReading(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	limit := c.QueryInt("limit", 20)
	rows, err := h.statsService.FriendsCurrentlyReading(userID, limit)
	if err != nil {
		return respondErr(c, fiber.StatusInternalServerError, "Failed to fetch friends' reading")
	}
	return c.JSON(fiber.Map{"reading": rows})
}

// Recommendations handles GET /stats/recommendations.
func (h *StatsHandler) Recommendations(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	rows, err := h.statsService.Recommendations(userID)
	if err != nil {
		return respondErr(c, fiber.StatusInternalServerError, "Failed to fetch recommendations")
	}
	return c.JSON(fiber.Map{"recommendations": rows})
}

// Feed handles GET /activity/feed?limit=.
func (h *StatsHandler) Feed(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	limit := c.QueryInt("limit", 50)
	resp, err := h.statsService.Feed(userID, limit)
	if err != nil {
		return respondErr(c, fiber.StatusInternalServerError, "Failed to fetch feed")
	}
	return c.JSON(resp)
}

func yearQuery(c *fiber.Ctx) (int, error) {
	raw := c.Query("year")
	if raw == "" {
		return time.Now().Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 2000 || year > 2200 {
		return 0, fiber.ErrBadRequest
	}
	return year, nil
}

func respondErr(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}
