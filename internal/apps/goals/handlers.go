package goals

import (
	"errors"
	"strconv"
	"time"

	"github.com/booklyapp/bookly-server/internal/auth"
	"github.com/booklyapp/bookly-server/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type GoalHandler struct {
	goalService *GoalService
}

func NewGoalHandler(goalService *GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// UpsertGoal handles PUT /goals.
func (h *GoalHandler) UpsertGoal(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var body UpsertGoalRequest
	if err := c.BodyParser(&body); err != nil {
		return respondErr(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := dto.Validate(&body); err != nil {
		return respondErr(c, fiber.StatusBadRequest, "Year and a target between 1 and 1000 are required")
	}

	goal, err := h.goalService.Upsert(userID, body.Year, body.TargetBooks)
	if err != nil {
		return respondErr(c, fiber.StatusInternalServerError, "Failed to save goal")
	}
	return c.JSON(goal)
}

// GetGoal handles GET /goals/:year (defaulting :year=current via /goals/now).
func (h *GoalHandler) GetGoal(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	year, err := parseYear(c.Params("year"))
	if err != nil {
		return respondErr(c, fiber.StatusBadRequest, "Invalid year")
	}

	progress, err := h.goalService.Progress(userID, year)
	if err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			return respondErr(c, fiber.StatusNotFound, err.Error())
		}
		return respondErr(c, fiber.StatusInternalServerError, "Failed to fetch goal")
	}
	return c.JSON(progress)
}

// DeleteGoal handles DELETE /goals/:year.
func (h *GoalHandler) DeleteGoal(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	year, err := parseYear(c.Params("year"))
	if err != nil {
		return respondErr(c, fiber.StatusBadRequest, "Invalid year")
	}

	if err := h.goalService.Delete(userID, year); err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			return respondErr(c, fiber.StatusNotFound, err.Error())
		}
		return respondErr(c, fiber.StatusInternalServerError, "Failed to delete goal")
	}
	return c.JSON(fiber.Map{"message": "Goal deleted"})
}

func parseYear(param string) (int, error) {
	if param == "now" {
		return time.Now().Year(), nil
	}
	year, err := strconv.Atoi(param)
	if err != nil || year < 2000 || year > 2200 {
		return 0, errors.New("invalid year")
	}
	return year, nil
}

func respondErr(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}
