package lending

import (
	"errors"

	"github.com/booklyapp/bookly-server/internal/auth"
	"github.com/booklyapp/bookly-server/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type LendingHandler struct {
	lendingService *LendingService
}

func NewLendingHandler(lendingService *LendingService) *LendingHandler {
	return &LendingHandler{lendingService: lendingService}
}

// CreateRequest handles POST /lending/requests.
func (h *LendingHandler) CreateRequest(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var body CreateRequestBody
	if err := c.BodyParser(&body); err != nil {
		return respondErr(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := dto.Validate(&body); err != nil {
		return respondErr(c, fiber.StatusBadRequest, "Book ID is required")
	}

	request, err := h.lendingService.CreateRequest(userID, body.BookID, body.Message)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookNotFound):
			return respondErr(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, ErrOwnBook):
			return respondErr(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNotFriends), errors.Is(err, ErrNotLendable):
			return respondErr(c, fiber.StatusForbidden, err.Error())
		case errors.Is(err, ErrAlreadyRequested), errors.Is(err, ErrAlreadyLent):
			return respondErr(c, fiber.StatusConflict, err.Error())
		}
		return respondErr(c, fiber.StatusInternalServerError, "Failed to create lending request")
	}

	return c.Status(fiber.StatusCreated).JSON(request)
}

// Respond handles PUT /lending/requests/:id.
func (h *LendingHandler) Respond(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondErr(c, fiber.StatusBadRequest, "Invalid request ID")
	}

	var body RespondBody
	if err := c.BodyParser(&body); err != nil {
		return respondErr(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := dto.Validate(&body); err != nil {
		return respondErr(c, fiber.StatusBadRequest, ErrInvalidDecision.Error())
	}

	request, err := h.lendingService.Respond(requestID, userID, body.Decision, body.ResponseMessage)
	if err != nil {
		switch {
		case errors.Is(err, ErrRequestNotFound):
			return respondErr(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotOwner):
			return respondErr(c, fiber.StatusForbidden, err.Error())
		case errors.Is(err, ErrNotPending), errors.Is(err, ErrAlreadyLent):
			return respondErr(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, ErrInvalidDecision):
			return respondErr(c, fiber.StatusBadRequest, err.Error())
		}
		return respondErr(c, fiber.StatusInternalServerError, "Failed to respond to request")
	}

	return c.JSON(request)
}

// MarkReturned handles POST /lending/requests/:id/return.
func (h *LendingHandler) MarkReturned(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondErr(c, fiber.StatusBadRequest, "Invalid request ID")
	}

	request, err := h.lendingService.MarkReturned(requestID, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRequestNotFound):
			return respondErr(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotOwner):
			return respondErr(c, fiber.StatusForbidden, err.Error())
		case errors.Is(err, ErrNotApproved):
			return respondErr(c, fiber.StatusConflict, err.Error())
		}
		return respondErr(c, fiber.StatusInternalServerError, "Failed to mark request returned")
	}

	return c.JSON(request)
}

// ListReceived handles GET /lending/received.
func (h *LendingHandler) ListReceived(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	list, err := h.lendingService.ListReceived(userID)
	if err != nil {
		return respondErr(c, fiber.StatusInternalServerError, "Failed to fetch requests")
	}
	return c.JSON(RequestListResponse{Requests: list})
}

// ListSent handles GET /lending/sent.
func (h *LendingHandler) ListSent(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	list, err := h.lendingService.ListSent(userID)
	if err != nil {
		return respondErr(c, fiber.StatusInternalServerError, "Failed to fetch requests")
	}
	return c.JSON(RequestListResponse{Requests: list})
}

func respondErr(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}
