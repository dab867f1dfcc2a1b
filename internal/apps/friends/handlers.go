package friends

import (
	"errors"

	"github.com/booklyapp/bookly-server/internal/auth"
	"github.com/booklyapp/bookly-server/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type FriendHandler struct {
	friendService *FriendService
}

func NewFriendHandler(friendService *FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

// SendRequest handles POST /friends/requests.
func (h *FriendHandler) SendRequest(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var body SendRequestBody
	if err := c.BodyParser(&body); err != nil {
		return respondErr(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := dto.Validate(&body); err != nil {
		return respondErr(c, fiber.StatusBadRequest, "Username is required")
	}

	friendship, err := h.friendService.SendRequest(userID, body.Username)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			return respondErr(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, ErrSelfFriend):
			return respondErr(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, ErrAlreadyFriends),
			errors.Is(err, ErrRequestAlreadySent),
			errors.Is(err, ErrRequestAlreadyReceived):
			return respondErr(c, fiber.StatusConflict, err.Error())
		}
		return respondErr(c, fiber.StatusInternalServerError, "Failed to send friend request")
	}

	return c.Status(fiber.StatusCreated).JSON(friendship)
}

// Accept handles POST /friends/requests/:id/accept.
func (h *FriendHandler) Accept(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	friendshipID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondErr(c, fiber.StatusBadRequest, "Invalid friendship ID")
	}

	friendship, err := h.friendService.Accept(friendshipID, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRequestNotFound):
			return respondErr(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotRecipient):
			return respondErr(c, fiber.StatusForbidden, err.Error())
		case errors.Is(err, ErrNotPending):
			return respondErr(c, fiber.StatusConflict, err.Error())
		}
		return respondErr(c, fiber.StatusInternalServerError, "Failed to accept friend request")
	}

	return c.JSON(friendship)
}

// Reject handles POST /friends/requests/:id/reject.
func (h *FriendHandler) Reject(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	friendshipID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondErr(c, fiber.StatusBadRequest, "Invalid friendship ID")
	}

	if err := h.friendService.Reject(friendshipID, userID); err != nil {
		switch {
		case errors.Is(err, ErrRequestNotFound):
			return respondErr(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotRecipient):
			return respondErr(c, fiber.StatusForbidden, err.Error())
		case errors.Is(err, ErrNotPending):
			return respondErr(c, fiber.StatusConflict, err.Error())
		}
		return respondErr(c, fiber.StatusInternalServerError, "Failed to reject friend request")
	}

	return c.JSON(fiber.Map{"message": "Friend request rejected"})
}

// Remove handles DELETE /friends/:id (friendship id, either direction).
func (h *FriendHandler) Remove(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	friendshipID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondErr(c, fiber.StatusBadRequest, "Invalid friendship ID")
	}

	if err := h.friendService.Remove(friendshipID, userID); err != nil {
		switch {
		case errors.Is(err, ErrRequestNotFound):
			return respondErr(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotParticipant):
			return respondErr(c, fiber.StatusForbidden, err.Error())
		}
		return respondErr(c, fiber.StatusInternalServerError, "Failed to remove friend")
	}

	return c.JSON(fiber.Map{"message": "Friendship removed"})
}

// ListFriends handles GET /friends.
func (h *FriendHandler) ListFriends(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	list, err := h.friendService.ListFriends(userID)
	if err != nil {
		return respondErr(c, fiber.StatusInternalServerError, "Failed to fetch friends")
	}
	return c.JSON(FriendsListResponse{Friends: list})
}

// ListIncoming handles GET /friends/requests/incoming.
func (h *FriendHandler) ListIncoming(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	list, err := h.friendService.ListPendingIncoming(userID)
	if err != nil {
		return respondErr(c, fiber.StatusInternalServerError, "Failed to fetch requests")
	}
	return c.JSON(PendingListResponse{Requests: list})
}

// ListOutgoing handles GET /friends/requests/outgoing.
func (h *FriendHandler) ListOutgoing(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	list, err := h.friendService.ListPendingOutgoing(userID)
	if err != nil {
		return respondErr(c, fiber.StatusInternalServerError, "Failed to fetch requests")
	}
	return c.JSON(PendingListResponse{Requests: list})
}

// FriendBooks handles GET /friends/:id/books — a friend's public library.
func (h *FriendHandler) FriendBooks(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondErr(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	friendID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondErr(c, fiber.StatusBadRequest, "Invalid friend ID")
	}

	list, err := h.friendService.FriendBooks(userID, friendID)
	if err != nil {
		if errors.Is(err, ErrNotFriends) {
			return respondErr(c, fiber.StatusForbidden, err.Error())
		}
		return respondErr(c, fiber.StatusInternalServerError, "Failed to fetch books")
	}
	return c.JSON(fiber.Map{"books": list})
}

func respondErr(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}
