package books

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/booklyapp/bookly-server/internal/auth"
	"github.com/booklyapp/bookly-server/internal/dto"
	"github.com/booklyapp/bookly-server/internal/uploader"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type BookHandler struct {
	bookService *BookService
	tagService  *TagService
	uploads     uploader.Uploader
}

func NewBookHandler(bookService *BookService, tagService *TagService, uploads uploader.Uploader) *BookHandler {
	return &BookHandler{bookService: bookService, tagService: tagService, uploads: uploads}
}

// CreateBook handles POST /books.
func (h *BookHandler) CreateBook(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req CreateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return badRequest(c, "Title and author are required")
	}

	book, err := h.bookService.Create(userID, &req)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			return badRequest(c, err.Error())
		}
		return internalError(c, "Failed to create book")
	}

	return c.Status(fiber.StatusCreated).JSON(book)
}

// ListBooks handles GET /books with an optional ?status= filter.
func (h *BookHandler) ListBooks(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.bookService.List(userID, c.Query("status"))
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			return badRequest(c, err.Error())
		}
		return internalError(c, "Failed to fetch books")
	}

	return c.JSON(resp)
}

// GetBook handles GET /books/:id.
func (h *BookHandler) GetBook(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid book ID")
	}

	book, err := h.bookService.Get(userID, bookID)
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return notFound(c, "Book not found")
		}
		return internalError(c, "Failed to fetch book")
	}

	return c.JSON(book)
}

// UpdateBook handles PUT /books/:id and runs the status state machine.
func (h *BookHandler) UpdateBook(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid book ID")
	}

	var req UpdateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	book, err := h.bookService.Update(userID, bookID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookNotFound):
			return notFound(c, "Book not found")
		case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidRating):
			return badRequest(c, err.Error())
		}
		return internalError(c, "Failed to update book")
	}

	return c.JSON(book)
}

// DeleteBook handles DELETE /books/:id.
func (h *BookHandler) DeleteBook(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid book ID")
	}

	if err := h.bookService.Delete(userID, bookID); err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return notFound(c, "Book not found")
		}
		return internalError(c, "Failed to delete book")
	}

	return c.JSON(fiber.Map{"message": "Book deleted"})
}

// UploadCover handles POST /books/:id/cover with a multipart image.
func (h *BookHandler) UploadCover(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid book ID")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "Image file is required")
	}
	if file.Size > 10*1024*1024 {
		return badRequest(c, "Image size must be less than 10MB")
	}

	contentType := file.Header.Get("Content-Type")
	validTypes := map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/heic": true,
	}
	if !validTypes[contentType] {
		return badRequest(c, "Invalid image format. Only JPEG, PNG, and HEIC are allowed")
	}

	src, err := file.Open()
	if err != nil {
		return internalError(c, "Failed to read image")
	}
	defer src.Close()

	fileExt := filepath.Ext(file.Filename)
	if fileExt == "" {
		fileExt = ".jpg"
	}
	filename := fmt.Sprintf("%s_%s%s", userID.String()[:8], uuid.New().String()[:8], fileExt)

	url, err := h.uploads.UploadImage(c.Context(), "covers", filename, src)
	if err != nil {
		if errors.Is(err, uploader.ErrNotConfigured) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: true, Message: "Cover upload is not configured",
			})
		}
		return internalError(c, "Failed to upload cover image")
	}

	book, err := h.bookService.SetCoverURL(userID, bookID, url)
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return notFound(c, "Book not found")
		}
		return internalError(c, "Failed to store cover URL")
	}

	return c.JSON(book)
}

// CreateTag handles POST /tags.
func (h *BookHandler) CreateTag(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req CreateTagRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return badRequest(c, "Tag name is required")
	}

	tag, err := h.tagService.Create(userID, req.Name)
	if err != nil {
		if errors.Is(err, ErrTagExists) {
			return conflict(c, "Tag already exists")
		}
		return internalError(c, "Failed to create tag")
	}

	return c.Status(fiber.StatusCreated).JSON(tag)
}

// ListTags handles GET /tags.
func (h *BookHandler) ListTags(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	tags, err := h.tagService.List(userID)
	if err != nil {
		return internalError(c, "Failed to fetch tags")
	}
	return c.JSON(fiber.Map{"tags": tags})
}

// DeleteTag handles DELETE /tags/:id.
func (h *BookHandler) DeleteTag(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	tagID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid tag ID")
	}

	if err := h.tagService.Delete(userID, tagID); err != nil {
		if errors.Is(err, ErrTagNotFound) {
			return notFound(c, "Tag not found")
		}
		return internalError(c, "Failed to delete tag")
	}
	return c.JSON(fiber.Map{"message": "Tag deleted"})
}

// AttachTag handles POST /books/:id/tags/:tagId.
func (h *BookHandler) AttachTag(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid book ID")
	}
	tagID, err := uuid.Parse(c.Params("tagId"))
	if err != nil {
		return badRequest(c, "Invalid tag ID")
	}

	if err := h.tagService.Attach(userID, bookID, tagID); err != nil {
		switch {
		case errors.Is(err, ErrBookNotFound):
			return notFound(c, "Book not found")
		case errors.Is(err, ErrTagNotFound):
			return notFound(c, "Tag not found")
		}
		return internalError(c, "Failed to attach tag")
	}
	return c.JSON(fiber.Map{"message": "Tag attached"})
}

// DetachTag handles DELETE /books/:id/tags/:tagId.
func (h *BookHandler) DetachTag(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid book ID")
	}
	tagID, err := uuid.Parse(c.Params("tagId"))
	if err != nil {
		return badRequest(c, "Invalid tag ID")
	}

	if err := h.tagService.Detach(userID, bookID, tagID); err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return notFound(c, "Book not found")
		}
		return internalError(c, "Failed to detach tag")
	}
	return c.JSON(fiber.Map{"message": "Tag detached"})
}

// --- shared response helpers ---

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: "Unauthorized"})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func conflict(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func internalError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: true, Message: msg})
}
