package books

import (
	"github.com/booklyapp/bookly-server/internal/apps/activity"
	"github.com/booklyapp/bookly-server/internal/config"
	"github.com/booklyapp/bookly-server/internal/uploader"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BooksPlugin struct {
	uploads uploader.Uploader
}

func New(uploads uploader.Uploader) *BooksPlugin {
	return &BooksPlugin{uploads: uploads}
}

func (p *BooksPlugin) ID() string { return "books" }

func (p *BooksPlugin) Models() []interface{} {
	return []interface{}{
		&Book{},
		&Tag{},
		&BookTag{},
	}
}

func (p *BooksPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	bookService := NewBookService(db, activity.NewRecorder(db))
	tagService := NewTagService(db)
	handler := NewBookHandler(bookService, tagService, p.uploads)

	router.Post("/books", handler.CreateBook)
	router.Get("/books", handler.ListBooks)
	router.Get("/books/:id", handler.GetBook)
	router.Put("/books/:id", handler.UpdateBook)
	router.Delete("/books/:id", handler.DeleteBook)
	router.Post("/books/:id/cover", handler.UploadCover)
	router.Post("/books/:id/tags/:tagId", handler.AttachTag)
	router.Delete("/books/:id/tags/:tagId", handler.DetachTag)

	router.Post("/tags", handler.CreateTag)
	router.Get("/tags", handler.ListTags)
	router.Delete("/tags/:id", handler.DeleteTag)
}
