package friends

import (
	"github.com/booklyapp/bookly-server/internal/apps/activity"
	"github.com/booklyapp/bookly-server/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type FriendsPlugin struct{}

func New() *FriendsPlugin {
	return &FriendsPlugin{}
}

func (p *FriendsPlugin) ID() string { return "friends" }

func (p *FriendsPlugin) Models() []interface{} {
	return []interface{}{
		&Friendship{},
	}
}

func (p *FriendsPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	svc := NewFriendService(db, activity.NewRecorder(db))
	handler := NewFriendHandler(svc)

	router.Post("/friends/requests", handler.SendRequest)
	router.Get("/friends/requests/incoming", handler.ListIncoming)
	router.Get("/friends/requests/outgoing", handler.ListOutgoing)
	router.Post("/friends/requests/:id/accept", handler.Accept)
	router.Post("/friends/requests/:id/reject", handler.Reject)
	router.Get("/friends", handler.ListFriends)
	router.Get("/friends/:id/books", handler.FriendBooks)
	router.Delete("/friends/:id", handler.Remove)
}
