// Package api registers the HTTP routes and adapts requests to the
// service layer.
package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/order-inventory-platform/models"
	"github.com/rise-and-shine/order-inventory-platform/service"
)

// RegisterRoutes mounts all endpoints under /api.
func RegisterRoutes(app *fiber.App, users *service.UserService, orders *service.OrderService) {
	h := &handlers{users: users, orders: orders}
	authMW := newAuthMW(users.TokenMaker())

	api := app.Group("/api")
	api.Get("/health", h.health)

	auth := api.Group("/auth")
	auth.Post("/register", h.register)
	auth.Post("/login", h.login)
	auth.Get("/me", authMW, h.me)

	userGroup := api.Group("/users", authMW, requireRole(models.RoleAdmin))
	userGroup.Get("/", h.listUsers)
	userGroup.Get("/:id", h.getUser)

	orderGroup := api.Group("/orders", authMW)
	orderGroup.Post("/", h.placeOrder)
	orderGroup.Get("/", h.listOrders)
	orderGroup.Get("/:id", h.getOrder)
}

type handlers struct {
	users  *service.UserService
	orders *service.OrderService
}
