package server

import (
	"sort"

	"github.com/gofiber/fiber/v2"
)

// Middleware pairs a fiber handler with a priority that controls
// its position in the request chain. Higher priority runs earlier.
type Middleware struct {
	Priority int
	Handler  fiber.Handler
}

func applyMiddlewares(app *fiber.App, middlewares []Middleware) {
	sorted := make([]Middleware, len(middlewares))
	copy(sorted, middlewares)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	for _, mw := range sorted {
		app.Use(mw.Handler)
	}
}
