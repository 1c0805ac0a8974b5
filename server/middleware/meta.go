package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/order-inventory-platform/meta"
	"github.com/rise-and-shine/order-inventory-platform/server"
	"github.com/rise-and-shine/order-inventory-platform/tracing"
)

// NewMetaInjectMW creates a middleware that injects metadata into the request context.
//
// This middleware collects information from the request such as trace ID, IP address,
// user agent, and other HTTP headers, and injects them into the request context using
// the meta package. It also sets service information and prepares keys for user
// identification that will be populated by authentication middlewares.
func NewMetaInjectMW(serviceName, serviceVersion string) server.Middleware {
	return server.Middleware{
		Priority: 700,
		Handler: func(c *fiber.Ctx) error {
			traceID := tracing.GetStartingTraceID(c.UserContext())

			metaData := map[meta.ContextKey]string{
				meta.TraceID:        traceID,
				meta.IPAddress:      c.IP(),
				meta.UserAgent:      c.Get(fiber.HeaderUserAgent),
				meta.RemoteAddr:     c.Context().RemoteAddr().String(),
				meta.ServiceName:    serviceName,
				meta.ServiceVersion: serviceVersion,
				meta.AcceptLanguage: c.Get(string(meta.AcceptLanguage)),

				// missing keys. Those are will be set by authentication middlewares
				meta.RequestUserID:   "",
				meta.RequestUserRole: "",
			}

			ctx := meta.InjectMetaToContext(c.UserContext(), metaData)
			c.SetUserContext(ctx)

			return c.Next()
		},
	}
}
