package api

import (
	"strconv"
	"strings"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"

	"github.com/rise-and-shine/order-inventory-platform/meta"
	"github.com/rise-and-shine/order-inventory-platform/token"
)

// Error codes returned by the authentication middleware.
const (
	CodeMissingAuthToken = "MISSING_AUTH_TOKEN"
	CodeAccessDenied     = "ACCESS_DENIED"
)

const (
	bearerScheme = "bearer"

	// local key holding the authenticated user id as int64
	localUserID = "auth_user_id"
)

// newAuthMW returns a middleware that authenticates requests with a
// bearer token and stores the user identity in locals and the request
// context metadata.
func newAuthMW(maker *token.JWTMaker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return errx.New("authorization header is missing",
				errx.WithCode(CodeMissingAuthToken),
				errx.WithType(errx.T_Authentication))
		}

		scheme, rawToken, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, bearerScheme) {
			return errx.New("authorization header is not a bearer token",
				errx.WithCode(token.CodeInvalidToken),
				errx.WithType(errx.T_Authentication))
		}

		payload, err := maker.VerifyToken(rawToken)
		if err != nil {
			return errx.Wrap(err, errx.WithType(errx.T_Authentication))
		}

		sub, err := payload.GetSubject()
		if err != nil {
			return errx.Wrap(err, errx.WithType(errx.T_Authentication))
		}
		userID, err := strconv.ParseInt(sub, 10, 64)
		if err != nil {
			return errx.New("token subject is not a user id",
				errx.WithCode(token.CodeInvalidToken),
				errx.WithType(errx.T_Authentication))
		}

		role := cast.ToString(payload.CustomClaim("role"))

		c.Locals(localUserID, userID)
		c.Locals(meta.RequestUserID, sub)
		c.Locals(meta.RequestUserRole, role)

		ctx := meta.InjectMetaToContext(c.UserContext(), map[meta.ContextKey]string{
			meta.RequestUserID:   sub,
			meta.RequestUserRole: role,
		})
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// requireRole returns a middleware that rejects authenticated requests
// whose role differs from the required one.
func requireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cast.ToString(c.Locals(meta.RequestUserRole)) != role {
			return errx.New("insufficient permissions",
				errx.WithCode(CodeAccessDenied),
				errx.WithType(errx.T_Forbidden))
		}
		return c.Next()
	}
}

// authUserID returns the user id stored by the auth middleware.
func authUserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(localUserID).(int64)
	return id
}
