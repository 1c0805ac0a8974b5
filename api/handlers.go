package api

import (
	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/rise-and-shine/order-inventory-platform/logger"
	"github.com/rise-and-shine/order-inventory-platform/mask"
	"github.com/rise-and-shine/order-inventory-platform/meta"
	"github.com/rise-and-shine/order-inventory-platform/pagination"
	"github.com/rise-and-shine/order-inventory-platform/service"
	"github.com/rise-and-shine/order-inventory-platform/val"
)

func (h *handlers) health(c *fiber.Ctx) error {
	return c.JSON(healthResponse{
		Status:  "ok",
		Service: meta.GetServiceName(),
		Version: meta.GetServiceVersion(),
	})
}

func (h *handlers) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.users.Register(c.UserContext(), service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *handlers) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	accessToken, user, err := h.users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(loginResponse{
		AccessToken: accessToken,
		User:        user,
	})
}

func (h *handlers) me(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.UserContext(), authUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *handlers) listUsers(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}

	resp, err := h.users.ListUsers(c.UserContext(), page)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *handlers) getUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return errx.New("invalid user id", errx.WithType(errx.T_Validation))
	}

	user, err := h.users.GetUser(c.UserContext(), int64(id))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *handlers) placeOrder(c *fiber.Ctx) error {
	var req placeOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	lines := lo.Map(req.Items, func(item orderLineRequest, _ int) service.OrderLine {
		return service.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	})

	order, err := h.orders.PlaceOrder(c.UserContext(), authUserID(c), lines)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *handlers) listOrders(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}

	resp, err := h.orders.ListOrders(c.UserContext(), authUserID(c), page)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *handlers) getOrder(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return errx.New("invalid order id", errx.WithType(errx.T_Validation))
	}

	order, err := h.orders.GetOrder(c.UserContext(), authUserID(c), int64(id))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// parseBody decodes and validates a JSON request body.
func parseBody(c *fiber.Ctx, schema any) error {
	if err := c.BodyParser(schema); err != nil {
		return errx.Wrap(err, errx.WithType(errx.T_Validation))
	}
	if err := val.ValidateSchema(schema); err != nil {
		return err
	}

	logger.Named("api").
		WithContext(c.UserContext()).
		With("payload", mask.StructToOrdMap(schema)).
		Debug("parsed request body")

	return nil
}

func parsePage(c *fiber.Ctx) (pagination.Request, error) {
	var q pageQuery
	if err := c.QueryParser(&q); err != nil {
		return pagination.Request{}, errx.Wrap(err, errx.WithType(errx.T_Validation))
	}
	return pagination.Request{PageNumber: q.PageNumber, PageSize: q.PageSize}, nil
}
