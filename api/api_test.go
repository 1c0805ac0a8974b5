package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/rise-and-shine/order-inventory-platform/api"
	"github.com/rise-and-shine/order-inventory-platform/events"
	"github.com/rise-and-shine/order-inventory-platform/models"
	"github.com/rise-and-shine/order-inventory-platform/repos"
	"github.com/rise-and-shine/order-inventory-platform/server"
	"github.com/rise-and-shine/order-inventory-platform/server/middleware"
	"github.com/rise-and-shine/order-inventory-platform/service"
	"github.com/rise-and-shine/order-inventory-platform/tasks"
)

type fixture struct {
	app      *fiber.App
	products *repos.Products
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, model := range []any{
		(*models.User)(nil),
		(*models.Product)(nil),
		(*models.Order)(nil),
		(*models.OrderItem)(nil),
		(*models.Task)(nil),
	} {
		_, err = db.NewCreateTable().Model(model).Exec(ctx)
		require.NoError(t, err)
	}

	products := repos.NewProducts(db)

	userSvc, err := service.NewUserService(
		service.AuthConfig{JWTSecret: "0123456789abcdef0123456789abcdef", TokenTTL: time.Hour},
		repos.NewUsers(db),
		tasks.NewEnqueuer(repos.NewTasks(db)),
		events.NopPublisher{},
	)
	require.NoError(t, err)

	orderSvc := service.NewOrderService(
		db,
		repos.NewOrders(db),
		repos.NewOrderItems(db),
		products,
		events.NopPublisher{},
	)

	srv := server.NewHTTPServer(
		server.Config{
			Host:          "127.0.0.1",
			Port:          0,
			ReadTimeout:   5 * time.Second,
			WriteTimeout:  5 * time.Second,
			IdleTimeout:   time.Minute,
			HandleTimeout: 5 * time.Second,
			BodyLimit:     1 << 20,
		},
		middleware.NewMetaInjectMW("api-test", "0.0.0"),
		middleware.NewErrorHandlerMW(false),
	)
	api.RegisterRoutes(srv.App(), userSvc, orderSvc)

	return &fixture{app: srv.App(), products: products}
}

func (f *fixture) request(t *testing.T, method, path, authToken string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if authToken != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+authToken)
	}

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	decoded := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func (f *fixture) registerAndLogin(t *testing.T, email string) string {
	t.Helper()

	resp, _ := f.request(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    email,
		"username": "tester",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := f.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	accessToken, _ := body["access_token"].(string)
	require.NotEmpty(t, accessToken)
	return accessToken
}

func (f *fixture) seedProduct(t *testing.T, sku string, price, stock int64) *models.Product {
	t.Helper()

	p, err := f.products.Create(context.Background(), &models.Product{
		SKU:   sku,
		Name:  "product " + sku,
		Price: price,
		Stock: stock,
	})
	require.NoError(t, err)
	return p
}

func errorCode(body map[string]any) string {
	errObj, _ := body["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	resp, body := f.request(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestAuthFlow(t *testing.T) {
	f := newFixture(t)

	t.Run("register validation", func(t *testing.T) {
		resp, body := f.request(t, http.MethodPost, "/api/auth/register", "", map[string]any{
			"email":    "not-an-email",
			"username": "x",
			"password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
	})

	t.Run("register login me", func(t *testing.T) {
		accessToken := f.registerAndLogin(t, "alice@example.com")

		resp, body := f.request(t, http.MethodGet, "/api/auth/me", accessToken, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "alice@example.com", body["email"])

		// password hash is never serialized
		_, exposed := body["password_hash"]
		assert.False(t, exposed)
	})

	t.Run("wrong credentials", func(t *testing.T) {
		resp, body := f.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{
			"email":    "alice@example.com",
			"password": "wrong-pass",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, service.CodeInvalidCredentials, errorCode(body))
	})

	t.Run("missing token", func(t *testing.T) {
		resp, body := f.request(t, http.MethodGet, "/api/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, api.CodeMissingAuthToken, errorCode(body))
	})

	t.Run("garbage token", func(t *testing.T) {
		resp, _ := f.request(t, http.MethodGet, "/api/auth/me", "not.a.token", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestUserEndpointsRequireAdmin(t *testing.T) {
	f := newFixture(t)
	accessToken := f.registerAndLogin(t, "user@example.com")

	resp, body := f.request(t, http.MethodGet, "/api/users", accessToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, api.CodeAccessDenied, errorCode(body))
}

func TestOrderEndpoints(t *testing.T) {
	f := newFixture(t)
	coffee := f.seedProduct(t, "coffee", 500, 10)
	accessToken := f.registerAndLogin(t, "buyer@example.com")

	t.Run("place order", func(t *testing.T) {
		resp, body := f.request(t, http.MethodPost, "/api/orders", accessToken, map[string]any{
			"items": []map[string]any{
				{"product_id": coffee.ID, "quantity": 2},
			},
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.EqualValues(t, 1000, body["total"])
		assert.Equal(t, models.OrderStatusPending, body["status"])
	})

	t.Run("insufficient stock", func(t *testing.T) {
		resp, body := f.request(t, http.MethodPost, "/api/orders", accessToken, map[string]any{
			"items": []map[string]any{
				{"product_id": coffee.ID, "quantity": 100},
			},
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, service.CodeInsufficientStock, errorCode(body))
	})

	t.Run("list own orders", func(t *testing.T) {
		resp, body := f.request(t, http.MethodGet, "/api/orders?page_number=1&page_size=10", accessToken, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.EqualValues(t, 1, body["total_count"])

		items, _ := body["page_content"].([]any)
		require.Len(t, items, 1)

		first, _ := items[0].(map[string]any)
		orderID := fmt.Sprintf("%v", first["id"])

		getResp, getBody := f.request(t, http.MethodGet, "/api/orders/"+orderID, accessToken, nil)
		assert.Equal(t, http.StatusOK, getResp.StatusCode)
		assert.EqualValues(t, 1000, getBody["total"])
	})

	t.Run("empty items rejected", func(t *testing.T) {
		resp, body := f.request(t, http.MethodPost, "/api/orders", accessToken, map[string]any{
			"items": []map[string]any{},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
	})
}
