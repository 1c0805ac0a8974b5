package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/rise-and-shine/order-inventory-platform/events"
	"github.com/rise-and-shine/order-inventory-platform/models"
	"github.com/rise-and-shine/order-inventory-platform/pagination"
	"github.com/rise-and-shine/order-inventory-platform/repo"
	"github.com/rise-and-shine/order-inventory-platform/repos"
	"github.com/rise-and-shine/order-inventory-platform/service"
	"github.com/rise-and-shine/order-inventory-platform/tasks"
)

func newUserService(t *testing.T, db *bun.DB) (*service.UserService, *repos.Tasks) {
	t.Helper()

	taskRepo := repos.NewTasks(db)

	svc, err := service.NewUserService(
		service.AuthConfig{JWTSecret: testJWTSecret, TokenTTL: time.Hour},
		repos.NewUsers(db),
		tasks.NewEnqueuer(taskRepo),
		events.NopPublisher{},
	)
	require.NoError(t, err)

	return svc, taskRepo
}

func register(t *testing.T, svc *service.UserService, email string) *models.User {
	t.Helper()

	user, err := svc.Register(context.Background(), service.RegisterInput{
		Email:    email,
		Username: "tester",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, taskRepo := newUserService(t, newTestDB(t))

	user := register(t, svc, "Alice@Example.com")

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	// a welcome email task is queued for the new account
	queued, err := taskRepo.FindOneBy(ctx, repo.Where(repo.Eq("name", tasks.TaskSendWelcomeEmail)))
	require.NoError(t, err)
	require.NotNil(t, queued)
	assert.EqualValues(t, user.ID, tasks.PayloadInt64(queued.Payload, "user_id"))

	// unique email constraint
	_, err = svc.Register(ctx, service.RegisterInput{
		Email:    "alice@example.com",
		Username: "other",
		Password: "another-pass",
	})
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc, _ := newUserService(t, db)

	user := register(t, svc, "bob@example.com")

	t.Run("success", func(t *testing.T) {
		accessToken, got, err := svc.Login(ctx, "bob@example.com", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		payload, err := svc.TokenMaker().VerifyToken(accessToken)
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, payload.CustomClaim("role"))
	})

	t.Run("case insensitive email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "BOB@example.com", "s3cret-pass")
		require.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "bob@example.com", "wrong")
		require.Error(t, err)
		assert.True(t, errx.IsCodeIn(err, service.CodeInvalidCredentials))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "s3cret-pass")
		require.Error(t, err)
		assert.True(t, errx.IsCodeIn(err, service.CodeInvalidCredentials))
	})

	t.Run("inactive account", func(t *testing.T) {
		users := repos.NewUsers(db)
		_, err := users.UpdateMany(ctx,
			repo.Where(repo.Eq("id", user.ID)),
			repo.Set("is_active", false),
		)
		require.NoError(t, err)

		_, _, err = svc.Login(ctx, "bob@example.com", "s3cret-pass")
		require.Error(t, err)
		assert.True(t, errx.IsCodeIn(err, service.CodeUserInactive))
	})
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService(t, newTestDB(t))

	user := register(t, svc, "carol@example.com")

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = svc.GetUser(ctx, 9999)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, service.CodeUserNotFound))
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService(t, newTestDB(t))

	for _, email := range []string{"u1@x.com", "u2@x.com", "u3@x.com"} {
		register(t, svc, email)
	}

	page, err := svc.ListUsers(ctx, pagination.Request{PageNumber: 1, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalCount)
	assert.Equal(t, 2, page.PageCount)
	assert.Len(t, page.PageContent, 2)

	page, err = svc.ListUsers(ctx, pagination.Request{PageNumber: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, page.PageContent, 1)
}
