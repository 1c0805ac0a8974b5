package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/order-inventory-platform/events"
	"github.com/rise-and-shine/order-inventory-platform/hasher"
	"github.com/rise-and-shine/order-inventory-platform/logger"
	"github.com/rise-and-shine/order-inventory-platform/models"
	"github.com/rise-and-shine/order-inventory-platform/pagination"
	"github.com/rise-and-shine/order-inventory-platform/repo"
	"github.com/rise-and-shine/order-inventory-platform/repos"
	"github.com/rise-and-shine/order-inventory-platform/tasks"
	"github.com/rise-and-shine/order-inventory-platform/token"
)

// AuthConfig holds token signing settings for the user service.
type AuthConfig struct {
	// JWTSecret signs access tokens. Must be at least 16 characters.
	JWTSecret string `yaml:"jwt_secret" validate:"required,min=16" mask:"true"`

	// TokenTTL is the access token lifetime. Default is 24 hours.
	TokenTTL time.Duration `yaml:"token_ttl" default:"24h"`
}

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// UserService implements account registration, authentication and
// user lookups.
type UserService struct {
	users      *repos.Users
	tokenMaker *token.JWTMaker
	tokenTTL   time.Duration
	enqueuer   *tasks.Enqueuer
	publisher  events.Publisher
	logger     logger.Logger
}

// NewUserService creates the user service.
func NewUserService(
	cfg AuthConfig,
	users *repos.Users,
	enqueuer *tasks.Enqueuer,
	publisher events.Publisher,
) (*UserService, error) {
	tokenMaker, err := token.NewJWTMaker(cfg.JWTSecret)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &UserService{
		users:      users,
		tokenMaker: tokenMaker,
		tokenTTL:   cfg.TokenTTL,
		enqueuer:   enqueuer,
		publisher:  publisher,
		logger:     logger.Named("service.user"),
	}, nil
}

// TokenMaker exposes the JWT maker for the authentication middleware.
func (s *UserService) TokenMaker() *token.JWTMaker {
	return s.tokenMaker
}

// Register creates a new active account with the user role, publishes
// a user.registered event and enqueues a welcome email task. The side
// effects are best-effort: a broker or queue failure does not roll the
// account back.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	hash, err := hasher.Hash(in.Password)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Username:     in.Username,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	userID := strconv.FormatInt(created.ID, 10)

	if err := s.publisher.Publish(ctx, events.UserRegistered, userID, map[string]any{
		"user_id": created.ID,
		"email":   created.Email,
	}); err != nil {
		s.logger.WithContext(ctx).With("error", err).Warn("failed to publish user.registered event")
	}

	if _, err := s.enqueuer.Enqueue(ctx, tasks.TaskSendWelcomeEmail, map[string]any{
		"user_id": created.ID,
		"email":   created.Email,
	}); err != nil {
		s.logger.WithContext(ctx).With("error", err).Warn("failed to enqueue welcome email task")
	}

	return created, nil
}

// Login verifies the credentials and returns a signed access token
// together with the account.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, errx.Wrap(err)
	}

	if user == nil || !hasher.Compare(password, user.PasswordHash) {
		return "", nil, errx.New("invalid email or password",
			errx.WithCode(CodeInvalidCredentials),
			errx.WithType(errx.T_Authentication))
	}

	if !user.IsActive {
		return "", nil, errx.New("account is deactivated",
			errx.WithCode(CodeUserInactive),
			errx.WithType(errx.T_Forbidden))
	}

	accessToken, _, err := s.tokenMaker.CreateToken(
		strconv.FormatInt(user.ID, 10),
		s.tokenTTL,
		map[string]any{
			"role":  user.Role,
			"email": user.Email,
		},
	)
	if err != nil {
		return "", nil, errx.Wrap(err)
	}

	return accessToken, user, nil
}

// GetUser returns the user with the given id.
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.FindOneBy(ctx, repo.Where(repo.Eq("id", id)))
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if user == nil {
		return nil, errx.New("user not found",
			errx.WithCode(CodeUserNotFound),
			errx.WithType(errx.T_NotFound),
			errx.WithDetails(errx.D{"user_id": id}))
	}
	return user, nil
}

// ListUsers returns a page of users ordered by id.
func (s *UserService) ListUsers(
	ctx context.Context,
	page pagination.Request,
) (pagination.Response[models.User], error) {
	page.Normalize()

	total, err := s.users.Count(ctx, nil)
	if err != nil {
		return pagination.Response[models.User]{}, errx.Wrap(err)
	}

	items, err := s.users.FindAllBy(ctx, nil,
		repo.WithOffset(page.Offset()),
		repo.WithLimit(page.Limit()),
	)
	if err != nil {
		return pagination.Response[models.User]{}, errx.Wrap(err)
	}

	return pagination.NewResponse(items, int64(total), page), nil
}
