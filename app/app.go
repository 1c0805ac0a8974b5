package app

import (
	"context"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"

	"github.com/rise-and-shine/order-inventory-platform/events"
	"github.com/rise-and-shine/order-inventory-platform/logger"
	"github.com/rise-and-shine/order-inventory-platform/meta"
	"github.com/rise-and-shine/order-inventory-platform/pg"
	"github.com/rise-and-shine/order-inventory-platform/repos"
	"github.com/rise-and-shine/order-inventory-platform/service"
	"github.com/rise-and-shine/order-inventory-platform/tasks"
	"github.com/rise-and-shine/order-inventory-platform/tracing"
)

// App holds the shared dependencies of the api and worker binaries.
type App struct {
	Config Config

	DB        *bun.DB
	Publisher events.Publisher
	Enqueuer  *tasks.Enqueuer

	Users      *repos.Users
	Products   *repos.Products
	Orders     *repos.Orders
	OrderItems *repos.OrderItems
	Tasks      *repos.Tasks

	UserService  *service.UserService
	OrderService *service.OrderService

	tracerShutdown func() error
}

// New wires the shared application graph: logging, tracing, the
// database pool, repositories, the event publisher and the services.
func New(ctx context.Context, cfg Config) (*App, error) {
	meta.SetServiceInfo(cfg.ServiceName, cfg.ServiceVersion)
	logger.SetGlobal(cfg.Logger)

	tracerShutdown, err := tracing.InitGlobalTracer(cfg.Tracing, cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	db, err := pg.NewBunDB(ctx, cfg.Postgres)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if !cfg.Events.Disable {
		publisher, err = events.NewKafkaPublisher(cfg.Events.Publisher, logger.Named("events"))
		if err != nil {
			return nil, errx.Wrap(err)
		}
	}

	a := &App{
		Config:         cfg,
		DB:             db,
		Publisher:      publisher,
		Users:          repos.NewUsers(db),
		Products:       repos.NewProducts(db),
		Orders:         repos.NewOrders(db),
		OrderItems:     repos.NewOrderItems(db),
		Tasks:          repos.NewTasks(db),
		tracerShutdown: tracerShutdown,
	}
	a.Enqueuer = tasks.NewEnqueuer(a.Tasks)

	a.UserService, err = service.NewUserService(cfg.Auth, a.Users, a.Enqueuer, publisher)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	a.OrderService = service.NewOrderService(db, a.Orders, a.OrderItems, a.Products, publisher)

	return a, nil
}

// Close releases the shared resources in reverse order of creation.
func (a *App) Close() {
	if err := a.Publisher.Close(); err != nil {
		logger.With("error", err).Warn("failed to close event publisher")
	}
	if err := a.DB.Close(); err != nil {
		logger.With("error", err).Warn("failed to close database")
	}
	if err := a.tracerShutdown(); err != nil {
		logger.With("error", err).Warn("failed to shut down tracer")
	}
	_ = logger.Sync()
}
