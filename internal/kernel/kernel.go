// Package kernel wires configuration, persistence, services and the HTTP
// router into a runnable application.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ruizhu/shopapi/app/controllers"
	"github.com/ruizhu/shopapi/app/models"
	"github.com/ruizhu/shopapi/app/repositories"
	"github.com/ruizhu/shopapi/app/routes"
	"github.com/ruizhu/shopapi/app/services"
	"github.com/ruizhu/shopapi/config"
	"github.com/ruizhu/shopapi/pkg/auth"
	"github.com/ruizhu/shopapi/pkg/bind"
	"github.com/ruizhu/shopapi/pkg/cache"
	"github.com/ruizhu/shopapi/pkg/database"
	"github.com/ruizhu/shopapi/pkg/event"
	"github.com/ruizhu/shopapi/pkg/logger"
	"github.com/ruizhu/shopapi/pkg/metrics"
	"github.com/ruizhu/shopapi/pkg/middleware"
	"github.com/ruizhu/shopapi/pkg/reqid"
	"github.com/ruizhu/shopapi/pkg/router"
	"github.com/ruizhu/shopapi/pkg/storage"
	"github.com/ruizhu/shopapi/pkg/wechatpay"
)

// App holds the wired application. Close releases everything it opened.
type App struct {
	Config *config.Config
	DB     *gorm.DB
	Repo   *repositories.DB
	Router *router.Router

	closers []func() error
}

// SetupLogging installs the base logger and, when LOG_MONGO_URI is set,
// the MongoDB sink. The returned func flushes the sink.
func SetupLogging(ctx context.Context, cfg *config.Config) func() {
	var extra []slog.Handler
	var mongoHandler *logger.MongoHandler
	if cfg.LogMongo.URI != "" {
		h, err := logger.NewMongoHandler(ctx, cfg.LogMongo.URI, cfg.LogMongo.Database, cfg.LogMongo.Collection, slog.LevelInfo)
		if err != nil {
			fmt.Fprintf(os.Stderr, "mongo log sink disabled: %v\n", err)
		} else {
			mongoHandler = h
			extra = append(extra, h)
		}
	}
	logger.Setup(cfg.AppEnv, os.Stdout, extra...)
	return func() {
		if mongoHandler != nil {
			mongoHandler.Close()
		}
	}
}

// Open connects to the database and builds the full application.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	app, err := New(ctx, cfg, db)
	if err != nil {
		database.Close(db) //nolint:errcheck
		return nil, err
	}
	app.closers = append(app.closers, func() error { return database.Close(db) })
	return app, nil
}

// New builds the application on an existing connection.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB) (*App, error) {
	app := &App{Config: cfg, DB: db, Repo: repositories.NewDB(db)}

	issuer, err := auth.NewIssuer(cfg.JWT)
	if err != nil {
		return nil, err
	}
	disk, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	rdb, err := app.connectRedis(ctx)
	if err != nil {
		return nil, err
	}
	var rateStore middleware.RateStore = middleware.NewMemoryStore()
	var cacheStore cache.Store = cache.NewMemoryStore()
	if rdb != nil {
		rateStore = middleware.NewRedisStore(rdb)
		cacheStore = cache.NewRedisStore(rdb)
	}

	bus := event.NewBus(4)
	app.closers = append(app.closers, func() error { bus.Close(); return nil })
	listen(bus)

	users := repositories.NewUserRepository(app.Repo)
	orders := repositories.NewOrderRepository(app.Repo)
	payments := repositories.NewPaymentRepository(app.Repo)
	productRepo := repositories.NewProductRepository(app.Repo)
	var products services.ProductStore = productRepo
	if cfg.Cache.TTL > 0 {
		products = repositories.NewCachedProductRepository(productRepo, cacheStore, cfg.Cache.TTL)
	}

	ctrls := routes.Controllers{
		Home:     controllers.NewHomeController(app.Repo),
		Users:    controllers.NewUserController(services.NewUserService(users, issuer)),
		Products: controllers.NewProductController(services.NewProductService(products, disk)),
		Orders:   controllers.NewOrderController(services.NewOrderService(orders).WithEvents(bus)),
		Payments: controllers.NewPaymentController(services.NewPaymentService(
			app.Repo, payments, orders, wechatpay.NewMockGateway(cfg.WeChat),
		).WithEvents(bus)),
	}

	app.Router = NewRouter(cfg, ctrls, middleware.Auth(issuer), rateStore)

	if local, ok := disk.(*storage.LocalDisk); ok {
		app.Router.Mount("/storage", http.StripPrefix("/storage", http.FileServer(http.Dir(local.Root()))))
	}
	return app, nil
}

// connectRedis connects when REDIS_ADDR is set; otherwise it returns nil and the
// in-memory rate limiter and cache are used.
func (a *App) connectRedis(ctx context.Context) (*redis.Client, error) {
	if a.Config.Redis.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     a.Config.Redis.Addr,
		Password: a.Config.Redis.Password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", a.Config.Redis.Addr, err)
	}
	a.closers = append(a.closers, client.Close)
	logger.Info("using redis for rate limits and cache", "addr", a.Config.Redis.Addr)
	return client, nil
}

// listen attaches the audit log listeners.
func listen(bus *event.Bus) {
	bus.Listen(event.OrderCreated, func(ctx context.Context, e event.Event) {
		o := e.Payload.(models.Order)
		logger.WithCtx(ctx).Info("audit: order placed", "order_id", o.ID, "total_price", o.TotalPrice)
	})
	bus.Listen(event.OrderStatusChanged, func(ctx context.Context, e event.Event) {
		o := e.Payload.(models.Order)
		logger.WithCtx(ctx).Info("audit: order status changed", "order_id", o.ID, "status", o.Status)
	})
	bus.Listen(event.PaymentCreated, func(ctx context.Context, e event.Event) {
		p := e.Payload.(models.Payment)
		logger.WithCtx(ctx).Info("audit: payment opened", "transaction_no", p.TransactionNo, "amount", p.Amount)
	})
	bus.Listen(event.PaymentConfirmed, func(ctx context.Context, e event.Event) {
		p := e.Payload.(models.Payment)
		logger.WithCtx(ctx).Info("audit: payment confirmed", "transaction_no", p.TransactionNo, "order_id", p.OrderID)
	})
}

// NewRouter builds the router with the global middleware stack and every
// route. It does not touch the database, so route:list can call it with
// unwired controllers.
func NewRouter(cfg *config.Config, c routes.Controllers, authenticate router.Middleware, rate middleware.RateStore) *router.Router {
	r := router.New()
	r.Use(
		metrics.Middleware(),
		reqid.Middleware(),
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(middleware.CORSOptionsFrom(cfg.CORS)),
		middleware.RateLimit(rate, cfg.RateLimit.Requests, cfg.RateLimit.Window),
		bind.Limit(cfg.MaxBodyBytes),
	)
	r.Get("/metrics", "metrics", metrics.Handler())
	routes.RegisterAPI(r, c, authenticate)
	return r
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler { return a.Router.Handler() }

// Close releases the connections the App opened, in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && !errors.Is(err, io.EOF) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
