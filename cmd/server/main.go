package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market-service/internal/auth"
	"market-service/internal/config"
	httpapi "market-service/internal/controllers/http"
	"market-service/internal/domain"
	"market-service/internal/infra/cache"
	"market-service/internal/infra/db"
	"market-service/internal/infra/imagestore"
	"market-service/internal/infra/rabbitmq"
	"market-service/internal/logger"
	"market-service/internal/repository"
	"market-service/internal/repository/gormrepo"
	"market-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const warmupProducts = 50

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "text").WithError(err).Fatal("load config")
	}
	log := logger.Component(cfg.Log.Level, cfg.Log.Format, "Market")

	gdb, err := db.Open(db.Options{
		Driver:          cfg.DB.Driver,
		DSN:             cfg.DB.DSN,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.DB.ConnMaxIdleTime,
		SlowThreshold:   200 * time.Millisecond,
	}, logger.Component(cfg.Log.Level, cfg.Log.Format, "DB"))
	if err != nil {
		log.WithError(err).Fatal("db: connect")
	}
	if err := db.Migrate(gdb); err != nil {
		log.WithError(err).Fatal("db: migrate")
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     200,
			MinIdleConns: 20,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
	} else {
		log.Warn("REDIS_ADDR not set, running without cache and token revocation")
	}

	var publisher rabbitmq.PublisherInterface
	if cfg.Rabbit.URL != "" {
		p, err := rabbitmq.NewPublisher(cfg.Rabbit.URL, cfg.Rabbit.Exchange, logger.Component(cfg.Log.Level, cfg.Log.Format, "Events"))
		if err != nil {
			log.WithError(err).Fatal("failed to init publisher")
		}
		defer p.Close()
		publisher = p
	} else {
		log.Warn("RABBITMQ_URL not set, order events are only logged")
		publisher = rabbitmq.NewLogPublisher(logger.Component(cfg.Log.Level, cfg.Log.Format, "Events"))
	}

	images, err := imagestore.New(cfg.Upload.Dir, cfg.Upload.URLPrefix, cfg.Upload.MaxWidth)
	if err != nil {
		log.WithError(err).Fatal("image store")
	}

	var products repository.ProductRepository = gormrepo.NewProductRepository(gdb)
	var revoked services.RevocationList = noRevocation{}
	if rdb != nil {
		cached := cache.NewProductRepository(products, rdb, cfg.Order.ProductCacheTTL, logger.Component(cfg.Log.Level, cfg.Log.Format, "Cache"))
		go warmup(cached, products, log)
		products = cached
		revoked = cache.NewRevocationList(rdb)
	}

	users := gormrepo.NewUserRepository(gdb)
	orderRepo := gormrepo.NewOrderRepository(gdb)
	carts := gormrepo.NewCartRepository(gdb)

	orderLog := logger.Component(cfg.Log.Level, cfg.Log.Format, "Order")
	orders := services.NewOrderService(orderRepo, products, carts, publisher, orderLog,
		services.WithDeliveryLeadDays(cfg.Order.DeliveryLeadDays))

	svc := httpapi.Services{
		Orders:   orders,
		Payments: services.NewPaymentService(gormrepo.NewPaymentRepository(gdb), orderRepo, publisher, logger.Component(cfg.Log.Level, cfg.Log.Format, "Payment")),
		Catalog:  services.NewCatalogService(products, images, logger.Component(cfg.Log.Level, cfg.Log.Format, "Catalog")),
		Cart:     services.NewCartService(carts, products, logger.Component(cfg.Log.Level, cfg.Log.Format, "Cart")),
		Reviews:  services.NewReviewService(gormrepo.NewReviewRepository(gdb), logger.Component(cfg.Log.Level, cfg.Log.Format, "Review")),
		Wishlist: services.NewWishlistService(gormrepo.NewWishlistRepository(gdb), products, logger.Component(cfg.Log.Level, cfg.Log.Format, "Wishlist")),
		Auth: services.NewAuthService(users, auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), revoked,
			logger.Component(cfg.Log.Level, cfg.Log.Format, "Auth")),
		Users: services.NewUserService(users, orders, products, images, logger.Component(cfg.Log.Level, cfg.Log.Format, "User")),
	}

	handler := httpapi.NewHandler(svc, rdb, logger.Component(cfg.Log.Level, cfg.Log.Format, "HTTP"))
	handler.AddHealthCheck("db", func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	if rdb != nil {
		handler.AddHealthCheck("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(httpapi.RequestID(), httpapi.AccessLog(logger.Component(cfg.Log.Level, cfg.Log.Format, "Access")),
		httpapi.SecurityHeaders(), gin.Recovery())
	r.Static(cfg.Upload.URLPrefix, images.Dir())
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting market service on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server run")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.WithError(err).Error("redis close")
		}
	}
	if err := db.Close(gdb); err != nil {
		log.WithError(err).Error("db close")
	}
}

// warmup loads the newest listed products into the cache once the server is up.
func warmup(c *cache.ProductRepository, products repository.ProductRepository, log *logrus.Entry) {
	time.Sleep(5 * time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	list, _, err := products.List(ctx, repository.ProductFilter{ListedOnly: true, Sort: repository.SortNewest},
		domain.PageRequest{Page: 1, Limit: warmupProducts})
	if err != nil {
		log.WithError(err).Warn("failed to list products for cache warmup")
		return
	}
	ids := make([]uint64, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	if err := c.Warmup(ctx, ids); err != nil {
		log.WithError(err).Warn("failed to warm up cache")
		return
	}
	log.Infof("cache warmed up with %d products", len(ids))
}

type noRevocation struct{}

func (noRevocation) Revoke(context.Context, string, time.Duration) error { return nil }
func (noRevocation) IsRevoked(context.Context, string) (bool, error)     { return false, nil }
