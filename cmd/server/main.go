package main // booking API server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-booking/internal/config"
	"github.com/iliyamo/restaurant-booking/internal/database"
	"github.com/iliyamo/restaurant-booking/internal/handler"
	"github.com/iliyamo/restaurant-booking/internal/identity"
	"github.com/iliyamo/restaurant-booking/internal/middleware"
	"github.com/iliyamo/restaurant-booking/internal/repository"
	"github.com/iliyamo/restaurant-booking/internal/router"
	"github.com/iliyamo/restaurant-booking/internal/service"
	"github.com/iliyamo/restaurant-booking/internal/store"
	"github.com/iliyamo/restaurant-booking/internal/utils"
	"github.com/iliyamo/restaurant-booking/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := utils.NewLogger(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.WithField("addr", config.RedisAddr()).Warn("redis unavailable, cache and rate limit disabled")
	} else {
		defer rdb.Close()
	}

	items, locker, closeStore, err := openStore(ctx, cfg, rdb)
	if err != nil {
		logger.WithError(err).Fatal("open item store")
	}
	defer closeStore()
	logger.WithField("driver", cfg.StoreDriver).Info("item store ready")

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		events = service.NewAMQPPublisher(cfg.RabbitMQURL, logger)
	}

	tables := repository.NewTableRepo(items, cfg.TablesTable)
	reservations := repository.NewReservationRepo(items, locker, tables, cfg.ReservationsTable)
	booking := &service.Booking{Tables: tables, Reservations: reservations, Events: events, Log: logger}
	users := identity.NewLocalProvider(repository.NewUserRepo(items, cfg.UsersTable), identity.Options{
		PoolID:      cfg.PoolID,
		ClientID:    cfg.ClientID,
		TokenSecret: cfg.TokenSecret,
		TokenTTLMin: cfg.IDTokenTTLMin,
		BcryptCost:  cfg.BcryptCost,
	})

	api := router.New(router.Handlers{
		Auth:         handler.NewAuthHandler(users, logger),
		Tables:       handler.NewTableHandler(tables, booking),
		Reservations: handler.NewReservationHandler(reservations, booking),
	}, logger)

	forecast := weather.NewClient(cfg.WeatherLatitude, cfg.WeatherLongitude)
	weatherHandler := handler.NewWeatherHandler(forecast, weather.NewProcessor(forecast, items, cfg.WeatherTable), logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLogger(logger))
	router.RegisterRoutes(e, router.Deps{
		Router:    api,
		Weather:   weatherHandler,
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		Log:       logger,
	})

	go func() {
		addr := ":" + cfg.Port
		logger.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown")
	}
}

// openStore builds the item store and reservation locker for the configured
// driver.  The returned func releases driver resources.
func openStore(ctx context.Context, cfg config.Config, rdb *redis.Client) (store.ItemStore, store.Locker, func(), error) {
	schema := store.Schema{cfg.UsersTable: "email"}
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		db, err := database.Open(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		s := store.NewMySQLStore(db, schema)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		return s, store.NewMySQLLocker(db), func() { _ = db.Close() }, nil
	case config.DriverRedis:
		if rdb == nil {
			return nil, nil, nil, errors.New("STORE_DRIVER=redis but redis is unreachable")
		}
		return store.NewRedisStore(rdb, schema, ""), store.NewRedisLocker(rdb, ""), func() {}, nil
	default:
		return store.NewMemoryStore(schema), store.NewMemoryLocker(), func() {}, nil
	}
}
