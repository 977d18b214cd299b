package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/travelbooking/api"
	"github.com/Domenick1991/travelbooking/config"
	"github.com/Domenick1991/travelbooking/internal/auth"
	"github.com/Domenick1991/travelbooking/internal/bootstrap"
	"github.com/Domenick1991/travelbooking/internal/cache"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/Domenick1991/travelbooking/internal/logging"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/Domenick1991/travelbooking/internal/service/account"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/Domenick1991/travelbooking/internal/service/travel"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logging.Init(cfg.Log.Level, cfg.Log.Format)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := cfg.App.Location()
	if err != nil {
		logrus.Fatalf("load timezone: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, db, err := repository.Open(ctx, cfg.Database.DSN())
	if err != nil {
		logrus.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()
	defer db.Close()

	if err := repository.CreateDatabaseSchema(ctx, db); err != nil {
		logrus.Fatalf("create schema: %v", err)
	}

	var (
		travelCache  travel.Cache
		bookingCache booking.Cache
	)
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Cache.TravelOptionsTTL())
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			logrus.WithError(err).Warn("redis unavailable, cache reads will fall through")
		}
		travelCache, bookingCache = redisCache, redisCache
	}

	var producer booking.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer kafkaProducer.Close()
		if err := kafkaProducer.CheckConnection(ctx); err != nil {
			logrus.WithError(err).Warn("kafka unavailable, booking events may be lost")
		}
		producer = kafkaProducer
	}

	travelRepo := repository.NewTravelOptionRepository(db, loc)
	bookingRepo := repository.NewBookingRepository(db)
	userRepo := repository.NewUserRepository(db)

	travelService := travel.NewTravelService(travelRepo, travelCache)
	bookingService := booking.NewBookingService(
		bookingRepo,
		travelRepo,
		bookingCache,
		producer,
		cfg.Kafka.BookingTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	accountService := account.NewAccountService(userRepo)

	router := api.NewRouter(api.Dependencies{
		Travel:         travelService,
		Bookings:       bookingService,
		Accounts:       accountService,
		Sessions:       auth.NewSessionManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL()),
		CookieName:     cfg.Auth.CookieName,
		SecureCookie:   cfg.Auth.SecureCookie,
		Location:       loc,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	if err := bootstrap.Run(ctx, cfg, router); err != nil {
		logrus.Fatalf("server error: %v", err)
	}
}
