package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/lucavalca/tour-booking/internal/config"
	"github.com/lucavalca/tour-booking/internal/database"
	"github.com/lucavalca/tour-booking/internal/handler"
	"github.com/lucavalca/tour-booking/internal/middleware"
	"github.com/lucavalca/tour-booking/internal/queue"
	"github.com/lucavalca/tour-booking/internal/repository"
	"github.com/lucavalca/tour-booking/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Redis is optional; when unreachable the cache and rate limiter
	// degrade to pass-through.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	tours := repository.NewTourRepo(db)
	dates := repository.NewTourDateRepo(db)
	bookings := repository.NewBookingRepo(db)
	notifications := repository.NewNotificationRepo(db)
	stats := repository.NewStatsRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	tourH := handler.NewTourHandler(tours)
	dateH := handler.NewTourDateHandler(cfg, dates)
	bookingH := handler.NewBookingHandler(bookings, notifications, users)
	qrH := handler.NewQRCodeHandler(bookings)
	notifH := handler.NewNotificationHandler(notifications)
	adminH := handler.NewAdminHandler(cfg, users, stats)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, tourH, dateH, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterBookings(e, bookingH, cfg.JWTSecret)
	router.RegisterAdmin(e, tourH, dateH, qrH, notifH, adminH, cfg.JWTSecret)

	// Background consumer for booking.created events; it reconnects on
	// broker failures and never takes the API down.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
