package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-share-booking/internal/config"
	"github.com/iliyamo/ride-share-booking/internal/database"
	"github.com/iliyamo/ride-share-booking/internal/handler"
	"github.com/iliyamo/ride-share-booking/internal/ledger"
	"github.com/iliyamo/ride-share-booking/internal/middleware"
	"github.com/iliyamo/ride-share-booking/internal/queue"
	"github.com/iliyamo/ride-share-booking/internal/repository"
	"github.com/iliyamo/ride-share-booking/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env always wins
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables rate limiting and caching.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	rideRepo := repository.NewRideRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	reviewRepo := repository.NewReviewRepo(db)

	seatLedger := ledger.NewSeatLedger(db, rideRepo, bookingRepo)

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	rideHandler := handler.NewRideHandler(rideRepo)
	bookingHandler := handler.NewBookingHandler(seatLedger, bookingRepo, rideRepo)
	reviewHandler := handler.NewReviewHandler(reviewRepo, rideRepo)
	publicHandler := handler.NewPublicHandler(rideRepo, reviewRepo)

	e := echo.New()
	e.HideBanner = true

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	respCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, publicHandler, respCache)
	router.RegisterDriver(e, rideHandler, cfg.JWTSecret)
	router.RegisterBookings(e, bookingHandler, cfg.JWTSecret, rateLimit)
	router.RegisterReviews(e, reviewHandler, cfg.JWTSecret)

	// Background consumer mirrors committed booking events to logs/.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
