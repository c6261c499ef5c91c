package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/surf-school-booking/internal/config"
	"github.com/iliyamo/surf-school-booking/internal/database"
	"github.com/iliyamo/surf-school-booking/internal/handler"
	"github.com/iliyamo/surf-school-booking/internal/middleware"
	"github.com/iliyamo/surf-school-booking/internal/queue"
	"github.com/iliyamo/surf-school-booking/internal/repository"
	"github.com/iliyamo/surf-school-booking/internal/router"
	"github.com/iliyamo/surf-school-booking/internal/service"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}

	// Repositories and the transactional store.
	store := repository.NewStore(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	courses := repository.NewCourseRepo(db)
	sessions := repository.NewSessionRepo(db)
	bookings := repository.NewBookingRepo(db)

	// Notification pipeline: publisher feeds the durable queue, the
	// consumer drains it into outbound mail records.
	publisher := queue.NewPublisher()
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	bookingSvc := service.NewBookingService(store, publisher)
	sessionSvc := service.NewSessionService(store, publisher)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	courseH := handler.NewCourseHandler(courses)
	sessionH := handler.NewSessionHandler(sessionSvc, sessions)
	bookingH := handler.NewBookingHandler(bookingSvc, bookings)

	mw := router.Middlewares{
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		JWTSecret: cfg.JWTSecret,
	}

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, mw)
	router.RegisterPublic(e, courseH, sessionH, bookingH, mw)
	router.RegisterBookings(e, bookingH, mw)
	router.RegisterAdmin(e, courseH, sessionH, bookingH, mw)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
