package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/readshelf/readshelf/internal/config"
	"github.com/readshelf/readshelf/internal/database"
	"github.com/readshelf/readshelf/internal/handler"
	"github.com/readshelf/readshelf/internal/middleware"
	"github.com/readshelf/readshelf/internal/queue"
	"github.com/readshelf/readshelf/internal/repository"
	"github.com/readshelf/readshelf/internal/router"
	"github.com/readshelf/readshelf/internal/storage"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	docs, err := storage.NewDocumentStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		log.Fatalf("document store: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: rate limiting and trending cache disabled")
	}

	users := repository.NewUserRepo(db)
	topics := repository.NewTopicRepo(db)
	subs := repository.NewSubscriptionRepo(db)
	invites := repository.NewInviteRepo(db)
	resources := repository.NewResourceRepo(db)
	readings := repository.NewReadingItemRepo(db)
	ratings := repository.NewRatingRepo(db)

	authH := handler.NewAuthHandler(cfg, users)
	topicH := &handler.TopicHandler{
		Cfg: cfg, Topics: topics, Subs: subs, Invites: invites,
		Res: resources, Readings: readings, Ratings: ratings,
		Users: users, Docs: docs, Cache: rdb,
	}
	resourceH := &handler.ResourceHandler{
		Cfg: cfg, Topics: topics, Subs: subs,
		Res: resources, Readings: readings, Ratings: ratings, Docs: docs,
	}

	sessionAuth := middleware.SessionAuth(cfg.JWTSecret, users)
	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, sessionAuth, rateLimit)
	router.RegisterTopics(e, topicH, sessionAuth)
	router.RegisterResources(e, resourceH, sessionAuth)

	// The mail worker runs for the lifetime of the process and reconnects
	// on broker failures; it never stops the API.
	go func() {
		if err := queue.StartPasswordResetConsumer(); err != nil {
			log.Printf("reset-mail-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
