package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fatemameem/technest-backend/internal/auth"
	"github.com/fatemameem/technest-backend/internal/compress"
	"github.com/fatemameem/technest-backend/internal/config"
	"github.com/fatemameem/technest-backend/internal/events"
	"github.com/fatemameem/technest-backend/internal/handlers"
	"github.com/fatemameem/technest-backend/internal/metrics"
	"github.com/fatemameem/technest-backend/internal/middleware"
	"github.com/fatemameem/technest-backend/internal/repository"
	"github.com/fatemameem/technest-backend/internal/service"
	"github.com/fatemameem/technest-backend/internal/storage"
	"github.com/fatemameem/technest-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(err)
	}
	dev := cfg.App.Env == "development"

	logger, _ := utils.NewLogger(dev)
	defer func() { _ = logger.Sync() }()

	metrics.Init()

	// Mongo
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatalf("mongo connect: %v", err)
	}
	if err := mc.Ping(ctx, nil); err != nil {
		logger.Fatalf("mongo ping: %v", err)
	}
	db := mc.Database(cfg.Mongo.Database)
	mediaRepo := repository.NewMediaRepo(db.Collection("media"))
	contentRepo := repository.NewContentRepo(db)
	adminRepo := repository.NewAdminRepo(db.Collection("admins"))

	// Redis (role cache); optional
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("redis ping failed, role cache disabled: %v", err)
			rdb = nil
		}
	}

	// storage backends
	drive, err := storage.NewDriveStore(context.Background(), cfg.Drive.Region, cfg.Drive.Bucket, cfg.Drive.Folder, cfg.Drive.PublicRead, cfg.PresignTTL)
	if err != nil {
		logger.Fatalf("drive init: %v", err)
	}
	cdn := storage.NewCDNClient(cfg.CDN.BaseURL, cfg.CDN.APIKey, cfg.CDN.Folder, logger)

	// events; optional
	var producer *events.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() { _ = producer.Close() }()
	}

	// services
	compressOpts := compress.Options{
		TargetKB:       cfg.Compress.TargetKB,
		MaxWidth:       cfg.Compress.MaxWidth,
		MaxHeight:      cfg.Compress.MaxHeight,
		Format:         cfg.Compress.Format,
		QualityFloor:   cfg.Compress.QualityFloor,
		QualityCeiling: cfg.Compress.QualityCeiling,
	}
	msvc := service.NewMediaService(mediaRepo, drive, cdn, producer, compressOpts, logger)
	sweeper := service.NewSweeper(mediaRepo, contentRepo, producer,
		service.SweeperConfig{GracePeriod: cfg.SweepGrace, PageLimit: cfg.Sweep.PageLimit}, logger)

	// auth
	verifier, err := auth.NewJWTVerifier(cfg.JWT.PublicKeyPath)
	if err != nil {
		logger.Fatalf("jwt init: %v", err)
	}
	resolver := auth.NewResolver(adminRepo, rdb, cfg.RoleCacheTTL)

	// fiber app & routes
	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    30 * 1024 * 1024,
	})

	editors := middleware.RequireRole(verifier, resolver, logger, auth.RoleAdmin, auth.RoleModerator)
	adminsOnly := middleware.RequireRole(verifier, resolver, logger, auth.RoleAdmin)
	rl := middleware.NewIPRateLimiter(cfg.App.RateLimitPerMin, logger)

	mh := handlers.NewMediaHandler(msvc, sweeper)
	ch := handlers.NewContentHandler(contentRepo)
	ah := handlers.NewAdminHandler(adminRepo)

	api := app.Group("/api")
	api.Post("/media/upload", rl.Handler(), editors, mh.Upload)
	api.Post("/media/cleanup", adminsOnly, mh.Cleanup)
	api.Get("/media/:id", mh.Get)

	api.Get("/blogs", ch.ListBlogPosts)
	api.Get("/blogs/:slug", ch.GetBlogPost)
	api.Post("/blogs", editors, ch.CreateBlogPost)
	api.Delete("/blogs/:id", adminsOnly, ch.DeleteBlogPost)

	api.Get("/events", ch.ListEvents)
	api.Post("/events", editors, ch.CreateEvent)
	api.Delete("/events/:id", adminsOnly, ch.DeleteEvent)

	api.Get("/podcasts", ch.ListPodcastEpisodes)
	api.Post("/podcasts", editors, ch.CreatePodcastEpisode)
	api.Delete("/podcasts/:id", adminsOnly, ch.DeletePodcastEpisode)

	api.Get("/team", ch.ListTeamMembers)
	api.Post("/team", editors, ch.CreateTeamMember)
	api.Delete("/team/:id", adminsOnly, ch.DeleteTeamMember)

	api.Post("/admins", adminsOnly, ah.Create)
	api.Delete("/admins/:id", adminsOnly, ah.Delete)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	// metrics scrape endpoint on its own listener
	if cfg.App.MetricsPort > 0 {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.App.MetricsPort)
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Errorf("metrics listener: %v", err)
			}
		}()
	}

	// start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		logger.Infof("starting technest backend on %s", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatalf("listen failed: %v", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown requested")
	timeoutCtx, cancel2 := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel2()

	_ = app.Shutdown()
	_ = mc.Disconnect(timeoutCtx)
	if rdb != nil {
		_ = rdb.Close()
	}
	logger.Info("shutdown completed")
}
