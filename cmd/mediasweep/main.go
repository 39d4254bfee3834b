// Command mediasweep runs one orphaned-media sweep from the shell. Exit code
// is 0 on a clean sweep (including a no-op) and 1 when any deletion failed or
// the scan aborted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fatemameem/technest-backend/internal/config"
	"github.com/fatemameem/technest-backend/internal/repository"
	"github.com/fatemameem/technest-backend/internal/service"
	"github.com/fatemameem/technest-backend/internal/utils"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report orphaned media without deleting")
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, _ := utils.NewLogger(true)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	cancel()
	if err != nil {
		logger.Errorf("mongo connect: %v", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mc.Disconnect(ctx)
	}()

	db := mc.Database(cfg.Mongo.Database)
	mediaRepo := repository.NewMediaRepo(db.Collection("media"))
	contentRepo := repository.NewContentRepo(db)

	sweeper := service.NewSweeper(mediaRepo, contentRepo, nil,
		service.SweeperConfig{GracePeriod: cfg.SweepGrace, PageLimit: cfg.Sweep.PageLimit}, logger)

	runCtx, cancelRun := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancelRun()

	sum, err := sweeper.Run(runCtx, *dryRun)
	if err != nil {
		logger.Errorf("sweep failed: %v", err)
		os.Exit(1)
	}

	if *dryRun {
		fmt.Printf("dry run: %d orphaned media record(s) would be deleted\n", sum.Found)
		os.Exit(0)
	}
	fmt.Printf("found=%d deleted=%d errors=%d\n", sum.Found, sum.Deleted, sum.Errors)
	if sum.Errors > 0 {
		os.Exit(1)
	}
}
