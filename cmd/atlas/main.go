package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/bg1eym/atlas-data/internal/app"
	"github.com/bg1eym/atlas-data/internal/config"
	"github.com/bg1eym/atlas-data/internal/logging"
	"github.com/bg1eym/atlas-data/pkg/version"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)
	defer func() { _ = logger.Sync() }()

	logger.Infow("atlas-data", "version", version.String())

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Errorw("startup failed", "error", err)
		os.Exit(1)
	}

	runID := newRunID()
	if err := application.Run(ctx, runID); err != nil {
		logger.Errorw("run failed", "run_id", runID, "error", err)
		os.Exit(1)
	}

	fmt.Printf("run_id=%s\n", runID)
}

// newRunID honors an ATLAS_RUN_ID override, otherwise yields an id sortable
// by start time with a random suffix.
func newRunID() string {
	if id := os.Getenv("ATLAS_RUN_ID"); id != "" {
		return id
	}
	return fmt.Sprintf("atlas-%s-%s",
		strconv.FormatInt(time.Now().UnixMilli(), 36),
		uuid.NewString()[:6],
	)
}
