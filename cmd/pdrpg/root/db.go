package root

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AssQ222/PDRPG/internal/engine"
	"github.com/AssQ222/PDRPG/internal/logging"
	"github.com/AssQ222/PDRPG/internal/metrics"
	"github.com/AssQ222/PDRPG/internal/storage"
)

func openDB(ctx context.Context, g *globals) (*sql.DB, func(), error) {
	path, err := storage.ResolveDBPath(g.cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return db, cleanup, nil
}

// openService opens the database and builds a Service logging to console
// (if non-nil) and the configured log file. Default achievements are
// installed on first use.
func openService(ctx context.Context, g *globals, console io.Writer, m *metrics.Metrics) (*engine.Service, *zap.Logger, func(), error) {
	log, err := logging.New(g.cfg, console)
	if err != nil {
		return nil, nil, nil, err
	}
	db, closeDB, err := openDB(ctx, g)
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() {
		closeDB()
		_ = log.Sync()
	}

	svc := engine.NewService(db, engine.WithLogger(log), engine.WithMetrics(m))
	if _, err := svc.SeedDefaultAchievements(ctx); err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return svc, log, cleanup, nil
}

// withService runs fn against a Service built for a one-shot CLI command.
func withService(cmd *cobra.Command, g *globals, fn func(ctx context.Context, svc *engine.Service) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, _, cleanup, err := openService(ctx, g, nil, nil)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(ctx, svc)
}

func idArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("id is required")
	}
	if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
		return errors.New("id must be an integer")
	}
	return nil
}

func parseID(s string) int64 {
	id, _ := strconv.ParseInt(s, 10, 64)
	return id
}
