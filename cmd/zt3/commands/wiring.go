package commands

import (
	"context"
	"fmt"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/contracts"
	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/fetch"
	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/rules"
	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/screener"
	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/universe"
	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/upstox"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/config"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/database"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/logger"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/redis"
)

// app holds the wired collaborators shared by the CLI commands.
type app struct {
	cfg    *config.Config
	logger *logger.Logger
	rules  rules.Config
	runner *screener.Runner
	db     *database.DB
	redis  *redis.Client
}

// newApp loads config and wires the fetch/screen stack. The database and
// Redis are optional collaborators; commands that need the database must
// check app.db themselves.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg)

	ruleCfg, err := rules.Load(cfg.Screener.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	if hash, err := ruleCfg.Hash(); err == nil {
		log.WithField("rules_hash", hash).Info("Rule configuration loaded")
	}

	a := &app{cfg: cfg, logger: log, rules: ruleCfg}

	redisClient, err := redis.New(cfg)
	if err != nil {
		// Cache is an optimization; run uncached rather than fail.
		log.WithError(err).Warn("Redis unavailable, bar cache disabled")
	} else {
		a.redis = redisClient
	}

	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		a.db = db
	}

	source := upstox.New(cfg, log)

	opts := []fetch.Option{
		fetch.WithTimeout(cfg.Screener.FetchTimeout),
	}
	if a.redis != nil && a.redis.Enabled() {
		opts = append(opts, fetch.WithCache(redis.NewCache(a.redis, "zt3"), cfg.Screener.BarCacheTTL))
	}
	orchestrator := fetch.New(source, log, opts...)

	pipeline := screener.NewPipeline(orchestrator, ruleCfg, screener.PipelineConfig{
		Workers:       cfg.Screener.Workers,
		PacingDelay:   cfg.Screener.PacingDelay,
		DateRangeDays: cfg.Screener.DateRangeDays,
	}, log)

	a.runner = screener.NewRunner(pipeline, ruleCfg.TotalRules(), 0, log, screener.NewLogReporter(log))

	return a, nil
}

// close releases the app's long-lived connections.
func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}

// barSource exposes the raw provider client for universe validation.
func (a *app) barSource() contracts.BarSource {
	return upstox.New(a.cfg, a.logger)
}

// instrumentLister is the universe view handed to the pipeline commands.
// The scheduler job and the API handler each declare the same one-method
// contract, so any lister returned here satisfies both.
type instrumentLister interface {
	List(ctx context.Context) ([]contracts.Instrument, error)
}

// csvSource adapts a CSV instrument file to the instrumentLister shape.
type csvSource struct {
	path string
}

func (s csvSource) List(_ context.Context) ([]contracts.Instrument, error) {
	return universe.LoadCSV(s.path)
}

// repoSource adapts the Postgres universe repository.
type repoSource struct {
	repo *universe.Repository
}

func (s repoSource) List(ctx context.Context) ([]contracts.Instrument, error) {
	return s.repo.List(ctx)
}

// instrumentSource picks CSV when a file is given, the database otherwise.
func (a *app) instrumentSource(csvPath string) (instrumentLister, error) {
	if csvPath != "" {
		return csvSource{path: csvPath}, nil
	}
	if a.db == nil {
		return nil, fmt.Errorf("no universe source: set DATABASE_URL or pass --universe <file>")
	}
	return repoSource{repo: universe.NewRepository(a.db.Pool)}, nil
}
