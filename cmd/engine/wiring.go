package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"tailor-engine/internal/config"
	"tailor-engine/internal/domain"
	"tailor-engine/internal/events"
	"tailor-engine/internal/extract"
	"tailor-engine/internal/logger"
	"tailor-engine/internal/pipeline"
	"tailor-engine/internal/scrape"
	"tailor-engine/internal/scrape/util"
	"tailor-engine/internal/store"
)

type engine struct {
	cfg     config.Config
	cfgPath string
	log     *zap.Logger
	db      *store.DB
	hub     *events.Hub
	runner  *pipeline.Runner
}

func resolveDataDir(o rootOptions) string {
	if o.dataDir != "" {
		return o.dataDir
	}
	if v := os.Getenv("TAILOR_DATA_DIR"); v != "" {
		return v
	}
	return config.Default().App.DataDir
}

// loadConfig bootstraps the user config when no explicit file is given.
func loadConfig(o rootOptions) (config.Config, string, error) {
	path := o.cfgFile
	if path == "" {
		dataDir := resolveDataDir(o)
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return config.Config{}, "", err
		}
		p, err := config.EnsureUserConfig(dataDir)
		if err != nil {
			return config.Config{}, "", fmt.Errorf("config bootstrap: %w", err)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, path, fmt.Errorf("config load (%s): %w", path, err)
	}
	config.OverlayEnv(&cfg)
	if o.dataDir != "" {
		cfg.App.DataDir = o.dataDir
	}
	if o.debug {
		cfg.Log.Debug = true
	}
	if o.json {
		cfg.Log.JSON = true
	}
	return cfg, path, nil
}

// newEngine wires config, logging, transport, parser, tracker and events.
// track=false leaves the tracker closed even when the config enables it.
func newEngine(o rootOptions, track bool) (*engine, error) {
	cfg, path, err := loadConfig(o)
	if err != nil {
		return nil, err
	}

	cfg, vr := config.NormalizeAndValidate(cfg)

	lg, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}
	for _, w := range vr.Warnings {
		lg.Warn("config", zap.String("warning", w))
	}
	if !vr.OK() {
		return nil, vr.Err()
	}

	limiter := util.NewHostLimiter(cfg.Scrape.RequestsPerSecond, cfg.Scrape.Burst)
	fetcher := scrape.NewFetcher(scrape.Options{
		UserAgent: cfg.Scrape.UserAgent,
		Timeout:   cfg.ScrapeTimeout(),
		MaxBody:   cfg.Scrape.MaxBodyBytes,
		TextLimit: cfg.Scrape.TextLimit,
	}, limiter, lg)

	parserOpts := []extract.Option{extract.WithLogger(lg)}
	if cfg.Probe.Enabled {
		parserOpts = append(parserOpts, extract.WithProber(extract.NewHTTPProber(cfg.ProbeTimeout(), limiter, lg)))
	}

	e := &engine{
		cfg:     cfg,
		cfgPath: path,
		log:     lg,
		hub:     events.NewHub(),
	}

	defaultTmpl, _ := domain.ParseTemplate(cfg.Templates.Default)
	e.runner = &pipeline.Runner{
		Pages:           fetcher,
		Parser:          extract.NewParser(parserOpts...),
		Hub:             e.hub,
		DefaultTemplate: defaultTmpl,
		Log:             lg,
	}

	if track && cfg.Tracker.Enabled {
		if err := os.MkdirAll(cfg.App.DataDir, 0o755); err != nil {
			return nil, err
		}
		db, err := store.Open(filepath.Join(cfg.App.DataDir, "tailor.db"))
		if err != nil {
			return nil, err
		}
		e.db = db
		e.runner.DB = db.Pool
	}

	lg.Debug("engine ready",
		zap.String("config", path),
		zap.Bool("probe", cfg.Probe.Enabled),
		zap.Bool("tracker", e.db != nil),
	)
	return e, nil
}

func (e *engine) Close() {
	if err := e.db.Close(); err != nil {
		e.log.Warn("close tracker", zap.Error(err))
	}
	_ = e.log.Sync()
}
