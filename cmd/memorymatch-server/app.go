package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"memorymatch/adapters/jsonfile"
	mem "memorymatch/adapters/memory"
	redisAdapter "memorymatch/adapters/redis"
	sqlxAdapter "memorymatch/adapters/sqlx"
	"memorymatch/analytics"
	"memorymatch/api/httpapi"
	"memorymatch/config"
	"memorymatch/engine"
	natssink "memorymatch/integrations/nats"
	"memorymatch/integrations/webhook"
	"memorymatch/matchkit"
	"memorymatch/realtime"
)

// App aggregates the assembled server components.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Hub     *realtime.Hub
	Stats   *analytics.SubmissionStats
	Service *engine.LeaderboardService
	Handler http.Handler
	Server  *http.Server
}

// sinks are the outbound event handlers enabled by configuration.
type sinks []matchkit.Handler

func provideConfig(ctx context.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case os.Getenv("MEMORYMATCH_CONFIG_FILE") != "":
		cfg, err = config.LoadFromFile(os.Getenv("MEMORYMATCH_CONFIG_FILE"))
	case os.Getenv("MEMORYMATCH_PROFILE") != "":
		cfg, err = config.LoadProfile(os.Getenv("MEMORYMATCH_PROFILE"))
	default:
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if dir := os.Getenv("MEMORYMATCH_SECRETS_DIR"); dir != "" {
		if err := config.ApplySecrets(ctx, cfg, config.FileSecretStore{Dir: dir}); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func provideLogger(cfg *config.Config) *slog.Logger {
	return setupLogging(cfg)
}

func provideHub() *realtime.Hub {
	return realtime.NewHub()
}

func provideStats() *analytics.SubmissionStats {
	return analytics.NewSubmissionStats()
}

func provideStorage(cfg *config.Config, logger *slog.Logger) (engine.Storage, func(), error) {
	storage, err := setupStorage(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if c, ok := storage.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logger.Warn("closing storage", "error", err)
			}
		}
	}
	return storage, cleanup, nil
}

func provideSinks(cfg *config.Config, logger *slog.Logger) (sinks, func(), error) {
	var out sinks
	cleanup := func() {}
	if urls := cfg.Integrations.Webhooks; len(urls) > 0 {
		out = append(out, webhook.New(urls, webhook.WithLogger(logger)).Handle)
	}
	if n := cfg.Integrations.NATS; n.URL != "" {
		nc, err := natssink.Connect(n.URL, n.Name)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, natssink.New(nc, n.Subject, logger).Handle)
		cleanup = func() {
			if err := nc.Drain(); err != nil {
				logger.Warn("draining nats connection", "error", err)
			}
		}
	}
	return out, cleanup, nil
}

func provideService(logger *slog.Logger, hub *realtime.Hub, stats *analytics.SubmissionStats, storage engine.Storage, s sinks) (*engine.LeaderboardService, func()) {
	svc := matchkit.New(
		matchkit.WithStorage(storage),
		matchkit.WithRealtime(hub),
		matchkit.WithHooks(stats),
		matchkit.WithHandlers(s...),
		matchkit.WithDispatchMode(engine.DispatchAsync),
		matchkit.WithLogger(logger),
	)
	return svc, svc.Close
}

func provideHandler(svc *engine.LeaderboardService, hub *realtime.Hub, stats *analytics.SubmissionStats, cfg *config.Config, logger *slog.Logger) http.Handler {
	opts := httpapi.Options{
		PathPrefix:       cfg.Server.PathPrefix,
		AllowCORSOrigin:  cfg.Server.CORSOrigin,
		RateLimitEnabled: cfg.Security.EnableRateLimit,
		RateLimitRPM:     cfg.Security.RateLimit.RequestsPerMinute,
		RateLimitBurst:   cfg.Security.RateLimit.BurstSize,
		Logger:           logger,
	}
	if cfg.Stats.Enabled {
		opts.Stats = stats
	}
	return httpapi.NewMux(svc, hub, opts)
}

func provideServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

// setupLogging configures the logger based on configuration.
func setupLogging(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	var out io.Writer = os.Stdout
	if cfg.Logging.Output == "stderr" {
		out = os.Stderr
	}

	switch cfg.Logging.Format {
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	if len(cfg.Logging.Attributes) > 0 {
		handler = handler.WithAttrs(convertAttributes(cfg.Logging.Attributes))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// convertAttributes converts map[string]string to []slog.Attr.
func convertAttributes(attrs map[string]string) []slog.Attr {
	var result []slog.Attr
	for k, v := range attrs {
		result = append(result, slog.String(k, v))
	}
	return result
}

// setupStorage creates the appropriate storage adapter based on configuration.
func setupStorage(cfg *config.Config) (engine.Storage, error) {
	switch cfg.Storage.Adapter {
	case "memory":
		return mem.New(), nil
	case "file":
		return jsonfile.New(cfg.Storage.File.Path)
	case "redis":
		return redisAdapter.New(cfg.Storage.Redis)
	case "sql":
		// New runs the schema migration when AutoMigrate is set
		return sqlxAdapter.New(cfg.Storage.SQL)
	default:
		return nil, fmt.Errorf("unknown storage adapter: %s", cfg.Storage.Adapter)
	}
}
