// Package matchkit assembles a LeaderboardService with its event sinks.
package matchkit

import (
	"context"
	"log/slog"
	"time"

	mem "memorymatch/adapters/memory"
	"memorymatch/analytics"
	"memorymatch/core"
	"memorymatch/engine"
	"memorymatch/realtime"
)

// Handler receives bus events; webhook and NATS sinks implement it via their Handle method.
type Handler func(context.Context, core.Event)

// Option configures the service builder.
type Option func(*config)

type config struct {
	storage  engine.Storage
	mode     engine.DispatchMode
	hub      *realtime.Hub
	hooks    []analytics.Hook
	handlers []Handler
	logger   *slog.Logger
	now      func() time.Time
}

// WithStorage sets the persistence adapter.
func WithStorage(s engine.Storage) Option { return func(c *config) { c.storage = s } }

// WithDispatchMode selects sync or async event dispatch.
func WithDispatchMode(m engine.DispatchMode) Option { return func(c *config) { c.mode = m } }

// WithRealtime wires a realtime hub to receive every accepted score.
func WithRealtime(h *realtime.Hub) Option { return func(c *config) { c.hub = h } }

// WithHooks attaches analytics hooks.
func WithHooks(h ...analytics.Hook) Option {
	return func(c *config) { c.hooks = append(c.hooks, h...) }
}

// WithHandlers attaches outbound sinks.
func WithHandlers(h ...Handler) Option {
	return func(c *config) { c.handlers = append(c.handlers, h...) }
}

func WithLogger(l *slog.Logger) Option { return func(c *config) { c.logger = l } }

// WithClock overrides the service time source.
func WithClock(now func() time.Time) Option { return func(c *config) { c.now = now } }

// New builds a configured LeaderboardService. If not provided, defaults are used:
//   - storage: in-memory
//   - dispatch: async
func New(opts ...Option) *engine.LeaderboardService {
	cfg := &config{mode: engine.DispatchAsync, logger: slog.Default()}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.storage == nil {
		cfg.storage = mem.New()
	}
	svcOpts := []engine.ServiceOption{engine.WithLogger(cfg.logger)}
	if cfg.now != nil {
		svcOpts = append(svcOpts, engine.WithClock(cfg.now))
	}
	bus := engine.NewEventBus(cfg.mode)
	svc := engine.NewLeaderboardService(cfg.storage, bus, svcOpts...)

	if cfg.hub != nil {
		bus.Subscribe(core.EventScoreSubmitted, cfg.hub.Broadcast)
	}
	if len(cfg.hooks) > 0 {
		bridge := analytics.NewBridge(cfg.hooks...)
		bus.Subscribe(core.EventScoreSubmitted, bridge.Handle)
		bus.Subscribe(core.EventGameCompleted, bridge.Handle)
	}
	for _, h := range cfg.handlers {
		bus.Subscribe(core.EventScoreSubmitted, h)
	}
	return svc
}
