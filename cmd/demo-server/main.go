// Command demo-server runs an in-memory leaderboard pre-filled by simulated players.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"memorymatch/analytics"
	"memorymatch/api/httpapi"
	"memorymatch/config"
	"memorymatch/core"
	"memorymatch/engine"
	"memorymatch/matchkit"
	"memorymatch/realtime"
)

var players = []string{"Ada", "Grace", "Linus", "Ken", "Barbara", "Edsger"}

func main() {
	// readable text logging for the demo
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	hub := realtime.NewHub()
	stats := analytics.NewSubmissionStats()
	svc := matchkit.New(
		matchkit.WithRealtime(hub),
		matchkit.WithHooks(stats),
		matchkit.WithDispatchMode(engine.DispatchAsync),
	)
	defer svc.Close()
	svc.Subscribe(core.EventGameCompleted, func(_ context.Context, e core.Event) {
		slog.Debug("bot finished", "name", e.Record.Name, "difficulty", e.Record.Difficulty, "stars", e.Metadata["stars"])
	})

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 42))
	if err := seed(context.Background(), svc, rng, 3); err != nil {
		slog.Error("seeding leaderboard", "error", err)
		os.Exit(1)
	}

	handler := httpapi.NewMux(svc, hub, httpapi.Options{
		PathPrefix:      cfg.Server.PathPrefix,
		AllowCORSOrigin: "*",
		Stats:           stats,
	})
	slog.Info("demo leaderboard listening", "address", cfg.Server.Address, "prefix", cfg.Server.PathPrefix)
	srv := &http.Server{Addr: cfg.Server.Address, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// seed has every demo player finish rounds games on each difficulty.
func seed(ctx context.Context, svc *engine.LeaderboardService, rng *rand.Rand, rounds int) error {
	for _, name := range players {
		b := bot{
			name:   name,
			recall: 0.5 + rng.Float64()/2,
			think:  time.Duration(1500+rng.IntN(2500)) * time.Millisecond,
			rng:    rng,
		}
		for _, d := range core.Difficulties {
			for i := 0; i < rounds; i++ {
				res, err := b.play(d)
				if err != nil {
					return err
				}
				score := core.Score{Name: b.name, Seconds: res.Seconds, Moves: res.Moves, Difficulty: res.Difficulty}
				svc.Publish(ctx, core.NewGameCompleted(score, res.Stars))
				if _, err := svc.Submit(ctx, score); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
