package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	wsadapter "memorymatch/adapters/websocket"
	"memorymatch/analytics"
	"memorymatch/core"
	"memorymatch/engine"
	"memorymatch/realtime"
)

// maxBodyBytes caps a score submission body.
const maxBodyBytes = 4 << 10

// StatsSource provides the body of the stats endpoint.
type StatsSource interface {
	Snapshot() analytics.Snapshot
}

// Options configures the HTTP API surface.
type Options struct {
	// PathPrefix, if set, is prepended to all routes (e.g., "/api").
	PathPrefix string
	// AllowCORSOrigin, if non-empty, enables basic CORS with the given origin (use "*" for any).
	AllowCORSOrigin string
	// RateLimitEnabled toggles rate limiting.
	RateLimitEnabled bool
	// RateLimitRPM is the allowed requests per minute per client key.
	RateLimitRPM int
	// RateLimitBurst defines burst capacity.
	RateLimitBurst int
	// Stats backs GET {prefix}/stats; the route is absent when nil.
	Stats  StatsSource
	Logger *slog.Logger
}

// NewMux builds an http.Handler exposing the leaderboard REST API and WebSocket stream.
// Routes:
//   - POST {prefix}/scores
//   - GET  {prefix}/leaderboard?difficulty=easy&limit=20
//   - GET  {prefix}/healthz
//   - GET  {prefix}/stats
//   - WS   {prefix}/ws?difficulty=easy
func NewMux(svc *engine.LeaderboardService, hub *realtime.Hub, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{svc: svc, hub: hub, stats: opts.Stats, log: logger}
	mux := http.NewServeMux()

	mux.HandleFunc(withPrefix(opts.PathPrefix, "/healthz"), h.health)
	mux.HandleFunc(withPrefix(opts.PathPrefix, "/scores"), h.scores)
	mux.HandleFunc(withPrefix(opts.PathPrefix, "/leaderboard"), h.leaderboard)
	if opts.Stats != nil {
		mux.HandleFunc(withPrefix(opts.PathPrefix, "/stats"), h.statsHandler)
	}
	if hub != nil {
		mux.Handle(withPrefix(opts.PathPrefix, "/ws"), wsadapter.Handler(hub, logger))
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})

	var handler http.Handler = mux
	if opts.AllowCORSOrigin != "" {
		handler = withCORS(handler, opts.AllowCORSOrigin)
	}
	if opts.RateLimitEnabled && opts.RateLimitRPM > 0 && opts.RateLimitBurst > 0 {
		handler = withRateLimit(handler, opts.RateLimitRPM, opts.RateLimitBurst)
	}
	return handler
}

type handlers struct {
	svc   *engine.LeaderboardService
	hub   *realtime.Hub
	stats StatsSource
	log   *slog.Logger
}

// scoreRequest keeps numeric fields raw so strings and fractions can be told
// apart from integers.
type scoreRequest struct {
	Name       *string         `json:"name"`
	Seconds    json.RawMessage `json:"seconds"`
	Moves      json.RawMessage `json:"moves"`
	Difficulty *string         `json:"difficulty"`
}

func (h *handlers) scores(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}
	var req scoreRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be a JSON object")
		return
	}
	score, err := req.toScore()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_score", err.Error())
		return
	}
	rec, err := h.svc.Submit(r.Context(), score)
	if err != nil {
		if errors.Is(err, core.ErrInvalidScore) {
			writeError(w, http.StatusBadRequest, "invalid_score", err.Error())
			return
		}
		h.log.Error("score submission failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not store score")
		return
	}
	writeJSONStatus(w, http.StatusCreated, rec)
}

func (req scoreRequest) toScore() (core.Score, error) {
	var errs []string
	var s core.Score
	if req.Name == nil {
		errs = append(errs, "name is required")
	} else {
		s.Name = strings.TrimSpace(*req.Name)
	}
	if req.Difficulty == nil {
		errs = append(errs, "difficulty is required")
	} else {
		s.Difficulty = core.Difficulty(strings.TrimSpace(*req.Difficulty))
	}
	var err error
	if s.Seconds, err = parseInt("seconds", req.Seconds); err != nil {
		errs = append(errs, err.Error())
	}
	if s.Moves, err = parseInt("moves", req.Moves); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return core.Score{}, fmt.Errorf("%w: %s", core.ErrInvalidScore, strings.Join(errs, "; "))
	}
	return s, nil
}

func parseInt(field string, raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("%s is required", field)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("%s must be a number", field)
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%s must be a whole number", field)
	}
	return int(f), nil
}

func (h *handlers) leaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = n
	}
	difficulty := core.Difficulty(strings.TrimSpace(q.Get("difficulty")))
	rows, err := h.svc.Leaderboard(r.Context(), difficulty, limit)
	if err != nil {
		h.log.Error("leaderboard query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not load leaderboard")
		return
	}
	if rows == nil {
		rows = []core.Record{}
	}
	writeJSON(w, rows)
}

func (h *handlers) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}
	writeJSON(w, h.stats.Snapshot())
}

// health verifies the storage backend answers a count query.
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]any{"storage": "ok"}
	status := map[string]any{"status": "healthy", "checks": checks}

	n, err := h.svc.Count(r.Context())
	code := http.StatusOK
	if err != nil {
		h.log.Warn("health check failed", "error", err)
		code = http.StatusServiceUnavailable
		status["status"] = "unhealthy"
		checks["storage"] = "failed"
	} else {
		checks["scores"] = n
	}
	if h.hub != nil {
		checks["viewers"] = h.hub.Len()
	}
	writeJSONStatus(w, code, status)
}

func withPrefix(prefix, path string) string {
	if prefix == "" || prefix == "/" {
		return path
	}
	if prefix[len(prefix)-1] == '/' {
		return prefix[:len(prefix)-1] + path
	}
	return prefix + path
}

func writeJSON(w http.ResponseWriter, v any) { writeJSONStatus(w, http.StatusOK, v) }

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSONStatus(w, status, apiError{Error: msg, Code: code})
}

// withCORS wraps a handler with a minimal CORS policy.
func withCORS(next http.Handler, origin string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Vary", "Origin")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit applies a simple token-bucket limiter per client address.
func withRateLimit(next http.Handler, rpm int, burst int) http.Handler {
	limiter := newRateLimiter(rpm, burst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.allow(clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey uses the first X-Forwarded-For hop if present, otherwise the remote IP.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type rateLimiter struct {
	rpm   float64
	burst float64
	now   func() time.Time
	mu    sync.Mutex
	b     map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

func newRateLimiter(rpm, burst int) *rateLimiter {
	return &rateLimiter{
		rpm:   float64(rpm),
		burst: float64(burst),
		now:   time.Now,
		b:     make(map[string]*bucket),
	}
}

func (l *rateLimiter) allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.b[key]
	if !ok {
		l.b[key] = &bucket{tokens: l.burst - 1, last: now}
		return true
	}

	elapsed := now.Sub(b.last).Minutes()
	b.tokens += elapsed * l.rpm
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.last = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
