package api

import (
	"encoding/json"
	"image"
	"image/png"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"dodger/internal/sim"
)

// EngineInterface defines the engine methods used by the API.
// This interface enables mocking for tests without spinning up the full
// tick loop. Keep this minimal - only methods the API layer calls.
type EngineInterface interface {
	// GetSnapshot returns the latest lock-free immutable snapshot
	GetSnapshot() *sim.Snapshot
	// SetPlayerInput sets the player's directional intent
	SetPlayerInput(dx, dy int)
	// ObserveRender folds a render duration into the smoothed stats
	ObserveRender(d time.Duration)
	// World returns the session geometry (default viewport)
	World() sim.World
}

// RendererInterface defines the frame renderer used by the API.
type RendererInterface interface {
	// Frame draws a snapshot clipped to the viewport
	Frame(snap *sim.Snapshot, view sim.Rect) image.Image
}

// RouterConfig contains all dependencies needed to construct the HTTP
// router. Designed for dependency injection and testability.
type RouterConfig struct {
	// Engine is the simulation engine (required)
	Engine EngineInterface

	// Renderer serves /api/frame. Optional; the endpoint returns 404
	// when nil.
	Renderer RendererInterface

	// Hub serves /ws. Optional; the endpoint returns 404 when nil.
	Hub *WebSocketHub

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one is created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, defaults apply.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful
	// for benchmarks and tests).
	DisableLogging bool
}

// routerHandlers holds the handler state for the router.
type routerHandlers struct {
	engine   EngineInterface
	renderer RendererInterface

	// Frames render into a shared reused canvas; serialize them.
	frameMu sync.Mutex
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function is PURE - no goroutines, no listeners, no
// background workers - so it is safe to use with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - order matters
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{
		engine:   cfg.Engine,
		renderer: cfg.Renderer,
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
		r.Post("/input", h.handlePostInput)
		r.Get("/frame", h.handleGetFrame)
	})

	if cfg.Hub != nil {
		r.Get("/ws", cfg.Hub.HandleWebSocket)
	}

	return r
}

// handleGetState returns the latest snapshot. An optional viewport
// (minx, miny, maxx, maxy query params) clips the unit list.
func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.GetSnapshot()

	view, ok := viewportFromQuery(r)
	if ok {
		clipped := *snap
		clipped.Units = snap.VisibleUnits(view, make([]sim.UnitSnapshot, 0, len(snap.Units)))
		writeJSON(w, &clipped)
		return
	}

	writeJSON(w, snap)
}

// statsResponse is the compact aggregate view of the simulation.
type statsResponse struct {
	Tick             uint64  `json:"tick"`
	Score            uint64  `json:"score"`
	SurvivedTicks    uint64  `json:"survivedTicks"`
	BulletCount      int     `json:"bulletCount"`
	GameOver         bool    `json:"gameOver"`
	AvgTickSeconds   float64 `json:"avgTickSeconds"`
	AvgRenderSeconds float64 `json:"avgRenderSeconds"`
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.GetSnapshot()
	writeJSON(w, statsResponse{
		Tick:             snap.Tick,
		Score:            snap.Score,
		SurvivedTicks:    snap.SurvivedTicks,
		BulletCount:      snap.BulletCount,
		GameOver:         snap.GameOver,
		AvgTickSeconds:   snap.AvgTickSeconds,
		AvgRenderSeconds: snap.AvgRenderSeconds,
	})
}

// handlePostInput sets the player's directional intent.
func (h *routerHandlers) handlePostInput(w http.ResponseWriter, r *http.Request) {
	var msg inputMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "Invalid input payload", http.StatusBadRequest)
		return
	}
	h.engine.SetPlayerInput(msg.DX, msg.DY)
	w.WriteHeader(http.StatusNoContent)
}

// handleGetFrame renders the latest snapshot to PNG. The optional
// viewport query clips the view; the default is the inner bounds.
func (h *routerHandlers) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		http.NotFound(w, r)
		return
	}

	view, ok := viewportFromQuery(r)
	if !ok {
		view = h.engine.World().Inner
	}

	snap := h.engine.GetSnapshot()

	start := time.Now()
	h.frameMu.Lock()
	img := h.renderer.Frame(snap, view)

	w.Header().Set("Content-Type", "image/png")
	err := png.Encode(w, img)
	h.frameMu.Unlock()

	elapsed := time.Since(start)
	h.engine.ObserveRender(elapsed)
	RecordRender(elapsed)

	if err != nil {
		log.Printf("⚠️ Frame encode failed: %v", err)
	}
}

// viewportFromQuery parses a world-space viewport from query params.
func viewportFromQuery(r *http.Request) (sim.Rect, bool) {
	q := r.URL.Query()
	vals := [4]float64{}
	for i, key := range []string{"minx", "miny", "maxx", "maxy"} {
		s := q.Get(key)
		if s == "" {
			return sim.Rect{}, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return sim.Rect{}, false
		}
		vals[i] = f
	}
	view := sim.Rect{MinX: vals[0], MinY: vals[1], MaxX: vals[2], MaxY: vals[3]}
	if view.Width() <= 0 || view.Height() <= 0 {
		return sim.Rect{}, false
	}
	return view, true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️ JSON encode failed: %v", err)
	}
}
