package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"dodger/internal/api"
	"dodger/internal/config"
	"dodger/internal/render"
	"dodger/internal/sim"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🎯 ================================")
	log.Println("🎯  DODGER - SIMULATION ENGINE")
	log.Println("🎯 ================================")

	// Load centralized configuration (SSOT - Single Source of Truth)
	appConfig := config.Load()
	simCfg := appConfig.Sim
	frameCfg := appConfig.Frame
	serverCfg := appConfig.Server

	port := strconv.Itoa(serverCfg.Port)

	log.Printf("🎮 Config: %d TPS, arena %.2fx%.2f, frame %dx%d",
		simCfg.TickRate, simCfg.InnerWidth, simCfg.InnerHeight,
		frameCfg.Width, frameCfg.Height)
	if simCfg.Seed != 0 {
		log.Printf("🎲 Deterministic run, seed %d", simCfg.Seed)
	}

	// Create simulation engine with centralized config
	engine := sim.NewEngine(simCfg)

	// Frame renderer draws the inner arena bounds by default
	renderer := render.New(frameCfg.Width, frameCfg.Height, engine.World().Inner)

	// WebSocket hub for the live state feed
	hub := api.NewWebSocketHub(engine)
	go hub.Run()

	// Wire per-tick metrics and the broadcast feed. The callback runs
	// inside the tick, so it only reads the snapshot it was handed.
	var lastSpawned, lastDuplicates uint64
	engine.OnTick = func(snap *sim.Snapshot, elapsed time.Duration) {
		api.RecordTick(elapsed)
		api.UpdateUnitCount(len(snap.Units))
		if d := snap.Spawned - lastSpawned; d > 0 {
			api.RecordSpawns(int(d))
		}
		if d := snap.DuplicatePairs - lastDuplicates; d > 0 {
			api.RecordDuplicatePairs(int(d))
		}
		lastSpawned = snap.Spawned
		lastDuplicates = snap.DuplicatePairs

		hub.BroadcastSnapshot(snap)
	}

	// Start debug server (pprof + Prometheus metrics)
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	router := api.NewRouter(api.RouterConfig{
		Engine:   engine,
		Renderer: renderer,
		Hub:      hub,
	})

	// Start simulation engine
	engine.Start()
	log.Println("✅ Simulation engine started")

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🌐 API server on http://localhost:%s", port)
		log.Printf("🖼️ Debug frame: http://localhost:%s/api/frame", port)
		log.Printf("🔌 State feed: ws://localhost:%s/ws", port)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️ Server shutdown: %v", err)
	}
	engine.Stop()
	log.Println("👋 Goodbye!")
}
