// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all simulation and server
// settings; everything else references these values.
package config

import (
	"os"
	"strconv"

	"dodger/internal/sim"
)

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// SimFromEnv returns the simulation config with environment variable
// overrides applied on top of the engine defaults.
func SimFromEnv() sim.Config {
	cfg := sim.DefaultConfig()

	if v := getEnvInt("TICK_RATE", 0); v > 0 {
		cfg.TickRate = v
	}
	if v := getEnvFloat("ARENA_WIDTH", 0); v > 0 {
		cfg.InnerWidth = v
	}
	if v := getEnvFloat("ARENA_HEIGHT", 0); v > 0 {
		cfg.InnerHeight = v
	}
	if v := getEnvFloat("SPAWN_RATE", 0); v > 0 {
		cfg.SpawnRate = v
	}
	if v := getEnvFloat("SPAWN_GROWTH_RATE", 0); v > 0 {
		cfg.SpawnGrowthRate = v
	}
	if v := getEnvFloat("BULLET_SPEED", 0); v > 0 {
		cfg.BulletSpeed = v
	}
	if v := getEnvFloat("PLAYER_MAX_SPEED", 0); v > 0 {
		cfg.PlayerMaxSpeed = v
	}
	if v := getEnvInt("MAX_UNITS", 0); v > 0 {
		cfg.MaxUnits = v
	}
	if v := getEnvInt64("SIM_SEED", 0); v != 0 {
		cfg.Seed = v
	}

	return cfg
}

// =============================================================================
// FRAME RENDERING CONFIGURATION
// =============================================================================

// FrameConfig holds the debug-frame renderer settings.
type FrameConfig struct {
	Width  int // Canvas width in pixels
	Height int // Canvas height in pixels
}

// DefaultFrame returns the default frame configuration.
func DefaultFrame() FrameConfig {
	return FrameConfig{
		Width:  720,
		Height: 720,
	}
}

// FrameFromEnv returns frame configuration with environment overrides.
func FrameFromEnv() FrameConfig {
	cfg := DefaultFrame()

	if w := getEnvInt("FRAME_WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvInt("FRAME_HEIGHT", 0); h > 0 {
		cfg.Height = h
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port: 3000,
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Sim    sim.Config
	Frame  FrameConfig
	Server ServerConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Sim:    SimFromEnv(),
		Frame:  FrameFromEnv(),
		Server: ServerFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
