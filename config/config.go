// Package config loads the demo/monitoring CLI's settings from environment
// variables, optionally seeded from a .env file.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the uffdcachectl commands need to build and
// observe a Cache.
type Config struct {
	// CacheSize is the number of bytes of cache.
	CacheSize int
	// BackendSize is the number of bytes the backend region spans.
	BackendSize int
	// MonitorPort is the TCP port the monitor server listens on; 0 means
	// let the OS choose.
	MonitorPort int
	// EventLogPath is where the store package writes its SQLite event
	// log; empty disables event logging.
	EventLogPath string
	// Debug enables the fault engine's diagnostic log trail.
	Debug bool
}

const (
	envCacheSize    = "UFFDCACHE_CACHE_SIZE"
	envBackendSize  = "UFFDCACHE_BACKEND_SIZE"
	envMonitorPort  = "UFFDCACHE_MONITOR_PORT"
	envEventLogPath = "UFFDCACHE_EVENT_LOG"
	envDebug        = "UFFDCACHE_DEBUG"
)

// Defaults matches the illustrative sizes used in the base specification's
// worked examples: an 8-page cache over a 64-page backend.
func Defaults() Config {
	pageSize := os.Getpagesize()
	return Config{
		CacheSize:   pageSize * 8,
		BackendSize: pageSize * 64,
		MonitorPort: 0,
		Debug:       false,
	}
}

// Load reads a .env file at path if present (a missing file is not an
// error — godotenv.Load's error is only surfaced for a malformed file),
// then overlays process environment variables onto Defaults().
func Load(envFilePath string) (Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil && !os.IsNotExist(err) {
			return Config{}, err
		}
	}

	cfg := Defaults()

	if v, ok := os.LookupEnv(envCacheSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, err
		}
		cfg.CacheSize = n
	}

	if v, ok := os.LookupEnv(envBackendSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, err
		}
		cfg.BackendSize = n
	}

	if v, ok := os.LookupEnv(envMonitorPort); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, err
		}
		cfg.MonitorPort = n
	}

	if v, ok := os.LookupEnv(envEventLogPath); ok {
		cfg.EventLogPath = v
	}

	if v, ok := os.LookupEnv(envDebug); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, err
		}
		cfg.Debug = b
	}

	return cfg, nil
}
