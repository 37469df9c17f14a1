package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/ashlandtech/uffdcache"
	"github.com/ashlandtech/uffdcache/config"
)

// loadConfig merges a .env file and the environment with command-line flag
// overrides, flags taking precedence when explicitly set.
func loadConfig(c *cobra.Command) config.Config {
	envPath, _ := c.Flags().GetString("env")

	cfg, err := config.Load(envPath)
	if err != nil {
		log.Fatalf("uffdcachectl: load config: %v", err)
	}

	if c.Flags().Changed("cache-size") {
		cfg.CacheSize, _ = c.Flags().GetInt("cache-size")
	}
	if c.Flags().Changed("backend-size") {
		cfg.BackendSize, _ = c.Flags().GetInt("backend-size")
	}
	if c.Flags().Changed("event-log") {
		cfg.EventLogPath, _ = c.Flags().GetString("event-log")
	}
	if c.Flags().Changed("debug") {
		cfg.Debug, _ = c.Flags().GetBool("debug")
	}

	return cfg
}

// buildCache constructs a Cache from cfg, exiting the process if its
// preconditions are violated or the host kernel cannot serve userfaultfd.
func buildCache(cfg config.Config) *uffdcache.Cache {
	backend := uffdcache.AllocAligned(cfg.BackendSize)

	builder := uffdcache.MakeBuilder().WithDebug(cfg.Debug)
	if cfg.EventLogPath != "" {
		builder = builder.WithEventLog(cfg.EventLogPath)
	}

	c := builder.Build(cfg.CacheSize, backend)
	if !c.Ready() {
		log.Fatal("uffdcachectl: cache construction failed; see the log above for the OS error")
	}

	return c
}

func printConfig(cfg config.Config) {
	fmt.Printf(
		"cache_size=%d backend_size=%d event_log=%q debug=%t\n",
		cfg.CacheSize, cfg.BackendSize, cfg.EventLogPath, cfg.Debug,
	)
}
