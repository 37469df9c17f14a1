package cmd

import (
	"fmt"

	"github.com/rs/xid"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted access pattern against a Cache and report what happened.",
	Run:   runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(c *cobra.Command, _ []string) {
	runID := xid.New().String()
	fmt.Printf("run %s starting\n", runID)

	cfg := loadConfig(c)
	printConfig(cfg)

	cache := buildCache(cfg)
	defer func() {
		if err := cache.Close(); err != nil {
			fmt.Printf("run %s: close: %v\n", runID, err)
		}
	}()

	touchAllPagesTwice(cache.Frontend())

	stats := cache.Stats()
	fmt.Printf(
		"run %s done: faults=%d evictions=%d\n",
		runID, stats.Faults, stats.Evictions,
	)
}

// touchAllPagesTwice writes one byte into the start of every backend page,
// then reads the first byte back from every page a second time in reverse
// order, so a cache smaller than the backend is guaranteed to observe both
// loads and evictions.
func touchAllPagesTwice(frontend []byte) {
	const pageSize = 4096

	for off := 0; off < len(frontend); off += pageSize {
		frontend[off] = byte(off / pageSize)
	}
	for off := len(frontend) - pageSize; off >= 0; off -= pageSize {
		_ = frontend[off]
	}
}
