package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/ashlandtech/uffdcache/monitor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build a Cache and expose it for live HTTP inspection until interrupted.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("open", false, "open the monitor's URL in the default browser once it is listening")
}

func runServe(c *cobra.Command, _ []string) {
	cfg := loadConfig(c)
	printConfig(cfg)

	cache := buildCache(cfg)
	defer func() {
		if err := cache.Close(); err != nil {
			log.Printf("uffdcachectl: close: %v", err)
		}
	}()

	m := monitor.New(cache).WithPortNumber(cfg.MonitorPort)
	addr, err := m.Start()
	if err != nil {
		log.Fatalf("uffdcachectl: start monitor: %v", err)
	}

	url := fmt.Sprintf("http://%s/stats", addr)
	fmt.Println("monitoring at", url)

	if open, _ := c.Flags().GetBool("open"); open {
		if err := browser.OpenURL(url); err != nil {
			log.Printf("uffdcachectl: open browser: %v", err)
		}
	}

	waitForInterrupt()
}

func waitForInterrupt() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
