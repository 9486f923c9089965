package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/haggle/internal/simulate"
	"github.com/okian/haggle/pkg/logger"
)

// Default configuration constants.
const (
	defaultGames      = 10
	defaultTimeout    = 60 * time.Second
	defaultRunTimeout = 30 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8090", "Base URL of the service")
		games      = flag.Int("games", defaultGames, "Number of complete games to play")
		workers    = flag.Int("workers", runtime.NumCPU(), "Number of games played concurrently")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout (must exceed the opponent timeout)")
		namePrefix = flag.String("name", "sim", "Player name prefix")
		verbose    = flag.Bool("verbose", false, "Enable per-turn logging")
	)
	flag.Parse()

	if err := logger.Init(nil); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &simulate.Config{
		BaseURL:    *baseURL,
		Games:      *games,
		Workers:    *workers,
		Timeout:    *timeout,
		NamePrefix: *namePrefix,
		Verbose:    *verbose,
	}

	if err := simulate.Run(ctx, config); err != nil {
		os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
