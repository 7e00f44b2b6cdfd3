package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/basal/internal/loadgen"
)

// Default configuration constants.
const (
	defaultNumRecords  = 1000
	defaultNumInvalid  = 50
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numRecords = flag.Int("records", defaultNumRecords, "Number of valid records to submit")
		numInvalid = flag.Int("invalid", defaultNumInvalid, "Number of malformed payloads to submit")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed       = flag.Uint64("seed", 0, "Generator seed (0 picks one from the clock)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp()
		return
	}

	if err := loadgen.SetupLogging(*verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &loadgen.Config{
		BaseURL:    *baseURL,
		NumRecords: *numRecords,
		NumInvalid: *numInvalid,
		Workers:    *workers,
		Timeout:    *timeout,
		Seed:       *seed,
		Verbose:    *verbose,
	}

	if _, err := loadgen.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Load run failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
