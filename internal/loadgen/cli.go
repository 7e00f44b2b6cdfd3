package loadgen

import (
	"fmt"
	"os"

	"github.com/okian/basal/pkg/logger"
)

// SetupLogging initializes the logger for the load driver.
func SetupLogging(verbose bool) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the load driver.
func ShowHelp() {
	os.Stdout.WriteString(`Basal Load Driver
=================

Submits generated body metrics to a running BMR service and verifies that the
session log recorded every accepted record.

Usage:
  go run ./cmd/loadgen [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -records int
        Number of valid records to submit (default 1000)
  -invalid int
        Number of malformed payloads to submit (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -seed uint
        Generator seed; 0 picks one from the clock
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Test with default settings
  go run ./cmd/loadgen

  # Reproducible run against another port
  go run ./cmd/loadgen -records 5000 -seed 42 -url http://localhost:8080
`)
}
