package config

import "errors"

// Sentinel error kinds. Load wraps source failures in ErrLoadConfig and
// Validate wraps rule violations in ErrInvalidConfig.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
