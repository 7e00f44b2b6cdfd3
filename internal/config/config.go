// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file and BMR_* env vars.
// - Validation failures wrap ErrInvalidConfig; source failures wrap ErrLoadConfig.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Formula names the BMR equation: mifflin_st_jeor or harris_benedict.
	Formula string `koanf:"formula"`

	// MaxEntries bounds the session log; 0 keeps it unbounded.
	MaxEntries int `koanf:"max_entries"`

	// MaxBodyBytes caps the size of POST request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// RateLimit caps /model-construct at this many requests per second;
	// 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit"`

	// RateBurst is the token bucket size used when RateLimit is set.
	RateBurst int `koanf:"rate_burst"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Addr:         ":9080",
		Formula:      "mifflin_st_jeor",
		MaxEntries:   0,
		MaxBodyBytes: 1 << 20,
		RateLimit:    0,
		RateBurst:    20,
	}
}
