// Package repository defines the session log store interface.
package repository

// Option applies a configuration option to the SessionLog.
type Option func(*SessionLog)

// WithMaxEntries bounds the log to n pairs, evicting the oldest pair on
// overflow. Zero or negative keeps the log unbounded.
func WithMaxEntries(n int) Option {
	return func(s *SessionLog) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}
