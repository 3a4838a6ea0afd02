package syncengine

import "time"

// Config holds the tunables listed in spec §6.4 that this component owns.
type Config struct {
	BatchSize           int
	PageSize            int
	FullInterval        time.Duration
	PerFetchTimeout     time.Duration
	PerSyncDeadline     time.Duration
}

// DefaultConfig returns §6.4's defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:       100,
		PageSize:        100,
		FullInterval:    24 * time.Hour,
		PerFetchTimeout: 30 * time.Second,
		PerSyncDeadline: 30 * time.Minute,
	}
}
