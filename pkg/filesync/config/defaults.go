// Package config provides configuration management for the filesync
// tracking tool.
package config

// Default configuration values for filesync.
const (
	// DefaultWorkers is the default number of concurrent metadata readers.
	DefaultWorkers = 8
)

// DefaultExclusions contains relative-path glob patterns excluded from
// walks by default. Empty: the tracking file itself is excluded by the
// walker regardless of configuration.
var DefaultExclusions = []string{}
