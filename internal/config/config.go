// Package config loads and validates the YAML configuration that
// seeds the responder: server settings, records, wildcard patterns.
package config

// Config is the root of the configuration file.
type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Logging  LoggingConfig   `yaml:"logging"`
	Records  []RecordConfig  `yaml:"records"`
	Patterns []PatternConfig `yaml:"patterns"`
}

// ServerConfig controls the responder itself.
type ServerConfig struct {
	BindAddress    string `yaml:"bind_address"`
	Port           uint16 `yaml:"port"`
	DefaultTTL     uint32 `yaml:"default_ttl"`
	StrictPatterns bool   `yaml:"strict_patterns"`
}

// LoggingConfig controls console logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// RecordConfig is one stored record. Address is used for A records,
// Data for every other type. A TTL of 0 inherits the server default.
type RecordConfig struct {
	Domain  string `yaml:"domain"`
	Type    string `yaml:"type"`
	Address string `yaml:"address"`
	Data    string `yaml:"data"`
	TTL     uint32 `yaml:"ttl"`
}

// PatternConfig is one named regexp pattern with its domain list.
type PatternConfig struct {
	Pattern string   `yaml:"pattern"`
	Domains []string `yaml:"domains"`
}
