package config

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/idna"
	"gopkg.in/yaml.v3"
)

// Loader handles reading, defaulting, normalizing, and validating a
// configuration file.
type Loader struct {
	path   string
	config *Config
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads and parses the configuration file.
func (l *Loader) Load() (*Config, error) {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", l.path)
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	l.applyDefaults(&cfg)
	l.normalizeDomains(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	l.config = &cfg
	return &cfg, nil
}

func (l *Loader) applyDefaults(cfg *Config) {
	if cfg.Server.BindAddress == "" {
		cfg.Server.BindAddress = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 53
	}
	if cfg.Server.DefaultTTL == 0 {
		cfg.Server.DefaultTTL = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// normalizeDomains converts internationalized record domains to their
// ASCII (punycode) form, since queries arrive already punycoded.
// Domains with glob characters are matched as patterns and left alone.
func (l *Loader) normalizeDomains(cfg *Config) {
	for i, rec := range cfg.Records {
		if strings.Contains(rec.Domain, "*") {
			continue
		}
		if ascii, err := idna.Lookup.ToASCII(rec.Domain); err == nil {
			cfg.Records[i].Domain = ascii
		}
	}
	for i, pat := range cfg.Patterns {
		for j, d := range pat.Domains {
			if ascii, err := idna.Lookup.ToASCII(d); err == nil {
				cfg.Patterns[i].Domains[j] = ascii
			}
		}
	}
}
