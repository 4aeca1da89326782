// Package config loads the engine's own small configuration surface: the
// file-backed store path, its flush cadence, the code-cache size, and the
// log level. Grounded on pkg/config.Config's nested-struct-plus-yaml-tags
// shape, narrowed from the teacher's multi-file viper merge (network/
// consensus/VM/storage/logging sections meant for a whole node) down to the
// handful of settings this execution core actually owns.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the engine's full configuration surface.
type Config struct {
	Store struct {
		// Path is the FileStore snapshot path. Empty means "in-memory only".
		Path string `yaml:"path" json:"path"`
	} `yaml:"store" json:"store"`

	Snapshot struct {
		// FlushEverySeconds is a flush cadence for the FileStore. cmd/engine
		// does not read it: it runs one transaction per invocation and
		// flushes once after that transaction succeeds.
		FlushEverySeconds int `yaml:"flush_every_seconds" json:"flush_every_seconds"`
	} `yaml:"snapshot" json:"snapshot"`

	CodeCache struct {
		// Size is the code-cache LRU capacity. Spec §4.3 fixes this at 1024;
		// the field exists so deployments can tune it without a rebuild.
		Size int `yaml:"size" json:"size"`
	} `yaml:"code_cache" json:"code_cache"`

	Logging struct {
		Level string `yaml:"level" json:"level"`
	} `yaml:"logging" json:"logging"`

	Gas struct {
		// LimitPerTransaction is 0 (unmetered) unless set. See engine/gas's
		// Open Question note: metering is optional, off by default.
		LimitPerTransaction uint64 `yaml:"limit_per_transaction" json:"limit_per_transaction"`
	} `yaml:"gas" json:"gas"`
}

// Default returns the zero-config engine behavior: in-memory store, flush
// after every transaction, 1024-entry code cache, info logging, unmetered.
func Default() Config {
	var c Config
	c.CodeCache.Size = 1024
	c.Logging.Level = "info"
	return c
}

// Load reads and parses a YAML config file. A missing file is not an
// error: Load returns Default() so cmd/engine can run against a bare
// manifest with no config flag.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.CodeCache.Size <= 0 {
		cfg.CodeCache.Size = 1024
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	return cfg, nil
}
