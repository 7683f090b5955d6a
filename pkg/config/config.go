// Package config loads Kremis deployment configuration from environment
// variables or, optionally, a YAML file. It only ever narrows the
// compiled-in bounds in pkg/kremis — a deployment can lower
// MaxSequenceLength, MaxTraversalDepth, or MaxIntersectNodes, but never
// raise them past the ceiling baked into the binary.
//
// Example:
//
//	cfg := config.LoadFromEnv()
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("invalid config: %v", err)
//	}
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/TyKolt/kremis/pkg/kremis"
)

// Backend selects which graphstore implementation a session opens.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendBadger Backend = "badger"
)

// Config holds the full set of Kremis deployment settings.
type Config struct {
	// Backend selects memory or badger.
	Backend Backend

	// DataDir is the directory the Badger backend opens. Ignored for
	// BackendMemory.
	DataDir string

	// SyncWrites forces fsync after every persistent write. Ignored for
	// BackendMemory.
	SyncWrites bool

	// MaxSequenceLength, MaxTraversalDepth and MaxIntersectNodes narrow
	// the corresponding kremis package ceilings. Default sets each to its
	// ceiling; Validate rejects zero, negative, or above-ceiling values.
	MaxSequenceLength int
	MaxTraversalDepth int
	MaxIntersectNodes int
}

// fileConfig mirrors Config's fields for YAML decoding (gopkg.in/yaml.v3
// tags use the field names operators expect in kremis.yaml).
type fileConfig struct {
	Backend           string `yaml:"backend"`
	DataDir           string `yaml:"data_dir"`
	SyncWrites        bool   `yaml:"sync_writes"`
	MaxSequenceLength int    `yaml:"max_sequence_length"`
	MaxTraversalDepth int    `yaml:"max_traversal_depth"`
	MaxIntersectNodes int    `yaml:"max_intersect_nodes"`
}

// Default returns the zero-configuration defaults: an in-memory backend
// with every bound at its compiled-in ceiling.
func Default() *Config {
	return &Config{
		Backend:           BackendMemory,
		DataDir:           "./data",
		SyncWrites:        false,
		MaxSequenceLength: kremis.MaxSequenceLength,
		MaxTraversalDepth: kremis.MaxTraversalDepth,
		MaxIntersectNodes: kremis.MaxIntersectNodes,
	}
}

// LoadFromEnv populates a Config from KREMIS_* environment variables,
// falling back to Default() for anything unset.
func LoadFromEnv() *Config {
	cfg := Default()

	cfg.Backend = Backend(getEnv("KREMIS_BACKEND", string(cfg.Backend)))
	cfg.DataDir = getEnv("KREMIS_DATA_DIR", cfg.DataDir)
	cfg.SyncWrites = getEnvBool("KREMIS_SYNC_WRITES", cfg.SyncWrites)
	cfg.MaxSequenceLength = getEnvInt("KREMIS_MAX_SEQUENCE_LENGTH", cfg.MaxSequenceLength)
	cfg.MaxTraversalDepth = getEnvInt("KREMIS_MAX_TRAVERSAL_DEPTH", cfg.MaxTraversalDepth)
	cfg.MaxIntersectNodes = getEnvInt("KREMIS_MAX_INTERSECT_NODES", cfg.MaxIntersectNodes)

	return cfg
}

// Validate checks backend naming and that every bound is positive and no
// greater than its compiled-in ceiling: pkg/kremis's Max* constants are a
// hard ceiling, never a floor a deployment can raise.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendBadger:
	default:
		return fmt.Errorf("kremis config: unknown backend %q", c.Backend)
	}
	if c.Backend == BackendBadger && c.DataDir == "" {
		return fmt.Errorf("kremis config: badger backend requires a data directory")
	}
	if c.MaxSequenceLength <= 0 || c.MaxSequenceLength > kremis.MaxSequenceLength {
		return fmt.Errorf("kremis config: max sequence length %d out of range (1..%d)", c.MaxSequenceLength, kremis.MaxSequenceLength)
	}
	if c.MaxTraversalDepth <= 0 || c.MaxTraversalDepth > kremis.MaxTraversalDepth {
		return fmt.Errorf("kremis config: max traversal depth %d out of range (1..%d)", c.MaxTraversalDepth, kremis.MaxTraversalDepth)
	}
	if c.MaxIntersectNodes <= 0 || c.MaxIntersectNodes > kremis.MaxIntersectNodes {
		return fmt.Errorf("kremis config: max intersect nodes %d out of range (1..%d)", c.MaxIntersectNodes, kremis.MaxIntersectNodes)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return defaultVal
}
