package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFromFile reads a kremis.yaml-shaped file and layers KREMIS_*
// environment variables on top of it. Environment variables always win
// over file values when both are present.
func LoadFromFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, err
	}

	cfg := Default()
	if fc.Backend != "" {
		cfg.Backend = Backend(fc.Backend)
	}
	if fc.DataDir != "" {
		cfg.DataDir = fc.DataDir
	}
	cfg.SyncWrites = fc.SyncWrites
	if fc.MaxSequenceLength != 0 {
		cfg.MaxSequenceLength = fc.MaxSequenceLength
	}
	if fc.MaxTraversalDepth != 0 {
		cfg.MaxTraversalDepth = fc.MaxTraversalDepth
	}
	if fc.MaxIntersectNodes != 0 {
		cfg.MaxIntersectNodes = fc.MaxIntersectNodes
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KREMIS_BACKEND"); v != "" {
		cfg.Backend = Backend(v)
	}
	if v := os.Getenv("KREMIS_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	cfg.SyncWrites = getEnvBool("KREMIS_SYNC_WRITES", cfg.SyncWrites)
	cfg.MaxSequenceLength = getEnvInt("KREMIS_MAX_SEQUENCE_LENGTH", cfg.MaxSequenceLength)
	cfg.MaxTraversalDepth = getEnvInt("KREMIS_MAX_TRAVERSAL_DEPTH", cfg.MaxTraversalDepth)
	cfg.MaxIntersectNodes = getEnvInt("KREMIS_MAX_INTERSECT_NODES", cfg.MaxIntersectNodes)
}
