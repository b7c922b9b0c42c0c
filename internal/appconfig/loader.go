package appconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a Config from a YAML file, applying the fixed
// app-directory layout defaults for any field left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading app config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing app config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating app config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.UserManifest == "" {
		return fmt.Errorf("user_manifest is required")
	}
	if cfg.ProjectManifest == "" {
		return fmt.Errorf("project_manifest is required")
	}
	if cfg.LocalConfig == "" {
		return fmt.Errorf("local_config is required")
	}
	return nil
}
