// Package settings loads daemon and tool configuration from a YAML
// file with environment variable overrides.
package settings

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Settings is the full runtime configuration.
type Settings struct {
	// ListenAddr is the websocket control listen address.
	ListenAddr string `yaml:"listen_addr" env:"LPT_LISTEN_ADDR"`
	// ContentRoot is the directory holding serialized asset payloads.
	ContentRoot string `yaml:"content_root" env:"LPT_CONTENT_ROOT"`
	// DataDir holds the sqlite database and event logs.
	DataDir string `yaml:"data_dir" env:"LPT_DATA_DIR"`
	// RulesConfig is the per-level rules YAML path.
	RulesConfig string `yaml:"rules_config" env:"LPT_RULES_CONFIG"`
	// DatabaseFolder is the configured database folder, resolved into a
	// canonical database path before use.
	DatabaseFolder string `yaml:"database_folder" env:"LPT_DATABASE_FOLDER"`
	// WatchRules reloads the rules config when the file changes.
	WatchRules bool `yaml:"watch_rules" env:"LPT_WATCH_RULES"`
	// EventLog enables the compressed session event log.
	EventLog bool `yaml:"event_log" env:"LPT_EVENT_LOG"`
}

func Default() Settings {
	return Settings{
		ListenAddr:     "127.0.0.1:8090",
		ContentRoot:    "content",
		DataDir:        "data",
		RulesConfig:    "config/rules.yaml",
		DatabaseFolder: DefaultDatabaseFolder,
		WatchRules:     true,
		EventLog:       true,
	}
}

// Load reads the YAML file at path when it exists, then applies
// environment overrides. A missing file is not an error; the defaults
// carry.
func Load(path string) (Settings, error) {
	s := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(raw, &s); err != nil {
				return Settings{}, fmt.Errorf("settings %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Settings{}, err
		}
	}
	if err := env.Parse(&s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
