package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr string `json:"addr" yaml:"addr" toml:"addr"`

	// Generation backend (OpenAI-compatible chat completions endpoint).
	BackendURL   string  `json:"backend_url" yaml:"backend_url" toml:"backend_url"`
	BackendKey   string  `json:"backend_key" yaml:"backend_key" toml:"backend_key"`
	BackendModel string  `json:"backend_model" yaml:"backend_model" toml:"backend_model"`
	MaxTokens    int     `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
	Temperature  float64 `json:"temperature" yaml:"temperature" toml:"temperature"`

	// Search index.
	ElasticAddresses []string `json:"elastic_addresses" yaml:"elastic_addresses" toml:"elastic_addresses"`
	ElasticUsername  string   `json:"elastic_username" yaml:"elastic_username" toml:"elastic_username"`
	ElasticPassword  string   `json:"elastic_password" yaml:"elastic_password" toml:"elastic_password"`
	ReportsIndex     string   `json:"reports_index" yaml:"reports_index" toml:"reports_index"`
	DocsIndex        string   `json:"docs_index" yaml:"docs_index" toml:"docs_index"`

	// Report data and execution artifacts.
	DataDir      string `json:"data_dir" yaml:"data_dir" toml:"data_dir"`
	ArtifactsDir string `json:"artifacts_dir" yaml:"artifacts_dir" toml:"artifacts_dir"`
	CatalogFile  string `json:"catalog_file" yaml:"catalog_file" toml:"catalog_file"`
	Python       string `json:"python" yaml:"python" toml:"python"`

	// Queue tuning, in seconds. Zero keeps the queue package defaults.
	IdleTimeoutSec  int `json:"idle_timeout_sec" yaml:"idle_timeout_sec" toml:"idle_timeout_sec"`
	PollIntervalSec int `json:"poll_interval_sec" yaml:"poll_interval_sec" toml:"poll_interval_sec"`
	ExecTimeoutSec  int `json:"exec_timeout_sec" yaml:"exec_timeout_sec" toml:"exec_timeout_sec"`
	RetentionSec    int `json:"retention_sec" yaml:"retention_sec" toml:"retention_sec"`

	// HTTP surface.
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	LogLevel    string   `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
