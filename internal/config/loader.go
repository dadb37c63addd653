package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified"; Defaults fills them and Merge layers
// sources on top of each other.
type Config struct {
	Addr string `json:"addr" yaml:"addr" toml:"addr"`

	// Model reference: either model_uri, or run_id + artifact_path.
	ModelURI          string `json:"model_uri" yaml:"model_uri" toml:"model_uri"`
	RunID             string `json:"run_id" yaml:"run_id" toml:"run_id"`
	ArtifactPath      string `json:"artifact_path" yaml:"artifact_path" toml:"artifact_path"`
	TrackingURI       string `json:"tracking_uri" yaml:"tracking_uri" toml:"tracking_uri"`
	EmptyArtifactPath string `json:"empty_artifact_path" yaml:"empty_artifact_path" toml:"empty_artifact_path"`
	CacheDir          string `json:"cache_dir" yaml:"cache_dir" toml:"cache_dir"`

	LoadTimeout       Duration `json:"load_timeout" yaml:"load_timeout" toml:"load_timeout"`
	ExitOnLoadFailure *bool    `json:"exit_on_load_failure" yaml:"exit_on_load_failure" toml:"exit_on_load_failure"`

	MaxBodyBytes    int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	ReadTimeout     Duration `json:"read_timeout" yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout    Duration `json:"write_timeout" yaml:"write_timeout" toml:"write_timeout"`
	ShutdownTimeout Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	CORSEnabled     *bool    `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins     []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`

	// Retry-After seconds on 503, and the access log level (off, error, info, debug).
	RetryAfterSeconds int    `json:"retry_after_seconds" yaml:"retry_after_seconds" toml:"retry_after_seconds"`
	AccessLog         string `json:"access_log" yaml:"access_log" toml:"access_log"`

	LogLevel      string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat     string `json:"log_format" yaml:"log_format" toml:"log_format"`
	LogFile       string `json:"log_file" yaml:"log_file" toml:"log_file"`
	LogMaxSizeMB  int    `json:"log_max_size_mb" yaml:"log_max_size_mb" toml:"log_max_size_mb"`
	LogMaxBackups int    `json:"log_max_backups" yaml:"log_max_backups" toml:"log_max_backups"`
	LogMaxAgeDays int    `json:"log_max_age_days" yaml:"log_max_age_days" toml:"log_max_age_days"`

	// Labels maps class labels ("0", "1") to survival statuses.
	Labels map[string]string `json:"labels" yaml:"labels" toml:"labels"`
}

// Duration is a time.Duration read from strings like "30s" in every format.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
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
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
