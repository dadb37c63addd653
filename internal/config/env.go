package config

import (
	"fmt"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SURVIVALD_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(string) (string, bool)

// FromLookup builds a partial Config from environment-style lookups. The
// MLflow client variable MLFLOW_TRACKING_URI is honoured when
// SURVIVALD_TRACKING_URI is unset.
func FromLookup(lookup LookupFunc) (Config, error) {
	var c Config
	get := func(name string) string {
		v, _ := lookup(EnvPrefix + name)
		return strings.TrimSpace(v)
	}
	c.Addr = get("ADDR")
	c.ModelURI = get("MODEL_URI")
	c.RunID = get("RUN_ID")
	c.ArtifactPath = get("ARTIFACT_PATH")
	c.TrackingURI = get("TRACKING_URI")
	if c.TrackingURI == "" {
		if v, ok := lookup("MLFLOW_TRACKING_URI"); ok {
			c.TrackingURI = strings.TrimSpace(v)
		}
	}
	c.EmptyArtifactPath = get("EMPTY_ARTIFACT_PATH")
	c.CacheDir = get("CACHE_DIR")
	c.LogLevel = get("LOG_LEVEL")
	c.LogFormat = get("LOG_FORMAT")
	c.LogFile = get("LOG_FILE")
	c.AccessLog = get("ACCESS_LOG")
	if v := get("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = SplitCSV(v)
	}

	var err error
	durations := map[string]*Duration{
		"LOAD_TIMEOUT":     &c.LoadTimeout,
		"READ_TIMEOUT":     &c.ReadTimeout,
		"WRITE_TIMEOUT":    &c.WriteTimeout,
		"SHUTDOWN_TIMEOUT": &c.ShutdownTimeout,
	}
	for name, dst := range durations {
		if v := get(name); v != "" {
			if err = dst.UnmarshalText([]byte(v)); err != nil {
				return Config{}, fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
		}
	}
	ints := map[string]*int{
		"LOG_MAX_SIZE_MB":     &c.LogMaxSizeMB,
		"LOG_MAX_BACKUPS":     &c.LogMaxBackups,
		"LOG_MAX_AGE_DAYS":    &c.LogMaxAgeDays,
		"RETRY_AFTER_SECONDS": &c.RetryAfterSeconds,
	}
	for name, dst := range ints {
		if v := get(name); v != "" {
			if *dst, err = strconv.Atoi(v); err != nil {
				return Config{}, fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
		}
	}
	if v := get("MAX_BODY_BYTES"); v != "" {
		if c.MaxBodyBytes, err = strconv.ParseInt(v, 10, 64); err != nil {
			return Config{}, fmt.Errorf("%sMAX_BODY_BYTES: %w", EnvPrefix, err)
		}
	}
	bools := map[string]**bool{
		"EXIT_ON_LOAD_FAILURE": &c.ExitOnLoadFailure,
		"CORS_ENABLED":         &c.CORSEnabled,
	}
	for name, dst := range bools {
		if v := get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = &b
		}
	}
	return c, nil
}

// SplitCSV splits a comma-separated list, trimming blanks.
func SplitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
