package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"survivald/internal/registry"
	"survivald/internal/schema"
)

// Validate checks a fully merged configuration.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.ModelURI == "" && c.RunID == "" {
		errs = append(errs, errors.New("one of model_uri or run_id is required"))
	}
	if c.ModelURI != "" && c.RunID != "" {
		errs = append(errs, errors.New("model_uri and run_id are mutually exclusive"))
	}
	if _, err := registry.ParsePolicy(c.EmptyArtifactPath); err != nil {
		errs = append(errs, fmt.Errorf("empty_artifact_path: %w", err))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log_format must be json or console, got %q", c.LogFormat))
	}
	switch c.AccessLog {
	case "off", "error", "info", "debug":
	default:
		errs = append(errs, fmt.Errorf("access_log must be off, error, info or debug, got %q", c.AccessLog))
	}
	if c.RetryAfterSeconds < 1 {
		errs = append(errs, errors.New("retry_after_seconds must be at least 1"))
	}
	if c.MaxBodyBytes < 0 {
		errs = append(errs, errors.New("max_body_bytes must not be negative"))
	}
	if c.LoadTimeout < 0 || c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}
	if _, err := c.LabelTable(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Reference builds the model reference from model_uri or run_id +
// artifact_path.
func (c Config) Reference() (registry.Reference, error) {
	policy, err := registry.ParsePolicy(c.EmptyArtifactPath)
	if err != nil {
		return registry.Reference{}, err
	}
	if c.ModelURI != "" {
		return registry.ParseReference(c.ModelURI, policy)
	}
	return registry.NewRunReference(c.RunID, c.ArtifactPath, policy)
}

// LabelTable converts the labels section to a validated schema.LabelTable.
func (c Config) LabelTable() (schema.LabelTable, error) {
	if len(c.Labels) == 0 {
		return schema.DefaultLabels(), nil
	}
	t := make(schema.LabelTable, len(c.Labels))
	for k, v := range c.Labels {
		n, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("labels: key %q is not an integer", k)
		}
		t[n] = v
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}
	return t, nil
}
