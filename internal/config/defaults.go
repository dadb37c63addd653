package config

import "time"

// Default values.
const (
	DefaultAddr            = ":8000"
	DefaultArtifactPath    = "model"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultLoadTimeout     = 2 * time.Minute
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRetryAfter      = 5
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
	DefaultAccessLog       = "info"
	DefaultLogMaxSizeMB    = 100
	DefaultLogMaxBackups   = 3
	DefaultLogMaxAgeDays   = 28
)

// Defaults returns the baseline configuration.
func Defaults() Config {
	exit := true
	cors := false
	return Config{
		Addr:              DefaultAddr,
		ArtifactPath:      DefaultArtifactPath,
		EmptyArtifactPath: "reject",
		LoadTimeout:       Duration(DefaultLoadTimeout),
		ExitOnLoadFailure: &exit,
		MaxBodyBytes:      DefaultMaxBodyBytes,
		ReadTimeout:       Duration(DefaultReadTimeout),
		WriteTimeout:      Duration(DefaultWriteTimeout),
		ShutdownTimeout:   Duration(DefaultShutdownTimeout),
		CORSEnabled:       &cors,
		RetryAfterSeconds: DefaultRetryAfter,
		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
		AccessLog:         DefaultAccessLog,
		LogMaxSizeMB:      DefaultLogMaxSizeMB,
		LogMaxBackups:     DefaultLogMaxBackups,
		LogMaxAgeDays:     DefaultLogMaxAgeDays,
		Labels:            map[string]string{"0": "Not Survived", "1": "Survived"},
	}
}

// Merge returns c with every set field of over applied on top.
func (c Config) Merge(over Config) Config {
	setStr(&c.Addr, over.Addr)
	setStr(&c.ModelURI, over.ModelURI)
	setStr(&c.RunID, over.RunID)
	setStr(&c.ArtifactPath, over.ArtifactPath)
	setStr(&c.TrackingURI, over.TrackingURI)
	setStr(&c.EmptyArtifactPath, over.EmptyArtifactPath)
	setStr(&c.CacheDir, over.CacheDir)
	setStr(&c.LogLevel, over.LogLevel)
	setStr(&c.LogFormat, over.LogFormat)
	setStr(&c.LogFile, over.LogFile)
	setStr(&c.AccessLog, over.AccessLog)
	if over.LoadTimeout != 0 {
		c.LoadTimeout = over.LoadTimeout
	}
	if over.ReadTimeout != 0 {
		c.ReadTimeout = over.ReadTimeout
	}
	if over.WriteTimeout != 0 {
		c.WriteTimeout = over.WriteTimeout
	}
	if over.ShutdownTimeout != 0 {
		c.ShutdownTimeout = over.ShutdownTimeout
	}
	if over.ExitOnLoadFailure != nil {
		v := *over.ExitOnLoadFailure
		c.ExitOnLoadFailure = &v
	}
	if over.CORSEnabled != nil {
		v := *over.CORSEnabled
		c.CORSEnabled = &v
	}
	if over.MaxBodyBytes != 0 {
		c.MaxBodyBytes = over.MaxBodyBytes
	}
	if over.RetryAfterSeconds != 0 {
		c.RetryAfterSeconds = over.RetryAfterSeconds
	}
	if over.LogMaxSizeMB != 0 {
		c.LogMaxSizeMB = over.LogMaxSizeMB
	}
	if over.LogMaxBackups != 0 {
		c.LogMaxBackups = over.LogMaxBackups
	}
	if over.LogMaxAgeDays != 0 {
		c.LogMaxAgeDays = over.LogMaxAgeDays
	}
	if len(over.CORSOrigins) > 0 {
		c.CORSOrigins = append([]string(nil), over.CORSOrigins...)
	}
	if len(over.Labels) > 0 {
		c.Labels = make(map[string]string, len(over.Labels))
		for k, v := range over.Labels {
			c.Labels[k] = v
		}
	}
	return c
}

func setStr(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// ExitOnFailure reports whether a failed model load should stop the process.
func (c Config) ExitOnFailure() bool {
	return c.ExitOnLoadFailure == nil || *c.ExitOnLoadFailure
}

// CORS reports whether CORS is enabled.
func (c Config) CORS() bool {
	return c.CORSEnabled != nil && *c.CORSEnabled
}
