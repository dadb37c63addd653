package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"survivald/internal/config"
	"survivald/internal/manager"
	"survivald/internal/registry"
)

// Version is stamped at build time:
// go build -ldflags "-X survivald/internal/cli.Version=v1.2.3"
var Version = "dev"

// env carries the process streams so commands are testable.
type env struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	lookup config.LookupFunc
	// onListen, when set, receives the bound address once serve is listening.
	onListen func(addr string)
}

// Main returns an exit code (0 for success, non-zero on error) for use by
// cmd/survivald.
func Main() int { return MainWithArgs(os.Args[1:]) }

// MainWithArgs is a testable variant of Main that accepts args explicitly.
func MainWithArgs(args []string) int {
	return run(context.Background(), args, &env{in: os.Stdin, out: os.Stdout, errOut: os.Stderr, lookup: os.LookupEnv})
}

func run(ctx context.Context, args []string, e *env) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	root := buildRootCmd(e)
	root.SetArgs(args)
	root.SetIn(e.in)
	root.SetOut(e.out)
	root.SetErr(e.errOut)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(e.errOut, "error:", err)
		return 1
	}
	return 0
}

// buildRootCmd constructs the command tree. The root command runs serve.
func buildRootCmd(e *env) *cobra.Command {
	var configPath string
	resolve := func(cmd *cobra.Command) (config.Config, error) {
		return resolveConfig(cmd, configPath, e.lookup)
	}

	root := &cobra.Command{
		Use:           "survivald",
		Short:         "Titanic survival prediction service",
		Long:          "survivald loads one tabular classification model at startup and serves survival predictions over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), e, cfg)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Config file (.yaml, .yml, .json, .toml); defaults to SURVIVALD_CONFIG")
	pf.String("model-uri", "", "Model reference: runs:/<run_id>/<path>, a local directory or file:// URI")
	pf.String("run-id", "", "Tracking run id (alternative to --model-uri)")
	pf.String("artifact-path", "", "Artifact path inside the run (default \"model\")")
	pf.String("tracking-uri", "", "Tracking store: directory, file://, sqlite:/// or http(s)://")
	pf.String("empty-artifact-path", "", "Empty artifact path policy: reject|run_root")
	pf.String("cache-dir", "", "Download directory for artifacts from a tracking server")
	pf.Duration("load-timeout", 0, "Model load timeout")
	pf.String("log-level", "", "Log level: trace|debug|info|warn|error")
	pf.String("log-format", "", "Log format: console|json")
	pf.String("log-file", "", "Also write JSON logs to this file, rotated by size")
	pf.StringToString("label", nil, "Label to status mapping, e.g. --label 0=Died --label 1=Lived")
	addServeFlags(root)

	root.AddCommand(newServeCmd(e, resolve), newCheckCmd(e, resolve), newPredictCmd(e, resolve), newVersionCmd())
	return root
}

// resolveConfig layers defaults < config file < SURVIVALD_* env < flags and
// validates the result.
func resolveConfig(cmd *cobra.Command, path string, lookup config.LookupFunc) (config.Config, error) {
	cfg := config.Defaults()
	if path == "" {
		path, _ = lookup(config.EnvPrefix + "CONFIG")
	}
	if path != "" {
		fc, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = cfg.Merge(fc)
	}
	ec, err := config.FromLookup(lookup)
	if err != nil {
		return cfg, err
	}
	cfg = cfg.Merge(ec).Merge(flagOverrides(cmd))
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// flagOverrides copies explicitly set flags into a partial Config.
func flagOverrides(cmd *cobra.Command) config.Config {
	fs := cmd.Flags()
	var c config.Config
	str := func(name string, dst *string) {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}
	dur := func(name string, dst *config.Duration) {
		if fs.Changed(name) {
			d, _ := fs.GetDuration(name)
			*dst = config.Duration(d)
		}
	}
	boolean := func(name string, dst **bool) {
		if fs.Changed(name) {
			b, _ := fs.GetBool(name)
			*dst = &b
		}
	}
	str("model-uri", &c.ModelURI)
	str("run-id", &c.RunID)
	str("artifact-path", &c.ArtifactPath)
	str("tracking-uri", &c.TrackingURI)
	str("empty-artifact-path", &c.EmptyArtifactPath)
	str("cache-dir", &c.CacheDir)
	str("log-level", &c.LogLevel)
	str("log-format", &c.LogFormat)
	str("log-file", &c.LogFile)
	str("addr", &c.Addr)
	str("access-log", &c.AccessLog)
	dur("load-timeout", &c.LoadTimeout)
	dur("read-timeout", &c.ReadTimeout)
	dur("write-timeout", &c.WriteTimeout)
	dur("shutdown-timeout", &c.ShutdownTimeout)
	boolean("exit-on-load-failure", &c.ExitOnLoadFailure)
	boolean("cors-enabled", &c.CORSEnabled)
	if fs.Changed("max-body-bytes") {
		c.MaxBodyBytes, _ = fs.GetInt64("max-body-bytes")
	}
	if fs.Changed("retry-after-seconds") {
		c.RetryAfterSeconds, _ = fs.GetInt("retry-after-seconds")
	}
	if fs.Changed("cors-origins") {
		v, _ := fs.GetString("cors-origins")
		c.CORSOrigins = config.SplitCSV(v)
	}
	if fs.Changed("label") {
		c.Labels, _ = fs.GetStringToString("label")
	}
	return c
}

// newManager wires the manager from a validated configuration. The tracking
// store is opened lazily by Load and closed once the artifact is decoded.
func newManager(cfg config.Config, log zerolog.Logger, pub manager.EventPublisher) (*manager.Manager, error) {
	ref, err := cfg.Reference()
	if err != nil {
		return nil, err
	}
	labels, err := cfg.LabelTable()
	if err != nil {
		return nil, err
	}
	return manager.NewWithConfig(manager.ManagerConfig{
		Reference: ref,
		OpenStore: func() (registry.Store, error) {
			return registry.OpenStore(cfg.TrackingURI, registry.StoreOptions{CacheDir: cfg.CacheDir})
		},
		Labels:      labels,
		LoadTimeout: cfg.LoadTimeout.Std(),
		Logger:      &log,
		Publisher:   pub,
	})
}
