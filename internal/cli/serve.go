package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"survivald/internal/config"
	"survivald/internal/httpapi"
)

type resolveFunc func(cmd *cobra.Command) (config.Config, error)

// addServeFlags registers the HTTP server flags on cmd.
func addServeFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.String("addr", "", "HTTP listen address (default \":8000\")")
	fs.Bool("exit-on-load-failure", true, "Exit when the model fails to load instead of serving 503s")
	fs.Int64("max-body-bytes", 0, "Maximum /predict request body size in bytes")
	fs.Duration("read-timeout", 0, "HTTP server read timeout")
	fs.Duration("write-timeout", 0, "HTTP server write timeout")
	fs.Duration("shutdown-timeout", 0, "Graceful shutdown timeout")
	fs.Bool("cors-enabled", false, "Enable CORS")
	fs.String("cors-origins", "", "Comma-separated allowed CORS origins")
	fs.Int("retry-after-seconds", 0, "Retry-After value sent with 503 responses (default 5)")
	fs.String("access-log", "", "Access log level: off|error|info|debug")
}

func newServeCmd(e *env, resolve resolveFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Load the model and serve the HTTP API (default command)",
		Example: "  survivald serve --run-id e29e2b05b8e341d7809c89725c6797e9 --tracking-uri ./mlruns",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), e, cfg)
		},
	}
	addServeFlags(cmd)
	return cmd
}

// runServe starts listening before the model loads so that /readyz and
// /status report the loading state. A failed load stops the server unless
// exit_on_load_failure is false, in which case every /predict gets 503.
func runServe(ctx context.Context, e *env, cfg config.Config) error {
	log, closer, err := newLogger(cfg, e.errOut)
	if err != nil {
		return err
	}
	defer closer.Close()

	mgr, err := newManager(cfg, log, nil)
	if err != nil {
		return err
	}
	httpapi.SetLogger(log)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetRetryAfterSeconds(cfg.RetryAfterSeconds)
	httpapi.SetDefaultLogLevel(cfg.AccessLog)
	httpapi.SetCORSOptions(cfg.CORS(), cfg.CORSOrigins, nil, nil)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout.Std(),
		WriteTimeout:      cfg.WriteTimeout.Std(),
	}
	log.Info().Str("addr", ln.Addr().String()).Str("model", mgr.Reference()).Msg("survivald listening")
	if e.onListen != nil {
		e.onListen(ln.Addr().String())
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	loadErr := make(chan error, 1)
	go func(c chan<- error) { c <- mgr.Load(ctx) }(loadErr)

	var runErr error
loop:
	for {
		select {
		case err := <-loadErr:
			loadErr = nil
			if err != nil && cfg.ExitOnFailure() {
				runErr = err
				break loop
			}
			if err != nil {
				log.Warn().Msg("serving in failed state; /predict returns 503")
			}
		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			break loop
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout.Std())
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	return runErr
}
