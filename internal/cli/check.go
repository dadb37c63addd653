package cli

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"survivald/internal/manager"
	"survivald/pkg/types"
)

// checkReport is printed by the check command.
type checkReport struct {
	Reference string           `json:"reference"`
	State     string           `json:"state"`
	Model     *types.ModelInfo `json:"model,omitempty"`
	Error     string           `json:"error,omitempty"`
	Events    []string         `json:"events"`
	ElapsedMS int64            `json:"elapsed_ms"`
}

func newCheckCmd(e *env, resolve resolveFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the model once and print its description as JSON",
		Long:  "check resolves and decodes the configured model exactly like serve does, prints a JSON report and exits non-zero when the load fails.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve(cmd)
			if err != nil {
				return err
			}
			log, closer, err := newLogger(cfg, e.errOut)
			if err != nil {
				return err
			}
			defer closer.Close()

			pub := manager.NewMemoryPublisher()
			mgr, err := newManager(cfg, log, pub)
			if err != nil {
				return err
			}
			start := time.Now()
			loadErr := mgr.Load(cmd.Context())
			snap := mgr.Snapshot()
			rep := checkReport{
				Reference: mgr.Reference(),
				State:     string(snap.State),
				Model:     snap.Model,
				Error:     snap.Err,
				Events:    pub.Names(),
				ElapsedMS: time.Since(start).Milliseconds(),
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(rep); err != nil {
				return err
			}
			return loadErr
		},
	}
}
