package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"survivald/internal/schema"
)

func newPredictCmd(e *env, resolve resolveFunc) *cobra.Command {
	return &cobra.Command{
		Use:     "predict [file|-]",
		Short:   "Score one passenger record read from a file or stdin",
		Example: "  echo '{\"Pclass\":1,\"Sex\":\"female\",\"Age\":30,\"SibSp\":0,\"Parch\":0,\"Fare\":100,\"Embarked\":\"C\"}' | survivald predict --model-uri ./model",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve(cmd)
			if err != nil {
				return err
			}
			payload, err := readPayload(cmd, args)
			if err != nil {
				return err
			}
			// Reject a bad record before paying for the model load.
			p, err := schema.DecodePassenger(payload)
			if err != nil {
				return err
			}
			log, closer, err := newLogger(cfg, e.errOut)
			if err != nil {
				return err
			}
			defer closer.Close()

			mgr, err := newManager(cfg, log, nil)
			if err != nil {
				return err
			}
			if err := mgr.Load(cmd.Context()); err != nil {
				return err
			}
			resp, err := mgr.Predict(cmd.Context(), p)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(resp)
		},
	}
}

// readPayload reads the record from the named file, or stdin for "-" or no
// argument.
func readPayload(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}
