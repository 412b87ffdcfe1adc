package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/systmms/credrotate/internal/rotation"
)

// NewInvokeCommand runs one rotation step from an event file
func NewInvokeCommand(g *Globals) *cobra.Command {
	var (
		eventFile   string
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Run a single rotation step from an event file",
		Long: `Run one rotation step outside Lambda. The event is the JSON document
Secrets Manager sends to the function:

  {"SecretId": "...", "ClientRequestToken": "...", "Step": "createSecret"}

Use --event - to read it from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := readEvent(eventFile, cmd.InOrStdin())
			if err != nil {
				return err
			}

			cfg, err := g.LoadConfig()
			if err != nil {
				return err
			}
			g.Logger.Debug("Loaded configuration: %s", cfg.Describe())

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			reg := prometheus.NewRegistry()
			h, err := g.newHandler(ctx, cfg, g.Logger, reg)
			if err != nil {
				return err
			}

			runErr := h.Dispatch(ctx, event)

			if metricsFile != "" {
				if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
					g.Logger.Warn("Failed to write metrics to %s: %v", metricsFile, err)
				}
			}
			if runErr != nil {
				return runErr
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s completed for %s\n", event.Step, event.SecretID)
			return nil
		},
	}

	cmd.Flags().StringVar(&eventFile, "event", "", "Path to the rotation event JSON (- for stdin)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write step metrics in Prometheus text format to this file")
	_ = cmd.MarkFlagRequired("event")

	return cmd
}

func readEvent(path string, stdin io.Reader) (rotation.Event, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return rotation.Event{}, fmt.Errorf("failed to read event: %w", err)
	}

	var event rotation.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return rotation.Event{}, fmt.Errorf("failed to parse event: %w", err)
	}
	if event.SecretID == "" || event.ClientRequestToken == "" {
		return rotation.Event{}, fmt.Errorf("event must contain SecretId and ClientRequestToken")
	}
	return event, nil
}
