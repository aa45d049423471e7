package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/flowdraft/internal/devserver"
	"github.com/zjrosen/flowdraft/internal/telemetry"
)

var (
	devserverAddr    string
	devserverLatency time.Duration
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a local workflow generation service",
	Long: `Run a local stand-in for the workflow generation service. It accepts both
request shapes on /api/generate-workflow and renders Temporal workflow and
activity stubs instead of calling a language model.`,
	RunE: runDevserver,
}

func init() {
	devserverCmd.Flags().StringVar(&devserverAddr, "addr", ":8000", "listen address")
	devserverCmd.Flags().DurationVar(&devserverLatency, "latency", 0, "artificial delay before each generate response")
	rootCmd.AddCommand(devserverCmd)
}

func runDevserver(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Setup(ctx, telemetry.Options{
		Enabled:        cfg.Telemetry.Enabled,
		TracesPath:     cfg.Telemetry.TracesPath,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		ServiceName:    "flowdraft-devserver",
		ServiceVersion: version,
	})
	if err != nil {
		return err
	}
	defer func() { _ = tp.Shutdown(cmd.Context()) }()

	h := devserver.NewHandler(devserver.WithLatency(devserverLatency))
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s listening on %s\n", devserver.ServiceName, devserverAddr)
	return devserver.NewServer(devserverAddr, h, tp).Run(ctx)
}
