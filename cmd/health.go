package cmd

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/flowdraft/internal/health"
	"github.com/zjrosen/flowdraft/internal/ui/styles"
)

var healthWatch bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the workflow service is reachable",
	RunE:  runHealth,
}

func init() {
	healthCmd.Flags().BoolVarP(&healthWatch, "watch", "w", false, "keep probing at health.interval until interrupted")
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	rt, err := newRuntime(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	out := cmd.OutOrStdout()
	if !healthWatch {
		report := rt.monitor.Refresh(cmd.Context())
		printReport(out, report)
		if !report.Healthy() {
			return fmt.Errorf("backend %s", report.Status)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher := health.NewMonitor(health.Config{
		Prober:   rt.client,
		Interval: cfg.Health.Interval,
		Metrics:  rt.recorder,
		OnReport: func(r health.Report) { printReport(out, r) },
	})
	watcher.Start(ctx)
	<-ctx.Done()
	watcher.Stop()
	return nil
}

func printReport(w io.Writer, r health.Report) {
	line := fmt.Sprintf("%s  %s  %s", styles.FormatClock(r.CheckedAt), cfg.BaseURL(), r.Status)
	if r.Service != "" {
		line += "  (" + r.Service + ")"
	}
	if r.Err != nil {
		line += ": " + r.Err.Error()
	}
	_, _ = fmt.Fprintln(w, line)
}

