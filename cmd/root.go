// Package cmd implements the flowdraft command line.
package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zjrosen/flowdraft/internal/config"
	"github.com/zjrosen/flowdraft/internal/log"
	"github.com/zjrosen/flowdraft/internal/ui/app"
)

var (
	version = "dev"

	cfgFile string
	debug   bool

	cfg      config.Config
	loader   *config.Loader
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "flowdraft",
	Short: "Assemble workflows from a form or a chat prompt",
	Long: `flowdraft builds a workflow draft (a named list of activities) and sends
it to a workflow generation service. The chat panel (ctrl+t) forwards a
natural language description to the same service instead.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runApp,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default "+config.DefaultConfigPath()+")")
	rootCmd.PersistentFlags().String("backend-url", "", "workflow service base URL (overrides backendBaseUrl)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = closeLog() }()
	return rootCmd.Execute()
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	loader = config.NewLoader(cfgFile)
	if err := loader.Viper().BindPFlag("backendBaseUrl", cmd.Flags().Lookup("backend-url")); err != nil {
		return fmt.Errorf("binding --backend-url: %w", err)
	}

	loaded, err := loader.Load()
	if err != nil {
		return err
	}
	cfg = loaded

	level := cfg.Log.Level
	if debug {
		level = "debug"
	}
	closer, err := log.Init(log.Options{Path: cfg.Log.Path, Level: level})
	if err != nil {
		return fmt.Errorf("initializing log: %w", err)
	}
	closeLog = closer

	log.Info(log.CatApp, "Starting flowdraft", "version", version, "command", cmd.Name(), "backend", cfg.BaseURL())
	return nil
}

func runApp(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.serveMetrics(ctx)
	loader.Watch(func(next config.Config) {
		rt.applyBaseURL(next.BaseURL())
	})

	model := app.New(app.Config{
		Session:        rt.session,
		Context:        ctx,
		Health:         rt.monitor,
		HealthInterval: cfg.Health.Interval,
		ChatOpen:       cfg.UI.ChatOpen,
		RenderMarkdown: cfg.UI.RenderMarkdown,
		ShowStatusBar:  cfg.UI.ShowStatusBar,
	})

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		log.ErrorErr(log.CatApp, "Program exited with error", err)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		return err
	}
	return nil
}
