package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/DavideSigurta/Donatio-sub000/config"
	"github.com/DavideSigurta/Donatio-sub000/logging"
)

// contextKey is the type for context keys
type contextKey string

const appKey contextKey = "app"

// app is what every command gets after config loading.
type app struct {
	cfg  *config.Config
	log  *slog.Logger
	json bool
}

func appFrom(cmd *cobra.Command) (*app, error) {
	a, ok := cmd.Context().Value(appKey).(*app)
	if !ok {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return a, nil
}

// NewRootCmd creates the donatio command tree.
func NewRootCmd() *cobra.Command {
	var (
		cfgPath  string
		asJSON   bool
		noColor  bool
		logLevel string
	)
	rootCmd := &cobra.Command{
		Use:   "donatio",
		Short: "Milestone-gated crowdfunding core",
		Long: `donatio replays crowdfunding scenarios (campaigns, donations, milestone
votes, releases and refunds) against the core engine and shows the resulting state.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			if noColor {
				color.NoColor = true
			}
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			a := &app{cfg: cfg, log: logging.New(cfg.Log.Level, cfg.Log.Format), json: asJSON}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Config file (default ./donatio.{yaml,toml})")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print JSON instead of tables")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewInspectCmd())
	rootCmd.AddCommand(NewVersionCmd())
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
