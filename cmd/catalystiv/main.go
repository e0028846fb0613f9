// Command catalystiv screens option chains around catalysts and reports IV analytics.
package main

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/seenimoa/catalystiv/api"
	"github.com/seenimoa/catalystiv/internal/config"
	"github.com/seenimoa/catalystiv/internal/logging"
	"github.com/seenimoa/catalystiv/internal/provider"
	"github.com/seenimoa/catalystiv/internal/providers"
	"github.com/seenimoa/catalystiv/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "catalystiv",
	Short: "Catalyst-proximity option screening and IV analytics",
	Long: `catalystiv relates option expirations to scheduled catalysts
(earnings, clinical-trial readouts), screens and scores option chains
around them, and builds per-symbol options research summaries.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		logging.Setup(cfg.Logging)
		api.Version = version

		output, _ := cmd.Flags().GetString("output")
		return checkOutputFormat(output)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("output", "o", formatJSON, "output format (json, yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(ivrankCmd)
	rootCmd.AddCommand(screenCmd)
	rootCmd.AddCommand(surfaceCmd)
	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(trialsCmd)
}

// newRegistry registers the configured providers with a fresh registry.
func newRegistry() (*provider.Registry, error) {
	reg := provider.NewRegistry()
	if err := providers.RegisterAllTo(reg, cfg); err != nil {
		return nil, fmt.Errorf("provider setup failed: %w", err)
	}
	return reg, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "catalystiv %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}
		reg, err := newRegistry()
		if err != nil {
			return err
		}

		addr := net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port))
		log.Info().Str("config", cfg.File()).Int("providers", len(reg.List())).Msg("starting catalystiv API server")
		return api.NewServer(cfg, reg).ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides api.port)")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and registered providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		line := strings.Repeat("═", 39)
		fmt.Fprintln(out, line)
		fmt.Fprintln(out, "  catalystiv System Status")
		fmt.Fprintln(out, line)
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintf(out, "  Today:         %s\n", utils.FormatDate(utils.Today()))
		file := cfg.File()
		if file == "" {
			file = "(defaults)"
		}
		fmt.Fprintf(out, "  Config:        %s\n", file)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Fprintf(out, "    Logging:       %s (%s)\n", cfg.Logging.Level, cfg.Logging.Format)
		fmt.Fprintf(out, "    Screener:      -%d/+%d days, strikes within %.1f%%\n",
			cfg.Screener.DaysBefore, cfg.Screener.DaysAfter, cfg.Screener.MaxStrikeDistancePct)
		fmt.Fprintf(out, "    Research:      %d concurrent builds\n", cfg.Research.ConcurrentBuilds)
		fmt.Fprintf(out, "    Trials API:    %s (timeout %ds)\n", cfg.NIH.BaseURL, cfg.NIH.TimeoutSec)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Providers:")
		for _, info := range reg.List() {
			models := make([]string, len(info.Models))
			for i, m := range info.Models {
				models[i] = string(m)
			}
			fmt.Fprintf(out, "    %-14s %s\n", info.Name+":", strings.Join(models, ", "))
		}
		fmt.Fprintln(out, line)
		return nil
	},
}
