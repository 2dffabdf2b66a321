// planka-mcp: Planka checklists and comments over MCP.
//
// Usage:
//
//	planka-mcp [serve] [--config planka-mcp.yaml]   # Start MCP server (stdio transport)
//	planka-mcp version [--check]                    # Print version, optionally check GitHub
package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HendryAvila/planka-mcp/internal/config"
	"github.com/HendryAvila/planka-mcp/internal/logging"
	plankaserver "github.com/HendryAvila/planka-mcp/internal/server"
	"github.com/HendryAvila/planka-mcp/internal/updater"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath   string
	checkRelease bool
)

var rootCmd = &cobra.Command{
	Use:   "planka-mcp",
	Short: "MCP server for Planka checklists and comments",
	Long: `planka-mcp exposes Planka card checklists, checklist items and comments as MCP tools.

Configuration is read from --config (or $PLANKA_MCP_CONFIG) and PLANKA_* environment variables.
Running without a subcommand starts the server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "planka-mcp v%s\n", plankaserver.Version)
		if !checkRelease {
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()
		result, err := updater.CheckVersion(ctx, plankaserver.Version)
		if err != nil {
			return fmt.Errorf("version check: %w", err)
		}
		if result.UpdateAvailable {
			fmt.Fprintf(cmd.OutOrStdout(), "Update available: v%s -> v%s\n%s\n",
				result.CurrentVersion, result.LatestVersion, result.ReleaseURL)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Up to date (latest release: v%s)\n", result.LatestVersion)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file (default $"+config.PathEnv+")")
	versionCmd.Flags().BoolVar(&checkRelease, "check", false, "check GitHub for a newer release")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, closeLog := logging.New(cfg.Log)
	defer func() { _ = closeLog() }()

	s, cleanup, err := plankaserver.New(cfg, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// stdout carries the protocol; everything else goes through the logger.
	go checkForUpdates(ctx, log)

	log.WithFields(logrus.Fields{
		"version":  plankaserver.Version,
		"base_url": cfg.Planka.BaseURL,
	}).Info("planka-mcp serving on stdio")

	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(stdlog.New(log.WriterLevel(logrus.ErrorLevel), "", 0))
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// checkForUpdates logs a notice when a newer release exists. Failures are
// logged at debug level only.
func checkForUpdates(ctx context.Context, log logrus.FieldLogger) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := updater.CheckVersion(ctx, plankaserver.Version)
	if err != nil {
		log.WithError(err).Debug("version check skipped")
		return
	}
	if result.UpdateAvailable {
		log.WithFields(logrus.Fields{
			"current": result.CurrentVersion,
			"latest":  result.LatestVersion,
			"release": result.ReleaseURL,
		}).Info("update available")
	}
}
