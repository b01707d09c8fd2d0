package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/webscour/internal/config"
	wslog "github.com/nao1215/webscour/internal/log"
	"github.com/nao1215/webscour/internal/report"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the redacting logger and makes it the default.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	logger := wslog.NewLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))
	slog.SetDefault(logger)
	return logger
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// addDataFlags registers the storage location flags shared by commands.
func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().String("db-dir", "",
		"Directory holding the document database (default: XDG data directory)")
	cmd.Flags().String("index-dir", "",
		"Directory holding the index pair (default: <db-dir>/index)")
}

// addReportFlags registers the output format flags shared by commands.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// applyDataFlags copies storage flags into cfg.
func applyDataFlags(cmd *cobra.Command, cfg *config.Config) error {
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dir != "" {
		cfg.DataDir = dir
	}

	cfg.IndexDir, err = cmd.Flags().GetString("index-dir")
	return err
}

// applyReportFlags copies output flags into cfg.
func applyReportFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	return err
}

// loadSiteConfigs fills cfg.SiteConfigs from the config file.
// An explicitly named file must exist; the implicit lookup may find nothing.
func loadSiteConfigs(cfg *config.Config) error {
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	switch {
	case configPath != "":
		sites, err := config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.SiteConfigs = sites
	case explicitConfigPath:
		return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
	}
	return nil
}

// openReportWriter returns the writer selected by cfg and a function that
// closes the report file, if one was opened.
func openReportWriter(cfg *config.Config, stdout io.Writer) (report.Writer, func() error, error) {
	output := stdout
	closeFn := func() error { return nil }

	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		output = f
		closeFn = f.Close
	}

	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion())), closeFn, nil
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output), closeFn, nil
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose)), closeFn, nil
	}
}
