package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/webscour/internal/config"
	"github.com/nao1215/webscour/internal/model"
	"github.com/nao1215/webscour/internal/pipeline"
	"github.com/nao1215/webscour/internal/store"
)

// NewIndexCmd creates the index command.
func NewIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the TF-IDF index from the document store",
		Long: `Index reads every stored document, extracts its visible text, and
writes a fresh inverted index and IDF table to the index directory.

Both files are replaced atomically. Documents whose content cannot be
parsed are skipped and counted. The previous index stays in place if the
build fails.

Examples:
  webscour index
  webscour index --db-dir ./data --index-dir ./data/index`,
		Args: cobra.NoArgs,
		RunE: runIndexCmd,
	}

	addDataFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runIndexCmd executes the index command.
func runIndexCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	if err := applyDataFlags(cmd, cfg); err != nil {
		return err
	}
	if err := applyReportFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	opts := store.DefaultOptions()
	opts.CreateIfNotExists = false
	st, err := store.Open(cfg.DataDir, opts)
	if err != nil {
		return fmt.Errorf("failed to open document store (run crawl first): %w", err)
	}
	defer st.Close()

	run := pipeline.NewIndexRun(cfg.IndexPath())
	p := pipeline.IndexPipeline(st, nil, pipeline.WithLogger(logger))
	if err := p.Execute(ctx, run); err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	writer, closeReport, err := openReportWriter(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeReport()

	_, err = writer.WriteIndex(&model.IndexSummary{
		BuildID:   run.Index.BuildID,
		Documents: run.Index.DocumentCount,
		Skipped:   run.Skipped,
		Terms:     len(run.Index.Postings),
		Elapsed:   run.Elapsed,
	})
	return err
}
