package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/webscour/internal/config"
	"github.com/nao1215/webscour/internal/model"
	"github.com/nao1215/webscour/internal/search"
	"github.com/nao1215/webscour/internal/store"
)

// URLResolver maps document ids back to URLs. *store.DocumentStore
// implements it.
type URLResolver interface {
	URLs(ctx context.Context, ids []string) (map[string]string, error)
}

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Rank stored documents against a keyword query",
		Long: `Search loads the index built by "webscour index" and prints the
top-K documents by TF-IDF score.

The index pair must be intact: a missing, corrupt or mismatched pair is an
error, never an empty result.

Examples:
  webscour search distributed systems
  webscour search -k 10 --json "consensus protocol"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearchCmd,
	}

	cmd.Flags().IntP("top", "k", config.DefaultTopK, "Number of results")
	addDataFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	if cfg.TopK, err = cmd.Flags().GetInt("top"); err != nil {
		return err
	}
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

	svc := search.NewService()
	if err := svc.Load(cfg.IndexPath()); err != nil {
		return err
	}

	resp, err := svc.Search(strings.Join(args, " "), cfg.TopK)
	if err != nil {
		return err
	}

	opts := store.DefaultOptions()
	opts.CreateIfNotExists = false
	if st, err := store.Open(cfg.DataDir, opts); err != nil {
		logger.Warn("document store unavailable, showing ids only", "error", err)
	} else {
		defer st.Close()
		attachURLs(cmd.Context(), st, resp, logger)
	}

	writer, closeReport, err := openReportWriter(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeReport()

	_, err = writer.WriteSearch(resp)
	return err
}

// attachURLs fills in result URLs. Lookup failures leave URLs empty.
func attachURLs(ctx context.Context, resolver URLResolver, resp *model.SearchResponse, logger *slog.Logger) {
	if len(resp.Results) == 0 {
		return
	}

	ids := make([]string, len(resp.Results))
	for i, r := range resp.Results {
		ids[i] = r.DocumentID
	}

	urls, err := resolver.URLs(ctx, ids)
	if err != nil {
		logger.Warn("failed to resolve result URLs", "error", err)
		return
	}
	for i := range resp.Results {
		resp.Results[i].URL = urls[resp.Results[i].DocumentID]
	}
}
