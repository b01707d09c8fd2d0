package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for webscour.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webscour",
		Short: "Bounded web crawler with a TF-IDF search index",
		Long: `webscour crawls pages inside one domain up to a page budget, stores
their content, builds a TF-IDF inverted index over the stored corpus and
answers ranked keyword queries.

A typical session:
  webscour crawl https://example.com/
  webscour index
  webscour search "keyword query"`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewEnqueueCmd())
	cmd.AddCommand(NewIndexCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
