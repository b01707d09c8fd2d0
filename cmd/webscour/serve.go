package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/webscour/internal/config"
	"github.com/nao1215/webscour/internal/report"
	"github.com/nao1215/webscour/internal/search"
	"github.com/nao1215/webscour/internal/store"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve search results over HTTP",
		Long: `Serve loads the index pair and answers queries over HTTP:

  GET  /search?q=<query>&k=<n>   ranked results as JSON
  POST /reload                   load the index pair again and swap it in

A reload that fails keeps the current index. Queries in flight during a
reload finish against the index they started with.

Examples:
  webscour serve
  webscour serve --listen 0.0.0.0:9000
  curl 'http://127.0.0.1:8080/search?q=consensus&k=3'`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddr, "Listen address")
	cmd.Flags().IntP("top", "k", config.DefaultTopK, "Default number of results")
	addDataFlags(cmd)

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()

	var err error
	if cfg.ListenAddr, err = cmd.Flags().GetString("listen"); err != nil {
		return err
	}
	if cfg.TopK, err = cmd.Flags().GetInt("top"); err != nil {
		return err
	}
	if err := applyDataFlags(cmd, cfg); err != nil {
		return err
	}

	logger := setupLogger(cmd)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	svc := search.NewService()
	if err := svc.Load(cfg.IndexPath()); err != nil {
		return err
	}

	var resolver URLResolver
	opts := store.DefaultOptions()
	opts.CreateIfNotExists = false
	if st, err := store.Open(cfg.DataDir, opts); err != nil {
		logger.Warn("document store unavailable, results carry ids only", "error", err)
	} else {
		defer st.Close()
		resolver = st
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newSearchHandler(svc, resolver, cfg.IndexPath(), cfg.TopK, logger),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "Serving search on http://%s/search\n", cfg.ListenAddr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down search server")
		shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer stop()
		return srv.Shutdown(shutdownCtx)
	}
}

// searchHandler serves the query surface of a search.Service.
type searchHandler struct {
	svc      *search.Service
	resolver URLResolver
	indexDir string
	topK     int
	logger   *slog.Logger
}

// newSearchHandler builds the HTTP routes. resolver may be nil.
func newSearchHandler(svc *search.Service, resolver URLResolver, indexDir string, topK int, logger *slog.Logger) http.Handler {
	h := &searchHandler{svc: svc, resolver: resolver, indexDir: indexDir, topK: topK, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /search", h.search)
	mux.HandleFunc("POST /reload", h.reload)
	return mux
}

func (h *searchHandler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSONError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	topK := h.topK
	if k := r.URL.Query().Get("k"); k != "" {
		n, err := strconv.Atoi(k)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "k must be an integer")
			return
		}
		topK = n
	}

	resp, err := h.svc.Search(query, topK)
	if errors.Is(err, search.ErrNoIndex) {
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.resolver != nil {
		attachURLs(r.Context(), h.resolver, resp, h.logger)
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := report.NewJSONWriter(w).WriteSearch(resp); err != nil {
		h.logger.Warn("failed to write search response", "error", err)
	}
}

func (h *searchHandler) reload(w http.ResponseWriter, _ *http.Request) {
	if err := h.svc.Load(h.indexDir); err != nil {
		h.logger.Error("index reload failed, keeping current index", "error", err)
		writeJSONError(w, http.StatusConflict, err.Error())
		return
	}

	idx := h.svc.Current()
	h.logger.Info("index reloaded", "build_id", idx.BuildID, "documents", idx.DocumentCount)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck // client may be gone
		"build_id":       idx.BuildID,
		"document_count": idx.DocumentCount,
	})
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg}) //nolint:errcheck // client may be gone
}
