package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gemgate/internal/config"
	"gemgate/internal/envelope"
	"gemgate/internal/fetch"
	"gemgate/internal/gateway"
	"gemgate/internal/llm"
	"gemgate/internal/logger"
	"gemgate/internal/search"
	"gemgate/internal/server"
	"gemgate/internal/store"
)

// NewServeCmd creates the serve command for starting the HTTP gateway.
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP gateway",
		Long: `Start the gemgate HTTP server.

Examples:
  # Start on the configured port (default 8888)
  gemgate serve

  # Start on a custom port
  gemgate serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8888)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")

	return cmd
}

func runServe(ctx context.Context, port int, host string) error {
	log := logger.Get()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	db, err := store.NewStore(cfg.App.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()

	model, err := llm.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}

	searcher, err := search.NewProvider(search.ProviderType(cfg.Search.Provider))
	if err != nil {
		return fmt.Errorf("failed to create search provider: %w", err)
	}

	gw := gateway.New(model, db, fetch.NewHTTPFetcher(), db, searcher, gateway.Config{
		Envelope:         envelope.Mode(cfg.API.Envelope),
		Provider:         cfg.API.Provider,
		QuestionsTTL:     cfg.Cache.QuestionsTTL,
		MetadataTTL:      cfg.Cache.MetadataTTL,
		AnswerTTL:        cfg.Cache.AnswerTTL,
		EEATTTL:          cfg.Cache.EEATTTL,
		SearchMaxResults: cfg.Search.MaxResults,
	})

	srv := server.New(gw, serverCfg)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("Gateway listening on http://%s:%d", serverCfg.Host, serverCfg.Port))
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Info("Server stopped successfully")
	}

	return nil
}
