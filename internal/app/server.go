package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/trendlens-hq/trendlens/internal/api"
	"github.com/trendlens-hq/trendlens/internal/assistant"
	"github.com/trendlens-hq/trendlens/internal/config"
	"github.com/trendlens-hq/trendlens/internal/feed"
	"github.com/trendlens-hq/trendlens/internal/ingest"
	"github.com/trendlens-hq/trendlens/internal/logger"
	"github.com/trendlens-hq/trendlens/internal/notify"
	"github.com/trendlens-hq/trendlens/internal/ratelimit"
	"github.com/trendlens-hq/trendlens/internal/storage"
	"github.com/trendlens-hq/trendlens/pkg/httpclient"
	"github.com/trendlens-hq/trendlens/pkg/publishers"
)

// Server wires together sources, the ingestion coordinator, downstream
// publishers, and the HTTP API, and serves until the context is cancelled.
type Server struct {
	cfg     *config.Config
	store   storage.Store
	engine  http.Handler
	sources int
	log     logger.Logger
}

// NewServer builds the full runtime from config files.
func NewServer(ctx context.Context, cfg *config.Config, log logger.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}

	sourceReg, err := feed.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources registry: %w", err)
	}
	log.InfoObj("sources registry loaded", "sources", sourceReg.All())

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	fetcher := feed.NewFetcher(httpclient.NewRestyClient(cfg.FetchTimeout))
	coordinator := ingest.NewCoordinator(sourceReg.All(), fetcher, log, ingest.Options{
		CacheTTL:     cfg.CacheTTL,
		FetchTimeout: cfg.FetchTimeout,
	})

	notifier := notify.New(store, fanout, log)
	coordinator.OnMerged = notifier.Notify

	assist := assistant.NewClient(cfg.OpenAIAPIKey, cfg.FetchTimeout,
		assistant.WithModel(cfg.OpenAIModel))
	if !cfg.AssistantConfigured() {
		log.WarnObj("assistant disabled", "reason", "openai_api_key not set")
	}

	newsLimiter := ratelimit.New(cfg.NewsRateLimit, cfg.RateWindow)
	chatLimiter := ratelimit.New(cfg.ChatRateLimit, cfg.RateWindow)

	handler := api.NewHandler(coordinator, assist, newsLimiter, chatLimiter, sourceReg.Size(), log)
	engine := api.NewServer(handler, log)

	return &Server{
		cfg:     cfg,
		store:   store,
		engine:  engine,
		sources: sourceReg.Size(),
		log:     log,
	}, nil
}

// buildFanout loads the publishers file and instantiates every enabled sink.
// An unset file means no downstream publishing.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		return publishers.NewFanout(nil), nil
	}

	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	log.InfoObj("publishers registry loaded", "publishers", enabled)
	return publishers.NewFanout(pubs), nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully
// and closes the storage layer.
func (s *Server) Run(ctx context.Context) error {
	if s == nil || s.engine == nil {
		return fmt.Errorf("server is not initialized")
	}
	defer s.store.Close()

	srv := &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoObj("http server starting", "server_state", map[string]any{
			"listen_addr":   s.cfg.ListenAddr,
			"sources_count": s.sources,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.log.InfoObj("http server shutting down", "reason", ctx.Err())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
