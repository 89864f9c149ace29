package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/amishk599/jobsearch/internal/adapter"
	"github.com/amishk599/jobsearch/internal/aggregate"
	"github.com/amishk599/jobsearch/internal/ai"
	"github.com/amishk599/jobsearch/internal/cache"
	"github.com/amishk599/jobsearch/internal/config"
	"github.com/amishk599/jobsearch/internal/model"
	"github.com/amishk599/jobsearch/internal/notifier"
	"github.com/amishk599/jobsearch/internal/query"
	"github.com/amishk599/jobsearch/internal/ranking"
	"github.com/amishk599/jobsearch/internal/retry"
	"github.com/amishk599/jobsearch/internal/search"
	"github.com/amishk599/jobsearch/internal/store"
)

// pipeline is a fully wired search service plus whatever it opened.
type pipeline struct {
	svc     *search.Service
	sources []aggregate.Source
	closers []func() error
}

func (p *pipeline) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		_ = p.closers[i]()
	}
}

// buildPipeline wires providers, AI, cache and run log from cfg. shared,
// when non-nil, is reused as the run log if it points at the same file.
func buildPipeline(ctx context.Context, cfg *config.Config, shared *store.SQLiteStore, logger *slog.Logger) (*pipeline, error) {
	p := &pipeline{}
	httpClient := &http.Client{Timeout: cfg.Search.HTTPTimeout}

	var cacheStore cache.Store
	if cfg.Cache.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Cache.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, continuing without cache", "error", err)
		} else {
			p.closers = append(p.closers, rdb.Close)
			cacheStore = cache.NewRedisStore(rdb)
			logger.Info("provider cache enabled", "ttl", cfg.Cache.TTL.String())
		}
	}

	p.sources = buildSources(cfg, httpClient, cacheStore, logger)

	enhancer, scorer, err := setupAI(ctx, cfg, logger)
	if err != nil {
		p.Close()
		return nil, err
	}

	recorder, closeRecorder, err := openRunLog(ctx, cfg, shared)
	if err != nil {
		p.Close()
		return nil, err
	}
	if closeRecorder != nil {
		p.closers = append(p.closers, closeRecorder)
	}

	p.svc = search.NewService(
		query.NewBuilder(enhancer, logger),
		aggregate.New(p.sources, logger),
		ranking.NewRanker(scorer, cfg.Search.ResultLimit, logger),
		recorder,
		logger,
	)
	return p, nil
}

// buildSources registers providers in a fixed order: the free source runs
// first and alone, then every paid engine concurrently. Each fetcher is
// cached (when enabled) beneath the fallback wrapper so every fallback
// query gets its own cache entry.
func buildSources(cfg *config.Config, httpClient *http.Client, cacheStore cache.Store, logger *slog.Logger) []aggregate.Source {
	fallbacks := cfg.Search.FallbackQueries
	if fallbacks == nil {
		fallbacks = retry.DefaultFallbackQueries
	}

	var sources []aggregate.Source
	add := func(f model.JobFetcher, concurrent bool) {
		if cacheStore != nil {
			f = cache.NewCachedFetcher(f, cacheStore, cfg.Cache.TTL, logger)
		}
		f = retry.NewFallbackFetcher(f, fallbacks, cfg.Search.AttemptTimeout, logger)
		sources = append(sources, aggregate.Source{Fetcher: f, Concurrent: concurrent})
		logger.Debug("registered provider", "name", f.Name(), "concurrent", concurrent)
	}

	p := cfg.Providers
	if p.Remotive.Enabled {
		add(adapter.NewRemotiveAdapter(p.Remotive.BaseURL, p.Remotive.Limit, httpClient, logger), false)
	}
	if p.Metasearch.Configured() {
		for _, engine := range p.Metasearch.Engines {
			add(adapter.NewMetasearchAdapter(p.Metasearch.BaseURL, p.Metasearch.APIKey, p.Metasearch.APIHost, engine, httpClient, logger), true)
		}
	}
	if p.Adzuna.Configured() {
		add(adapter.NewAdzunaAdapter(p.Adzuna.BaseURL, p.Adzuna.AppID, p.Adzuna.AppKey, p.Adzuna.Country, p.Adzuna.ResultsPerPage, httpClient, logger), true)
	}
	return sources
}

// setupAI returns nil interfaces when AI is disabled so downstream nil
// checks hold.
func setupAI(ctx context.Context, cfg *config.Config, logger *slog.Logger) (query.Enhancer, ranking.Scorer, error) {
	if !cfg.AI.Enabled {
		return nil, nil, nil
	}

	var provider ai.LLMProvider
	switch cfg.AI.Provider {
	case "gemini":
		g, err := ai.NewGeminiProvider(ctx, cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			return nil, nil, fmt.Errorf("gemini client: %w", err)
		}
		provider = g
	default:
		provider = ai.NewOpenAIProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, &http.Client{Timeout: cfg.AI.Timeout})
	}
	logger.Info("ai enabled", "provider", cfg.AI.Provider, "model", cfg.AI.Model, "enhance_query", cfg.AI.EnhanceQuery)

	var enhancer query.Enhancer
	if cfg.AI.EnhanceQuery {
		enhancer = ai.NewQueryEnhancer(provider, ai.QueryEnhancementTemplate)
	}
	scorer := ai.NewBatchScorer(provider, ai.RelevanceScoringTemplate, cfg.AI.BatchSize, logger)
	return enhancer, scorer, nil
}

// openRunLog opens the configured run recorder. The returned closer is nil
// when nothing new was opened.
func openRunLog(ctx context.Context, cfg *config.Config, shared *store.SQLiteStore) (model.RunRecorder, func() error, error) {
	switch cfg.RunLog.Driver {
	case "none":
		return nil, nil, nil
	case "postgres":
		pg, err := store.NewPostgresStore(ctx, cfg.RunLog.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open run log: %w", err)
		}
		return pg, pg.Close, nil
	default:
		if shared != nil && cfg.RunLog.DSN == cfg.Watch.DBPath {
			return shared, nil, nil
		}
		s, err := store.NewSQLiteStore(cfg.RunLog.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open run log: %w", err)
		}
		return s, s.Close, nil
	}
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Watch.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Watch.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// buildRequest turns a saved search into a pipeline request, reading the
// resume file if one is set.
func buildRequest(s config.SavedSearch) (model.SearchRequest, error) {
	req := model.SearchRequest{Skills: s.Skills, Query: s.Query}
	if s.ResumeFile != "" {
		text, err := readResume(s.ResumeFile)
		if err != nil {
			return req, err
		}
		req.ResumeText = text
	}
	return req, nil
}

func readResume(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
