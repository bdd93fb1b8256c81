package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Divas-Gupta30/adaptive-rag/internal/config"
	"github.com/Divas-Gupta30/adaptive-rag/internal/generation"
	"github.com/Divas-Gupta30/adaptive-rag/internal/graph"
	"github.com/Divas-Gupta30/adaptive-rag/internal/judge"
	"github.com/Divas-Gupta30/adaptive-rag/internal/llm"
	"github.com/Divas-Gupta30/adaptive-rag/internal/metrics"
	"github.com/Divas-Gupta30/adaptive-rag/internal/processing"
	"github.com/Divas-Gupta30/adaptive-rag/internal/storage"
	"github.com/Divas-Gupta30/adaptive-rag/internal/websearch"
)

// components holds what the commands share. close releases connections.
type components struct {
	store    *storage.Store
	embedder *processing.Embedder
	judge    *judge.LLMJudge
	engine   *graph.Engine
	closers  []func()
}

func (c *components) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*storage.Store, *processing.Embedder, error) {
	embedder := processing.NewEmbedder(cfg.Embedding.Endpoint, cfg.Embedding.Model, cfg.Embedding.Dimension)
	store, err := storage.Open(ctx, cfg.Database.URL, embedder.Dimensions())
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, embedder, nil
}

// build wires the engine. m may be nil.
func build(ctx context.Context, cfg *config.Config, log *zap.Logger, m *metrics.Metrics) (*components, error) {
	c := &components{}

	chat, err := llm.New(ctx, cfg.LLMClientConfig())
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	c.judge = judge.New(chat, log)

	c.store, c.embedder, err = openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, c.store.Close)

	search, err := websearch.New(cfg.WebSearchClientConfig())
	if err != nil {
		c.close()
		return nil, err
	}
	if addr := cfg.WebSearch.Cache.Addr; addr != "" {
		rc := websearch.NewRedisCache(addr, cfg.WebSearch.Cache.Password, cfg.WebSearch.Cache.DB)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			log.Warn("redis unreachable, search cache will miss", zap.String("addr", addr), zap.Error(err))
		}
		cancel()
		c.closers = append(c.closers, func() { _ = rc.Close() })

		var obs websearch.CacheObserver
		if m != nil {
			obs = m
		}
		search = websearch.NewCachedSearcher(search, rc, cfg.CacheTTL(), log, obs)
	}

	opts := []graph.Option{graph.WithLogger(log)}
	if m != nil {
		opts = append(opts, graph.WithRecorder(m))
	}
	c.engine, err = graph.NewEngine(graph.Deps{
		Judge:     c.judge,
		Retriever: storage.NewVectorRetriever(c.embedder, c.store, cfg.Retrieval.TopK),
		WebSearch: search,
		Generator: generation.New(chat),
	}, opts...)
	if err != nil {
		c.close()
		return nil, err
	}

	if cfg.VerifyPrompts {
		if err := judge.VerifyPrompts(ctx, c.judge, log); err != nil {
			c.close()
			return nil, fmt.Errorf("prompt check: %w", err)
		}
	}
	return c, nil
}
