package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"oecdmcp/internal/cache"
	"oecdmcp/internal/catalog"
	"oecdmcp/internal/config"
	mcpserver "oecdmcp/internal/mcp"
	"oecdmcp/internal/sdmx"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Get()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cat := catalog.New()
	if cfg.CatalogPath != "" {
		if err := cat.LoadFile(cfg.CatalogPath); err != nil {
			log.Printf("catalog: override not loaded, using built-ins: %v", err)
		}
		if err := cat.Watch(ctx, cfg.CatalogPath); err != nil {
			log.Printf("catalog: watcher not started: %v", err)
		}
	}

	var resultCache sdmx.ResultCache
	if cfg.CachePath != "" {
		store, err := cache.Open(cfg.CachePath, cfg.CacheTTL)
		if err != nil {
			log.Fatalf("Failed to open cache: %v", err)
		}
		defer store.Close()
		if err := store.StartPurge(cfg.CachePurgeEvery); err != nil {
			log.Printf("[cache] purge schedule not started: %v", err)
		}
		resultCache = store
	}

	limiter := sdmx.NewLimiter(cfg.RateInterval)
	executor := sdmx.NewExecutor(limiter, sdmx.ExecutorOptions{
		Timeout:    cfg.RequestTimeout,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	})
	client := sdmx.NewClient(sdmx.ClientOptions{
		BaseURL:      cfg.BaseURL,
		Catalog:      cat,
		Executor:     executor,
		Cache:        resultCache,
		DefaultLimit: cfg.DefaultLimit,
		MaxLimit:     cfg.MaxLimit,
	})

	srv := mcpserver.New(mcpserver.Deps{Service: client})
	if err := srv.ServeStdio(); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
