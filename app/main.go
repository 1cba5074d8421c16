package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/haruq/dailybrief/app/api"
	"github.com/haruq/dailybrief/app/cfg"
	"github.com/haruq/dailybrief/app/chat"
	"github.com/haruq/dailybrief/app/collector"
	"github.com/haruq/dailybrief/app/digest"
	"github.com/haruq/dailybrief/app/extract"
	"github.com/haruq/dailybrief/app/summarize"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load configuration from environment variables and command-line flags
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	log.Printf("Starting Daily Brief %s...", appCfg.Version)

	ctx := context.Background()

	// Load per-source configuration
	log.Printf("Loading source configurations from %s...", appCfg.SourcesDir)
	sources, err := collector.NewConfigLoader(appCfg.SourcesDir).Load()
	if err != nil {
		log.Fatalf("Failed to load source configurations: %v", err)
	}

	// HTTP clients: scraping targets get a tighter timeout than feed pulls
	httpClient := &http.Client{Timeout: 30 * time.Second}

	extractor := extract.NewExtractor(httpClient, appCfg.UserAgent)

	// Generative backend. A missing credential is not an error: the gateway
	// degrades to fixed messages per its policy.
	var summaryGateway, chatGateway *summarize.Gateway
	if appCfg.GeminiAPIKey == "" {
		log.Printf("GEMINI_API_KEY not set, summaries degrade to canned responses")
		summaryGateway = summarize.NewGateway(nil)
		chatGateway = summarize.NewGateway(nil)
	} else {
		summaryClient, err := summarize.NewGeminiClient(ctx, appCfg.GeminiAPIKey, appCfg.GeminiModel, false)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		chatClient, err := summarize.NewGeminiClient(ctx, appCfg.GeminiAPIKey, appCfg.GeminiModel, true)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini chat client: %v", err)
		}
		summaryGateway = summarize.NewGateway(summaryClient)
		chatGateway = summarize.NewGateway(chatClient)
	}

	// Source adapters
	adapters := []collector.Adapter{
		collector.NewHackerNewsAdapter(httpClient, sources.HackerNews),
		collector.NewTrendingAdapter(httpClient, appCfg.UserAgent, sources.Trending),
		collector.NewPapersAdapter(httpClient, appCfg.UserAgent, sources.Papers),
		collector.NewTechFeedAdapter(extractor, appCfg.UserAgent, sources.TechFeed),
	}

	if appCfg.RedditClientID != "" && appCfg.RedditClientSecret != "" {
		redditAPI := collector.NewRedditClient(httpClient,
			appCfg.RedditClientID, appCfg.RedditClientSecret, appCfg.RedditUserAgent)
		adapters = append(adapters, collector.NewRedditAdapter(redditAPI, sources.Reddit))
	} else {
		log.Printf("Reddit credentials not set, reddit_explorer source disabled")
	}

	sourceKeys := make([]string, 0, len(adapters))
	for _, adapter := range adapters {
		sourceKeys = append(sourceKeys, adapter.Key())
	}
	log.Printf("Configured %d sources: %v", len(sourceKeys), sourceKeys)

	store := digest.NewStore(appCfg.DataDir)
	runner := collector.NewRunner(adapters, summaryGateway, store, appCfg.Location(), appCfg.SourceWorkers)

	runOnce := func() {
		runCtx, cancel := context.WithTimeout(ctx, time.Duration(appCfg.CollectTimeout)*time.Minute)
		defer cancel()
		runner.Run(runCtx)
	}

	if appCfg.CollectAndExit {
		log.Println("Running one collection pass...")
		runOnce()
		log.Println("Collection pass complete")
		return
	}

	// Schedule collection runs
	log.Printf("Scheduling collection runs: %q (%s)", appCfg.CollectCron, appCfg.Timezone)
	scheduler := cron.New(cron.WithLocation(appCfg.Location()))
	if _, err := scheduler.AddFunc(appCfg.CollectCron, runOnce); err != nil {
		log.Fatalf("Invalid collection schedule %q: %v", appCfg.CollectCron, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	if appCfg.CollectOnStart {
		go runOnce()
	}

	// Initialize HTTP server
	log.Println("Initializing HTTP server...")
	answerer := chat.NewAnswerer(extractor, chatGateway)
	apiHandler := api.NewHandler(store, answerer, sourceKeys, appCfg.Location())
	server := api.NewServer(apiHandler)

	// Create HTTP server with timeouts. Chat requests fetch external pages
	// and call the generative backend, so the write timeout is generous.
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start HTTP server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", appCfg.Port)
		log.Printf("Endpoints available:")
		log.Printf("  Digest list:  http://localhost:%s/digests", appCfg.Port)
		log.Printf("  Digest:       http://localhost:%s/digests/<source>?date=YYYY-MM-DD", appCfg.Port)
		log.Printf("  Chat:         http://localhost:%s/chat (POST)", appCfg.Port)
		log.Printf("  Health check: http://localhost:%s/health", appCfg.Port)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("Daily Brief started successfully!")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	// Graceful shutdown
	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped")
	}

	log.Println("Daily Brief shutdown complete")
}
