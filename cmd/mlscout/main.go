package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/mlscout/mlscout/internal/config"
	"github.com/mlscout/mlscout/internal/crawl"
	"github.com/mlscout/mlscout/internal/engine"
	"github.com/mlscout/mlscout/internal/fetch"
	"github.com/mlscout/mlscout/internal/store"
	"github.com/mlscout/mlscout/pkg/logging"
)

func main() {
	var (
		mode       = flag.String("mode", "crawl", "Run mode: 'crawl', 'rank', 'summarize', 'search', or 'recommend'")
		query      = flag.String("query", "", "Search query (mode=search)")
		tags       = flag.String("tags", "", "Comma-separated tag filter (mode=search) or preference tags (mode=recommend)")
		damping    = flag.Float64("damping", 0.85, "PageRank damping factor (mode=rank)")
		iterations = flag.Int("iterations", 20, "PageRank iteration count (mode=rank)")
		seedURL    = flag.String("url", "", "Crawl a single seed URL instead of the default targets (mode=crawl)")
		seedDepth  = flag.Int("depth", 2, "Max crawl depth for -url (mode=crawl)")
		classifier = flag.String("classifier", "keyword", "Classifier name for -url (mode=crawl)")
	)
	flag.Parse()

	cfg := config.Load()

	if err := logging.SetupLogger(&logging.LogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Console: true,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	log := logging.GetLogger("main")

	graph, err := store.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer graph.Close()

	var fetcher fetch.Fetcher
	if cfg.HeadlessChrome {
		browser := fetch.NewBrowserFetcher(cfg.UserAgent)
		defer browser.Close()
		fetcher = browser
	} else {
		fetcher = fetch.NewHTTPFetcher(cfg.UserAgent, cfg.FetchTimeout)
	}

	eng := engine.New(graph, fetcher, &crawl.Config{
		Workers:      cfg.CrawlWorkers,
		FetchTimeout: cfg.FetchTimeout,
		RateLimit:    rate.Limit(cfg.CrawlRate),
		RateBurst:    1,
		RunDeadline:  cfg.CrawlDeadline,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "crawl":
		var stats *crawl.Stats
		if *seedURL != "" {
			stats, err = eng.RunCrawl(ctx, []engine.CrawlTarget{{
				StartURL:   *seedURL,
				MaxDepth:   *seedDepth,
				Classifier: *classifier,
			}})
		} else {
			stats, err = eng.RunDefaultCrawl(ctx)
		}
		switch {
		case err == nil:
		case errors.Is(err, context.DeadlineExceeded) && stats != nil:
			// Partial progress is already in the store; report it instead
			// of discarding the run.
			log.Warn().Err(err).Msg("Crawl run hit its deadline, keeping partial progress")
		default:
			log.Fatal().Err(err).Msg("Crawl run failed")
		}
		logStoreCounts(ctx, graph, log)
		printJSON(stats)
	case "rank":
		stats, err := eng.ComputeAuthority(ctx, *damping, *iterations)
		if err != nil {
			log.Fatal().Err(err).Msg("Authority computation failed")
		}
		printJSON(stats)
	case "summarize":
		stats, err := eng.ExtractSummaries(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Summary extraction failed")
		}
		logStoreCounts(ctx, graph, log)
		printJSON(stats)
	case "search":
		results, err := eng.Search(ctx, *query, splitTags(*tags))
		if err != nil {
			log.Fatal().Err(err).Msg("Search failed")
		}
		printJSON(results)
	case "recommend":
		results, err := eng.Recommend(ctx, splitTags(*tags))
		if err != nil {
			log.Fatal().Err(err).Msg("Recommendation failed")
		}
		printJSON(results)
	default:
		log.Fatal().Str("mode", *mode).Msg("Invalid mode, use 'crawl', 'rank', 'summarize', 'search', or 'recommend'")
	}
}

func logStoreCounts(ctx context.Context, graph store.GraphStore, log zerolog.Logger) {
	resources, err := graph.CountResources(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count resources")
		return
	}
	edges, err := graph.CountEdges(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count edges")
		return
	}
	log.Info().Int("resources", resources).Int("edges", edges).Msg("Store totals")
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to render output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
