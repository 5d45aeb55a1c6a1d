// Package crawl implements the crawl frontier: breadth-first traversal from
// seed targets, per-site URL classification, and emission of resource and
// edge facts into the link graph store.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/mlscout/mlscout/internal/fetch"
	"github.com/mlscout/mlscout/internal/store"
	"github.com/mlscout/mlscout/pkg/logging"
	"github.com/mlscout/mlscout/pkg/resource"
)

// Target is one seed configuration for a crawl run
type Target struct {
	StartURL   string
	MaxDepth   int
	MaxPages   int // 0 means unbounded
	Classifier Classifier
}

// Config configures frontier behavior
type Config struct {
	Workers      int           // concurrent targets
	FetchTimeout time.Duration // per-page fetch timeout
	RateLimit    rate.Limit    // page fetches per second across all workers
	RateBurst    int
	RunDeadline  time.Duration // overall run deadline, 0 disables
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Workers:      4,
		FetchTimeout: 30 * time.Second,
		RateLimit:    rate.Limit(1),
		RateBurst:    1,
	}
}

// Stats summarizes one crawl run
type Stats struct {
	RunID        string        `json:"run_id"`
	Targets      int           `json:"targets"`
	PagesCrawled int64         `json:"pages_crawled"`
	Resources    int64         `json:"resources"`
	Edges        int64         `json:"edges"`
	Skipped      int64         `json:"skipped"`
	FetchErrors  int64         `json:"fetch_errors"`
	Duration     time.Duration `json:"duration"`
}

type counters struct {
	pages       atomic.Int64
	resources   atomic.Int64
	edges       atomic.Int64
	skipped     atomic.Int64
	fetchErrors atomic.Int64
}

// Frontier drives breadth-first crawls over a set of seed targets
type Frontier struct {
	fetcher fetch.Fetcher
	store   store.GraphStore
	config  *Config
}

// NewFrontier creates a frontier over the given fetcher and store
func NewFrontier(fetcher fetch.Fetcher, graph store.GraphStore, config *Config) *Frontier {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Frontier{
		fetcher: fetcher,
		store:   graph,
		config:  config,
	}
}

type job struct {
	url   string
	depth int
}

// Run crawls every target and returns run counts. Targets are processed by a
// worker pool; the visited set is shared across all of them, so a URL
// reached by an earlier target is not re-crawled by a later one. Fetch
// failures are logged and skipped, never fatal.
func (f *Frontier) Run(ctx context.Context, targets []Target) (*Stats, error) {
	runID := uuid.NewString()
	log := logging.GetJobLogger("crawl", runID)

	if f.config.RunDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.config.RunDeadline)
		defer cancel()
	}

	start := time.Now()
	visited := NewVisitedSet()
	limiter := rate.NewLimiter(f.config.RateLimit, f.config.RateBurst)
	var tally counters

	log.Info().Int("targets", len(targets)).Int("workers", f.config.Workers).Msg("Crawl run starting")

	queue := make(chan Target)
	var wg sync.WaitGroup
	var once sync.Once
	var runErr error
	for i := 0; i < f.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for target := range queue {
				if err := f.crawlTarget(ctx, target, visited, limiter, &tally, log); err != nil {
					once.Do(func() { runErr = err })
				}
			}
		}()
	}

	for _, target := range targets {
		queue <- target
	}
	close(queue)
	wg.Wait()

	stats := &Stats{
		RunID:        runID,
		Targets:      len(targets),
		PagesCrawled: tally.pages.Load(),
		Resources:    tally.resources.Load(),
		Edges:        tally.edges.Load(),
		Skipped:      tally.skipped.Load(),
		FetchErrors:  tally.fetchErrors.Load(),
		Duration:     time.Since(start),
	}

	log.Info().
		Int64("pages", stats.PagesCrawled).
		Int64("resources", stats.Resources).
		Int64("edges", stats.Edges).
		Int64("fetch_errors", stats.FetchErrors).
		Dur("duration", stats.Duration).
		Msg("Crawl run finished")

	// Partial progress is already committed to the store; a truncated run is
	// reported alongside the counts rather than discarding them.
	if runErr != nil {
		return stats, runErr
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

// crawlTarget runs a FIFO breadth-first traversal for one seed. A non-nil
// error means the traversal was cut short by the run deadline or a
// cancellation, not that it failed.
func (f *Frontier) crawlTarget(ctx context.Context, target Target, visited *VisitedSet, limiter *rate.Limiter, tally *counters, log zerolog.Logger) error {
	queue := []job{{url: target.StartURL, depth: 1}}
	local := make(map[string]struct{})
	pages := 0

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		current := queue[0]
		queue = queue[1:]

		if current.depth > target.MaxDepth {
			tally.skipped.Add(1)
			continue
		}
		if target.MaxPages > 0 && pages >= target.MaxPages {
			log.Debug().Str("target", target.StartURL).Msg("Page budget exhausted")
			return nil
		}
		if _, ok := local[current.url]; ok || visited.Seen(current.url) {
			tally.skipped.Add(1)
			continue
		}
		if _, ok := target.Classifier.Classify(current.url); !ok {
			tally.skipped.Add(1)
			continue
		}
		// Claim the URL before fetching so no other worker races us to it.
		if !visited.Add(current.url) {
			tally.skipped.Add(1)
			continue
		}
		local[current.url] = struct{}{}
		pages++

		if err := limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			// Wait fails fast when the next reservation cannot complete
			// before the run deadline, before the context itself expires.
			return context.DeadlineExceeded
		}

		page, err := f.fetchPage(ctx, current.url)
		if err != nil {
			tally.fetchErrors.Add(1)
			log.Warn().Err(err).Str("url", current.url).Int("depth", current.depth).Msg("Fetch failed, skipping")
			continue
		}
		tally.pages.Add(1)
		log.Debug().Str("url", current.url).Int("depth", current.depth).Msg("Crawled")

		category, _ := target.Classifier.Classify(current.url)
		res := &resource.Resource{
			URL:         current.url,
			Title:       page.Title,
			Description: page.Description,
			Tags:        resource.JoinTags(tagsFor(category, page.Body)),
		}
		if err := f.store.UpsertResource(ctx, res); err != nil {
			log.Error().Err(err).Str("url", current.url).Msg("Failed to store resource")
		} else {
			tally.resources.Add(1)
		}

		for _, link := range page.Links {
			// Edges are recorded for every outbound link, whether or not
			// the destination is in scope.
			if err := f.store.UpsertEdge(ctx, current.url, link); err != nil {
				log.Error().Err(err).Str("source", current.url).Str("dest", link).Msg("Failed to store edge")
				continue
			}
			tally.edges.Add(1)

			if _, ok := target.Classifier.Classify(link); ok && !visited.Seen(link) {
				queue = append(queue, job{url: link, depth: current.depth + 1})
			}
		}
	}
	return nil
}

func (f *Frontier) fetchPage(ctx context.Context, url string) (*fetch.Page, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, f.config.FetchTimeout)
	defer cancel()

	page, err := f.fetcher.Fetch(fetchCtx, url)
	if err != nil {
		if !errors.Is(err, fetch.ErrFetch) {
			err = fmt.Errorf("%w: %v", fetch.ErrFetch, err)
		}
		return nil, err
	}
	return page, nil
}

// tagsFor combines the site classifier's category with body-keyword
// categories, deduplicated, classifier category first
func tagsFor(category resource.Category, body string) []resource.Category {
	tags := []resource.Category{}
	seen := map[resource.Category]struct{}{}
	if category != "" && category != resource.CategoryGeneral {
		tags = append(tags, category)
		seen[category] = struct{}{}
	}
	for _, c := range ContentCategories(body) {
		if _, ok := seen[c]; !ok {
			tags = append(tags, c)
			seen[c] = struct{}{}
		}
	}
	if len(tags) == 0 {
		tags = append(tags, resource.CategoryGeneral)
	}
	return tags
}
