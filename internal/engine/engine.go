// Package engine is the boundary handed to the API layer: search,
// recommendations, and the three batch jobs over the shared link graph.
package engine

import (
	"context"
	"fmt"

	"github.com/mlscout/mlscout/internal/crawl"
	"github.com/mlscout/mlscout/internal/fetch"
	"github.com/mlscout/mlscout/internal/rank"
	"github.com/mlscout/mlscout/internal/search"
	"github.com/mlscout/mlscout/internal/store"
	"github.com/mlscout/mlscout/internal/summary"
	"github.com/mlscout/mlscout/pkg/resource"
)

// ErrEmptyQuery mirrors search.ErrEmptyQuery at the engine boundary
var ErrEmptyQuery = search.ErrEmptyQuery

// CrawlTarget is one seed in a crawl request, with the classifier referenced
// by registered name
type CrawlTarget struct {
	StartURL   string `json:"start_url"`
	MaxDepth   int    `json:"max_depth"`
	MaxPages   int    `json:"max_pages,omitempty"`
	Classifier string `json:"classifier"`
}

// Engine wires the pipeline stages over one store and fetcher
type Engine struct {
	store     store.GraphStore
	fetcher   fetch.Fetcher
	frontier  *crawl.Frontier
	authority *rank.Engine
	ranker    *search.Ranker
	extractor *summary.Extractor
}

// New creates an engine. A nil crawl config selects defaults.
func New(graph store.GraphStore, fetcher fetch.Fetcher, crawlConfig *crawl.Config) *Engine {
	if crawlConfig == nil {
		crawlConfig = crawl.DefaultConfig()
	}
	return &Engine{
		store:     graph,
		fetcher:   fetcher,
		frontier:  crawl.NewFrontier(fetcher, graph, crawlConfig),
		authority: rank.NewEngine(graph),
		ranker:    search.NewRanker(graph),
		extractor: summary.NewExtractor(graph, fetcher, crawlConfig.FetchTimeout),
	}
}

// Search returns the top resources for a free-text query, optionally
// filtered by tags. An empty query fails with ErrEmptyQuery.
func (e *Engine) Search(ctx context.Context, query string, tags []string) ([]resource.SearchResult, error) {
	return e.ranker.Search(ctx, query, tags)
}

// Recommend ranks resources against a user's stored preference tags
func (e *Engine) Recommend(ctx context.Context, preferenceTags []string) ([]resource.Recommendation, error) {
	return e.ranker.Recommend(ctx, preferenceTags)
}

// RunCrawl executes a crawl over the given seed targets and returns run
// counts
func (e *Engine) RunCrawl(ctx context.Context, targets []CrawlTarget) (*crawl.Stats, error) {
	resolved := make([]crawl.Target, len(targets))
	for i, t := range targets {
		classifier, err := crawl.ClassifierByName(t.Classifier)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", t.StartURL, err)
		}
		resolved[i] = crawl.Target{
			StartURL:   t.StartURL,
			MaxDepth:   t.MaxDepth,
			MaxPages:   t.MaxPages,
			Classifier: classifier,
		}
	}
	return e.frontier.Run(ctx, resolved)
}

// RunDefaultCrawl crawls the standard ML seed targets
func (e *Engine) RunDefaultCrawl(ctx context.Context) (*crawl.Stats, error) {
	return e.frontier.Run(ctx, crawl.DefaultTargets())
}

// ComputeAuthority recomputes popularity scores over the full link graph.
// An empty graph is a no-op reported through the returned stats.
func (e *Engine) ComputeAuthority(ctx context.Context, damping float64, iterations int) (*rank.Stats, error) {
	opts := rank.DefaultOptions()
	if damping > 0 {
		opts.Damping = damping
	}
	if iterations > 0 {
		opts.Iterations = iterations
	}
	return e.authority.Run(ctx, opts)
}

// ExtractSummaries fills in summaries for resources that lack one
func (e *Engine) ExtractSummaries(ctx context.Context) (*summary.Stats, error) {
	return e.extractor.Run(ctx)
}
