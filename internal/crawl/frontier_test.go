package crawl

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/mlscout/mlscout/internal/fetch"
	"github.com/mlscout/mlscout/internal/store"
	"github.com/mlscout/mlscout/pkg/resource"
)

// fakeFetcher serves pages from a fixed oracle
type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]*fetch.Page
	failing map[string]bool
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*fetch.Page, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()
	if f.failing[url] {
		return nil, fmt.Errorf("%w: %s: connection refused", fetch.ErrFetch, url)
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return &fetch.Page{URL: url}, nil
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Workers = 1
	cfg.RateLimit = 10000
	cfg.RateBurst = 10000
	return cfg
}

func seedGraph() *fakeFetcher {
	return &fakeFetcher{
		pages: map[string]*fetch.Page{
			"https://kaggle.com/datasets": {
				URL:   "https://kaggle.com/datasets",
				Title: "Datasets",
				Body:  "explore every public dataset",
				Links: []string{
					"https://kaggle.com/datasets/titanic",
					"https://kaggle.com/datasets/x/discussion/1", // rejected, edge only
					"https://example.org/external",               // rejected, edge only
				},
			},
			"https://kaggle.com/datasets/titanic": {
				URL:         "https://kaggle.com/datasets/titanic",
				Title:       "Titanic Dataset",
				Description: "Survival training data",
				Body:        "a benchmark dataset for beginners",
				Links:       []string{"https://kaggle.com/datasets/housing"},
			},
		},
		failing: map[string]bool{},
	}
}

func TestFrontierCrawlsBreadthFirst(t *testing.T) {
	fetcher := seedGraph()
	graph := store.NewMemory()
	frontier := NewFrontier(fetcher, graph, testConfig())

	stats, err := frontier.Run(context.Background(), []Target{
		{StartURL: "https://kaggle.com/datasets", MaxDepth: 2, Classifier: KaggleClassifier{}},
	})
	require.NoError(t, err)

	// Seed at depth 1, titanic at depth 2; housing would be depth 3 and
	// is never fetched.
	assert.Equal(t, []string{
		"https://kaggle.com/datasets",
		"https://kaggle.com/datasets/titanic",
	}, fetcher.fetched)
	assert.Equal(t, int64(2), stats.PagesCrawled)
	assert.Equal(t, int64(2), stats.Resources)

	resources, err := graph.ListResources(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, resources, 2)
	assert.Equal(t, "Titanic Dataset", resources[1].Title)
	assert.Contains(t, resources[1].Tags, "dataset")

	// Edges are recorded for every outbound link, including rejected
	// destinations.
	edges, err := graph.ListEdges(context.Background())
	require.NoError(t, err)
	assert.Len(t, edges, 4)
	assert.Contains(t, edges, resource.Edge{
		Source:      "https://kaggle.com/datasets",
		Destination: "https://example.org/external",
	})
}

func TestFrontierIdempotentAcrossRuns(t *testing.T) {
	graph := store.NewMemory()
	targets := []Target{
		{StartURL: "https://kaggle.com/datasets", MaxDepth: 2, Classifier: KaggleClassifier{}},
	}

	_, err := NewFrontier(seedGraph(), graph, testConfig()).Run(context.Background(), targets)
	require.NoError(t, err)
	resourcesBefore, _ := graph.CountResources(context.Background())
	edgesBefore, _ := graph.CountEdges(context.Background())

	// Second run with an identical fetch oracle adds nothing.
	_, err = NewFrontier(seedGraph(), graph, testConfig()).Run(context.Background(), targets)
	require.NoError(t, err)
	resourcesAfter, _ := graph.CountResources(context.Background())
	edgesAfter, _ := graph.CountEdges(context.Background())

	assert.Equal(t, resourcesBefore, resourcesAfter)
	assert.Equal(t, edgesBefore, edgesAfter)
}

func TestFrontierFetchFailureIsNotFatal(t *testing.T) {
	fetcher := seedGraph()
	fetcher.failing["https://kaggle.com/datasets/titanic"] = true
	graph := store.NewMemory()

	stats, err := NewFrontier(fetcher, graph, testConfig()).Run(context.Background(), []Target{
		{StartURL: "https://kaggle.com/datasets", MaxDepth: 2, Classifier: KaggleClassifier{}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.FetchErrors)
	assert.Equal(t, int64(1), stats.Resources)

	// The failed URL contributes no resource and no outbound edges.
	resources, _ := graph.ListResources(context.Background(), nil)
	require.Len(t, resources, 1)
	assert.Equal(t, "https://kaggle.com/datasets", resources[0].URL)
	edges, _ := graph.ListEdges(context.Background())
	assert.Len(t, edges, 3)
}

func TestFrontierRespectsPageBudget(t *testing.T) {
	fetcher := seedGraph()
	graph := store.NewMemory()

	stats, err := NewFrontier(fetcher, graph, testConfig()).Run(context.Background(), []Target{
		{StartURL: "https://kaggle.com/datasets", MaxDepth: 5, MaxPages: 1, Classifier: KaggleClassifier{}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.PagesCrawled)
	assert.Equal(t, []string{"https://kaggle.com/datasets"}, fetcher.fetched)
}

func TestFrontierSharesVisitedAcrossTargets(t *testing.T) {
	fetcher := seedGraph()
	graph := store.NewMemory()

	// Both targets start at the same seed; the second must not re-crawl it.
	stats, err := NewFrontier(fetcher, graph, testConfig()).Run(context.Background(), []Target{
		{StartURL: "https://kaggle.com/datasets", MaxDepth: 1, Classifier: KaggleClassifier{}},
		{StartURL: "https://kaggle.com/datasets", MaxDepth: 1, Classifier: KaggleClassifier{}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.PagesCrawled)
	assert.Equal(t, []string{"https://kaggle.com/datasets"}, fetcher.fetched)
}

func TestFrontierConcurrentWorkersFetchEachURLOnce(t *testing.T) {
	fetcher := seedGraph()
	graph := store.NewMemory()
	cfg := testConfig()
	cfg.Workers = 4

	// Four targets race over the same small graph; the shared visited set
	// must hand each URL to exactly one worker.
	stats, err := NewFrontier(fetcher, graph, cfg).Run(context.Background(), []Target{
		{StartURL: "https://kaggle.com/datasets", MaxDepth: 2, Classifier: KaggleClassifier{}},
		{StartURL: "https://kaggle.com/datasets", MaxDepth: 2, Classifier: KaggleClassifier{}},
		{StartURL: "https://kaggle.com/datasets/titanic", MaxDepth: 2, Classifier: KaggleClassifier{}},
		{StartURL: "https://kaggle.com/datasets/titanic", MaxDepth: 2, Classifier: KaggleClassifier{}},
	})
	require.NoError(t, err)

	counts := make(map[string]int)
	for _, url := range fetcher.fetched {
		counts[url]++
	}
	for url, n := range counts {
		assert.Equal(t, 1, n, "fetched more than once: %s", url)
	}
	assert.Equal(t, 1, counts["https://kaggle.com/datasets"])
	assert.Equal(t, 1, counts["https://kaggle.com/datasets/titanic"])
	assert.Equal(t, int64(len(fetcher.fetched)), stats.PagesCrawled)
}

func TestFrontierDeadlineKeepsPartialProgress(t *testing.T) {
	fetcher := seedGraph()
	graph := store.NewMemory()
	cfg := testConfig()
	cfg.RateLimit = rate.Limit(0.001)
	cfg.RateBurst = 1
	cfg.RunDeadline = time.Second

	// The burst token covers the seed fetch; the second fetch would have to
	// wait past the deadline, so the run is cut short after one page.
	stats, err := NewFrontier(fetcher, graph, cfg).Run(context.Background(), []Target{
		{StartURL: "https://kaggle.com/datasets", MaxDepth: 2, Classifier: KaggleClassifier{}},
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, stats)

	assert.Equal(t, int64(1), stats.PagesCrawled)
	assert.Equal(t, []string{"https://kaggle.com/datasets"}, fetcher.fetched)

	// Partial progress stays committed.
	resources, listErr := graph.ListResources(context.Background(), nil)
	require.NoError(t, listErr)
	require.Len(t, resources, 1)
	assert.Equal(t, "https://kaggle.com/datasets", resources[0].URL)
}

func TestFrontierRejectsWithoutFetching(t *testing.T) {
	fetcher := seedGraph()
	graph := store.NewMemory()

	_, err := NewFrontier(fetcher, graph, testConfig()).Run(context.Background(), []Target{
		{StartURL: "https://kaggle.com/datasets?page=1", MaxDepth: 2, Classifier: KaggleClassifier{}},
	})
	require.NoError(t, err)

	assert.Empty(t, fetcher.fetched)
	n, _ := graph.CountResources(context.Background())
	assert.Zero(t, n)
}
