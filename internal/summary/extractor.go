// Package summary derives compact keyword digests for resources that do not
// have one yet, from their title, description, and freshly fetched body text.
package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mlscout/mlscout/internal/fetch"
	"github.com/mlscout/mlscout/internal/search"
	"github.com/mlscout/mlscout/internal/store"
	"github.com/mlscout/mlscout/pkg/logging"
)

const (
	// vocabSize caps the per-document term vocabulary
	vocabSize = 30
	// summaryTerms is how many vocabulary terms make up a summary
	summaryTerms = 25
)

// Stats summarizes one extraction run
type Stats struct {
	Candidates  int           `json:"candidates"`
	Summarized  int           `json:"summarized"`
	Empty       int           `json:"empty"`
	FetchErrors int           `json:"fetch_errors"`
	Duration    time.Duration `json:"duration"`
}

// Extractor fills in missing resource summaries
type Extractor struct {
	store        store.GraphStore
	fetcher      fetch.Fetcher
	fetchTimeout time.Duration
}

// NewExtractor creates a summary extractor
func NewExtractor(graph store.GraphStore, fetcher fetch.Fetcher, fetchTimeout time.Duration) *Extractor {
	return &Extractor{
		store:        graph,
		fetcher:      fetcher,
		fetchTimeout: fetchTimeout,
	}
}

// Run processes every resource without a summary. Fetch failures fall back
// to title and description; a resource with no content at all gets an
// empty-string summary so it is not selected again.
func (e *Extractor) Run(ctx context.Context) (*Stats, error) {
	log := logging.GetJobLogger("summarize", uuid.NewString())
	start := time.Now()

	resources, err := e.store.ResourcesWithoutSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("load resources without summary: %w", err)
	}

	stats := &Stats{Candidates: len(resources)}
	if len(resources) == 0 {
		log.Info().Msg("All resources already have summaries")
		return stats, nil
	}
	log.Info().Int("candidates", len(resources)).Msg("Generating summaries")

	for _, res := range resources {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}

		body := e.fetchBody(ctx, res.URL, stats, log)
		content := res.Title + " " + res.Description + " " + body

		text := Summarize(content)
		if text == "" {
			stats.Empty++
		} else {
			stats.Summarized++
		}
		if err := e.store.SetSummary(ctx, res.URL, text); err != nil {
			stats.Duration = time.Since(start)
			return stats, fmt.Errorf("store summary for %s: %w", res.URL, err)
		}
	}

	stats.Duration = time.Since(start)
	log.Info().
		Int("summarized", stats.Summarized).
		Int("empty", stats.Empty).
		Int("fetch_errors", stats.FetchErrors).
		Dur("duration", stats.Duration).
		Msg("Summary generation finished")
	return stats, nil
}

func (e *Extractor) fetchBody(ctx context.Context, url string, stats *Stats, log zerolog.Logger) string {
	fetchCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	page, err := e.fetcher.Fetch(fetchCtx, url)
	if err != nil {
		stats.FetchErrors++
		log.Warn().Err(err).Str("url", url).Msg("Body fetch failed, summarizing stored fields only")
		return ""
	}
	return page.Body
}

// Summarize reduces content to a space-joined digest of its most frequent
// terms: the top 30 by frequency, in alphabetical order, truncated to 25
func Summarize(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	terms := search.TopTerms(content, vocabSize)
	if len(terms) > summaryTerms {
		terms = terms[:summaryTerms]
	}
	return strings.Join(terms, " ")
}
