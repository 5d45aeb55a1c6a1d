// Package search ranks resources against free-text queries and user
// preference tags, blending lexical similarity, title matches, and authority.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mlscout/mlscout/internal/store"
	"github.com/mlscout/mlscout/pkg/logging"
	"github.com/mlscout/mlscout/pkg/resource"
)

// ErrEmptyQuery is returned when a search query is blank; it is a caller
// error, rejected before any scoring runs
var ErrEmptyQuery = errors.New("search query is empty")

const maxResults = 20

// Fused-score weights: title match dominates, then content similarity,
// then authority.
const (
	titleWeight   = 0.5
	contentWeight = 0.3
	popWeight     = 0.2
)

// Ranker answers search and recommendation queries over the resource set
type Ranker struct {
	store store.GraphStore
}

// NewRanker creates a ranker over the given store
func NewRanker(graph store.GraphStore) *Ranker {
	return &Ranker{store: graph}
}

// Search returns the top resources for a free-text query, optionally
// restricted to resources matching any of the given tags. The TF-IDF corpus
// is fit over exactly the tag-filtered set for this request, so content
// scores are relative to the filtered candidates.
func (r *Ranker) Search(ctx context.Context, query string, tags []string) ([]resource.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	log := logging.GetLogger("search")

	resources, err := r.store.ListResources(ctx, tags)
	if err != nil {
		return nil, fmt.Errorf("load resources: %w", err)
	}
	if len(resources) == 0 {
		return []resource.SearchResult{}, nil
	}

	titleScores := make([]float64, len(resources))
	texts := make([]string, len(resources))
	popScores := make([]float64, len(resources))
	for i, res := range resources {
		titleScores[i] = titleScore(query, res.Title)
		summary := ""
		if res.Summary != nil {
			summary = *res.Summary
		}
		texts[i] = res.Description + " " + summary
		popScores[i] = res.Popularity
	}

	vectorizer := FitVectorizer(texts)
	queryVec := vectorizer.Transform(query)
	contentScores := make([]float64, len(resources))
	for i, text := range texts {
		contentScores[i] = Dot(vectorizer.Transform(text), queryVec)
	}

	rescaleByMax(contentScores)
	rescaleByMax(popScores)

	results := make([]resource.SearchResult, len(resources))
	for i, res := range resources {
		results[i] = resource.SearchResult{
			URL:         res.URL,
			Title:       res.Title,
			Description: res.Description,
			Tags:        res.Tags,
			Score:       titleWeight*titleScores[i] + contentWeight*contentScores[i] + popWeight*popScores[i],
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	log.Debug().Str("query", query).Strs("tags", tags).Int("candidates", len(resources)).Int("results", len(results)).Msg("Search completed")
	return results, nil
}

// titleScore is 1.0 when the query appears verbatim in the title, otherwise
// the fraction of query words appearing as substrings of any title word
func titleScore(query, title string) float64 {
	queryLower := strings.ToLower(query)
	titleLower := strings.ToLower(title)

	if strings.Contains(titleLower, queryLower) {
		return 1.0
	}

	queryWords := strings.Fields(queryLower)
	titleWords := strings.Fields(titleLower)
	matches := 0
	for _, qw := range queryWords {
		for _, tw := range titleWords {
			if strings.Contains(tw, qw) {
				matches++
				break
			}
		}
	}

	denom := len(queryWords)
	if denom < 1 {
		denom = 1
	}
	return float64(matches) / float64(denom)
}

// rescaleByMax linearly rescales scores so the maximum becomes 1.0. A zero
// maximum leaves the scores untouched.
func rescaleByMax(scores []float64) {
	var max float64
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	if max <= 0 {
		return
	}
	for i := range scores {
		scores[i] /= max
	}
}
