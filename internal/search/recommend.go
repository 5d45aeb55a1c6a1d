package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mlscout/mlscout/pkg/resource"
)

// Recommendation weights: tag overlap and raw popularity, evenly split.
// Popularity is deliberately not rescaled here, unlike search.
const (
	tagMatchWeight = 0.5
	rawPopWeight   = 0.5
	maxRecommended = 20
)

// blockedURLParts filters boilerplate and legal pages out of
// recommendations
var blockedURLParts = []string{"privacy", "copyright", "terms", "policy"}

// NormalizePreferences lower-cases, trims, and singularizes preference tags
// so they compare equal to stored category labels
func NormalizePreferences(prefs []string) []string {
	var out []string
	for _, p := range prefs {
		p = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(p)), "s")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Recommend ranks resources by overlap with the user's preference tags,
// blended with raw popularity. An empty preference set yields an empty
// list.
func (r *Ranker) Recommend(ctx context.Context, preferences []string) ([]resource.Recommendation, error) {
	prefs := NormalizePreferences(preferences)
	if len(prefs) == 0 {
		return []resource.Recommendation{}, nil
	}
	prefSet := make(map[string]struct{}, len(prefs))
	for _, p := range prefs {
		prefSet[p] = struct{}{}
	}

	resources, err := r.store.ListResources(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load resources: %w", err)
	}

	var results []resource.Recommendation
	for _, res := range resources {
		if isBlockedURL(res.URL) {
			continue
		}

		matches := 0
		for _, tag := range res.TagList() {
			if _, ok := prefSet[tag]; ok {
				matches++
			}
		}

		results = append(results, resource.Recommendation{
			URL:         res.URL,
			Title:       res.Title,
			Description: res.Description,
			Tags:        res.Tags,
			Popularity:  res.Popularity,
			Score:       tagMatchWeight*float64(matches) + rawPopWeight*res.Popularity,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxRecommended {
		results = results[:maxRecommended]
	}
	if results == nil {
		results = []resource.Recommendation{}
	}
	return results, nil
}

func isBlockedURL(url string) bool {
	lower := strings.ToLower(url)
	for _, part := range blockedURLParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}
