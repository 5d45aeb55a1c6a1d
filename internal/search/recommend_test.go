package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlscout/mlscout/internal/store"
	"github.com/mlscout/mlscout/pkg/resource"
)

func TestRecommendTagOverlapBeatsPopularity(t *testing.T) {
	graph := store.NewMemory()
	seedResources(t, graph,
		&resource.Resource{URL: "https://a.com", Title: "a", Tags: "dataset, model", Popularity: 0.8},
		&resource.Resource{URL: "https://b.com", Title: "b", Tags: "model", Popularity: 0.9},
	)

	results, err := NewRanker(graph).Recommend(context.Background(), []string{"dataset"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// 0.5*1 + 0.5*0.8 = 0.90 versus 0.5*0 + 0.5*0.9 = 0.45
	assert.Equal(t, "https://a.com", results[0].URL)
	assert.InDelta(t, 0.90, results[0].Score, 1e-9)
	assert.Equal(t, "https://b.com", results[1].URL)
	assert.InDelta(t, 0.45, results[1].Score, 1e-9)
}

func TestRecommendEmptyPreferences(t *testing.T) {
	graph := store.NewMemory()
	seedResources(t, graph,
		&resource.Resource{URL: "https://a.com", Title: "a", Tags: "dataset"},
	)

	results, err := NewRanker(graph).Recommend(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = NewRanker(graph).Recommend(context.Background(), []string{"  "})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRecommendExcludesBoilerplatePages(t *testing.T) {
	graph := store.NewMemory()
	seedResources(t, graph,
		&resource.Resource{URL: "https://a.com/privacy", Title: "privacy", Tags: "dataset", Popularity: 99},
		&resource.Resource{URL: "https://a.com/terms-of-service", Title: "tos", Tags: "dataset", Popularity: 99},
		&resource.Resource{URL: "https://a.com/cookie-policy", Title: "cookies", Tags: "dataset", Popularity: 99},
		&resource.Resource{URL: "https://a.com/datasets", Title: "data", Tags: "dataset", Popularity: 0.5},
	)

	results, err := NewRanker(graph).Recommend(context.Background(), []string{"dataset"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://a.com/datasets", results[0].URL)
}

func TestNormalizePreferences(t *testing.T) {
	assert.Equal(t, []string{"dataset", "model", "article"},
		NormalizePreferences([]string{" Datasets ", "MODELS", "article"}))
	assert.Nil(t, NormalizePreferences([]string{"", "  "}))
}

func TestRecommendNormalizesPluralPreferences(t *testing.T) {
	graph := store.NewMemory()
	seedResources(t, graph,
		&resource.Resource{URL: "https://a.com", Title: "a", Tags: "dataset", Popularity: 0.2},
	)

	results, err := NewRanker(graph).Recommend(context.Background(), []string{"Datasets"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.6, results[0].Score, 1e-9)
}
