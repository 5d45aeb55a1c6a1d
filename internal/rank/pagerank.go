// Package rank computes PageRank-style authority scores over the link graph
// and writes them back as resource popularity.
package rank

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mlscout/mlscout/internal/store"
	"github.com/mlscout/mlscout/pkg/logging"
	"github.com/mlscout/mlscout/pkg/resource"
)

const (
	// DefaultDamping is the classic PageRank damping factor
	DefaultDamping = 0.85
	// DefaultIterations is the fixed power-iteration count; there is no
	// convergence-threshold early exit
	DefaultIterations = 20
)

// Options configures an authority computation
type Options struct {
	Damping    float64
	Iterations int
}

// DefaultOptions returns the standard damping and iteration count
func DefaultOptions() Options {
	return Options{Damping: DefaultDamping, Iterations: DefaultIterations}
}

// Stats summarizes one authority run. An empty graph yields zero Pages and
// is a no-op, not an error.
type Stats struct {
	Pages      int           `json:"pages"`
	Edges      int           `json:"edges"`
	Persisted  int           `json:"persisted"`
	Iterations int           `json:"iterations"`
	Duration   time.Duration `json:"duration"`
}

// Compute runs synchronous power-iteration PageRank over the edge set and
// returns a rank per URL. Every distinct edge endpoint participates, whether
// or not it has a resource record. Ranks start at 1.0 and update from the
// prior-iteration snapshot. Rank flowing into a page from a neighbor with
// zero outbound edges is dropped rather than redistributed, matching the
// simplification this system has always used.
func Compute(edges []resource.Edge, opts Options) map[string]float64 {
	ranks := make(map[string]float64)
	for _, e := range edges {
		ranks[e.Source] = 1.0
		ranks[e.Destination] = 1.0
	}
	if len(ranks) == 0 {
		return ranks
	}

	inbound := make(map[string][]string, len(ranks))
	outdegree := make(map[string]int, len(ranks))
	for _, e := range edges {
		inbound[e.Destination] = append(inbound[e.Destination], e.Source)
		outdegree[e.Source]++
	}

	for i := 0; i < opts.Iterations; i++ {
		next := make(map[string]float64, len(ranks))
		for page := range ranks {
			var sum float64
			for _, in := range inbound[page] {
				if deg := outdegree[in]; deg > 0 {
					sum += ranks[in] / float64(deg)
				}
			}
			next[page] = (1 - opts.Damping) + opts.Damping*sum
		}
		ranks = next
	}

	return ranks
}

// Engine reads the edge set from the store and persists authority scores
type Engine struct {
	store store.GraphStore
}

// NewEngine creates an authority engine over the given store
func NewEngine(graph store.GraphStore) *Engine {
	return &Engine{store: graph}
}

// Run computes authority over the full graph and replaces popularity scores
// for every URL that exists as a resource. Ranks for edge-only endpoints are
// computed but not persisted.
func (e *Engine) Run(ctx context.Context, opts Options) (*Stats, error) {
	log := logging.GetJobLogger("rank", uuid.NewString())
	start := time.Now()

	edges, err := e.store.ListEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}

	stats := &Stats{Edges: len(edges), Iterations: opts.Iterations}
	if len(edges) == 0 {
		log.Info().Msg("Link graph is empty, nothing to rank")
		stats.Duration = time.Since(start)
		return stats, nil
	}

	log.Info().
		Int("edges", len(edges)).
		Float64("damping", opts.Damping).
		Int("iterations", opts.Iterations).
		Msg("Computing authority scores")

	ranks := Compute(edges, opts)
	stats.Pages = len(ranks)

	resources, err := e.store.ListResources(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load resources: %w", err)
	}

	for _, res := range resources {
		score, ok := ranks[res.URL]
		if !ok {
			continue
		}
		if err := e.store.SetPopularity(ctx, res.URL, score); err != nil {
			return stats, fmt.Errorf("persist rank for %s: %w", res.URL, err)
		}
		stats.Persisted++
	}

	stats.Duration = time.Since(start)
	log.Info().
		Int("pages", stats.Pages).
		Int("persisted", stats.Persisted).
		Dur("duration", stats.Duration).
		Msg("Authority scores updated")

	return stats, nil
}
