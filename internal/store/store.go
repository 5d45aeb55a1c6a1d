// Package store persists the link graph: resources and the directed edges
// between them. It is the single source of truth the crawl, ranking, and
// summary stages share.
package store

import (
	"context"

	"github.com/mlscout/mlscout/pkg/resource"
)

// GraphStore defines the link-graph persistence contract.
//
// UpsertResource and UpsertEdge are insert-if-absent: re-inserting an existing
// URL or (source, destination) pair is a silent no-op and never overwrites
// previously stored fields. Both must be safe under concurrent callers.
type GraphStore interface {
	UpsertResource(ctx context.Context, res *resource.Resource) error
	UpsertEdge(ctx context.Context, source, destination string) error

	// ListResources returns resources in insertion order. A non-empty tag
	// filter keeps resources whose tag string contains any requested tag as
	// a substring.
	ListResources(ctx context.Context, tagFilter []string) ([]*resource.Resource, error)
	ListEdges(ctx context.Context) ([]resource.Edge, error)

	// SetPopularity replaces the popularity score for an existing resource.
	// Unknown URLs are ignored.
	SetPopularity(ctx context.Context, url string, score float64) error
	// SetSummary stores the keyword summary for an existing resource. An
	// empty string marks the resource as processed.
	SetSummary(ctx context.Context, url, text string) error
	// ResourcesWithoutSummary returns resources the summary pass has not
	// processed yet.
	ResourcesWithoutSummary(ctx context.Context) ([]*resource.Resource, error)

	CountResources(ctx context.Context) (int, error)
	CountEdges(ctx context.Context) (int, error)

	Close() error
}
