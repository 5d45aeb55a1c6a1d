package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mlscout/mlscout/pkg/resource"
)

// Memory is an in-process GraphStore used by tests and ephemeral runs. It
// mirrors the Postgres semantics: insert-if-absent upserts, insertion-order
// listing, substring tag filtering.
type Memory struct {
	mu        sync.RWMutex
	resources map[string]*resource.Resource
	order     []string // resource URLs in insertion order
	edges     map[resource.Edge]struct{}
	edgeOrder []resource.Edge
}

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		resources: make(map[string]*resource.Resource),
		edges:     make(map[resource.Edge]struct{}),
	}
}

func (m *Memory) UpsertResource(_ context.Context, res *resource.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.resources[res.URL]; exists {
		return nil
	}
	stored := *res
	if stored.LastCrawled.IsZero() {
		stored.LastCrawled = time.Now()
	}
	m.resources[res.URL] = &stored
	m.order = append(m.order, res.URL)
	return nil
}

func (m *Memory) UpsertEdge(_ context.Context, source, destination string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	edge := resource.Edge{Source: source, Destination: destination}
	if _, exists := m.edges[edge]; exists {
		return nil
	}
	m.edges[edge] = struct{}{}
	m.edgeOrder = append(m.edgeOrder, edge)
	return nil
}

func (m *Memory) ListResources(_ context.Context, tagFilter []string) ([]*resource.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*resource.Resource
	for _, url := range m.order {
		res := m.resources[url]
		if len(tagFilter) > 0 && !matchesAnyTag(res.Tags, tagFilter) {
			continue
		}
		copied := *res
		out = append(out, &copied)
	}
	return out, nil
}

func (m *Memory) ListEdges(_ context.Context) ([]resource.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]resource.Edge, len(m.edgeOrder))
	copy(out, m.edgeOrder)
	return out, nil
}

func (m *Memory) SetPopularity(_ context.Context, url string, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if res, ok := m.resources[url]; ok {
		res.Popularity = score
	}
	return nil
}

func (m *Memory) SetSummary(_ context.Context, url, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if res, ok := m.resources[url]; ok {
		summary := text
		res.Summary = &summary
	}
	return nil
}

func (m *Memory) ResourcesWithoutSummary(_ context.Context) ([]*resource.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*resource.Resource
	for _, url := range m.order {
		res := m.resources[url]
		if res.Summary == nil {
			copied := *res
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *Memory) CountResources(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.resources), nil
}

func (m *Memory) CountEdges(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.edges), nil
}

func (m *Memory) Close() error {
	return nil
}

func matchesAnyTag(tags string, filter []string) bool {
	for _, tag := range filter {
		if strings.Contains(tags, tag) {
			return true
		}
	}
	return false
}
