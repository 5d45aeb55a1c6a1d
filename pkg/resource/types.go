package resource

import (
	"strings"
	"time"
)

// Category is a fixed content-category label assigned to resources
type Category string

const (
	CategoryDataset       Category = "dataset"
	CategoryModel         Category = "model"
	CategoryArticle       Category = "article"
	CategoryPaper         Category = "research paper"
	CategoryDocumentation Category = "documentation"
	CategoryCode          Category = "code"
	CategoryGeneral       Category = "general"
	CategoryHome          Category = "home"
)

// Resource represents a crawled, classified web document tracked by URL
type Resource struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Summary     *string   `json:"summary,omitempty"` // nil until the summary pass has run
	Tags        string    `json:"tags"`              // comma-joined category labels
	Popularity  float64   `json:"popularity_score"`
	LastCrawled time.Time `json:"last_crawled"`
}

// TagList splits the stored tag string into trimmed labels
func (r *Resource) TagList() []string {
	if r.Tags == "" {
		return nil
	}
	parts := strings.Split(r.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// HasSummary reports whether the summary pass has processed this resource.
// An empty string counts as processed; only nil means pending.
func (r *Resource) HasSummary() bool {
	return r.Summary != nil
}

// JoinTags renders category labels in the stored comma-joined form
func JoinTags(tags []Category) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

// Edge is a directed link observed from one URL to another during crawling.
// The destination may never become a Resource itself.
type Edge struct {
	Source      string `json:"source_url"`
	Destination string `json:"destination_url"`
}

// SearchResult is one entry of a ranked search response
type SearchResult struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Tags        string  `json:"tags"`
	Score       float64 `json:"score"`
}

// Recommendation is one entry of a ranked recommendation response
type Recommendation struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Tags        string  `json:"tags"`
	Popularity  float64 `json:"popularity_score"`
	Score       float64 `json:"score"`
}
