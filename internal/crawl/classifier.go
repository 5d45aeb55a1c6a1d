package crawl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mlscout/mlscout/pkg/resource"
)

// Classifier decides from the URL string alone whether a page is in scope for
// its site, and which category it implies. Rejection means the URL is neither
// fetched nor enqueued. One implementation exists per source site, plus the
// generic keyword fallback.
type Classifier interface {
	Name() string
	Classify(rawURL string) (resource.Category, bool)
}

// categoryKeywords maps categories to body-text keywords, in priority order.
// Matching is whole-word against lower-cased content.
var categoryKeywords = []struct {
	category resource.Category
	keywords []string
}{
	{resource.CategoryDataset, []string{"dataset", "data collection", "data source", "training data", "benchmark"}},
	{resource.CategoryModel, []string{"model", "algorithm", "neural network", "training", "inference", "architecture"}},
	{resource.CategoryArticle, []string{"article", "guide", "tutorial", "how-to", "introduction", "overview"}},
	{resource.CategoryPaper, []string{"research paper", "study", "journal", "publication", "arxiv", "conference", "proceedings", "ieee"}},
	{resource.CategoryDocumentation, []string{"documentation", "api", "reference", "docs"}},
	{resource.CategoryCode, []string{"code", "implementation", "github", "repository", "example"}},
}

var keywordPatterns = compileKeywordPatterns()

func compileKeywordPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			patterns[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		}
	}
	return patterns
}

// ContentCategories returns every category whose keyword table matches the
// body text, in table order
func ContentCategories(content string) []resource.Category {
	lower := strings.ToLower(content)
	var matched []resource.Category
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if keywordPatterns[kw].MatchString(lower) {
				matched = append(matched, entry.category)
				break
			}
		}
	}
	return matched
}

// KaggleClassifier accepts Kaggle dataset, model, and learn pages
type KaggleClassifier struct{}

func (KaggleClassifier) Name() string { return "kaggle" }

func (KaggleClassifier) Classify(rawURL string) (resource.Category, bool) {
	if strings.ContainsAny(rawURL, "#?%") {
		return "", false
	}
	for _, suffix := range []string{"/discussions", "/code", "/suggestions", "/competitions"} {
		if strings.HasSuffix(rawURL, suffix) {
			return "", false
		}
	}
	if strings.Contains(rawURL, "/discussion") {
		return "", false
	}
	switch {
	case strings.Contains(rawURL, "kaggle.com/datasets"):
		return resource.CategoryDataset, true
	case strings.Contains(rawURL, "kaggle.com/models"):
		return resource.CategoryModel, true
	case strings.Contains(rawURL, "kaggle.com/learn"):
		return resource.CategoryArticle, true
	case strings.Contains(rawURL, "kaggle.com"):
		return resource.CategoryHome, true
	}
	return "", false
}

// GeeksforGeeksClassifier accepts GeeksforGeeks content pages
type GeeksforGeeksClassifier struct{}

func (GeeksforGeeksClassifier) Name() string { return "geeksforgeeks" }

func (GeeksforGeeksClassifier) Classify(rawURL string) (resource.Category, bool) {
	if strings.ContainsAny(rawURL, "?#") {
		return "", false
	}
	if !strings.Contains(rawURL, "geeksforgeeks.org") {
		return "", false
	}
	for _, part := range []string{"/jobs/", "/courses/", "/newsletter", "/write/"} {
		if strings.Contains(rawURL, part) {
			return "", false
		}
	}
	return resource.CategoryArticle, true
}

// MediumClassifier accepts Medium user and publication articles
type MediumClassifier struct{}

func (MediumClassifier) Name() string { return "medium" }

func (MediumClassifier) Classify(rawURL string) (resource.Category, bool) {
	if !strings.Contains(rawURL, "medium.com") {
		return "", false
	}
	for _, part := range []string{"?", "#", "/tag/", "/topics/", "/plans", "/membership", "/about"} {
		if strings.Contains(rawURL, part) {
			return "", false
		}
	}
	if strings.Count(rawURL, "/") >= 3 {
		return resource.CategoryArticle, true
	}
	return "", false
}

// TowardsDataScienceClassifier accepts Towards Data Science articles
type TowardsDataScienceClassifier struct{}

func (TowardsDataScienceClassifier) Name() string { return "towardsdatascience" }

func (TowardsDataScienceClassifier) Classify(rawURL string) (resource.Category, bool) {
	if !strings.Contains(rawURL, "towardsdatascience.com") {
		return "", false
	}
	for _, part := range []string{"?", "#", "/tagged/", "/plans"} {
		if strings.Contains(rawURL, part) {
			return "", false
		}
	}
	if strings.Count(rawURL, "/") >= 3 {
		return resource.CategoryArticle, true
	}
	return "", false
}

// ArxivClassifier accepts ArXiv abstract pages
type ArxivClassifier struct{}

func (ArxivClassifier) Name() string { return "arxiv" }

func (ArxivClassifier) Classify(rawURL string) (resource.Category, bool) {
	if strings.Contains(rawURL, "arxiv.org/abs/") {
		return resource.CategoryPaper, true
	}
	return "", false
}

// IEEEClassifier accepts IEEE Xplore document pages
type IEEEClassifier struct{}

func (IEEEClassifier) Name() string { return "ieee" }

func (IEEEClassifier) Classify(rawURL string) (resource.Category, bool) {
	if strings.Contains(rawURL, "ieeexplore.ieee.org/document/") {
		return resource.CategoryPaper, true
	}
	return "", false
}

// PapersWithCodeClassifier accepts Papers with Code paper, dataset, and
// method pages
type PapersWithCodeClassifier struct{}

func (PapersWithCodeClassifier) Name() string { return "paperswithcode" }

func (PapersWithCodeClassifier) Classify(rawURL string) (resource.Category, bool) {
	if !strings.Contains(rawURL, "paperswithcode.com") {
		return "", false
	}
	if strings.ContainsAny(rawURL, "?#") {
		return "", false
	}
	for _, part := range []string{"/paper/", "/dataset/", "/method/"} {
		if strings.Contains(rawURL, part) {
			return resource.CategoryPaper, true
		}
	}
	return "", false
}

// MLMasteryClassifier accepts Machine Learning Mastery blog posts
type MLMasteryClassifier struct{}

func (MLMasteryClassifier) Name() string { return "machinelearningmastery" }

func (MLMasteryClassifier) Classify(rawURL string) (resource.Category, bool) {
	if !strings.Contains(rawURL, "machinelearningmastery.com") {
		return "", false
	}
	for _, part := range []string{"?", "#", "/blog/", "/start-here/", "/about/"} {
		if strings.Contains(rawURL, part) {
			return "", false
		}
	}
	if strings.Count(rawURL, "/") >= 3 {
		return resource.CategoryArticle, true
	}
	return "", false
}

// KeywordClassifier is the generic fallback for sites without dedicated
// rules. Any clean http(s) URL is in scope; the category is refined later
// from fetched body text via the keyword table.
type KeywordClassifier struct{}

func (KeywordClassifier) Name() string { return "keyword" }

func (KeywordClassifier) Classify(rawURL string) (resource.Category, bool) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return "", false
	}
	if strings.ContainsAny(rawURL, "?#") {
		return "", false
	}
	return resource.CategoryGeneral, true
}

// ClassifyContent returns the first category whose keywords match the body
// text, or "general" when none do
func (KeywordClassifier) ClassifyContent(content string) resource.Category {
	if matched := ContentCategories(content); len(matched) > 0 {
		return matched[0]
	}
	return resource.CategoryGeneral
}

var classifiers = map[string]Classifier{}

func init() {
	for _, c := range []Classifier{
		KaggleClassifier{},
		GeeksforGeeksClassifier{},
		MediumClassifier{},
		TowardsDataScienceClassifier{},
		ArxivClassifier{},
		IEEEClassifier{},
		PapersWithCodeClassifier{},
		MLMasteryClassifier{},
		KeywordClassifier{},
	} {
		classifiers[c.Name()] = c
	}
}

// ClassifierByName resolves a classifier from its registered name
func ClassifierByName(name string) (Classifier, error) {
	if c, ok := classifiers[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unknown classifier %q", name)
}
