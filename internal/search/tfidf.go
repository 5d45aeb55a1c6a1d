package search

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Vectorizer is a TF-IDF model fit over a document corpus. Tokens are runs
// of two or more word characters, lower-cased, with english stop words
// removed. IDF is smoothed (as if one extra document contained every term)
// and document vectors are L2-normalized, so a dot product between two
// transformed vectors is their cosine similarity.
type Vectorizer struct {
	vocab map[string]int // term -> column index
	terms []string       // column index -> term, alphabetical
	idf   []float64
}

// tokenize splits text into lower-cased word tokens of length >= 2,
// dropping stop words
func tokenize(text string) []string {
	var tokens []string
	var current strings.Builder
	flush := func() {
		if current.Len() >= 2 {
			tok := current.String()
			if _, stop := englishStopWords[tok]; !stop {
				tokens = append(tokens, tok)
			}
		}
		current.Reset()
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// FitVectorizer builds a vocabulary and IDF weights from the corpus
func FitVectorizer(docs []string) *Vectorizer {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(doc) {
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				df[tok]++
			}
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v := &Vectorizer{
		vocab: make(map[string]int, len(terms)),
		terms: terms,
		idf:   make([]float64, len(terms)),
	}
	n := float64(len(docs))
	for i, term := range terms {
		v.vocab[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return v
}

// Transform converts text into an L2-normalized TF-IDF vector over the
// fitted vocabulary. Terms outside the vocabulary are ignored.
func (v *Vectorizer) Transform(text string) []float64 {
	vec := make([]float64, len(v.terms))
	for _, tok := range tokenize(text) {
		if i, ok := v.vocab[tok]; ok {
			vec[i]++
		}
	}

	var norm float64
	for i := range vec {
		vec[i] *= v.idf[i]
		norm += vec[i] * vec[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// Terms returns the fitted vocabulary in column (alphabetical) order
func (v *Vectorizer) Terms() []string {
	return v.terms
}

// Dot returns the inner product of two equal-length vectors
func Dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// TopTerms returns the max most frequent non-stop-word terms of a single
// text, ordered alphabetically (vectorizer index order). Frequency ties
// break alphabetically during selection.
func TopTerms(text string, max int) []string {
	freq := make(map[string]int)
	for _, tok := range tokenize(text) {
		freq[tok]++
	}

	terms := make([]string, 0, len(freq))
	for term := range freq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > max {
		terms = terms[:max]
	}
	sort.Strings(terms)
	return terms
}
