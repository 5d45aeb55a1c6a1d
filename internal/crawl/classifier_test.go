package crawl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlscout/mlscout/pkg/resource"
)

func TestArxivClassifier(t *testing.T) {
	c := ArxivClassifier{}

	cat, ok := c.Classify("https://arxiv.org/abs/1234.5678")
	require.True(t, ok)
	assert.Equal(t, resource.CategoryPaper, cat)

	_, ok = c.Classify("https://arxiv.org/list/cs.LG/recent")
	assert.False(t, ok)
}

func TestKaggleClassifier(t *testing.T) {
	c := KaggleClassifier{}

	cat, ok := c.Classify("https://kaggle.com/datasets/x")
	require.True(t, ok)
	assert.Equal(t, resource.CategoryDataset, cat)

	cat, ok = c.Classify("https://www.kaggle.com/models/bert")
	require.True(t, ok)
	assert.Equal(t, resource.CategoryModel, cat)

	cat, ok = c.Classify("https://www.kaggle.com/learn/intro-to-ml")
	require.True(t, ok)
	assert.Equal(t, resource.CategoryArticle, cat)

	cat, ok = c.Classify("https://www.kaggle.com/")
	require.True(t, ok)
	assert.Equal(t, resource.CategoryHome, cat)

	// Query and fragment markers are always rejected
	_, ok = c.Classify("https://kaggle.com/datasets/x?page=2")
	assert.False(t, ok)
	_, ok = c.Classify("https://kaggle.com/datasets/x#section")
	assert.False(t, ok)

	_, ok = c.Classify("https://www.kaggle.com/datasets/x/discussion/99")
	assert.False(t, ok)
	_, ok = c.Classify("https://www.kaggle.com/competitions")
	assert.False(t, ok)
	_, ok = c.Classify("https://example.com/datasets")
	assert.False(t, ok)
}

func TestMediumClassifier(t *testing.T) {
	c := MediumClassifier{}

	cat, ok := c.Classify("https://medium.com/@author/why-transformers-win-1a2b3c")
	require.True(t, ok)
	assert.Equal(t, resource.CategoryArticle, cat)

	_, ok = c.Classify("https://medium.com/tag/machine-learning")
	assert.False(t, ok)
	_, ok = c.Classify("https://medium.com/membership")
	assert.False(t, ok)
}

func TestKeywordClassifier(t *testing.T) {
	c := KeywordClassifier{}

	cat, ok := c.Classify("https://example.com/blog/post")
	require.True(t, ok)
	assert.Equal(t, resource.CategoryGeneral, cat)

	_, ok = c.Classify("ftp://example.com/file")
	assert.False(t, ok)
	_, ok = c.Classify("https://example.com/post?utm=1")
	assert.False(t, ok)

	assert.Equal(t, resource.CategoryDataset, c.ClassifyContent("a benchmark for image tasks"))
	assert.Equal(t, resource.CategoryModel, c.ClassifyContent("we trained a neural network"))
	assert.Equal(t, resource.CategoryGeneral, c.ClassifyContent("nothing relevant here"))
}

func TestContentCategoriesTableOrder(t *testing.T) {
	// "dataset" precedes "model" in the table, regardless of position in
	// the text
	cats := ContentCategories("this model was evaluated on a public dataset")
	require.Len(t, cats, 2)
	assert.Equal(t, resource.CategoryDataset, cats[0])
	assert.Equal(t, resource.CategoryModel, cats[1])

	// Whole-word matching: "modeling" does not match "model"
	assert.Empty(t, ContentCategories("remodeling your kitchen"))
}

func TestClassifierByName(t *testing.T) {
	for _, name := range []string{
		"kaggle", "geeksforgeeks", "medium", "towardsdatascience",
		"arxiv", "ieee", "paperswithcode", "machinelearningmastery", "keyword",
	} {
		c, err := ClassifierByName(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}

	_, err := ClassifierByName("nope")
	assert.Error(t, err)
}
