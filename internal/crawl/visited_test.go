package crawl

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisitedSetAddIsIdempotent(t *testing.T) {
	v := NewVisitedSet()

	assert.False(t, v.Seen("https://kaggle.com/datasets"))
	assert.True(t, v.Add("https://kaggle.com/datasets"))
	assert.False(t, v.Add("https://kaggle.com/datasets"))
	assert.True(t, v.Seen("https://kaggle.com/datasets"))
	assert.Equal(t, 1, v.Len())
}

func TestVisitedSetConcurrentClaims(t *testing.T) {
	v := NewVisitedSet()
	const workers = 8
	const urls = 100

	// Every worker tries to claim every URL; each claim must succeed for
	// exactly one of them.
	var wins atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < urls; i++ {
				if v.Add(fmt.Sprintf("https://arxiv.org/abs/%d", i)) {
					wins.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(urls), wins.Load())
	assert.Equal(t, urls, v.Len())
}
