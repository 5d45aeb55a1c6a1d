package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders pages in headless Chrome before extraction, so
// script-rendered content and links are visible. One browser process is
// shared across fetches; each fetch runs in its own tab.
type BrowserFetcher struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	settle      time.Duration // wait after navigation for scripts to render
}

// NewBrowserFetcher starts a headless Chrome allocator
func NewBrowserFetcher(userAgent string) *BrowserFetcher {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.UserAgent(userAgent),
		chromedp.WindowSize(1920, 1080),
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	return &BrowserFetcher{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		settle:      3 * time.Second,
	}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	tabCtx, cancel := chromedp.NewContext(f.allocCtx)
	defer cancel()

	// Honor the caller's deadline and cancellation in the tab context.
	if deadline, ok := ctx.Deadline(); ok {
		var dcancel context.CancelFunc
		tabCtx, dcancel = context.WithDeadline(tabCtx, deadline)
		defer dcancel()
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-tabCtx.Done():
		}
	}()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(f.settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, pageURL, err)
	}

	return parsePage(pageURL, strings.NewReader(html))
}

// Close shuts the browser down
func (f *BrowserFetcher) Close() {
	f.allocCancel()
}
