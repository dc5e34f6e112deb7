package earningshub

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"

	"watchlist/logger"
)

// RenderedFetcher returns the serialized DOM of a page after its scripts ran.
type RenderedFetcher interface {
	FetchRenderedDocument(ctx context.Context, url string, wait time.Duration) (string, error)
}

type runFunc func(ctx context.Context, actions ...chromedp.Action) error

// Browser renders pages in a headless Chromium driven over the DevTools protocol.
type Browser struct {
	ExecPath          string
	NavigationTimeout time.Duration
	UserAgent         string
	// NoSandbox is required when Chromium runs as root.
	NoSandbox bool

	run runFunc
}

func (b *Browser) runner() runFunc {
	if b.run != nil {
		return b.run
	}
	return chromedp.Run
}

func (b *Browser) FetchRenderedDocument(ctx context.Context, url string, wait time.Duration) (string, error) {
	log := logger.GetLogger().WithComponent(source).WithFields(logger.Fields{"url": url})

	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Headless)
	if b.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.ExecPath))
	}
	if b.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.UserAgent))
	}
	if b.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	run := b.runner()

	// The first Run launches Chromium bound to its context, so it gets the
	// browser context and never the navigation deadline.
	start := time.Now()
	if err := run(browserCtx); err != nil {
		return "", fmt.Errorf("start browser: %w", err)
	}
	logger.LogPerformanceEntry(log, source, "start_browser", time.Since(start), nil)

	start = time.Now()
	navCtx, cancelNav := context.WithTimeout(browserCtx, b.NavigationTimeout)
	err := run(navCtx, chromedp.Navigate(url))
	cancelNav()
	if err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}
	logger.LogPerformanceEntry(log, source, "navigate", time.Since(start), nil)

	var html string
	if err := run(browserCtx,
		chromedp.Sleep(wait),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("read rendered document: %w", err)
	}
	log.WithFields(logger.Fields{"bytes": len(html)}).Debug("rendered document captured")
	return html, nil
}

func runningAsRoot() bool { return os.Geteuid() == 0 }
