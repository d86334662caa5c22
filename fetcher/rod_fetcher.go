package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hotel-rates-scraper/models"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// stableWindow is how long the DOM must stay unchanged before the page is read
const stableWindow = 500 * time.Millisecond

// RodFetcher implements the Fetcher interface using rod (headless browser).
// It is meant for room tables rendered client-side; the plain HTTP
// backends are cheaper when the markup is served directly.
type RodFetcher struct {
	browser *rod.Browser
	opts    Options
	logger  *slog.Logger
}

// NewRodFetcher launches a headless browser and connects to it
func NewRodFetcher(opts Options, logger *slog.Logger) (*RodFetcher, error) {
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Leakless(false). // Disable leakless to avoid antivirus issues
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-extensions").
		Set("disable-background-networking").
		Set("disable-sync").
		Set("disable-translate").
		Set("mute-audio")

	// Prefer an installed Chrome/Chromium over downloading one
	if path, ok := launcher.LookPath(); ok {
		l = l.Bin(path)
	}

	browserURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(browserURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &RodFetcher{
		browser: browser,
		opts:    opts,
		logger:  logger,
	}, nil
}

// Fetch implements the Fetcher interface
func (rf *RodFetcher) Fetch(ctx context.Context, target models.FetchTarget) models.FetchResult {
	return fetchWith(ctx, "browser", rf.opts, rf.logger, target, rf.get)
}

// get loads link in a fresh tab. The browser does not expose the document's
// status code here, so only navigation and load errors count as failures.
func (rf *RodFetcher) get(ctx context.Context, link string) (string, error) {
	page, err := rf.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", requestError(link, fmt.Errorf("failed to create page: %w", err))
	}
	defer func() {
		if err := page.Close(); err != nil {
			rf.logger.Warn("failed to close page", "url", link, "error", err)
		}
	}()

	p := page.Context(ctx).Timeout(rf.opts.Timeout)

	if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      rf.opts.UserAgent,
		AcceptLanguage: rf.opts.AcceptLanguage,
	}); err != nil {
		return "", requestError(link, fmt.Errorf("failed to set user agent: %w", err))
	}

	if err := p.Navigate(link); err != nil {
		return "", requestError(link, fmt.Errorf("failed to navigate: %w", err))
	}
	if err := p.WaitLoad(); err != nil {
		return "", requestError(link, fmt.Errorf("failed to load: %w", err))
	}

	// Room tables are filled in after load on some properties
	if err := p.WaitStable(stableWindow); err != nil {
		rf.logger.Warn("page did not stabilize within timeout, continuing anyway", "url", link, "error", err)
	}

	html, err := p.HTML()
	if err != nil {
		return "", requestError(link, fmt.Errorf("failed to get HTML: %w", err))
	}
	return html, nil
}

// Close closes the browser
func (rf *RodFetcher) Close() error {
	if rf.browser != nil {
		return rf.browser.Close()
	}
	return nil
}
