// Package browser provides a reusable headless-browser session for locator
// pages that only render their consultant lists client-side.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"

	"repscout/pkg/logger"
)

// Options configures a browser session.
type Options struct {
	Headless  bool
	UserAgent string
	// PageTimeout bounds a single page load, not the session.
	PageTimeout time.Duration
}

// DefaultOptions returns headless defaults suitable for batch scraping.
func DefaultOptions() Options {
	return Options{
		Headless:    true,
		PageTimeout: 30 * time.Second,
	}
}

// Session is a single browser process reused across page fetches within a
// run. Callers must Close it on all exit paths.
type Session struct {
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	opts          Options
	logger        logger.Logger
}

// NewSession launches the browser. The session stays open until Close so
// startup cost is paid once per run.
func NewSession(ctx context.Context, opts Options, log logger.Logger) (*Session, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = 30 * time.Second
	}

	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(1280, 900),
	)
	if opts.UserAgent != "" {
		execOpts = append(execOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, execOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser process eagerly so launch failures surface here
	// rather than on the first page fetch.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	log.Debug("browser session started")

	return &Session{
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		opts:          opts,
		logger:        log,
	}, nil
}

// HTML navigates a fresh tab to url, waits for waitSelector to become
// visible (or just for the load event when empty), and returns the rendered
// document.
func (s *Session) HTML(ctx context.Context, url, waitSelector string) (string, error) {
	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	defer tabCancel()

	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, s.opts.PageTimeout)
	defer timeoutCancel()

	// Respect caller cancellation alongside the tab's own lifetime.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	actions := []chromedp.Action{chromedp.Navigate(url)}
	if waitSelector != "" {
		actions = append(actions, chromedp.WaitVisible(waitSelector, chromedp.ByQuery))
	} else {
		actions = append(actions, chromedp.WaitReady("body", chromedp.ByQuery))
	}

	var html string
	actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
		node, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		html, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
		return err
	}))

	start := time.Now()
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		s.logger.WarnWithFields("browser page fetch failed", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return "", fmt.Errorf("failed to render %s: %w", url, err)
	}

	s.logger.DebugWithFields("browser page rendered", map[string]interface{}{
		"url":      url,
		"duration": time.Since(start),
		"bytes":    len(html),
	})

	return html, nil
}

// Text returns the visible text of the first node matching selector on url.
func (s *Session) Text(ctx context.Context, url, selector string) (string, error) {
	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	defer tabCancel()

	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, s.opts.PageTimeout)
	defer timeoutCancel()

	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	var text string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Text(selector, &text, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("failed to read %s on %s: %w", selector, url, err)
	}

	return text, nil
}

// Close tears down the tab tree and the browser process. Safe to call more
// than once.
func (s *Session) Close() {
	s.browserCancel()
	s.allocCancel()
	s.logger.Debug("browser session closed")
}
