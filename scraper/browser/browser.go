// Package browser owns the chromedp session shared by the site scrapers.
package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"cpi-scraper/config"
	"cpi-scraper/utils"
)

// dismissDialogsJS clicks the first visible cookie/consent button, if any.
var dismissDialogsJS = `
	(function() {
		var selectors = [
			'button#onetrust-accept-btn-handler',
			"button[id*='accept']",
			"button[class*='accept']",
			"[data-testid='cookie-consent-accept']",
			"button[aria-label*='Accept']",
			"button[aria-label*='Close']",
			"button[aria-label*='Dismiss']"
		];
		for (var i = 0; i < selectors.length; i++) {
			var btn = document.querySelector(selectors[i]);
			if (btn && btn.offsetParent !== null) {
				btn.click();
				return true;
			}
		}
		return false;
	})()
`

// Session owns one browser process; every page in a run goes through it.
type Session struct {
	cfg    *config.Config
	logger *utils.Logger

	allocCtx context.Context
	cancels  []context.CancelFunc
}

// NewSession launches the browser. A launch failure is fatal to the run;
// everything downstream needs the same browser.
func NewSession(cfg *config.Config, logger *utils.Logger) (*Session, error) {
	chromeBin := findChromeBinary(cfg)
	if chromeBin != "" {
		logger.Info("[browser] Using browser binary: %s", chromeBin)
	} else {
		logger.Warn("[browser] No browser binary found, relying on chromedp default lookup")
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	s := &Session{
		cfg:      cfg,
		logger:   logger,
		allocCtx: silentCtx,
		cancels:  []context.CancelFunc{cancelSilent, cancelAlloc},
	}

	// Start the browser eagerly so a missing binary fails the run up front
	// instead of on the first navigation.
	if err := chromedp.Run(silentCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	return s, nil
}

// Close tears down the browser process.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

// Page is one rendered result page. It satisfies services.Page.
type Page struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Open navigates a fresh tab to the URL, dismisses consent dialogs and waits
// for readyExpr to become true. Result pages render their content
// asynchronously, so a plain document-ready wait is not enough. A poll
// timeout is not fatal: the caller still gets to scan whatever did render.
func (s *Session) Open(parent context.Context, url, readyExpr string) (*Page, error) {
	tabCtx, cancelTab := chromedp.NewContext(s.allocCtx)
	ctx, cancelTimeout := context.WithTimeout(tabCtx, time.Duration(s.cfg.PageTimeoutSec)*time.Second)
	cancel := func() {
		cancelTimeout()
		cancelTab()
	}

	if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
		cancel()
		return nil, fmt.Errorf("navigate: %w", err)
	}

	var dismissed bool
	_ = chromedp.Run(ctx, chromedp.Evaluate(dismissDialogsJS, &dismissed))
	if dismissed {
		s.logger.Debug("[browser] Dismissed a consent dialog")
	}

	var ready bool
	err := chromedp.Run(ctx, chromedp.Poll(readyExpr, &ready,
		chromedp.WithPollingInterval(500*time.Millisecond),
		chromedp.WithPollingTimeout(20*time.Second)))
	if err != nil {
		if parent.Err() != nil {
			cancel()
			return nil, parent.Err()
		}
		s.logger.Debug("[browser] Page not ready within poll window: %v", err)
	}

	// Nudge lazy-loaded result lists.
	_ = chromedp.Run(ctx,
		chromedp.Evaluate(`window.scrollTo(0, 500)`, nil),
		chromedp.Sleep(2*time.Second),
	)

	return &Page{ctx: ctx, cancel: cancel}, nil
}

// Texts returns the text of up to max elements matching the selector. When an
// element's own text carries no digits, the parent element's text is taken
// instead; price labels and amounts often live in sibling nodes.
func (p *Page) Texts(selector string, max int) ([]string, error) {
	js := fmt.Sprintf(`
		(function() {
			var out = [];
			var els = document.querySelectorAll(%q);
			for (var i = 0; i < els.length && out.length < %d; i++) {
				var t = (els[i].innerText || '').trim();
				if (!/[0-9]/.test(t) && els[i].parentElement) {
					t = (els[i].parentElement.innerText || '').trim();
				}
				if (t) out.push(t);
			}
			return out;
		})()
	`, selector, max)

	texts := []string{}
	if err := chromedp.Run(p.ctx, chromedp.Evaluate(js, &texts)); err != nil {
		return nil, fmt.Errorf("collect texts for %q: %w", selector, err)
	}
	return texts, nil
}

// Markup returns the rendered document markup for fallback scans.
func (p *Page) Markup() (string, error) {
	var html string
	if err := chromedp.Run(p.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read page markup: %w", err)
	}
	return html, nil
}

// Close releases the tab.
func (p *Page) Close() {
	p.cancel()
}

// findChromeBinary locates the Chrome/Chromium binary, preferring the
// configured path.
func findChromeBinary(cfg *config.Config) string {
	if cfg.ChromeBin != "" {
		return cfg.ChromeBin
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
