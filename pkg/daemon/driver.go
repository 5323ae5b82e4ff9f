// Package daemon implements the br request router, selector resolver,
// tree builder, instance state, and supervisor -- the stateful broker that
// owns a browser session and serves the CLI's HTTP requests against it.
package daemon

import (
	"fmt"
	"io"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/br/pkg/instance"
)

const defaultTimeoutMs = 30000.0

// Driver wraps a single persistent Chromium context reached over the
// Playwright remote-debugging channel. It exists to hide the vendor API
// from the rest of the daemon: everything above this file talks to
// playwright.Page only through the methods declared here.
type Driver struct {
	pw      *playwright.Playwright
	browser playwright.BrowserContext
}

// Launch installs (if needed) and starts Playwright, then launches a
// persistent Chromium context rooted at userDataDir.
func Launch(opts instance.Options, userDataDir string) (*Driver, error) {
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(opts.Headless),
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
	}

	ctx, err := pw.Chromium.LaunchPersistentContext(userDataDir, launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch persistent context: %w", err)
	}

	return &Driver{pw: pw, browser: ctx}, nil
}

// NewPage opens a new page (tab) in the persistent context.
func (d *Driver) NewPage() (playwright.Page, error) {
	return d.browser.NewPage()
}

// Pages returns all open pages in insertion order.
func (d *Driver) Pages() []playwright.Page {
	return d.browser.Pages()
}

// OnPage registers a callback invoked whenever a new page is created in
// this context, used by the Supervisor to attach console listeners.
func (d *Driver) OnPage(fn func(playwright.Page)) {
	d.browser.OnPage(fn)
}

// OnClose registers a callback invoked when the persistent context closes,
// whether through Close or because the underlying browser process died.
func (d *Driver) OnClose(fn func()) {
	d.browser.OnClose(func(playwright.BrowserContext) { fn() })
}

// Close tears down the browser context and stops Playwright. The
// user-data directory is deliberately left on disk; per the spec the
// profile may be useful for debugging.
func (d *Driver) Close() error {
	var err error
	if cerr := d.browser.Close(); cerr != nil {
		err = cerr
	}
	if serr := d.pw.Stop(); serr != nil && err == nil {
		err = serr
	}
	return err
}

// Goto navigates page to url, waiting for domcontentloaded by default.
func Goto(page playwright.Page, url string, timeoutMs float64) error {
	if timeoutMs <= 0 {
		timeoutMs = defaultTimeoutMs
	}
	_, err := page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(timeoutMs),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return err
}

// Evaluate runs script in page and returns its JSON-compatible result.
func Evaluate(page playwright.Page, script string, args ...interface{}) (interface{}, error) {
	return page.Evaluate(script, args...)
}

// ScreenshotOptions configures a capture.
type ScreenshotOptions struct {
	FullPage bool
	Path     string
}

// Screenshot captures page to a PNG file at opts.Path.
func Screenshot(page playwright.Page, opts ScreenshotOptions) ([]byte, error) {
	return page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(opts.FullPage),
		Path:     playwright.String(opts.Path),
	})
}

// PDFOptions configures a PDF export.
type PDFOptions struct {
	Format string
	Path   string
}

// PDF exports page to a PDF file at opts.Path.
func PDF(page playwright.Page, opts PDFOptions) ([]byte, error) {
	format := opts.Format
	if format == "" {
		format = "Letter"
	}
	return page.PDF(playwright.PagePdfOptions{
		Format: playwright.String(format),
		Path:   playwright.String(opts.Path),
	})
}

// Type enters text into selector, optionally character-by-character with a
// per-character delay when human-like mode is enabled.
func Type(page playwright.Page, selector, text string, humanLike bool) error {
	if !humanLike {
		return page.Type(selector, text)
	}
	for _, ch := range text {
		if err := page.Type(selector, string(ch)); err != nil {
			return err
		}
		maybeDelay(30*time.Millisecond, 80*time.Millisecond, true)
	}
	return nil
}

// Fill sets selector's value directly (no per-character events).
func Fill(page playwright.Page, selector, text string) error {
	return page.Fill(selector, text)
}

// Click clicks selector.
func Click(page playwright.Page, selector string) error {
	return page.Click(selector)
}

// KeyboardPress sends a single key press to the page.
func KeyboardPress(page playwright.Page, key string) error {
	return page.Keyboard().Press(key)
}

// WaitForSelector waits for selector to reach the given state (default
// "visible") within timeoutMs (default 30s).
func WaitForSelector(page playwright.Page, selector, state string, timeoutMs float64) error {
	if state == "" {
		state = "visible"
	}
	if timeoutMs <= 0 {
		timeoutMs = defaultTimeoutMs
	}
	waitState := playwright.WaitForSelectorState(state)
	_, err := page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   &waitState,
		Timeout: playwright.Float(timeoutMs),
	})
	return err
}

// WaitForLoadState waits for the page to reach the given load state.
func WaitForLoadState(page playwright.Page, state string) error {
	loadState := playwright.LoadState(state)
	return page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{State: &loadState})
}

// OpenCDPSession opens a raw CDP session on page, used by the Tree Builder
// and by cache/reload operations that have no Playwright-native API.
func OpenCDPSession(page playwright.Page) (playwright.CDPSession, error) {
	return page.Context().NewCDPSession(page)
}
