package daemon

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/br/pkg/instance"
)

// listFetchTimeout bounds how long NewAdBlocker waits on a single
// http(s):// filter-list entry before giving up on it.
const listFetchTimeout = 10 * time.Second

// AdBlocker is the filter-activator interface the Supervisor attaches to
// every page.
type AdBlocker interface {
	// Attach activates filtering on page.
	Attach(page playwright.Page) error
}

// basePresets are built-in URL-glob filter lists for the base tiers that
// don't require a list file on disk. They are deliberately small and
// illustrative rather than exhaustive filter-list replacements.
var basePresets = map[instance.AdblockBase][]string{
	instance.AdblockBaseNone: {},
	instance.AdblockBaseAds: {
		"*://*doubleclick.net/*",
		"*://*googlesyndication.com/*",
		"*://*adservice.google.com/*",
		"*://*amazon-adsystem.com/*",
		"*://*taboola.com/*",
		"*://*outbrain.com/*",
	},
	instance.AdblockBaseAdsAndTrackers: {
		"*://*doubleclick.net/*",
		"*://*googlesyndication.com/*",
		"*://*adservice.google.com/*",
		"*://*amazon-adsystem.com/*",
		"*://*taboola.com/*",
		"*://*outbrain.com/*",
		"*://*google-analytics.com/*",
		"*://*googletagmanager.com/*",
		"*://*segment.io/*",
		"*://*mixpanel.com/*",
		"*://*facebook.net/*",
		"*://*scorecardresearch.com/*",
	},
	instance.AdblockBaseFull: {
		"*://*doubleclick.net/*",
		"*://*googlesyndication.com/*",
		"*://*adservice.google.com/*",
		"*://*amazon-adsystem.com/*",
		"*://*taboola.com/*",
		"*://*outbrain.com/*",
		"*://*google-analytics.com/*",
		"*://*googletagmanager.com/*",
		"*://*segment.io/*",
		"*://*mixpanel.com/*",
		"*://*facebook.net/*",
		"*://*scorecardresearch.com/*",
		"*://*criteo.com/*",
		"*://*pubmatic.com/*",
		"*://*rubiconproject.com/*",
		"*://*adnxs.com/*",
	},
}

// globAdBlocker aborts requests whose URL matches a compiled glob pattern.
type globAdBlocker struct {
	patterns []glob.Glob
}

// NewAdBlocker returns the configured ad-blocker, or a no-op when disabled.
// Patterns come from base's built-in preset plus one URL-glob pattern per
// non-blank, non-comment line across listPaths.
func NewAdBlocker(enabled bool, base instance.AdblockBase, listPaths []string) (AdBlocker, error) {
	if !enabled {
		return noopAdBlocker{}, nil
	}

	raw := append([]string{}, basePresets[base]...)
	for _, entry := range listPaths {
		var (
			lines []string
			err   error
		)
		if strings.HasPrefix(entry, "http://") || strings.HasPrefix(entry, "https://") {
			lines, err = fetchPatternList(entry)
		} else {
			lines, err = readPatternFile(entry)
		}
		if err != nil {
			return nil, fmt.Errorf("adblock list %q: %w", entry, err)
		}
		raw = append(raw, lines...)
	}

	b := &globAdBlocker{}
	for _, pattern := range raw {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid adblock pattern %q: %w", pattern, err)
		}
		b.patterns = append(b.patterns, g)
	}
	return b, nil
}

func readPatternFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return scanPatternLines(f)
}

// fetchPatternList downloads a remote filter list over HTTP(S). Options
// validation already confirmed the entry looks like a URL; Validate itself
// does not fetch, since the list may be temporarily unreachable without
// that being a launch-option error.
func fetchPatternList(url string) ([]string, error) {
	client := &http.Client{Timeout: listFetchTimeout}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d fetching filter list", resp.StatusCode)
	}
	return scanPatternLines(io.LimitReader(resp.Body, 16<<20))
}

func scanPatternLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}

func (b *globAdBlocker) blocks(url string) bool {
	for _, g := range b.patterns {
		if g.Match(url) {
			return true
		}
	}
	return false
}

// Attach routes every request on page through the filter, aborting matches
// and continuing everything else.
func (b *globAdBlocker) Attach(page playwright.Page) error {
	return page.Route("**/*", func(route playwright.Route) {
		if b.blocks(route.Request().URL()) {
			_ = route.Abort()
			return
		}
		_ = route.Continue()
	})
}

// noopAdBlocker satisfies AdBlocker without filtering anything; it is the
// default when adblock is disabled.
type noopAdBlocker struct{}

func (noopAdBlocker) Attach(playwright.Page) error { return nil }
