package daemon

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// challengeProbeScript checks for known bot-check interstitials. It
// returns a tag string ("cloudflare" or "siteground") or false.
const challengeProbeScript = `() => {
	const title = document.title || "";
	if (title === "Just a moment..." ||
		window._cf_chl_opt !== undefined ||
		document.querySelector('script[src*="/cdn-cgi/challenge-platform/"]') !== null) {
		return "cloudflare";
	}
	if (title === "Robot Challenge Screen" || window.sgchallenge !== undefined) {
		return "siteground";
	}
	for (const script of document.scripts) {
		if (script.textContent && script.textContent.includes("sgchallenge")) {
			return "siteground";
		}
	}
	return false;
}`

// DetectChallenge runs an in-page probe for Cloudflare/SiteGround
// interstitials, returning the challenge tag and whether one was found.
func DetectChallenge(page playwright.Page) (string, bool, error) {
	result, err := Evaluate(page, challengeProbeScript)
	if err != nil {
		return "", false, err
	}
	tag, ok := result.(string)
	return tag, ok && tag != "", nil
}

// WaitForBypass polls DetectChallenge every 100ms until the page is clean
// or maxWait elapses.
func WaitForBypass(page playwright.Page, maxWait time.Duration) error {
	if maxWait <= 0 {
		maxWait = 8 * time.Second
	}
	deadline := time.Now().Add(maxWait)
	for {
		_, found, err := DetectChallenge(page)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}
		if time.Now().After(deadline) {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// modalCloseSelectors is a fixed list of common close-button affordances
// checked by DismissModals.
var modalCloseSelectors = []string{
	`[data-dismiss="modal"]`,
	`.modal .close`,
	`button[aria-label="Close"]`,
	`button[aria-label="close"]`,
	`.close-button`,
	`.popup-close`,
	`[class*="cookie"] [class*="close"]`,
	`[class*="cookie"] [class*="accept"]`,
	`[class*="newsletter"] [class*="close"]`,
}

// DismissModals fires Escape, then polls (up to 2.5s) for any visible
// close-button affordance and clicks the first one found. Click failures
// are ignored. Never blocks interactive commands; only called from the
// screenshot path.
func DismissModals(page playwright.Page) {
	_ = KeyboardPress(page, "Escape")

	deadline := time.Now().Add(2500 * time.Millisecond)
	for time.Now().Before(deadline) {
		for _, selector := range modalCloseSelectors {
			visible, err := page.IsVisible(selector)
			if err != nil || !visible {
				continue
			}
			_ = page.Click(selector)
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}
