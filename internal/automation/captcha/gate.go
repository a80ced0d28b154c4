// Package captcha detects CAPTCHA challenges and hands them to a human.
// It never attempts to defeat a challenge: the whole contract is a bounded
// wait for the marker to disappear.
package captcha

import (
	"context"
	"log"
	"time"

	"jobtrack-engine/internal/browser"
)

// markers are the selectors that give a CAPTCHA away.
var markers = []browser.Selector{
	browser.CSS("#captcha"),
	browser.CSS(".g-recaptcha"),
	browser.CSS(".h-captcha"),
	browser.CSS(`iframe[src*="recaptcha"]`),
	browser.CSS(`iframe[src*="hcaptcha"]`),
	browser.CSS("[data-sitekey]"),
	browser.CSS("#captcha-container"),
}

type Gate struct {
	page browser.Page

	// PollInterval is how often the marker is re-checked while waiting.
	PollInterval time.Duration
}

func New(page browser.Page) *Gate {
	return &Gate{page: page, PollInterval: 2 * time.Second}
}

// Present reports whether any known CAPTCHA marker is visible.
func (g *Gate) Present(ctx context.Context) bool {
	for _, sel := range markers {
		if g.page.Visible(ctx, sel) {
			log.Printf("[captcha] detected marker %s", sel)
			return true
		}
	}
	return false
}

// Kind names the challenge family, for logging.
func (g *Gate) Kind(ctx context.Context) string {
	switch {
	case g.page.Visible(ctx, browser.CSS(".g-recaptcha")),
		g.page.Visible(ctx, browser.CSS(`iframe[src*="recaptcha"]`)):
		return "recaptcha"
	case g.page.Visible(ctx, browser.CSS(".h-captcha")),
		g.page.Visible(ctx, browser.CSS(`iframe[src*="hcaptcha"]`)):
		return "hcaptcha"
	case g.page.Visible(ctx, browser.CSS("#captcha")):
		return "custom"
	}
	return ""
}

// AwaitManualResolution returns true immediately if no CAPTCHA is present,
// otherwise polls until the marker disappears or the timeout elapses.
func (g *Gate) AwaitManualResolution(ctx context.Context, timeout time.Duration) bool {
	if !g.Present(ctx) {
		return true
	}

	log.Printf("[captcha] %s challenge detected, waiting up to %s for a human", g.Kind(ctx), timeout)

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(g.PollInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if !g.Present(ctx) {
				log.Printf("[captcha] challenge cleared")
				return true
			}
		}
	}

	log.Printf("[captcha] not resolved within %s", timeout)
	return false
}
