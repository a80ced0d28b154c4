package sites

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobtrack-engine/internal/automation/captcha"
	"jobtrack-engine/internal/automation/formfill"
	"jobtrack-engine/internal/browser"
	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/secrets"
)

var loginIndicators = []string{"login", "sign-in", "signin", "log-in"}

var successPhrases = []string{
	"application submitted",
	"successfully applied",
	"thank you for applying",
	"application received",
	"your application has been sent",
}

var popupSelectors = []browser.Selector{
	browser.CSS(`button[id*='cookie']`),
	browser.CSS(`button[class*='cookie']`),
	browser.CSS(`button[class*='dismiss']`),
	browser.CSS(`button[class*='close']`),
	browser.CSS(".modal-close"),
}

// base carries the helpers every board adapter shares.
type base struct {
	page    browser.Page
	fill    *formfill.Filler
	gate    *captcha.Gate
	creds   secrets.Credentials
	limiter *browser.HostLimiter

	delayMin, delayMax time.Duration
	captchaWait        time.Duration
}

func newBase(d Deps) base {
	b := base{
		page:        d.Page,
		fill:        d.Filler,
		gate:        d.Gate,
		creds:       d.Creds,
		limiter:     d.Limiter,
		delayMin:    d.DelayMin,
		delayMax:    d.DelayMax,
		captchaWait: d.CaptchaWait,
	}
	if b.captchaWait == 0 {
		b.captchaWait = 2 * time.Minute
	}
	return b
}

// navigate goes to a URL through the per-host limiter, then waits a short
// randomized delay to keep the request pattern irregular.
func (b *base) navigate(ctx context.Context, url string) error {
	if b.limiter != nil {
		if err := b.limiter.WaitURL(ctx, url); err != nil {
			return err
		}
	}
	if err := b.page.Navigate(ctx, url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	b.delay(ctx)
	return nil
}

func (b *base) delay(ctx context.Context) {
	browser.RandomDelay(ctx, b.delayMin, b.delayMax)
}

// dismissPopups closes cookie banners and modal overlays, best effort.
func (b *base) dismissPopups(ctx context.Context) {
	for _, sel := range popupSelectors {
		if b.page.Visible(ctx, sel) {
			_ = b.page.Click(ctx, sel)
		}
	}
}

// loginRedirected reports whether the board bounced us to its login page.
func (b *base) loginRedirected(ctx context.Context) bool {
	url, err := b.page.Location(ctx)
	if err != nil {
		return false
	}
	url = strings.ToLower(url)
	for _, ind := range loginIndicators {
		if strings.Contains(url, ind) {
			return true
		}
	}
	return false
}

// verifySubmission scans the page text for a positive-confirmation phrase.
// No match means unverified, not necessarily failed.
func (b *base) verifySubmission(ctx context.Context, board string) error {
	b.delay(ctx)
	html, err := b.page.HTML(ctx)
	if err != nil {
		return fmt.Errorf("read result page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("parse result page: %w", err)
	}
	text := strings.ToLower(doc.Text())
	for _, phrase := range successPhrases {
		if strings.Contains(text, phrase) {
			log.Printf("[sites] %s submission verified: found %q", board, phrase)
			return nil
		}
	}
	log.Printf("[sites] %s no success message found on result page", board)
	return ErrUnverified
}

// captchaCheckpoint hands a visible challenge to a human within a bound.
func (b *base) captchaCheckpoint(ctx context.Context) error {
	if b.gate == nil {
		return nil
	}
	if !b.gate.AwaitManualResolution(ctx, b.captchaWait) {
		return ErrCaptchaTimeout
	}
	return nil
}

// listings pulls {title, url} pairs out of search-result cards. linkSels are
// tried in order within each card; relative hrefs get baseURL prefixed.
func (b *base) listings(ctx context.Context, cardSel string, linkSels []string, baseURL string) ([]domain.Listing, error) {
	html, err := b.page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read search results: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}

	seen := map[string]bool{}
	var out []domain.Listing
	doc.Find(cardSel).Each(func(_ int, card *goquery.Selection) {
		for _, ls := range linkSels {
			link := card.Find(ls).First()
			if link.Length() == 0 {
				continue
			}
			href, ok := link.Attr("href")
			if !ok || strings.TrimSpace(href) == "" {
				continue
			}
			if strings.HasPrefix(href, "/") {
				href = baseURL + href
			}
			if seen[href] {
				return
			}
			seen[href] = true
			out = append(out, domain.Listing{
				Title: strings.TrimSpace(link.Text()),
				URL:   href,
			})
			return
		}
	})
	return out, nil
}

// loggedOut reports whether the current URL still looks like a login page,
// i.e. the credential submit did not move us on.
func (b *base) loggedOut(ctx context.Context) bool {
	url, err := b.page.Location(ctx)
	if err != nil {
		return true
	}
	return strings.Contains(strings.ToLower(url), "login")
}
