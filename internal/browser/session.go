package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// A couple of mainstream desktop user agents; one is picked per session so
// consecutive sessions do not share a fingerprint.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
}

const stealthScript = `Object.defineProperty(navigator, "webdriver", {get: () => undefined})`

type Options struct {
	Headless      bool
	ScreenshotDir string
	Limiter       *HostLimiter

	// ProbeTimeout bounds Visible checks, WaitTimeout bounds explicit
	// waits and interactions, NavTimeout bounds page loads.
	ProbeTimeout time.Duration
	WaitTimeout  time.Duration
	NavTimeout   time.Duration
}

func (o *Options) fillDefaults() {
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = time.Second
	}
	if o.WaitTimeout <= 0 {
		o.WaitTimeout = 10 * time.Second
	}
	if o.NavTimeout <= 0 {
		o.NavTimeout = 30 * time.Second
	}
	if o.ScreenshotDir == "" {
		o.ScreenshotDir = "screenshots"
	}
}

// Session owns one Chrome tab. Exactly one task may use a session at a
// time; Close is safe to call on every exit path and never returns an
// error worth handling.
type Session struct {
	opts        Options
	ctx         context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
}

// NewSession starts Chrome and opens a tab. The caller must Close it.
func NewSession(parent context.Context, opts Options) (*Session, error) {
	opts.fillDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(userAgents[rand.Intn(len(userAgents))]),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		opts:        opts,
		ctx:         tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
	}

	// Start the browser now so a broken Chrome install fails fast, and
	// strip the webdriver flag before any page script can read it.
	startCtx, cancel := context.WithTimeout(tabCtx, opts.NavTimeout)
	defer cancel()
	err := chromedp.Run(startCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := cdppage.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
		return err
	}))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	log.Printf("[browser] session started headless=%v", opts.Headless)
	return s, nil
}

// Close tears the tab and browser down. Close errors are ignored; the
// session is gone either way.
func (s *Session) Close() {
	if s.tabCancel != nil {
		s.tabCancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
	log.Printf("[browser] session closed")
}

func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

func queryOpt(sel Selector) chromedp.QueryOption {
	if sel.By == ByXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if s.opts.Limiter != nil {
		if err := s.opts.Limiter.WaitURL(ctx, url); err != nil {
			return err
		}
	}
	if err := s.run(ctx, s.opts.NavTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (s *Session) Location(ctx context.Context) (string, error) {
	var loc string
	if err := s.run(ctx, s.opts.WaitTimeout, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, s.opts.WaitTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (s *Session) Visible(ctx context.Context, sel Selector) bool {
	err := s.run(ctx, s.opts.ProbeTimeout, chromedp.WaitVisible(sel.Query, queryOpt(sel)))
	if err != nil {
		return false
	}
	// Visible but disabled inputs are useless to us.
	if sel.By == ByCSS {
		var disabled bool
		js := fmt.Sprintf(`(() => { const el = document.querySelector(%q); return !!(el && el.disabled); })()`, sel.Query)
		if err := s.run(ctx, s.opts.ProbeTimeout, chromedp.Evaluate(js, &disabled)); err == nil && disabled {
			return false
		}
	}
	return true
}

func (s *Session) WaitVisible(ctx context.Context, sel Selector) error {
	if err := s.run(ctx, s.opts.WaitTimeout, chromedp.WaitVisible(sel.Query, queryOpt(sel))); err != nil {
		return fmt.Errorf("wait for %s: %w", sel, err)
	}
	return nil
}

func (s *Session) Fill(ctx context.Context, sel Selector, value string) error {
	err := s.run(ctx, s.opts.WaitTimeout,
		chromedp.Clear(sel.Query, queryOpt(sel)),
		chromedp.SendKeys(sel.Query, value, queryOpt(sel)),
	)
	if err != nil {
		return fmt.Errorf("fill %s: %w", sel, err)
	}
	return nil
}

func (s *Session) Click(ctx context.Context, sel Selector) error {
	if err := s.run(ctx, s.opts.WaitTimeout, chromedp.Click(sel.Query, queryOpt(sel))); err != nil {
		return fmt.Errorf("click %s: %w", sel, err)
	}
	return nil
}

func (s *Session) SelectByLabel(ctx context.Context, sel Selector, label string) error {
	return s.selectOption(ctx, sel, label, "label")
}

func (s *Session) SelectByValue(ctx context.Context, sel Selector, value string) error {
	return s.selectOption(ctx, sel, value, "value")
}

func (s *Session) selectOption(ctx context.Context, sel Selector, want, mode string) error {
	if sel.By != ByCSS {
		return errors.New("select needs a css selector")
	}
	js := fmt.Sprintf(`(() => {
  const el = document.querySelector(%q);
  if (!el || el.tagName !== 'SELECT') return false;
  for (const o of el.options) {
    const key = %q === 'label' ? (o.label || o.text).trim() : o.value;
    if (key === %q) {
      el.value = o.value;
      el.dispatchEvent(new Event('change', {bubbles: true}));
      return true;
    }
  }
  return false;
})()`, sel.Query, mode, want)

	var ok bool
	if err := s.run(ctx, s.opts.WaitTimeout, chromedp.Evaluate(js, &ok)); err != nil {
		return fmt.Errorf("select %s: %w", sel, err)
	}
	if !ok {
		return fmt.Errorf("no option %q in %s", want, sel)
	}
	return nil
}

func (s *Session) Upload(ctx context.Context, sel Selector, path string) error {
	if err := s.run(ctx, s.opts.WaitTimeout, chromedp.SetUploadFiles(sel.Query, []string{path}, queryOpt(sel))); err != nil {
		return fmt.Errorf("upload to %s: %w", sel, err)
	}
	return nil
}

// Screenshot captures the visible viewport.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, s.opts.WaitTimeout, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return buf, nil
}

// SaveScreenshot captures the page into the screenshot dir with a
// timestamped name, for post-mortem debugging of failed applications.
func (s *Session) SaveScreenshot(ctx context.Context, name string) (string, error) {
	buf, err := s.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.opts.ScreenshotDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.opts.ScreenshotDir,
		fmt.Sprintf("%s_%s.png", name, time.Now().Format("20060102_150405")))
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return "", err
	}
	log.Printf("[browser] screenshot saved: %s", path)
	return path, nil
}
