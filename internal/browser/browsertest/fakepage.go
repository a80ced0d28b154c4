// Package browsertest provides an in-memory Page for tests.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"jobtrack-engine/internal/browser"
)

// Element is the state behind one selector on the fake page.
type Element struct {
	Visible  bool
	Disabled bool
	Value    string
	// Options maps option label -> value for select elements.
	Options map[string]string
	// Selected holds the chosen option value after SelectBy*.
	Selected string
	// Uploaded holds the last file path attached to this element.
	Uploaded string
	// OnClick, when set, mutates the page when the element is clicked.
	OnClick func(p *FakePage)
}

// FakePage implements browser.Page against a map of selectors. Selectors
// are matched by their exact query string; the locator language is ignored.
type FakePage struct {
	mu sync.Mutex

	URL      string
	Body     string // returned by HTML
	Elements map[string]*Element

	// Recorded interactions, in order.
	Navigations []string
	Clicks      []string
	Fills       map[string]string

	// NavigateErr, when set, fails every Navigate call.
	NavigateErr error
}

func New() *FakePage {
	return &FakePage{
		Elements: make(map[string]*Element),
		Fills:    make(map[string]string),
	}
}

// Add registers an element behind a selector query.
func (p *FakePage) Add(query string, el *Element) *FakePage {
	p.Elements[query] = el
	return p
}

// AddVisible registers a plain visible element.
func (p *FakePage) AddVisible(query string) *FakePage {
	return p.Add(query, &Element{Visible: true})
}

func (p *FakePage) find(sel browser.Selector) (*Element, bool) {
	el, ok := p.Elements[sel.Query]
	return el, ok
}

func (p *FakePage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.NavigateErr != nil {
		return p.NavigateErr
	}
	p.URL = url
	p.Navigations = append(p.Navigations, url)
	return nil
}

func (p *FakePage) Location(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.URL, nil
}

func (p *FakePage) HTML(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Body, nil
}

func (p *FakePage) Visible(ctx context.Context, sel browser.Selector) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, ok := p.find(sel)
	return ok && el.Visible && !el.Disabled
}

func (p *FakePage) WaitVisible(ctx context.Context, sel browser.Selector) error {
	if p.Visible(ctx, sel) {
		return nil
	}
	return fmt.Errorf("element not visible: %s", sel)
}

func (p *FakePage) Fill(ctx context.Context, sel browser.Selector, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, ok := p.find(sel)
	if !ok || !el.Visible || el.Disabled {
		return fmt.Errorf("cannot fill %s", sel)
	}
	el.Value = value
	p.Fills[sel.Query] = value
	return nil
}

func (p *FakePage) Click(ctx context.Context, sel browser.Selector) error {
	p.mu.Lock()
	el, ok := p.find(sel)
	if !ok || !el.Visible || el.Disabled {
		p.mu.Unlock()
		return fmt.Errorf("cannot click %s", sel)
	}
	p.Clicks = append(p.Clicks, sel.Query)
	onClick := el.OnClick
	p.mu.Unlock()

	if onClick != nil {
		onClick(p)
	}
	return nil
}

func (p *FakePage) SelectByLabel(ctx context.Context, sel browser.Selector, label string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, ok := p.find(sel)
	if !ok || el.Options == nil {
		return fmt.Errorf("no select at %s", sel)
	}
	v, ok := el.Options[label]
	if !ok {
		return fmt.Errorf("no option labelled %q", label)
	}
	el.Selected = v
	return nil
}

func (p *FakePage) SelectByValue(ctx context.Context, sel browser.Selector, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, ok := p.find(sel)
	if !ok || el.Options == nil {
		return fmt.Errorf("no select at %s", sel)
	}
	for _, v := range el.Options {
		if v == value {
			el.Selected = v
			return nil
		}
	}
	return fmt.Errorf("no option with value %q", value)
}

func (p *FakePage) Upload(ctx context.Context, sel browser.Selector, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, ok := p.find(sel)
	if !ok || !el.Visible {
		return errors.New("no file input at " + sel.String())
	}
	el.Uploaded = path
	return nil
}

// RemoveElement drops a selector, e.g. to simulate a CAPTCHA being solved.
func (p *FakePage) RemoveElement(query string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.Elements, query)
}

var _ browser.Page = (*FakePage)(nil)
