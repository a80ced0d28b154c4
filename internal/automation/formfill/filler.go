// Package formfill locates and populates application-form fields on pages
// whose markup we do not control. Every board lays its forms out
// differently, so each logical field is tried against an ordered list of
// locator strategies and the first visible, enabled match wins.
package formfill

import (
	"context"
	"fmt"
	"log"
	"time"

	"jobtrack-engine/internal/browser"
)

// Filler fills forms on one page using a user's profile data.
type Filler struct {
	page    browser.Page
	profile map[string]string

	// Settle is the pause after attaching a file, giving client-side
	// upload handlers time to run. Tests set it to zero.
	Settle time.Duration
}

func New(page browser.Page, profile map[string]string) *Filler {
	return &Filler{page: page, profile: profile, Settle: 2 * time.Second}
}

// strategies is the priority order for locating an input by its logical
// field name: exact attribute, exact id, partial matches, then label text.
func strategies(field string) []browser.Selector {
	return []browser.Selector{
		browser.CSS(fmt.Sprintf("[name='%s']", field)),
		browser.CSS("#" + field),
		browser.CSS(fmt.Sprintf("input[name*='%s']", field)),
		browser.CSS(fmt.Sprintf("input[id*='%s']", field)),
		browser.CSS(fmt.Sprintf("input[placeholder*='%s']", field)),
		browser.XPath(fmt.Sprintf("//label[contains(text(), '%s')]/following::input[1]", field)),
	}
}

func (f *Filler) findField(ctx context.Context, field string) (browser.Selector, bool) {
	for _, sel := range strategies(field) {
		if f.page.Visible(ctx, sel) {
			return sel, true
		}
	}
	return browser.Selector{}, false
}

// FillPersonalInfo fills the standard contact fields, merged with any
// per-call overrides. The result maps each attempted field to whether it
// was filled; missing fields are expected on many boards and non-fatal.
func (f *Filler) FillPersonalInfo(ctx context.Context, overrides map[string]string) map[string]bool {
	mapping := map[string]string{
		"name":       f.profile["name"],
		"first_name": f.profile["first_name"],
		"last_name":  f.profile["last_name"],
		"email":      f.profile["email"],
		"phone":      f.profile["phone"],
		"location":   f.profile["location"],
	}
	for k, v := range overrides {
		mapping[k] = v
	}

	results := make(map[string]bool)
	for field, value := range mapping {
		if value == "" {
			continue
		}
		sel, ok := f.findField(ctx, field)
		if !ok {
			results[field] = false
			continue
		}
		if err := f.page.Fill(ctx, sel, value); err != nil {
			log.Printf("[formfill] could not fill %s: %v", field, err)
			results[field] = false
			continue
		}
		results[field] = true
	}
	return results
}

// cvUploadSelectors is the priority order for finding the file input, from
// the most specific hint down to any file input at all.
var cvUploadSelectors = []browser.Selector{
	browser.CSS("input[type='file'][name*='cv']"),
	browser.CSS("input[type='file'][name*='resume']"),
	browser.CSS("input[type='file'][name*='document']"),
	browser.CSS("input[type='file'][name*='attachment']"),
	browser.CSS("input[type='file'][accept*='.pdf']"),
	browser.CSS("input[type='file']"),
}

// UploadCV attaches the file at path to the first matching file input.
func (f *Filler) UploadCV(ctx context.Context, path string) error {
	for _, sel := range cvUploadSelectors {
		if !f.page.Visible(ctx, sel) {
			continue
		}
		if err := f.page.Upload(ctx, sel, path); err != nil {
			continue
		}
		if f.Settle > 0 {
			browser.RandomDelay(ctx, f.Settle, f.Settle)
		}
		log.Printf("[formfill] CV uploaded via %s", sel)
		return nil
	}
	return fmt.Errorf("no CV upload field found")
}

// FillDropdown selects an option on a <select>, matching the visible label
// first and falling back to the raw value.
func (f *Filler) FillDropdown(ctx context.Context, field, value string) bool {
	sel, ok := f.findField(ctx, field)
	if !ok {
		sel = browser.CSS(fmt.Sprintf("select[name*='%s']", field))
		if !f.page.Visible(ctx, sel) {
			return false
		}
	}
	if err := f.page.SelectByLabel(ctx, sel, value); err == nil {
		return true
	}
	if err := f.page.SelectByValue(ctx, sel, value); err != nil {
		log.Printf("[formfill] could not select %q on %s: %v", value, field, err)
		return false
	}
	return true
}

// FillTextarea fills a multi-line field such as a cover letter.
func (f *Filler) FillTextarea(ctx context.Context, field, text string) bool {
	selectors := []browser.Selector{
		browser.CSS(fmt.Sprintf("textarea[name='%s']", field)),
		browser.CSS(fmt.Sprintf("textarea[name*='%s']", field)),
		browser.CSS(fmt.Sprintf("textarea[id*='%s']", field)),
	}
	for _, sel := range selectors {
		if !f.page.Visible(ctx, sel) {
			continue
		}
		if err := f.page.Fill(ctx, sel, text); err != nil {
			continue
		}
		return true
	}
	log.Printf("[formfill] no textarea found for %s", field)
	return false
}

// submitSelectors is the priority order for the submit control.
var submitSelectors = []browser.Selector{
	browser.CSS("button[type='submit']"),
	browser.CSS("input[type='submit']"),
	browser.XPath("//button[contains(text(), 'Submit')]"),
	browser.XPath("//button[contains(text(), 'Apply')]"),
	browser.XPath("//input[@value='Submit']"),
	browser.XPath("//input[@value='Apply']"),
}

// ClickSubmit clicks the first interactable submit control.
func (f *Filler) ClickSubmit(ctx context.Context) bool {
	for _, sel := range submitSelectors {
		if !f.page.Visible(ctx, sel) {
			continue
		}
		if err := f.page.Click(ctx, sel); err != nil {
			continue
		}
		log.Printf("[formfill] clicked submit via %s", sel)
		return true
	}
	log.Printf("[formfill] no submit control found")
	return false
}
