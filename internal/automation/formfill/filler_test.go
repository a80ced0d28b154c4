package formfill

import (
	"context"
	"testing"

	"jobtrack-engine/internal/browser/browsertest"
)

var profile = map[string]string{
	"name":  "Thandi Mokoena",
	"email": "thandi@example.com",
	"phone": "+27 82 000 0000",
}

func TestFillPersonalInfo_StrategyOrder(t *testing.T) {
	page := browsertest.New()
	// email reachable by exact name attribute, phone only by partial id,
	// name only via label proximity.
	page.AddVisible("[name='email']")
	page.AddVisible("input[id*='phone']")
	page.AddVisible("//label[contains(text(), 'name')]/following::input[1]")

	f := New(page, profile)
	f.Settle = 0
	results := f.FillPersonalInfo(context.Background(), nil)

	for _, field := range []string{"email", "phone", "name"} {
		if !results[field] {
			t.Errorf("field %s not filled: %v", field, results)
		}
	}
	if page.Fills["[name='email']"] != "thandi@example.com" {
		t.Errorf("email filled with %q", page.Fills["[name='email']"])
	}
}

func TestFillPersonalInfo_PartialFailureIsNonFatal(t *testing.T) {
	page := browsertest.New()
	page.AddVisible("[name='email']")
	// no phone or name fields anywhere on the page

	f := New(page, profile)
	results := f.FillPersonalInfo(context.Background(), nil)

	if !results["email"] {
		t.Error("email should have been filled")
	}
	if results["phone"] {
		t.Error("phone reported filled with no field present")
	}
}

func TestFillPersonalInfo_SkipsEmptyValues(t *testing.T) {
	page := browsertest.New()
	page.AddVisible("[name='location']")

	f := New(page, map[string]string{"email": "a@b.c"}) // no location value
	results := f.FillPersonalInfo(context.Background(), nil)

	if _, attempted := results["location"]; attempted {
		t.Error("empty profile values must not be attempted")
	}
}

func TestFillPersonalInfo_Overrides(t *testing.T) {
	page := browsertest.New()
	page.AddVisible("[name='email']")

	f := New(page, profile)
	f.FillPersonalInfo(context.Background(), map[string]string{"email": "other@example.com"})

	if page.Fills["[name='email']"] != "other@example.com" {
		t.Errorf("override not applied: %q", page.Fills["[name='email']"])
	}
}

func TestFillPersonalInfo_SkipsDisabledElements(t *testing.T) {
	page := browsertest.New()
	page.Add("[name='email']", &browsertest.Element{Visible: true, Disabled: true})
	page.AddVisible("input[name*='email']") // next strategy down

	f := New(page, profile)
	results := f.FillPersonalInfo(context.Background(), nil)

	if !results["email"] {
		t.Fatal("email not filled")
	}
	if _, ok := page.Fills["input[name*='email']"]; !ok {
		t.Error("fill should have fallen through to the enabled element")
	}
}

func TestUploadCV_PrefersSpecificHints(t *testing.T) {
	page := browsertest.New()
	page.AddVisible("input[type='file']")
	page.AddVisible("input[type='file'][name*='resume']")

	f := New(page, profile)
	f.Settle = 0
	if err := f.UploadCV(context.Background(), "/tmp/cv.pdf"); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if page.Elements["input[type='file'][name*='resume']"].Uploaded != "/tmp/cv.pdf" {
		t.Error("upload should use the resume-hinted input before the generic one")
	}
}

func TestUploadCV_NoField(t *testing.T) {
	f := New(browsertest.New(), profile)
	f.Settle = 0
	if err := f.UploadCV(context.Background(), "/tmp/cv.pdf"); err == nil {
		t.Error("expected an error with no file input on the page")
	}
}

func TestFillDropdown_LabelThenValue(t *testing.T) {
	page := browsertest.New()
	page.Add("[name='province']", &browsertest.Element{
		Visible: true,
		Options: map[string]string{"Gauteng": "GP", "Western Cape": "WC"},
	})

	f := New(page, profile)
	if !f.FillDropdown(context.Background(), "province", "Gauteng") {
		t.Fatal("select by label failed")
	}
	if page.Elements["[name='province']"].Selected != "GP" {
		t.Error("wrong option selected")
	}

	// Raw value fallback.
	if !f.FillDropdown(context.Background(), "province", "WC") {
		t.Error("select by raw value failed")
	}
}

func TestFillTextarea(t *testing.T) {
	page := browsertest.New()
	page.AddVisible("textarea[name*='cover']")

	f := New(page, profile)
	if !f.FillTextarea(context.Background(), "cover", "Dear team") {
		t.Fatal("textarea fill failed")
	}
	if page.Fills["textarea[name*='cover']"] != "Dear team" {
		t.Error("textarea content wrong")
	}
}

func TestClickSubmit_PriorityOrder(t *testing.T) {
	page := browsertest.New()
	page.AddVisible("//button[contains(text(), 'Apply')]")
	page.AddVisible("button[type='submit']")

	f := New(page, profile)
	if !f.ClickSubmit(context.Background()) {
		t.Fatal("submit not clicked")
	}
	if page.Clicks[0] != "button[type='submit']" {
		t.Errorf("clicked %q first, want the typed submit button", page.Clicks[0])
	}
}

func TestClickSubmit_NoButton(t *testing.T) {
	f := New(browsertest.New(), profile)
	if f.ClickSubmit(context.Background()) {
		t.Error("reported success with no submit control present")
	}
}
