package browser

import (
	"sync"
)

// FakeElement implements Element for tests
type FakeElement struct {
	Selector   string
	ClickError error
	Clicked    int
}

func (e *FakeElement) Click() error {
	e.Clicked++
	return e.ClickError
}

// FakeDriver implements Driver for deterministic tests. Tests script the
// URL the driver reports and which selectors resolve to elements; every
// call is recorded for assertions.
type FakeDriver struct {
	mu sync.Mutex

	// URL reported by CurrentURL. If URLSequence is non-empty, each
	// CurrentURL call consumes one entry and the last entry sticks.
	URL         string
	URLSequence []string

	// Elements maps selectors to fake elements findable via FindElement
	Elements map[string]*FakeElement

	// Cookie state
	CookieJar []Cookie

	// Error injection
	NavigateError    error
	SetFieldError    error
	ClickError       error
	CurrentURLError  error
	FindElementError error
	CookiesError     error
	SetCookiesError  error

	// Call records
	Navigations  []string
	FilledFields map[string]string
	Clicks       []string
	URLReads     int
	SetCookieLog [][]Cookie
	Closed       bool
}

// NewFakeDriver creates a fake driver with empty state
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{
		Elements:     make(map[string]*FakeElement),
		FilledFields: make(map[string]string),
	}
}

// AddElement makes the given selector findable
func (d *FakeDriver) AddElement(selector string) *FakeElement {
	d.mu.Lock()
	defer d.mu.Unlock()
	el := &FakeElement{Selector: selector}
	d.Elements[selector] = el
	return el
}

// RemoveElement makes the given selector unfindable again
func (d *FakeDriver) RemoveElement(selector string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.Elements, selector)
}

func (d *FakeDriver) Navigate(url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Navigations = append(d.Navigations, url)
	return d.NavigateError
}

func (d *FakeDriver) SetFieldValue(selector, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.SetFieldError != nil {
		return d.SetFieldError
	}
	d.FilledFields[selector] = value
	return nil
}

func (d *FakeDriver) Click(selector string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Clicks = append(d.Clicks, selector)
	return d.ClickError
}

func (d *FakeDriver) CurrentURL() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.URLReads++
	if d.CurrentURLError != nil {
		return "", d.CurrentURLError
	}
	if len(d.URLSequence) > 0 {
		d.URL = d.URLSequence[0]
		if len(d.URLSequence) > 1 {
			d.URLSequence = d.URLSequence[1:]
		}
	}
	return d.URL, nil
}

func (d *FakeDriver) FindElement(selector string) (Element, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FindElementError != nil {
		return nil, false, d.FindElementError
	}
	el, ok := d.Elements[selector]
	if !ok {
		return nil, false, nil
	}
	return el, true, nil
}

func (d *FakeDriver) Cookies() ([]Cookie, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.CookiesError != nil {
		return nil, d.CookiesError
	}
	cookies := make([]Cookie, len(d.CookieJar))
	copy(cookies, d.CookieJar)
	return cookies, nil
}

func (d *FakeDriver) SetCookies(cookies []Cookie) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.SetCookiesError != nil {
		return d.SetCookiesError
	}
	recorded := make([]Cookie, len(cookies))
	copy(recorded, cookies)
	d.SetCookieLog = append(d.SetCookieLog, recorded)
	d.CookieJar = append(d.CookieJar, cookies...)
	return nil
}

func (d *FakeDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closed = true
	return nil
}
