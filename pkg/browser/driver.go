package browser

import "time"

// Cookie is a browser cookie as observed by the automation surface
type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain"`
	Path     string    `json:"path"`
	Expires  time.Time `json:"expires"`
	HTTPOnly bool      `json:"http_only"`
	Secure   bool      `json:"secure"`
}

// Element is a handle to a located page element
type Element interface {
	// Click clicks the element
	Click() error
}

// Driver is the capability interface for browser automation. Any concrete
// backend (rod, chromedp, a fake for tests) implements it. All operations
// are blocking and bounded by the backend's configured timeouts.
type Driver interface {
	// Navigate loads the given URL and waits for the page to settle
	Navigate(url string) error

	// SetFieldValue clears a form field and types the given value into it
	SetFieldValue(selector, value string) error

	// Click locates an element and clicks it
	Click(selector string) error

	// CurrentURL returns the URL of the current page
	CurrentURL() (string, error)

	// FindElement looks for an element without waiting for it to appear.
	// The boolean reports presence; an error means the automation surface
	// itself failed.
	FindElement(selector string) (Element, bool, error)

	// Cookies returns the cookies visible to the current page
	Cookies() ([]Cookie, error)

	// SetCookies injects cookies into the browser
	SetCookies(cookies []Cookie) error

	// Close shuts down the automation surface
	Close() error
}
