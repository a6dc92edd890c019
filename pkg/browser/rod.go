package browser

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"igsession/pkg/config"
)

// RodDriver implements Driver on top of go-rod with the stealth page
// patches applied
type RodDriver struct {
	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher

	navigationTimeout time.Duration
	elementTimeout    time.Duration
}

// NewRodDriver launches a browser and returns a connected driver
func NewRodDriver(cfg *config.BrowserConfig) (*RodDriver, error) {
	// Leakless mode deadlocks on Windows, see go-rod/rod#853
	useLeakless := runtime.GOOS != "windows"

	l := launcher.New().
		Leakless(useLeakless).
		Headless(cfg.Headless).
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("window-size", fmt.Sprintf("%d,%d", cfg.WindowWidth, cfg.WindowHeight)).
		Set("user-agent", cfg.UserAgent)

	// Prefer system Chrome over a downloaded browser when available
	if chromePath, ok := launcher.LookPath(); ok {
		l = l.Bin(chromePath)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		_ = browser.Close()
		l.Cleanup()
		return nil, fmt.Errorf("failed to create stealth page: %w", err)
	}

	return &RodDriver{
		browser:           browser,
		page:              page,
		launcher:          l,
		navigationTimeout: cfg.NavigationTimeout,
		elementTimeout:    cfg.ElementTimeout,
	}, nil
}

// Navigate loads the given URL and waits for the load event
func (d *RodDriver) Navigate(url string) error {
	page := d.page.Timeout(d.navigationTimeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("page load for %s failed: %w", url, err)
	}
	return nil
}

// SetFieldValue waits for a form field, clears it and types the value
func (d *RodDriver) SetFieldValue(selector, value string) error {
	el, err := d.element(d.page.Timeout(d.elementTimeout), selector)
	if err != nil {
		return fmt.Errorf("field %s not found: %w", selector, err)
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("failed to select field %s: %w", selector, err)
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("failed to fill field %s: %w", selector, err)
	}
	return nil
}

// Click waits for an element and clicks it
func (d *RodDriver) Click(selector string) error {
	el, err := d.element(d.page.Timeout(d.elementTimeout), selector)
	if err != nil {
		return fmt.Errorf("element %s not found: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return nil
}

// CurrentURL returns the URL of the current page
func (d *RodDriver) CurrentURL() (string, error) {
	info, err := d.page.Info()
	if err != nil {
		return "", fmt.Errorf("failed to read page info: %w", err)
	}
	return info.URL, nil
}

// FindElement checks for element presence without waiting
func (d *RodDriver) FindElement(selector string) (Element, bool, error) {
	page := d.page.Timeout(d.elementTimeout).Sleeper(rod.NotFoundSleeper)
	el, err := d.element(page, selector)
	if err != nil {
		if errors.Is(err, &rod.ElementNotFoundError{}) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("element lookup for %s failed: %w", selector, err)
	}
	return &rodElement{el: el}, true, nil
}

// Cookies returns the cookies visible to the current page
func (d *RodDriver) Cookies() ([]Cookie, error) {
	rodCookies, err := d.page.Cookies(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}

	cookies := make([]Cookie, 0, len(rodCookies))
	for _, c := range rodCookies {
		cookies = append(cookies, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  time.Unix(int64(c.Expires), 0),
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		})
	}
	return cookies, nil
}

// SetCookies injects cookies into the browser
func (d *RodDriver) SetCookies(cookies []Cookie) error {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  proto.TimeSinceEpoch(c.Expires.Unix()),
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		})
	}

	if err := d.page.SetCookies(params); err != nil {
		return fmt.Errorf("failed to set cookies: %w", err)
	}
	return nil
}

// Close shuts down the page, browser and launcher
func (d *RodDriver) Close() error {
	var firstErr error

	if d.page != nil {
		if err := d.page.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.browser != nil {
		if err := d.browser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.launcher != nil {
		d.launcher.Cleanup()
	}

	return firstErr
}

// element resolves a selector, treating selectors that start with a slash
// or parenthesis as XPath
func (d *RodDriver) element(page *rod.Page, selector string) (*rod.Element, error) {
	if strings.HasPrefix(selector, "/") || strings.HasPrefix(selector, "(") {
		return page.ElementX(selector)
	}
	return page.Element(selector)
}

// rodElement adapts *rod.Element to the Element interface
type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Click() error {
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}
