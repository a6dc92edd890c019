package login

import (
	"strings"

	"igsession/pkg/browser"
	"igsession/pkg/config"
)

// Detector classifies the current browser state into one Outcome using
// URL and page-element heuristics. Each call is a pure function of the
// current observable state; repetition and backoff belong to the
// orchestrator.
//
// Classification runs in strict priority order, first match wins:
//
//  1. exact home URL                      -> Success
//  2. challenge substring in the URL      -> SecurityChallenge
//  3. post-login marker element present   -> Success
//  4. still on the login URL             -> CredentialFailure
//  5. on the service domain              -> Success
//  6. none of the above                  -> Unknown
//
// The challenge pattern table is configuration, not code: it is known to
// be incomplete and classification prefers Unknown over a false Success.
type Detector struct {
	homeURL           string
	loginURL          string
	domain            string
	challengePatterns []string
	successMarkers    []string
}

// NewDetector builds a detector from login configuration
func NewDetector(cfg *config.LoginConfig) *Detector {
	return &Detector{
		homeURL:           normalizeURL(cfg.HomeURL),
		loginURL:          normalizeURL(cfg.LoginURL),
		domain:            cfg.Domain,
		challengePatterns: cfg.ChallengePatterns,
		successMarkers:    cfg.SuccessMarkers,
	}
}

// Classify inspects the driver's current state and returns one outcome.
// An error means the automation surface itself failed, which is never
// classified.
func (d *Detector) Classify(drv browser.Driver) (Outcome, error) {
	rawURL, err := drv.CurrentURL()
	if err != nil {
		return OutcomeUnknown, err
	}

	url := normalizeURL(rawURL)
	lowerURL := strings.ToLower(url)

	// Exact home URL is the strongest success signal
	if url == d.homeURL {
		return OutcomeSuccess, nil
	}

	// Challenge patterns outrank every other signal below, including the
	// on-domain fallback
	for _, pattern := range d.challengePatterns {
		if strings.Contains(lowerURL, strings.ToLower(pattern)) {
			return OutcomeSecurityChallenge, nil
		}
	}

	// Known post-login page markers
	for _, marker := range d.successMarkers {
		_, found, err := drv.FindElement(marker)
		if err != nil {
			return OutcomeUnknown, err
		}
		if found {
			return OutcomeSuccess, nil
		}
	}

	// Still sitting on the login page means the credential was rejected
	if strings.HasPrefix(url, d.loginURL) {
		return OutcomeCredentialFailure, nil
	}

	// On-domain without an error signature counts as success
	if strings.Contains(lowerURL, strings.ToLower(d.domain)) {
		return OutcomeSuccess, nil
	}

	return OutcomeUnknown, nil
}

// normalizeURL strips the trailing slash so exact-URL comparisons treat
// "https://host/" and "https://host" as the same page
func normalizeURL(url string) string {
	return strings.TrimSuffix(strings.TrimSpace(url), "/")
}
