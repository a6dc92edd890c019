package login

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igsession/pkg/browser"
	"igsession/pkg/config"
)

func newTestDetector() *Detector {
	return NewDetector(&config.DefaultConfig().Login)
}

func TestClassifyHomeURLIsSuccess(t *testing.T) {
	detector := newTestDetector()
	driver := browser.NewFakeDriver()
	driver.URL = "https://www.instagram.com/"

	outcome, err := detector.Classify(driver)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)
}

func TestClassifyHomeURLIgnoresTrailingSlash(t *testing.T) {
	detector := newTestDetector()
	driver := browser.NewFakeDriver()
	driver.URL = "https://www.instagram.com"

	outcome, err := detector.Classify(driver)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)
}

func TestClassifyChallengeURL(t *testing.T) {
	detector := newTestDetector()

	urls := []string{
		"https://www.instagram.com/challenge/action/",
		"https://www.instagram.com/accounts/login/two_factor?next=%2F",
		"https://www.instagram.com/checkpoint/dismiss/",
		"https://www.instagram.com/auth_platform/codeentry/",
		"https://www.instagram.com/accounts/suspended/",
	}
	for _, url := range urls {
		driver := browser.NewFakeDriver()
		driver.URL = url

		outcome, err := detector.Classify(driver)
		require.NoError(t, err)
		assert.Equal(t, OutcomeSecurityChallenge, outcome, "url: %s", url)
	}
}

func TestClassifyChallengeOutranksDomainFallback(t *testing.T) {
	detector := newTestDetector()
	driver := browser.NewFakeDriver()
	// On the service domain, but mid-challenge: must not be read as success
	driver.URL = "https://www.instagram.com/challenge/"
	driver.AddElement(`svg[aria-label="Home"]`)

	outcome, err := detector.Classify(driver)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSecurityChallenge, outcome)
}

func TestClassifyMarkerElementIsSuccess(t *testing.T) {
	detector := newTestDetector()
	driver := browser.NewFakeDriver()
	driver.URL = "https://www.instagram.com/accounts/onetap/?next=%2F"
	driver.AddElement(`svg[aria-label="Home"]`)

	outcome, err := detector.Classify(driver)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)
}

func TestClassifyLoginURLIsCredentialFailure(t *testing.T) {
	detector := newTestDetector()
	driver := browser.NewFakeDriver()
	driver.URL = "https://www.instagram.com/accounts/login/"

	outcome, err := detector.Classify(driver)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCredentialFailure, outcome)
}

func TestClassifyOnDomainFallbackIsSuccess(t *testing.T) {
	detector := newTestDetector()
	driver := browser.NewFakeDriver()
	driver.URL = "https://www.instagram.com/explore/"

	outcome, err := detector.Classify(driver)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)
}

func TestClassifyOffDomainIsUnknown(t *testing.T) {
	detector := newTestDetector()
	driver := browser.NewFakeDriver()
	driver.URL = "about:blank"

	outcome, err := detector.Classify(driver)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnknown, outcome)
}

func TestClassifyPropagatesDriverErrors(t *testing.T) {
	detector := newTestDetector()

	driver := browser.NewFakeDriver()
	driver.CurrentURLError = errors.New("browser gone")

	outcome, err := detector.Classify(driver)
	assert.Error(t, err)
	assert.Equal(t, OutcomeUnknown, outcome)

	driver = browser.NewFakeDriver()
	driver.URL = "https://www.instagram.com/accounts/onetap/"
	driver.FindElementError = errors.New("page crashed")

	outcome, err = detector.Classify(driver)
	assert.Error(t, err)
	assert.Equal(t, OutcomeUnknown, outcome)
}

func TestOutcomeDefinitive(t *testing.T) {
	assert.True(t, OutcomeSuccess.Definitive())
	assert.True(t, OutcomeCredentialFailure.Definitive())
	assert.True(t, OutcomeSecurityChallenge.Definitive())
	assert.False(t, OutcomeUnknown.Definitive())
	assert.False(t, OutcomeTimeout.Definitive())
}
