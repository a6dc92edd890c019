package login

import (
	"context"
	"errors"
	"time"

	"igsession/pkg/accounts"
	"igsession/pkg/browser"
	"igsession/pkg/config"
	"igsession/pkg/logger"
	"igsession/pkg/ratelimit"
	"igsession/pkg/retry"
	"igsession/pkg/session"
)

// SleepFunc waits for a duration or until the context is cancelled. It is
// injectable so backoff behavior is testable without wall-clock delay.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Orchestrator composes the pool, limiter, detector and session store
// into the end-to-end retry/failover protocol. One orchestrator owns
// exactly one driver and runs credentials strictly sequentially.
type Orchestrator struct {
	driver   browser.Driver
	limiter  ratelimit.Pacer
	sessions session.Store
	detector *Detector
	cfg      *config.LoginConfig
	backoff  retry.BackoffStrategy
	sleep    SleepFunc
	log      logger.Logger
}

// Option customizes an Orchestrator
type Option func(*Orchestrator)

// WithBackoff overrides the inter-attempt backoff schedule
func WithBackoff(backoff retry.BackoffStrategy) Option {
	return func(o *Orchestrator) { o.backoff = backoff }
}

// WithSleep overrides the wait mechanism, for tests
func WithSleep(sleep SleepFunc) Option {
	return func(o *Orchestrator) { o.sleep = sleep }
}

// WithLogger overrides the logger
func WithLogger(log logger.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// NewOrchestrator creates a login orchestrator
func NewOrchestrator(driver browser.Driver, limiter ratelimit.Pacer, sessions session.Store, cfg *config.LoginConfig, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		driver:   driver,
		limiter:  limiter,
		sessions: sessions,
		detector: NewDetector(cfg),
		cfg:      cfg,
		backoff:  retry.NewLinearBackoff(cfg.PollBaseDelay),
		sleep:    retry.Wait,
		log:      logger.GetLogger(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// AttemptLogin walks the credential pool in order until one credential
// authenticates, the pool is exhausted, the driver fails, or the context
// is cancelled. The pool cursor only ever moves forward, once per failed
// credential, and a session record is written only on a confirmed
// success.
func (o *Orchestrator) AttemptLogin(ctx context.Context, pool *accounts.Pool) Result {
	if pool == nil || pool.Remaining() == 0 {
		o.log.Warn("credential pool is empty")
		return Result{Status: StatusAccountsExhausted}
	}

	for {
		cred, ok := pool.Current()
		if !ok {
			o.log.Error("all accounts failed to login")
			return Result{Status: StatusAccountsExhausted}
		}

		if err := ctx.Err(); err != nil {
			return Result{Status: StatusCancelled, Err: err}
		}

		result, outcome, err := o.attemptCredential(ctx, cred)
		if err != nil {
			if isCancellation(err) {
				return Result{Status: StatusCancelled, Err: err}
			}
			o.log.ErrorWithFields("browser driver failed", map[string]interface{}{
				"username": cred.Username,
				"error":    err.Error(),
			})
			return Result{Status: StatusDriverFailure, Err: err}
		}

		if outcome == OutcomeSuccess {
			return result
		}

		switch outcome {
		case OutcomeTimeout:
			// Logged apart from credential outcomes: a timeout may mean
			// infrastructure trouble rather than account status
			o.log.WarnWithFields("login attempt timed out", map[string]interface{}{
				"username": cred.Username,
				"attempts": o.cfg.PollAttempts,
			})
		default:
			o.log.WarnWithFields("login attempt failed", map[string]interface{}{
				"username": cred.Username,
				"outcome":  outcome.String(),
			})
		}

		if next, ok := pool.Advance(); ok {
			o.log.InfoWithFields("switching to backup account", map[string]interface{}{
				"username":  next.Username,
				"remaining": pool.Remaining(),
			})
		}
	}
}

// attemptCredential runs the full login flow for one credential. The
// returned error indicates a driver failure or cancellation; recoverable
// outcomes come back as the Outcome.
func (o *Orchestrator) attemptCredential(ctx context.Context, cred accounts.Credential) (Result, Outcome, error) {
	o.log.InfoWithFields("attempting login", map[string]interface{}{
		"username": cred.Username,
	})

	o.limiter.WaitForLogin()

	// A previously saved session skips the form entirely when still valid
	if cookies, ok := o.sessions.Load(cred.Username); ok {
		outcome, err := o.resumeSession(ctx, cred.Username, cookies)
		if err != nil {
			return Result{}, OutcomeUnknown, err
		}
		if outcome == OutcomeSuccess {
			o.log.InfoWithFields("reused existing session", map[string]interface{}{
				"username": cred.Username,
			})
			return Result{Status: StatusSuccess, Username: cred.Username, Cookies: cookies}, OutcomeSuccess, nil
		}

		o.log.InfoWithFields("existing session invalid, proceeding with fresh login", map[string]interface{}{
			"username": cred.Username,
		})
		if err := o.sessions.Clear(cred.Username); err != nil {
			o.log.WithError(err).Warn("failed to clear stale session")
		}
	}

	if err := o.submitLoginForm(ctx, cred); err != nil {
		return Result{}, OutcomeUnknown, err
	}

	o.dismissPopups()

	outcome, err := o.pollOutcome(ctx)
	if err != nil {
		return Result{}, OutcomeUnknown, err
	}

	if outcome != OutcomeSuccess {
		return Result{}, outcome, nil
	}

	cookies, err := o.driver.Cookies()
	if err != nil {
		return Result{}, OutcomeUnknown, err
	}

	if err := o.sessions.Save(cred.Username, cookies); err != nil {
		// The login itself is confirmed; a persistence failure only costs
		// session reuse on the next run
		o.log.WithError(err).Warn("failed to persist session")
	}

	o.log.InfoWithFields("successfully logged in", map[string]interface{}{
		"username": cred.Username,
	})

	return Result{Status: StatusSuccess, Username: cred.Username, Cookies: cookies}, OutcomeSuccess, nil
}

// resumeSession injects stored cookies and checks whether they still
// authenticate
func (o *Orchestrator) resumeSession(ctx context.Context, username string, cookies []browser.Cookie) (Outcome, error) {
	o.limiter.WaitForRequest()
	if err := o.driver.Navigate(o.cfg.HomeURL); err != nil {
		return OutcomeUnknown, err
	}

	if err := o.driver.SetCookies(cookies); err != nil {
		return OutcomeUnknown, err
	}

	// Reload so the injected cookies take effect
	o.limiter.WaitForRequest()
	if err := o.driver.Navigate(o.cfg.HomeURL); err != nil {
		return OutcomeUnknown, err
	}

	if err := ctx.Err(); err != nil {
		return OutcomeUnknown, err
	}

	return o.detector.Classify(o.driver)
}

// submitLoginForm drives the browser through the login form
func (o *Orchestrator) submitLoginForm(ctx context.Context, cred accounts.Credential) error {
	o.limiter.WaitForRequest()
	if err := o.driver.Navigate(o.cfg.LoginURL); err != nil {
		return err
	}

	if err := o.driver.SetFieldValue(o.cfg.UsernameField, cred.Username); err != nil {
		return err
	}
	if err := o.driver.SetFieldValue(o.cfg.PasswordField, cred.Password); err != nil {
		return err
	}
	if err := o.driver.Click(o.cfg.SubmitButton); err != nil {
		return err
	}

	o.log.Debug("login form submitted")

	// Give the service time to process the submission before the first
	// state check
	return o.sleep(ctx, o.cfg.SubmitSettle)
}

// dismissPopups clicks through "save login info" and notification
// prompts, best-effort
func (o *Orchestrator) dismissPopups() {
	for _, selector := range o.cfg.PopupDismissSelectors {
		el, found, err := o.driver.FindElement(selector)
		if err != nil || !found {
			continue
		}
		if err := el.Click(); err == nil {
			o.log.WithField("selector", selector).Debug("dismissed popup")
		}
	}
}

// pollOutcome classifies the page state up to the attempt budget, with
// increasing backoff between attempts. The first definitive outcome wins;
// an exhausted budget is a Timeout.
func (o *Orchestrator) pollOutcome(ctx context.Context) (Outcome, error) {
	for attempt := 1; attempt <= o.cfg.PollAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return OutcomeUnknown, err
		}

		outcome, err := o.detector.Classify(o.driver)
		if err != nil {
			return OutcomeUnknown, err
		}
		if outcome.Definitive() {
			return outcome, nil
		}

		if attempt < o.cfg.PollAttempts {
			if err := o.sleep(ctx, o.backoff.NextDelay(attempt)); err != nil {
				return OutcomeUnknown, err
			}
		}
	}

	return OutcomeTimeout, nil
}

// isCancellation reports whether the error came from context cancellation
// rather than the driver
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
