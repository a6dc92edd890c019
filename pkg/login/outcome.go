package login

import "igsession/pkg/browser"

// Outcome classifies the observable page state after one detection pass
type Outcome int

const (
	// OutcomeUnknown means no signal resolved yet; the page may still be
	// transitioning
	OutcomeUnknown Outcome = iota

	// OutcomeSuccess means the session is authenticated
	OutcomeSuccess

	// OutcomeCredentialFailure means the service rejected the credential
	OutcomeCredentialFailure

	// OutcomeSecurityChallenge means the service demands verification
	// beyond the password
	OutcomeSecurityChallenge

	// OutcomeTimeout means no definitive signal arrived within the
	// attempt budget
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeCredentialFailure:
		return "credential_failure"
	case OutcomeSecurityChallenge:
		return "security_challenge"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Definitive reports whether the outcome terminates the poll loop
func (o Outcome) Definitive() bool {
	switch o {
	case OutcomeSuccess, OutcomeCredentialFailure, OutcomeSecurityChallenge:
		return true
	default:
		return false
	}
}

// Status is the terminal state of a whole failover run
type Status int

const (
	// StatusSuccess means one credential authenticated
	StatusSuccess Status = iota

	// StatusAccountsExhausted means every credential in the pool failed
	StatusAccountsExhausted

	// StatusDriverFailure means the automation surface itself became
	// unusable
	StatusDriverFailure

	// StatusCancelled means the caller cancelled the run
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusAccountsExhausted:
		return "accounts_exhausted"
	case StatusDriverFailure:
		return "driver_failure"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result is returned to the caller after a failover run
type Result struct {
	Status   Status
	Username string
	Cookies  []browser.Cookie

	// Err carries detail for DriverFailure results
	Err error
}
