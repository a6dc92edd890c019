package accounts

import (
	"strings"

	"igsession/pkg/errors"
)

// Credential is one username/password pair used for a login attempt.
// Credentials are immutable once loaded.
type Credential struct {
	Username string
	Password string
}

// Pool is an ordered collection of credentials with a forward-only cursor.
// Insertion order is priority order; the cursor never wraps.
type Pool struct {
	creds  []Credential
	cursor int
}

// Load parses a comma-delimited list of username:password pairs into an
// ordered pool. The first colon separates username from password, so
// passwords may themselves contain colons. Malformed entries fail the
// whole load; no partial pool is returned.
func Load(raw string) (*Pool, error) {
	var creds []Credential

	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			return nil, errors.Newf(errors.ErrorTypeConfig,
				"credential entry %q is missing the username:password separator", entry)
		}

		username := strings.TrimSpace(parts[0])
		password := strings.TrimSpace(parts[1])
		if username == "" || password == "" {
			return nil, errors.Newf(errors.ErrorTypeConfig,
				"credential entry %q has an empty username or password", entry)
		}

		creds = append(creds, Credential{Username: username, Password: password})
	}

	if len(creds) == 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "no credentials configured")
	}

	return &Pool{creds: creds}, nil
}

// NewPool builds a pool directly from an ordered credential slice
func NewPool(creds []Credential) *Pool {
	copied := make([]Credential, len(creds))
	copy(copied, creds)
	return &Pool{creds: copied}
}

// Current returns the credential at the cursor, or false if the pool is
// exhausted
func (p *Pool) Current() (Credential, bool) {
	if p.Exhausted() {
		return Credential{}, false
	}
	return p.creds[p.cursor], true
}

// Advance moves the cursor forward one position and returns the new
// current credential. Once exhausted, further calls stay exhausted.
func (p *Pool) Advance() (Credential, bool) {
	if p.cursor < len(p.creds) {
		p.cursor++
	}
	return p.Current()
}

// Exhausted reports whether every credential has been consumed
func (p *Pool) Exhausted() bool {
	return p.cursor >= len(p.creds)
}

// Remaining returns the number of untried credentials, including the
// current one
func (p *Pool) Remaining() int {
	if p.Exhausted() {
		return 0
	}
	return len(p.creds) - p.cursor
}

// Size returns the total number of credentials loaded into the pool
func (p *Pool) Size() int {
	return len(p.creds)
}

// Cursor returns the current cursor position
func (p *Pool) Cursor() int {
	return p.cursor
}
