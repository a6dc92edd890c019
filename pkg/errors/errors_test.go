package errors

import (
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrorTypeDriver, "browser disconnected")
	if got := err.Error(); got != "driver error: browser disconnected" {
		t.Errorf("Unexpected message: %s", got)
	}

	err = Newf(ErrorTypeTimeout, "no definitive state after %d polls", 3)
	if !strings.Contains(err.Error(), "after 3 polls") {
		t.Errorf("Formatted message lost its argument: %s", err.Error())
	}

	err = ForAccount(ErrorTypeCredential, "userA", "password rejected")
	if !strings.Contains(err.Error(), "account userA") {
		t.Errorf("Account error should name the account: %s", err.Error())
	}
}

func TestIsRecoverable(t *testing.T) {
	recoverable := []ErrorType{ErrorTypeCredential, ErrorTypeChallenge, ErrorTypeTimeout}
	for _, et := range recoverable {
		if !IsRecoverable(et) {
			t.Errorf("%s should be recoverable by failover", et)
		}
	}

	fatal := []ErrorType{ErrorTypeConfig, ErrorTypeDriver, ErrorTypeUnknown}
	for _, et := range fatal {
		if IsRecoverable(et) {
			t.Errorf("%s should not be recoverable", et)
		}
	}
}
