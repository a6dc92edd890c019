package accounts

import (
	"errors"
	"testing"

	apperrors "igsession/pkg/errors"
)

func TestLoadOrderedPool(t *testing.T) {
	pool, err := Load("a:1,b:2")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if pool.Size() != 2 {
		t.Fatalf("expected 2 credentials, got %d", pool.Size())
	}

	first, ok := pool.Current()
	if !ok || first.Username != "a" || first.Password != "1" {
		t.Errorf("unexpected first credential: %+v", first)
	}

	second, ok := pool.Advance()
	if !ok || second.Username != "b" || second.Password != "2" {
		t.Errorf("unexpected second credential: %+v", second)
	}
}

func TestLoadTrimsWhitespace(t *testing.T) {
	pool, err := Load(" user1 : pass1 , user2:pass2 ")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cred, _ := pool.Current()
	if cred.Username != "user1" || cred.Password != "pass1" {
		t.Errorf("whitespace not trimmed: %+v", cred)
	}
}

func TestLoadPasswordMayContainColon(t *testing.T) {
	pool, err := Load("user:pa:ss")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cred, _ := pool.Current()
	if cred.Password != "pa:ss" {
		t.Errorf("expected password pa:ss, got %q", cred.Password)
	}
}

func TestLoadRejectsMalformedEntry(t *testing.T) {
	cases := []string{
		"a:1,bad,c:3",
		":password",
		"username:",
		"",
		" , ,",
	}

	for _, raw := range cases {
		pool, err := Load(raw)
		if err == nil {
			t.Errorf("Load(%q) should have failed", raw)
			continue
		}
		if pool != nil {
			t.Errorf("Load(%q) returned a partial pool", raw)
		}

		var appErr *apperrors.Error
		if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrorTypeConfig {
			t.Errorf("Load(%q) returned wrong error type: %v", raw, err)
		}
	}
}

func TestCursorOnlyMovesForward(t *testing.T) {
	pool, err := Load("a:1,b:2")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if pool.Remaining() != 2 {
		t.Errorf("expected 2 remaining, got %d", pool.Remaining())
	}

	pool.Advance()
	if pool.Remaining() != 1 {
		t.Errorf("expected 1 remaining, got %d", pool.Remaining())
	}

	if _, ok := pool.Advance(); ok {
		t.Error("expected pool to be exhausted")
	}
	if !pool.Exhausted() {
		t.Error("exhausted pool not reported as exhausted")
	}

	// Advancing past exhaustion stays exhausted, never wraps
	if _, ok := pool.Advance(); ok {
		t.Error("pool wrapped after exhaustion")
	}
	if pool.Remaining() != 0 {
		t.Errorf("expected 0 remaining, got %d", pool.Remaining())
	}
	if _, ok := pool.Current(); ok {
		t.Error("Current returned a credential after exhaustion")
	}
}
