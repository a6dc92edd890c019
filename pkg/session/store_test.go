package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"igsession/pkg/browser"
)

func testCookies(value string) []browser.Cookie {
	return []browser.Cookie{
		{
			Name:    "sessionid",
			Value:   value,
			Domain:  ".instagram.com",
			Path:    "/",
			Expires: time.Now().Add(24 * time.Hour),
			Secure:  true,
		},
		{
			Name:   "csrftoken",
			Value:  "token-" + value,
			Domain: ".instagram.com",
			Path:   "/",
		},
	}
}

func TestSaveAndLoad(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if _, ok := store.Load("alice"); ok {
		t.Error("Load should report absent before any save")
	}
	if store.Exists("alice") {
		t.Error("Exists should be false before any save")
	}

	if err := store.Save("alice", testCookies("v1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	cookies, ok := store.Load("alice")
	if !ok {
		t.Fatal("Load should find the saved record")
	}
	if len(cookies) != 2 {
		t.Fatalf("Expected 2 cookies, got %d", len(cookies))
	}
	if cookies[0].Value != "v1" {
		t.Errorf("Cookie value mismatch: got %s", cookies[0].Value)
	}
	if !store.Exists("alice") {
		t.Error("Exists should be true after save")
	}
}

func TestSaveOverwritesPrevious(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := store.Save("alice", testCookies("old")); err != nil {
		t.Fatalf("First save failed: %v", err)
	}
	if err := store.Save("alice", testCookies("new")); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	cookies, ok := store.Load("alice")
	if !ok {
		t.Fatal("Load should find the record")
	}
	if cookies[0].Value != "new" {
		t.Errorf("Expected the later save to win, got %s", cookies[0].Value)
	}
}

func TestLoadRejectsCorruptRecord(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	path := filepath.Join(dir, "session_bob.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	if _, ok := store.Load("bob"); ok {
		t.Error("Load should reject a corrupt record")
	}
}

func TestLoadRejectsMismatchedUsername(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := store.Save("carol", testCookies("v1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Simulate a record renamed to another user's slot
	src := filepath.Join(dir, "session_carol.json")
	dst := filepath.Join(dir, "session_dave.json")
	if err := os.Rename(src, dst); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	if _, ok := store.Load("dave"); ok {
		t.Error("Load should reject a record whose username does not match")
	}
}

func TestClear(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := store.Save("alice", testCookies("v1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Clear("alice"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if store.Exists("alice") {
		t.Error("Record should be gone after Clear")
	}

	// Clearing an absent record is not an error
	if err := store.Clear("alice"); err != nil {
		t.Errorf("Clearing a missing record should succeed, got %v", err)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := store.Save("alice", testCookies("v1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".tmp" {
			t.Errorf("Temp file left behind: %s", entry.Name())
		}
	}
}

func TestList(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	for _, name := range []string{"alice", "bob"} {
		if err := store.Save(name, testCookies(name)); err != nil {
			t.Fatalf("Save failed for %s: %v", name, err)
		}
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(records))
	}
}

func TestUsernameCannotEscapeDirectory(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := store.Save("../escape", testCookies("v1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "session_escape.json")); err == nil {
		t.Error("Record escaped the session directory")
	}
}
