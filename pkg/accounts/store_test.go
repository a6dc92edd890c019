package accounts

import (
	"path/filepath"
	"testing"
	"time"
)

func TestCredentialManager(t *testing.T) {
	manager, mockStore := NewMockManager()

	account := &StoredAccount{
		Username:     "testuser",
		Password:     "testpassword",
		LastModified: time.Now(),
	}

	if err := manager.Store(account); err != nil {
		t.Errorf("Failed to store account: %v", err)
	}

	retrieved, err := manager.Retrieve("testuser")
	if err != nil {
		t.Fatalf("Failed to retrieve account: %v", err)
	}
	if retrieved.Username != account.Username {
		t.Errorf("Username mismatch: got %s, want %s", retrieved.Username, account.Username)
	}
	if retrieved.Password != account.Password {
		t.Errorf("Password mismatch: got %s, want %s", retrieved.Password, account.Password)
	}

	stored, err := manager.List()
	if err != nil {
		t.Errorf("Failed to list accounts: %v", err)
	}
	if len(stored) != 1 {
		t.Errorf("Expected one account in list, got %d", len(stored))
	}

	// Sanitization masks the password but not the username
	sanitized := SanitizeAccount(account)
	if sanitized.Password == account.Password {
		t.Error("Password should be masked")
	}
	if sanitized.Username != account.Username {
		t.Error("Username should not be masked")
	}

	if err := manager.Delete("testuser"); err != nil {
		t.Errorf("Failed to delete account: %v", err)
	}
	if mockStore.Exists("testuser") {
		t.Error("Account still exists after deletion")
	}
}

func TestManagerRejectsInvalidAccounts(t *testing.T) {
	manager, _ := NewMockManager()

	if err := manager.Store(nil); err == nil {
		t.Error("Expected error storing nil account")
	}
	if err := manager.Store(&StoredAccount{Password: "x"}); err == nil {
		t.Error("Expected error storing account without username")
	}
	if err := manager.Store(&StoredAccount{Username: "x"}); err == nil {
		t.Error("Expected error storing account without password")
	}
}

func TestEncryptedFileStoreRoundTrip(t *testing.T) {
	t.Setenv("IGSESSION_PASSPHRASE", "test-passphrase")

	path := filepath.Join(t.TempDir(), "credentials.enc")
	store, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	account := &StoredAccount{
		Username:     "enc_user",
		Password:     "enc_pass",
		LastModified: time.Now(),
	}
	if err := store.Store(account); err != nil {
		t.Fatalf("Failed to store account: %v", err)
	}

	// A second store with the same passphrase reads the same file
	reopened, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatalf("Failed to reopen encrypted store: %v", err)
	}

	retrieved, err := reopened.Retrieve("enc_user")
	if err != nil {
		t.Fatalf("Failed to retrieve account: %v", err)
	}
	if retrieved.Password != "enc_pass" {
		t.Errorf("Password mismatch: got %s", retrieved.Password)
	}

	if !reopened.Exists("enc_user") {
		t.Error("Exists should report the stored account")
	}
	if reopened.Exists("someone_else") {
		t.Error("Exists should not report unknown accounts")
	}

	if err := reopened.Delete("enc_user"); err != nil {
		t.Errorf("Failed to delete account: %v", err)
	}
	if _, err := reopened.Retrieve("enc_user"); err == nil {
		t.Error("Expected retrieval to fail after deletion")
	}
}

func TestEnvironmentStoreList(t *testing.T) {
	t.Setenv("INSTAGRAM_ACCOUNTS", "first:one,second:two")

	store := NewEnvironmentStore()
	accounts, err := store.List()
	if err != nil {
		t.Fatalf("Failed to list environment accounts: %v", err)
	}

	if len(accounts) != 2 {
		t.Fatalf("Expected 2 accounts, got %d", len(accounts))
	}
	if accounts[0].Username != "first" || accounts[1].Username != "second" {
		t.Errorf("Accounts out of order: %+v", accounts)
	}

	if !store.Exists("second") {
		t.Error("Exists should find declared accounts")
	}
	if store.Store(&StoredAccount{Username: "x", Password: "y"}) == nil {
		t.Error("Environment store should be read-only")
	}
}

func TestPoolFromStore(t *testing.T) {
	_, mockStore := NewMockManager()
	for _, cred := range []StoredAccount{
		{Username: "alpha", Password: "a"},
		{Username: "beta", Password: "b"},
	} {
		credCopy := cred
		if err := mockStore.Store(&credCopy); err != nil {
			t.Fatalf("Failed to seed store: %v", err)
		}
	}

	pool, err := PoolFromStore(mockStore)
	if err != nil {
		t.Fatalf("PoolFromStore failed: %v", err)
	}
	if pool.Size() != 2 {
		t.Errorf("Expected 2 credentials, got %d", pool.Size())
	}

	empty := NewMockStore()
	if _, err := PoolFromStore(empty); err == nil {
		t.Error("Expected error for empty store")
	}
}
