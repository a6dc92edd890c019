package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrInvalidCredentials indicates the provided account data is unusable
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrCredentialsNotFound indicates no stored account matches the username
	ErrCredentialsNotFound = errors.New("credentials not found")
)

// StoredAccount represents a persisted login credential
type StoredAccount struct {
	Username     string    `json:"username"`
	Password     string    `json:"password"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving credentials
type CredentialStore interface {
	// Store saves credentials for a given account
	Store(account *StoredAccount) error

	// Retrieve gets credentials for a specific username
	Retrieve(username string) (*StoredAccount, error)

	// List returns all stored accounts
	List() ([]*StoredAccount, error)

	// Delete removes credentials for a specific username
	Delete(username string) error

	// Exists checks if credentials exist for a username
	Exists(username string) bool
}

// Manager handles credential storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a new credential manager with appropriate storage
// backends: system keychain first, encrypted file second, environment
// variables as last resort.
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	keyringStore, err := NewKeyringStore()
	if err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewMockManager creates a manager backed only by a mock store, for tests
func NewMockManager() (*Manager, *MockStore) {
	mock := NewMockStore()
	return &Manager{stores: []CredentialStore{mock}}, mock
}

// Store saves credentials using the first store that accepts them
func (m *Manager) Store(account *StoredAccount) error {
	if account == nil || account.Username == "" {
		return ErrInvalidCredentials
	}
	if account.Password == "" {
		return ErrInvalidCredentials
	}

	account.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(account); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return errors.New("no available credential stores")
}

// Retrieve gets credentials from the first store that has them
func (m *Manager) Retrieve(username string) (*StoredAccount, error) {
	for _, store := range m.stores {
		if account, err := store.Retrieve(username); err == nil && account != nil {
			return account, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, username)
}

// List returns all stored accounts across stores, deduplicated by
// username. Store precedence decides which copy wins.
func (m *Manager) List() ([]*StoredAccount, error) {
	seen := make(map[string]bool)
	var accounts []*StoredAccount

	for _, store := range m.stores {
		stored, err := store.List()
		if err != nil {
			continue
		}
		for _, account := range stored {
			if seen[account.Username] {
				continue
			}
			seen[account.Username] = true
			accounts = append(accounts, account)
		}
	}

	return accounts, nil
}

// Delete removes credentials for a username from every store that has them
func (m *Manager) Delete(username string) error {
	deleted := false
	for _, store := range m.stores {
		if store.Exists(username) {
			if err := store.Delete(username); err == nil {
				deleted = true
			}
		}
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrCredentialsNotFound, username)
	}
	return nil
}

// Exists checks whether any store holds credentials for the username
func (m *Manager) Exists(username string) bool {
	for _, store := range m.stores {
		if store.Exists(username) {
			return true
		}
	}
	return false
}

// PoolFromStore builds a credential pool from all stored accounts, in the
// order the stores return them
func PoolFromStore(store interface {
	List() ([]*StoredAccount, error)
}) (*Pool, error) {
	accounts, err := store.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list stored accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, ErrCredentialsNotFound
	}

	creds := make([]Credential, 0, len(accounts))
	for _, account := range accounts {
		creds = append(creds, Credential{
			Username: account.Username,
			Password: account.Password,
		})
	}

	return NewPool(creds), nil
}

// SanitizeAccount returns a copy with the password masked, for display
func SanitizeAccount(account *StoredAccount) *StoredAccount {
	sanitized := *account
	sanitized.Password = maskSecret(account.Password)
	return &sanitized
}

// maskSecret keeps the first two characters and masks the rest
func maskSecret(secret string) string {
	if len(secret) <= 2 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:2] + strings.Repeat("*", len(secret)-2)
}

// getConfigDir returns the application config directory, creating it if
// necessary
func getConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}

	dir := filepath.Join(base, "igsession")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return dir, nil
}
