package accounts

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "igsession"
	keyringPrefix  = "account_"
	keyringIndex   = "account_index"
)

// KeyringStore implements CredentialStore using the system keychain
type KeyringStore struct{}

// NewKeyringStore creates a new keyring-based credential store
func NewKeyringStore() (*KeyringStore, error) {
	// Test if keyring is available
	testKey := "test_availability"
	err := keyring.Set(keyringService, testKey, "test")
	if err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves credentials to the system keychain
func (k *KeyringStore) Store(account *StoredAccount) error {
	if account == nil || account.Username == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	key := keyringPrefix + account.Username
	if err := keyring.Set(keyringService, key, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	return k.addToIndex(account.Username)
}

// Retrieve gets credentials from the system keychain
func (k *KeyringStore) Retrieve(username string) (*StoredAccount, error) {
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	key := keyringPrefix + username
	data, err := keyring.Get(keyringService, key)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var account StoredAccount
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return &account, nil
}

// List returns all accounts recorded in the keyring index
func (k *KeyringStore) List() ([]*StoredAccount, error) {
	usernames, err := k.readIndex()
	if err != nil {
		return []*StoredAccount{}, nil
	}

	var accounts []*StoredAccount
	for _, username := range usernames {
		account, err := k.Retrieve(username)
		if err != nil {
			continue
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}

// Delete removes credentials from the system keychain
func (k *KeyringStore) Delete(username string) error {
	if username == "" {
		return ErrInvalidCredentials
	}

	key := keyringPrefix + username
	if err := keyring.Delete(keyringService, key); err != nil {
		if err == keyring.ErrNotFound {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	return k.removeFromIndex(username)
}

// Exists checks if credentials exist in the keychain
func (k *KeyringStore) Exists(username string) bool {
	if username == "" {
		return false
	}
	_, err := keyring.Get(keyringService, keyringPrefix+username)
	return err == nil
}

// readIndex reads the comma-delimited account index entry. The keychain
// has no enumeration API, so the index is a dedicated entry.
func (k *KeyringStore) readIndex() ([]string, error) {
	data, err := keyring.Get(keyringService, keyringIndex)
	if err != nil {
		return nil, err
	}
	var usernames []string
	for _, name := range strings.Split(data, ",") {
		if name = strings.TrimSpace(name); name != "" {
			usernames = append(usernames, name)
		}
	}
	return usernames, nil
}

func (k *KeyringStore) writeIndex(usernames []string) error {
	sort.Strings(usernames)
	return keyring.Set(keyringService, keyringIndex, strings.Join(usernames, ","))
}

func (k *KeyringStore) addToIndex(username string) error {
	usernames, _ := k.readIndex()
	for _, name := range usernames {
		if name == username {
			return nil
		}
	}
	return k.writeIndex(append(usernames, username))
}

func (k *KeyringStore) removeFromIndex(username string) error {
	usernames, err := k.readIndex()
	if err != nil {
		return nil
	}
	filtered := usernames[:0]
	for _, name := range usernames {
		if name != username {
			filtered = append(filtered, name)
		}
	}
	return k.writeIndex(filtered)
}
