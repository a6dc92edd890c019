package accounts

import (
	"os"
)

// EnvironmentStore implements CredentialStore backed by the
// INSTAGRAM_ACCOUNTS environment variable. It is read-only and exists for
// compatibility with .env-based deployments.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (s *EnvironmentStore) Store(account *StoredAccount) error {
	return ErrInvalidCredentials
}

// Retrieve gets credentials for a username from INSTAGRAM_ACCOUNTS
func (s *EnvironmentStore) Retrieve(username string) (*StoredAccount, error) {
	accounts, err := s.List()
	if err != nil {
		return nil, err
	}

	for _, account := range accounts {
		if account.Username == username {
			return account, nil
		}
	}
	return nil, ErrCredentialsNotFound
}

// List parses INSTAGRAM_ACCOUNTS into stored accounts, in declaration
// order
func (s *EnvironmentStore) List() ([]*StoredAccount, error) {
	raw := os.Getenv("INSTAGRAM_ACCOUNTS")
	if raw == "" {
		return []*StoredAccount{}, nil
	}

	pool, err := Load(raw)
	if err != nil {
		return nil, err
	}

	accounts := make([]*StoredAccount, 0, pool.Size())
	for _, cred := range pool.creds {
		accounts = append(accounts, &StoredAccount{
			Username: cred.Username,
			Password: cred.Password,
		})
	}
	return accounts, nil
}

// Delete is not supported for environment variables
func (s *EnvironmentStore) Delete(username string) error {
	return ErrCredentialsNotFound
}

// Exists checks if a username appears in INSTAGRAM_ACCOUNTS
func (s *EnvironmentStore) Exists(username string) bool {
	account, err := s.Retrieve(username)
	return err == nil && account != nil
}
