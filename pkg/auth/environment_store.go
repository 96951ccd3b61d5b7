package auth

import (
	"os"
	"time"
)

// Environment variables read by EnvironmentStore
const (
	EnvCookie    = "DYSCRAPER_COOKIE"
	EnvUserAgent = "DYSCRAPER_USER_AGENT"

	// DefaultAccount names the environment session
	DefaultAccount = "default"
)

// EnvironmentStore is a read-only CredentialStore over environment variables
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment session. It answers only to the empty
// name and "default".
func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	cookie := os.Getenv(EnvCookie)
	if cookie == "" || (name != "" && name != DefaultAccount) {
		return nil, ErrCredentialsNotFound
	}
	name = DefaultAccount

	return &Account{
		Name:         name,
		Cookie:       cookie,
		UserAgent:    os.Getenv(EnvUserAgent),
		LastModified: time.Now(),
	}, nil
}

// List returns a single account if the cookie variable is set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv(EnvCookie) != ""
}
