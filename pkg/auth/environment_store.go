package auth

import (
	"os"
	"time"
)

// EnvKey is the environment variable holding an API key
const EnvKey = "MATCHHARVEST_STEAM_API_KEY"

// EnvironmentStore reads a single credential from the environment. It
// cannot be written to.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(cred *Credential) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment key under any requested name
func (e *EnvironmentStore) Retrieve(name string) (*Credential, error) {
	key := os.Getenv(EnvKey)
	if key == "" {
		return nil, ErrCredentialsNotFound
	}
	if name == "" {
		name = "environment"
	}

	return &Credential{
		Name:   name,
		APIKey: key,
	}, nil
}

// List returns the environment credential if the variable is set
func (e *EnvironmentStore) List() ([]*Credential, error) {
	cred, err := e.Retrieve("")
	if err != nil {
		return []*Credential{}, nil
	}
	cred.LastModified = time.Time{}
	return []*Credential{cred}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if an environment key is set
func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv(EnvKey) != ""
}
