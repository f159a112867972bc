package auth

import (
	"os"
	"time"
)

// EnvironmentStore reads credentials from environment variables. It is
// read-only and serves CI and container deployments.
type EnvironmentStore struct{}

func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Save(cred *Credential) error {
	return ErrStoreUnavailable
}

// Retrieve builds a credential from REPSCOUT_API_KEY and
// REPSCOUT_SESSION_COOKIE. The provider name is not encoded in the
// environment, so any requested provider gets the same secrets.
func (e *EnvironmentStore) Retrieve(provider string) (*Credential, error) {
	apiKey := os.Getenv("REPSCOUT_API_KEY")
	cookie := os.Getenv("REPSCOUT_SESSION_COOKIE")
	if apiKey == "" && cookie == "" {
		return nil, ErrCredentialsNotFound
	}

	if provider == "" {
		provider = "default"
	}
	return &Credential{
		Provider:      provider,
		APIKey:        apiKey,
		SessionCookie: cookie,
		LastModified:  time.Now(),
	}, nil
}

func (e *EnvironmentStore) List() ([]*Credential, error) {
	cred, err := e.Retrieve("")
	if err != nil {
		return []*Credential{}, nil
	}
	return []*Credential{cred}, nil
}

func (e *EnvironmentStore) Delete(provider string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Exists(provider string) bool {
	return os.Getenv("REPSCOUT_API_KEY") != "" || os.Getenv("REPSCOUT_SESSION_COOKIE") != ""
}
