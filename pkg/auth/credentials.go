package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Credential holds the secrets for one search or directory provider.
type Credential struct {
	Provider      string    `json:"provider"`
	APIKey        string    `json:"api_key,omitempty"`
	SessionCookie string    `json:"session_cookie,omitempty"`
	LastModified  time.Time `json:"last_modified"`
}

// Store persists provider credentials.
type Store interface {
	Save(cred *Credential) error
	Retrieve(provider string) (*Credential, error)
	List() ([]*Credential, error)
	Delete(provider string) error
	Exists(provider string) bool
}

var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)

// Manager chains credential stores: the system keychain when available,
// then an encrypted file, then environment variables as read-only
// fallback.
type Manager struct {
	stores []Store
}

// NewManager wires the default store chain.
func NewManager() (*Manager, error) {
	var stores []Store

	if ks, err := NewKeyringStore(); err == nil {
		stores = append(stores, ks)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	enc, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, enc)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// Save writes a credential to the first store that accepts it.
func (m *Manager) Save(cred *Credential) error {
	if cred == nil || cred.Provider == "" {
		return ErrInvalidCredentials
	}
	if cred.APIKey == "" && cred.SessionCookie == "" {
		return errors.New("credential needs an api key or session cookie")
	}

	cred.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Save(cred); err == nil {
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

// Retrieve returns a provider's credential from the first store holding it.
func (m *Manager) Retrieve(provider string) (*Credential, error) {
	for _, store := range m.stores {
		if cred, err := store.Retrieve(provider); err == nil && cred != nil {
			return cred, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, provider)
}

// List merges credentials across all stores, keeping the most recently
// modified version per provider.
func (m *Manager) List() ([]*Credential, error) {
	byProvider := make(map[string]*Credential)
	for _, store := range m.stores {
		creds, err := store.List()
		if err != nil {
			continue
		}
		for _, cred := range creds {
			if existing, ok := byProvider[cred.Provider]; !ok || cred.LastModified.After(existing.LastModified) {
				byProvider[cred.Provider] = cred
			}
		}
	}

	var out []*Credential
	for _, cred := range byProvider {
		out = append(out, cred)
	}
	return out, nil
}

// Delete removes a provider's credential from every store that holds it.
func (m *Manager) Delete(provider string) error {
	var deleted bool
	var lastErr error
	for _, store := range m.stores {
		if err := store.Delete(provider); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}
	if deleted {
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	return fmt.Errorf("%w: %s", ErrCredentialsNotFound, provider)
}

// Sanitize returns a copy with secret material masked, for display.
func Sanitize(cred *Credential) *Credential {
	if cred == nil {
		return nil
	}
	return &Credential{
		Provider:      cred.Provider,
		APIKey:        maskString(cred.APIKey),
		SessionCookie: maskString(cred.SessionCookie),
		LastModified:  cred.LastModified,
	}
}

func maskString(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "repscout")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "repscout")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			configDir = filepath.Join(xdg, "repscout")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "repscout")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}
