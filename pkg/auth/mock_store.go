package auth

import "sync"

// MockStore is an in-memory Store for tests, with per-method error
// injection.
type MockStore struct {
	creds map[string]*Credential
	mu    sync.RWMutex

	SaveError     error
	RetrieveError error
	ListError     error
	DeleteError   error
}

func NewMockStore() *MockStore {
	return &MockStore{creds: make(map[string]*Credential)}
}

func (m *MockStore) Save(cred *Credential) error {
	if m.SaveError != nil {
		return m.SaveError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if cred == nil || cred.Provider == "" {
		return ErrInvalidCredentials
	}
	c := *cred
	m.creds[cred.Provider] = &c
	return nil
}

func (m *MockStore) Retrieve(provider string) (*Credential, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if provider == "" {
		return nil, ErrInvalidCredentials
	}
	cred, ok := m.creds[provider]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	c := *cred
	return &c, nil
}

func (m *MockStore) List() ([]*Credential, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Credential
	for _, cred := range m.creds {
		c := *cred
		out = append(out, &c)
	}
	return out, nil
}

func (m *MockStore) Delete(provider string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if provider == "" {
		return ErrInvalidCredentials
	}
	if _, ok := m.creds[provider]; !ok {
		return ErrCredentialsNotFound
	}
	delete(m.creds, provider)
	return nil
}

func (m *MockStore) Exists(provider string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.creds[provider]
	return ok
}

func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.creds)
}

// NewMockManager builds a Manager backed only by a MockStore.
func NewMockManager() (*Manager, *MockStore) {
	store := NewMockStore()
	return &Manager{stores: []Store{store}}, store
}

// NewManagerWithStores builds a Manager over an explicit store chain.
func NewManagerWithStores(stores ...Store) *Manager {
	return &Manager{stores: stores}
}
