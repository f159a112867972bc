package auth

import "repscout/pkg/config"

// SearchProvider is the provider slug the scrape pipeline reads stored
// credentials from when the configuration leaves them unset.
const SearchProvider = "search"

// FillSearch copies the stored search provider credential into cfg when it
// carries no credentials of its own. Explicit configuration always wins over
// the store chain.
func (m *Manager) FillSearch(cfg *config.SearchConfig) {
	if cfg.APIKey != "" || cfg.SessionCookie != "" {
		return
	}

	cred, err := m.Retrieve(SearchProvider)
	if err != nil {
		return
	}
	cfg.APIKey = cred.APIKey
	cfg.SessionCookie = cred.SessionCookie
}
