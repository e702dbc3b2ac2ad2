package credstore

import (
	"fmt"
	"strings"

	"github.com/docker/docker-credential-helpers/credentials"

	"github.com/wgdashboard/wgdash/pkg/log"
)

const (
	keyPrefix      = "wgdash://cross-server/"
	apiKeyUsername = "wg-dashboard-apikey"
)

// Store provides storage for cross-server API keys via a credential helper
type Store struct {
	credentialHelper credentials.Helper
}

// New creates a new API key store
func New(credentialHelper credentials.Helper) *Store {
	return &Store{
		credentialHelper: credentialHelper,
	}
}

// Key is the credential helper server URL under which the API key of the
// cross server with the given id is stored.
func Key(serverID string) string {
	return keyPrefix + serverID
}

// SaveAPIKey stores the API key for a cross server
func (s *Store) SaveAPIKey(serverID, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("empty API key for %s", serverID)
	}
	cred := &credentials.Credentials{
		ServerURL: Key(serverID),
		Username:  apiKeyUsername,
		Secret:    apiKey,
	}
	if err := s.credentialHelper.Add(cred); err != nil {
		return fmt.Errorf("storing API key for %s: %w", serverID, err)
	}

	log.Debugf("- Stored API key for %s", serverID)
	return nil
}

// APIKey retrieves the API key of a cross server
func (s *Store) APIKey(serverID string) (string, error) {
	_, secret, err := s.credentialHelper.Get(Key(serverID))
	if err != nil {
		if credentials.IsErrCredentialsNotFound(err) {
			return "", fmt.Errorf("API key not found for %s (run 'wgdash server add' again to store it): %w", serverID, err)
		}
		return "", fmt.Errorf("retrieving API key for %s: %w", serverID, err)
	}
	if secret == "" {
		return "", fmt.Errorf("empty API key found for %s", serverID)
	}
	return secret, nil
}

// Delete removes the API key of a cross server. A key that is already gone is
// not an error.
func (s *Store) Delete(serverID string) error {
	if err := s.credentialHelper.Delete(Key(serverID)); err != nil && !credentials.IsErrCredentialsNotFound(err) {
		return fmt.Errorf("deleting API key for %s: %w", serverID, err)
	}

	log.Debugf("- Deleted API key for %s", serverID)
	return nil
}

// ServerIDs lists the ids of every cross server that has a stored key.
func (s *Store) ServerIDs() ([]string, error) {
	all, err := s.credentialHelper.List()
	if err != nil {
		return nil, fmt.Errorf("listing API keys: %w", err)
	}
	var ids []string
	for serverURL := range all {
		if id, ok := strings.CutPrefix(serverURL, keyPrefix); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
