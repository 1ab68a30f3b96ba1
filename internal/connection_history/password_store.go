package connection_history

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "lazyssms"

// ErrPasswordNotFound is returned when no password is stored for a profile
var ErrPasswordNotFound = errors.New("password not found")

// PasswordStore keeps profile passwords outside the history file
type PasswordStore interface {
	Save(profileID, password string) error
	Get(profileID string) (string, error)
	Delete(profileID string) error
}

// KeyringStore stores passwords in the OS keyring
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a keyring backed store
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: serviceName}
}

// Save stores a password securely in the keyring
func (s *KeyringStore) Save(profileID, password string) error {
	if password == "" {
		return nil
	}
	if err := keyring.Set(s.service, profileID, password); err != nil {
		return fmt.Errorf("failed to save password to keyring: %w", err)
	}
	return nil
}

// Get retrieves a password from the keyring
func (s *KeyringStore) Get(profileID string) (string, error) {
	password, err := keyring.Get(s.service, profileID)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrPasswordNotFound
		}
		return "", fmt.Errorf("failed to read password from keyring: %w", err)
	}
	return password, nil
}

// Delete removes a password from the keyring
func (s *KeyringStore) Delete(profileID string) error {
	err := keyring.Delete(s.service, profileID)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete password from keyring: %w", err)
	}
	return nil
}
