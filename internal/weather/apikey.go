package weather

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/koreawook/ClockApp/internal/constants"
)

var (
	// ErrNoAPIKey is returned when no OpenWeatherMap key is stored
	ErrNoAPIKey = errors.New("no OpenWeatherMap API key in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be used
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// KeyStore keeps the OpenWeatherMap API key in the OS keyring.
type KeyStore struct {
	service string
	user    string
}

// NewKeyStore returns the store for the application keyring entry.
func NewKeyStore() *KeyStore {
	return &KeyStore{service: constants.AppName, user: constants.KeyringWeatherUser}
}

// APIKey returns the stored key.
func (k *KeyStore) APIKey() (string, error) {
	key, err := keyring.Get(k.service, k.user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoAPIKey
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return key, nil
}

// SetAPIKey stores key, replacing any previous value.
func (k *KeyStore) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("API key cannot be empty")
	}
	if err := keyring.Set(k.service, k.user, key); err != nil {
		return fmt.Errorf("failed to store API key in keyring: %w", err)
	}
	return nil
}

// DeleteAPIKey removes the stored key.
func (k *KeyStore) DeleteAPIKey() error {
	if err := keyring.Delete(k.service, k.user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNoAPIKey
		}
		return fmt.Errorf("failed to delete API key from keyring: %w", err)
	}
	return nil
}

// HasAPIKey reports whether a key is stored.
func (k *KeyStore) HasAPIKey() bool {
	_, err := k.APIKey()
	return err == nil
}

// MaskKey shows the last four characters of key.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
