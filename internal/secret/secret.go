// Package secret keeps the plaintext control token in the OS credential
// store so the bundled client can authenticate without asking.
package secret

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const (
	serviceName = "WinShortcuts"
	tokenKey    = "control-token"
)

var ErrNotFound = errors.New("no saved control token")

type TokenStore struct {
	ring keyring.Keyring
}

// Open opens the OS keyring via 99designs/keyring.
func Open() (*TokenStore, error) {
	r, err := keyring.Open(keyring.Config{
		ServiceName:   serviceName,
		WinCredPrefix: serviceName,
	})
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return New(r), nil
}

// New wraps an already opened keyring.
func New(ring keyring.Keyring) *TokenStore {
	return &TokenStore{ring: ring}
}

func (s *TokenStore) Token() (string, error) {
	item, err := s.ring.Get(tokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if len(item.Data) == 0 {
		return "", ErrNotFound
	}
	return string(item.Data), nil
}

func (s *TokenStore) SaveToken(token string) error {
	return s.ring.Set(keyring.Item{
		Key:         tokenKey,
		Data:        []byte(token),
		Label:       serviceName + " control token",
		Description: "local control socket",
	})
}

// DeleteToken removes the saved token. A missing token is not an error.
func (s *TokenStore) DeleteToken() error {
	err := s.ring.Remove(tokenKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}
