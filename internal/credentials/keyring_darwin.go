//go:build darwin

package credentials

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// keychain keeps the token as a generic password item in the login keychain
type keychain struct {
	service string
	account string
}

func newPlatformKeyring() Keyring {
	return &keychain{service: ServiceName, account: KeyName}
}

func (k *keychain) GetToken() (string, error) {
	tok, err := keyring.Get(k.service, k.account)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return "", ErrNoToken
	case err != nil:
		return "", fmt.Errorf("keychain read %s/%s: %w", k.service, k.account, err)
	}

	tok = strings.TrimSpace(tok)
	if tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

// SetToken replaces any token already stored
func (k *keychain) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token cannot be empty")
	}
	if err := keyring.Set(k.service, k.account, token); err != nil {
		return fmt.Errorf("keychain write %s/%s: %w", k.service, k.account, err)
	}
	return nil
}

func (k *keychain) DeleteToken() error {
	err := keyring.Delete(k.service, k.account)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return ErrNoToken
	case err != nil:
		return fmt.Errorf("keychain delete %s/%s: %w", k.service, k.account, err)
	}
	return nil
}

// IsAvailable reports whether the keychain answers a read. A missing item
// still counts as available.
func (k *keychain) IsAvailable() bool {
	_, err := keyring.Get(k.service, k.account)
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
