//go:build !darwin

package credentials

import (
	"fmt"
	"os"
	"strings"
)

// envKeyring only reads: the token comes from the environment and can't be
// stored or removed by the program.
type envKeyring struct {
	lookup func(string) (string, bool)
}

func newPlatformKeyring() Keyring {
	return &envKeyring{lookup: os.LookupEnv}
}

func (k *envKeyring) GetToken() (string, error) {
	tok, _ := k.lookup(EnvToken)
	if tok = strings.TrimSpace(tok); tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

func (k *envKeyring) SetToken(string) error {
	return fmt.Errorf("%w: export %s instead", ErrUnsupported, EnvToken)
}

// DeleteToken succeeds only when there is nothing to delete
func (k *envKeyring) DeleteToken() error {
	if _, err := k.GetToken(); err != nil {
		return ErrNoToken
	}
	return fmt.Errorf("%w: unset %s instead", ErrUnsupported, EnvToken)
}

// IsAvailable is false: there is nowhere to store a token
func (k *envKeyring) IsAvailable() bool {
	return false
}
