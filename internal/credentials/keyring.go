package credentials

import (
	"errors"
	"os"
)

// Keyring stores the API token for the records service
type Keyring interface {
	GetToken() (string, error)
	SetToken(token string) error
	DeleteToken() error
	IsAvailable() bool
}

const (
	ServiceName = "clientes"
	KeyName     = "api-token"

	// EnvToken overrides whatever the keyring holds
	EnvToken = "CLIENTES_API_TOKEN"
)

var (
	// ErrNoToken is returned when nothing is stored under KeyName
	ErrNoToken = errors.New("no api token stored")
	// ErrUnsupported is returned by writes on platforms without a keyring
	ErrUnsupported = errors.New("keyring not supported on this platform")
)

// NewKeyring returns the best available keyring implementation
func NewKeyring() Keyring {
	return newPlatformKeyring()
}

// ResolveToken returns the token from the environment, then the keyring.
// A missing token is not an error; requests simply go out unauthenticated.
func ResolveToken(k Keyring) string {
	if tok := os.Getenv(EnvToken); tok != "" {
		return tok
	}
	if k == nil {
		return ""
	}
	tok, err := k.GetToken()
	if err != nil {
		return ""
	}
	return tok
}
