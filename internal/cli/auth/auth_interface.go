package auth

// TokenStore is the contract for bearer-token persistence. The keyring
// implementation is the default; tests swap in an in-memory one.
type TokenStore interface {
	Save(token string) error
	Load() (string, error)
	Clear() error
}

// KeyringStore stores the token for one server in the OS keychain
type KeyringStore struct {
	serverHost string
}

// NewKeyringStore returns a TokenStore bound to the given server host
func NewKeyringStore(serverHost string) *KeyringStore {
	return &KeyringStore{serverHost: serverHost}
}

func (k *KeyringStore) Save(token string) error {
	return SaveToken(k.serverHost, token)
}

func (k *KeyringStore) Load() (string, error) {
	return LoadToken(k.serverHost)
}

func (k *KeyringStore) Clear() error {
	return DeleteToken(k.serverHost)
}
