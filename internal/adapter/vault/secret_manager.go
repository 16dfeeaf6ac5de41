package vault

import (
	"fmt"

	"github.com/hashicorp/vault/api"
)

// SecretManager pulls deployment secrets from Vault KV v2 so they stay
// out of config files and the environment.
type SecretManager struct {
	client *api.Client
}

func NewSecretManager(address, token string) (*SecretManager, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	return &SecretManager{client: client}, nil
}

// GetDatabaseCredentials returns the postgres connection string stored
// at secret/data/database.
func (sm *SecretManager) GetDatabaseCredentials() (string, error) {
	return sm.readString("secret/data/database", "connection_string")
}

// GetJWTSecret returns the token verification key stored at
// secret/data/auth.
func (sm *SecretManager) GetJWTSecret() (string, error) {
	return sm.readString("secret/data/auth", "jwt_secret")
}

func (sm *SecretManager) readString(path, field string) (string, error) {
	secret, err := sm.client.Logical().Read(path)
	if err != nil {
		return "", err
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("vault: no secret at %s", path)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("vault: unexpected secret shape at %s", path)
	}
	value, ok := data[field].(string)
	if !ok {
		return "", fmt.Errorf("vault: field %s missing at %s", field, path)
	}
	return value, nil
}
