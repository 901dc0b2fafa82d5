// Package secrets fetches the storage connection credential from HashiCorp
// Vault, for deployments where the AWS key pair is not handed to the process
// directly.
package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"
)

// Credentials is the AWS key pair stored in Vault.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// VaultSource reads credentials from a KV v2 secret.
type VaultSource struct {
	client    *api.Client
	mountPath string
	dataPath  string
	log       *slog.Logger
}

// NewVaultSource creates a source for the given Vault address and secret
// path. The token comes from the standard VAULT_TOKEN environment variable
// or an explicit token argument; path is "mount/data-path".
func NewVaultSource(address, token, path string, log *slog.Logger) (*VaultSource, error) {
	config := api.DefaultConfig()
	config.Address = address
	config.Timeout = 30 * time.Second

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if token != "" {
		client.SetToken(token)
	}

	mountPath, dataPath, ok := strings.Cut(strings.Trim(path, "/"), "/")
	if !ok {
		return nil, fmt.Errorf("vault path %q must be mount/path", path)
	}

	return &VaultSource{
		client:    client,
		mountPath: mountPath,
		dataPath:  dataPath,
		log:       log,
	}, nil
}

// Fetch reads the credential pair. The secret must carry "access_key" and
// "secret_key" string fields.
func (s *VaultSource) Fetch(ctx context.Context) (Credentials, error) {
	secret, err := s.client.KVv2(s.mountPath).Get(ctx, s.dataPath)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read credentials from Vault: %w", err)
	}

	accessKey, ok := secret.Data["access_key"].(string)
	if !ok || accessKey == "" {
		return Credentials{}, fmt.Errorf("vault secret %s/%s missing access_key", s.mountPath, s.dataPath)
	}
	secretKey, ok := secret.Data["secret_key"].(string)
	if !ok || secretKey == "" {
		return Credentials{}, fmt.Errorf("vault secret %s/%s missing secret_key", s.mountPath, s.dataPath)
	}

	s.log.Info("Loaded storage credentials from Vault",
		slog.String("mount", s.mountPath),
		slog.String("path", s.dataPath))
	return Credentials{AccessKey: accessKey, SecretKey: secretKey}, nil
}
