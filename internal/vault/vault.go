// internal/vault/vault.go
//
// Vault secret references for option values.
//
// Context
// -------
//   - An option value of the form `vault:<mount>/<path>#<key>` is a pointer
//     to a KV-v2 secret, not the value itself.  The config loader swaps each
//     reference for the secret before the option pipeline sees it, so
//     credentials embedded in e.g. `storage.rocksdb.configString` never sit
//     in flat files.
//   - Client wraps the HashiCorp Vault Go SDK and keeps fetched secrets in
//     a small LRU with expiry.  rocksopts resolves secrets once at startup
//     and exits, so there is no token renewal loop.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New()                      // during boot.
//  2. val, err := cli.Resolve(ctx, "vault:...")    // per reference.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	vault "github.com/hashicorp/vault/api"

	"github.com/yanizio/rocksopts/internal/cache"
)

// RefPrefix marks a value as a Vault reference.
const RefPrefix = "vault:"

// CacheTTL bounds how long a fetched secret is reused.
const CacheTTL = 5 * time.Minute

// cacheSize caps distinct path#key entries kept by one Client.
const cacheSize = 256

//
// SECTION 1.  Public façade
//

// Resolver turns a reference into the secret value.  The config loader
// depends on this interface; tests substitute a map.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// IsRef reports whether s is a Vault reference.
func IsRef(s string) bool { return strings.HasPrefix(s, RefPrefix) }

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	api   *vault.Client
	cache *cache.LRU[string, string] // path#key → value.
}

// New constructs a Vault client from the environment.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – token (falls back to ~/.vault-token).
func New() (*Client, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	return &Client{api: apiCli, cache: cache.New[string, string](cacheSize)}, nil
}

// Resolve fetches the secret a reference points to.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	path, key, err := ParseRef(ref)
	if err != nil {
		return "", err
	}
	return c.GetKV(ctx, path, key, CacheTTL)
}

// GetKV fetches a single key from a KV-v2 secret.  If ttl > 0 the result is
// cached for that duration.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}

	canonical := secretPath + "#" + key

	if ttl > 0 {
		if val, ok := c.cache.Get(canonical); ok {
			return val, nil
		}
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s#%s is not a string", secretPath, key)
	}

	if ttl > 0 {
		c.cache.Add(canonical, sval, ttl)
	}
	return sval, nil
}

//
// SECTION 2.  Helpers
//

// ParseRef splits `vault:<mount>/<path>#<key>` into secret path and key.
func ParseRef(ref string) (secretPath, key string, err error) {
	if !IsRef(ref) {
		return "", "", fmt.Errorf("not a vault reference: missing %q prefix", RefPrefix)
	}
	body := strings.TrimPrefix(ref, RefPrefix)
	i := strings.LastIndexByte(body, '#')
	if i <= 0 || i == len(body)-1 {
		return "", "", fmt.Errorf("vault reference %q: want vault:<mount>/<path>#<key>", ref)
	}
	secretPath, key = body[:i], body[i+1:]
	if mount, rel := splitMount(secretPath); mount == "" || rel == "" {
		return "", "", fmt.Errorf("vault reference %q: path needs a mount and a secret", ref)
	}
	return secretPath, key, nil
}

func splitMount(p string) (mount, rel string) {
	if p == "" {
		return "", ""
	}
	parts := strings.SplitN(p, "/", 2)
	mount = parts[0]
	if len(parts) == 2 {
		rel = parts[1]
	}
	return
}
