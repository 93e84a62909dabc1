// internal/config/loader.go
//
// Environment assembly for the option pipeline.
//
/*
Context
--------
`Load()` merges every configuration layer into one koanf tree (highest
precedence last):

  1. Optional dotenv file, loaded into the process env (never overrides
     variables that are already set).
  2. The YAML config file, e.g. `storage.rocksdb.cacheSizeGB: 8`.
  3. SQL override rows for one profile (internal/overrides).
  4. Environment variables prefixed `ROCKSOPTS_`, where `__` maps to “.”
     and names match registered keys case-insensitively
     (e.g., `ROCKSOPTS_STORAGE__ROCKSDB__CACHESIZEGB → storage.rocksdb.cacheSizeGB`).
     Unregistered names are ignored.
  5. CLI flags the operator actually changed.

After merging, string values starting with `vault:` are swapped for the
secret they reference.  The tree is returned untouched otherwise: coercion
and validation belong to the option pipeline, which reports every bad value
with its key.

Instrumentation
---------------
  • DEBUG spans — each layer merged.
  • WARN  span  — keys under the storage namespace that no option declares.
  • ERROR spans — YAML parse, SQL, or Vault failures.
  • Logs use the global *sugared* logger (`zap.S()`).

Notes
-----
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/rocksopts/internal/metrics"
	"github.com/yanizio/rocksopts/internal/option"
	"github.com/yanizio/rocksopts/internal/vault"
)

// EnvPrefix marks environment variables that carry option values.
const EnvPrefix = "ROCKSOPTS_"

// OverrideFunc returns SQL override rows keyed by dotted option key.
type OverrideFunc func(ctx context.Context) (map[string]string, error)

// Sources describes every layer Load merges.  Only Registry is required.
type Sources struct {
	Registry  *option.Registry
	Bootstrap Bootstrap

	// Overrides is called when set.  cmd/rocksopts wires it to
	// overrides.Load when a DSN is configured.
	Overrides OverrideFunc

	// Flags are the changed registry flags (Registry.FlagValues).
	Flags map[string]any

	// Vault resolves `vault:` references.  Required only when a reference
	// is present.
	Vault vault.Resolver

	// Namespace limits the unknown-key warning, e.g. "storage.rocksdb.".
	Namespace string
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load merges every layer and returns the tree.
func Load(ctx context.Context, src Sources) (*koanf.Koanf, error) {
	if src.Registry == nil {
		return nil, errors.New("config: nil option registry")
	}
	b := src.Bootstrap
	k := koanf.New(".")

	// dotenv (optional)
	if b.EnvFile != "" {
		if err := godotenv.Load(b.EnvFile); err != nil {
			zap.S().Errorw("config dotenv load failed", "file", b.EnvFile, "err", err)
			return nil, fmt.Errorf("load env file %s: %w", b.EnvFile, err)
		}
		loaded(b.EnvFile, "dotenv")
	}

	// YAML file
	if b.ConfigFile != "" {
		if err := k.Load(file.Provider(b.ConfigFile), yaml.Parser()); err != nil {
			zap.S().Errorw("config yaml load failed", "file", b.ConfigFile, "err", err)
			return nil, fmt.Errorf("load config file %s: %w", b.ConfigFile, err)
		}
		loaded(b.ConfigFile, "file")
	}

	// SQL overrides
	if src.Overrides != nil {
		rows, err := src.Overrides(ctx)
		if err != nil {
			zap.S().Errorw("config sql overrides failed", "profile", b.OverridesProfile, "err", err)
			return nil, err
		}
		flat := make(map[string]any, len(rows))
		for key, val := range rows {
			flat[key] = val
		}
		if err := k.Load(flatProvider(flat), nil); err != nil {
			return nil, fmt.Errorf("merge sql overrides: %w", err)
		}
		loaded(b.OverridesProfile, "sql")
	}

	// Env overrides: ROCKSOPTS_STORAGE__ROCKSDB__CACHESIZEGB → storage.rocksdb.cacheSizeGB
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey(src.Registry)), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}
	loaded(EnvPrefix, "env")

	// Changed CLI flags
	if len(src.Flags) > 0 {
		if err := k.Load(flatProvider(src.Flags), nil); err != nil {
			return nil, fmt.Errorf("merge flags: %w", err)
		}
		loaded("cli", "flags")
	}

	if err := resolveSecrets(ctx, k, src.Vault); err != nil {
		zap.S().Errorw("config vault resolution failed", "err", err)
		return nil, err
	}

	if extra := src.Registry.Unrecognized(k.Keys(), src.Namespace); len(extra) > 0 {
		zap.S().Warnw("config keys not recognized", "keys", extra)
	}
	return k, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// envKey maps an env var name to a registered key, or "" to drop it.
func envKey(reg *option.Registry) func(string) string {
	return func(name string) string {
		path := strings.ReplaceAll(strings.TrimPrefix(name, EnvPrefix), "__", ".")
		if s, ok := reg.LookupFold(path); ok {
			return s.Key
		}
		return ""
	}
}

// resolveSecrets replaces every `vault:` string in k with its secret.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, r vault.Resolver) error {
	for _, key := range k.Keys() {
		s, ok := k.Get(key).(string)
		if !ok || !vault.IsRef(s) {
			continue
		}
		if r == nil {
			return fmt.Errorf("option %q holds a vault reference but vault is not enabled", key)
		}
		secret, err := r.Resolve(ctx, s)
		if err != nil {
			return fmt.Errorf("option %q: %w", key, err)
		}
		if err := k.Set(key, secret); err != nil {
			return fmt.Errorf("option %q: %w", key, err)
		}
		zap.S().Debugw("config vault reference resolved", "option", key)
	}
	return nil
}

func loaded(from, source string) {
	metrics.SourcesLoadedTotal.WithLabelValues(source).Inc()
	zap.S().Debugw("config layer merged", "source", source, "from", from)
}

// flatProvider is a koanf.Provider over a map keyed by dotted path.
type flatProvider map[string]any

func (p flatProvider) Read() (map[string]any, error) {
	return maps.Unflatten(map[string]any(p), "."), nil
}

func (p flatProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("flat provider does not support ReadBytes")
}
